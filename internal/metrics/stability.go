package metrics

import (
	"math"

	"github.com/san-kum/maglev/internal/dynamo"
)

// Stability is the fraction of samples whose tracking error stays within
// the band.
type Stability struct {
	name       string
	band       float64
	violations int
	samples    int
}

func NewStability(band float64) *Stability {
	return &Stability{
		name: "stability",
		band: band,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(sample dynamo.Sample) {
	s.samples++
	if e := sample.Error(); math.Abs(e) > s.band || math.IsNaN(e) {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
