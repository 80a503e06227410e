package sim

import (
	"time"

	"github.com/san-kum/maglev/internal/dynamo"
)

const DefaultMaxCatchUp = 100

// Pacer converts wall-clock time into a whole number of fixed sampling
// periods. The remainder carries over to the next call so the simulated
// clock never drifts from the wall clock.
type Pacer struct {
	period time.Duration
	now    func() time.Time
	last   time.Time
	carry  time.Duration

	// MaxCatchUp caps the periods returned by one call. Time beyond the
	// cap is dropped.
	MaxCatchUp int
}

// NewPacer returns a pacer for rate samples per second. A nil now uses
// time.Now.
func NewPacer(rate float64, now func() time.Time) (*Pacer, error) {
	if err := dynamo.RequirePositive("sample rate", rate); err != nil {
		return nil, err
	}
	period := time.Duration(float64(time.Second) / rate)
	if period <= 0 {
		return nil, dynamo.Invalidf("sample rate %v is too high", rate)
	}
	if now == nil {
		now = time.Now
	}
	return &Pacer{period: period, now: now, last: now(), MaxCatchUp: DefaultMaxCatchUp}, nil
}

// Period is the fixed step length in seconds.
func (p *Pacer) Period() float64 { return p.period.Seconds() }

// Due returns how many periods elapsed since the previous call.
func (p *Pacer) Due() int {
	t := p.now()
	elapsed := t.Sub(p.last)
	p.last = t
	if elapsed < 0 {
		elapsed = 0
	}

	p.carry += elapsed
	n := int(p.carry / p.period)
	p.carry -= time.Duration(n) * p.period

	if p.MaxCatchUp > 0 && n > p.MaxCatchUp {
		n = p.MaxCatchUp
	}
	return n
}

// Restart discards accumulated time.
func (p *Pacer) Restart() {
	p.last = p.now()
	p.carry = 0
}
