package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/maglev/internal/dynamo"
)

// Spectrum is a one-sided power spectrum. Freqs are in Hz.
type Spectrum struct {
	Freqs []float64
	Power []float64
}

// ErrorSpectrum returns the power spectrum of the tracking error with its
// mean removed. Samples must be evenly spaced by dt.
func ErrorSpectrum(samples []dynamo.Sample, dt float64) (Spectrum, error) {
	if len(samples) < 4 {
		return Spectrum{}, dynamo.Invalidf("need at least 4 samples, got %d", len(samples))
	}
	if err := dynamo.RequirePositive("dt", dt); err != nil {
		return Spectrum{}, err
	}

	errs := make([]float64, len(samples))
	for i, s := range samples {
		errs[i] = s.Error()
	}
	mean := stat.Mean(errs, nil)
	for i := range errs {
		errs[i] -= mean
	}

	n := len(errs)
	coeffs := fft.FFTReal(errs)[:n/2+1]

	sp := Spectrum{
		Freqs: make([]float64, len(coeffs)),
		Power: make([]float64, len(coeffs)),
	}
	for i, c := range coeffs {
		sp.Freqs[i] = float64(i) / (float64(n) * dt)
		a := cmplx.Abs(c)
		sp.Power[i] = a * a
	}
	return sp, nil
}

// Dominant returns the frequency and power of the strongest non-DC bin.
func (s Spectrum) Dominant() (freq, power float64) {
	for i := 1; i < len(s.Power); i++ {
		if s.Power[i] > power {
			freq, power = s.Freqs[i], s.Power[i]
		}
	}
	return freq, power
}
