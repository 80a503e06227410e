package metrics

import "github.com/san-kum/maglev/internal/dynamo"

// DefaultBand is the tracking band used by Stability in DefaultSet.
const DefaultBand = 0.05

// DefaultSet returns the metrics reported by the CLI for every run.
func DefaultSet() []dynamo.Metric {
	return []dynamo.Metric{
		NewIAE(),
		NewSteadyStateError(100),
		NewPeakError(),
		NewControlEffort(),
		NewSensorNoise(),
		NewStability(DefaultBand),
	}
}
