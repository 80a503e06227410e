package export

import (
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/maglev/internal/dynamo"
)

// ASCII renders position and setpoint as a terminal chart.
func ASCII(samples []dynamo.Sample, width, height int, caption string) string {
	if len(samples) == 0 {
		return ""
	}
	position := make([]float64, len(samples))
	setpoint := make([]float64, len(samples))
	for i, s := range samples {
		position[i] = s.Position
		setpoint[i] = s.Setpoint
	}

	return asciigraph.PlotMany([][]float64{position, setpoint},
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Precision(3),
		asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Red),
		asciigraph.Caption(caption),
	)
}
