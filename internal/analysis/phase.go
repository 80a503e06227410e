package analysis

import (
	"strings"

	"github.com/san-kum/maglev/internal/dynamo"
)

// PhasePortrait draws position (x axis) against velocity (y axis).
func PhasePortrait(samples []dynamo.Sample, width, height int) string {
	if len(samples) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := samples[0].Position, samples[0].Position
	minY, maxY := samples[0].Velocity, samples[0].Velocity
	for _, s := range samples {
		minX, maxX = min(minX, s.Position), max(maxX, s.Position)
		minY, maxY = min(minY, s.Velocity), max(maxY, s.Velocity)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	// zero velocity line
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := range canvas[row] {
			canvas[row][col] = '─'
		}
	}

	for _, s := range samples {
		col := int((s.Position - minX) / rangeX * float64(width-1))
		row := height - 1 - int((s.Velocity-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	last := samples[len(samples)-1]
	col := int((last.Position - minX) / rangeX * float64(width-1))
	row := height - 1 - int((last.Velocity-minY)/rangeY*float64(height-1))
	if row >= 0 && row < height && col >= 0 && col < width {
		canvas[row][col] = '●'
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
