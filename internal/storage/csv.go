package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/maglev/internal/dynamo"
)

var sampleHeader = []string{"time", "position", "velocity", "measured", "setpoint", "output", "drive", "force"}

func sampleRow(s dynamo.Sample) []float64 {
	return []float64{s.Time, s.Position, s.Velocity, s.Measured, s.Setpoint, s.Output, s.Drive, s.Force}
}

// WriteSamples writes samples as CSV with a header row. Values use the
// shortest representation that parses back to the same float.
func WriteSamples(w io.Writer, samples []dynamo.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(sampleHeader); err != nil {
		return err
	}

	row := make([]string, len(sampleHeader))
	for _, s := range samples {
		for i, v := range sampleRow(s) {
			row[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadSamples parses the format written by WriteSamples.
func ReadSamples(r io.Reader) ([]dynamo.Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(sampleHeader)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []dynamo.Sample{}, nil
	}

	samples := make([]dynamo.Sample, 0, len(records)-1)
	for i, record := range records[1:] {
		var v [8]float64
		for j, field := range record {
			v[j], err = strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d, %s: %w", i+1, sampleHeader[j], err)
			}
		}
		samples = append(samples, dynamo.Sample{
			Time: v[0], Position: v[1], Velocity: v[2], Measured: v[3],
			Setpoint: v[4], Output: v[5], Drive: v[6], Force: v[7],
		})
	}
	return samples, nil
}
