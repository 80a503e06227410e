package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/maglev/internal/dynamo"
	"github.com/san-kum/maglev/internal/storage"
)

type ExportData struct {
	Run     storage.RunMetadata `json:"run"`
	Samples []dynamo.Sample     `json:"samples"`
}

func WriteJSON(w io.Writer, meta storage.RunMetadata, samples []dynamo.Sample) error {
	if samples == nil {
		samples = []dynamo.Sample{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{Run: meta, Samples: samples})
}

func ExportJSON(path string, meta storage.RunMetadata, samples []dynamo.Sample) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := WriteJSON(file, meta, samples); err != nil {
		return err
	}
	return file.Sync()
}
