package extract

import (
	"encoding/json"
	"fmt"
	"os"

	"clinex/pkg/core"
)

// WriteRecordSet writes records as a JSON array, overwriting any previous run.
func WriteRecordSet(path string, records []core.Record) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if records == nil {
		records = []core.Record{}
	}
	return encoder.Encode(records)
}

// ReadRecordSet loads a JSON array of records, such as an earlier run's output
// or a hand-authored gold standard.
func ReadRecordSet(path string) ([]core.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var records []core.Record
	if err := json.NewDecoder(file).Decode(&records); err != nil {
		return nil, fmt.Errorf("record set %s: %w", path, err)
	}
	return records, nil
}
