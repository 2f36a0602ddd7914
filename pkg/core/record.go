package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Record is the structured extraction output for one note. Fields is keyed by
// schema field name; a missing key, nil, empty string, or empty list all mean
// the field was not found in the note.
type Record struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
	Error  string         `json:"error,omitempty"`
}

// Failed reports whether the record was produced by a failed extraction.
func (r Record) Failed() bool {
	return r.Error != ""
}

// Value returns the field value and whether it is present.
func (r Record) Value(name string) (any, bool) {
	if r.Fields == nil {
		return nil, false
	}
	value, ok := r.Fields[name]
	if !ok || value == nil {
		return nil, false
	}
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, false
		}
	case []any:
		if len(v) == 0 {
			return nil, false
		}
	case []string:
		if len(v) == 0 {
			return nil, false
		}
	}
	return value, true
}

// MarshalJSON writes the record flat: identifier, optional error flag, then
// field values at the top level.
func (r Record) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(r.Fields)+2)
	for name, value := range r.Fields {
		flat[name] = value
	}
	flat["id"] = r.ID
	if r.Error != "" {
		flat["error"] = r.Error
	}
	return json.Marshal(flat)
}

// UnmarshalJSON accepts both the flat shape written by MarshalJSON and an
// explicit {"id", "fields", "error"} object, as found in hand-authored gold
// standards.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	record := Record{Fields: map[string]any{}}
	if id, ok := raw["id"]; ok {
		switch v := id.(type) {
		case string:
			record.ID = v
		case float64:
			record.ID = fmt.Sprintf("%.0f", v)
		default:
			return fmt.Errorf("record: unsupported id type %T", id)
		}
		delete(raw, "id")
	}
	if message, ok := raw["error"].(string); ok {
		record.Error = message
		delete(raw, "error")
	}
	if nested, ok := raw["fields"].(map[string]any); ok && len(raw) == 1 {
		record.Fields = nested
	} else {
		record.Fields = raw
	}

	*r = record
	return nil
}

// FailedRecord builds an all-absent record carrying an error flag.
func FailedRecord(id string, err error) Record {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return Record{ID: id, Fields: map[string]any{}, Error: message}
}
