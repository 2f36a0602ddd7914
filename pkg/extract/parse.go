package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"clinex/pkg/core"
	"clinex/pkg/schema"
)

// FieldIssue records a schema mismatch in a model reply. The field scores as
// absent; the issue is surfaced to the caller for logging.
type FieldIssue struct {
	Field  string
	Reason string
}

// Models still wrap JSON in code fences occasionally despite the instructions.
var jsonBlockRegex = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// rawJSON strips markdown wrappers and returns the JSON object candidate.
func rawJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") {
		return text
	}
	for _, match := range jsonBlockRegex.FindAllStringSubmatch(text, -1) {
		candidate := strings.TrimSpace(match[1])
		if strings.HasPrefix(candidate, "{") {
			return candidate
		}
	}
	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			return text[start : end+1]
		}
	}
	return text
}

// ParseRecord turns a model reply into a record for the given note. Values are
// coerced to their declared kinds; values that do not conform are dropped and
// reported as issues. Keys outside the schema are ignored. The note identifier
// always wins over whatever id the model echoed back.
func ParseRecord(id, content string, s schema.Schema) (core.Record, []FieldIssue, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(rawJSON(content)), &raw); err != nil {
		return core.Record{}, nil, fmt.Errorf("reply is not valid JSON: %w", err)
	}

	record := core.Record{ID: id, Fields: make(map[string]any, len(s.Fields))}
	var issues []FieldIssue
	for _, field := range s.Fields {
		value, ok := raw[field.Name]
		if !ok || value == nil {
			continue
		}
		if text, isString := value.(string); isString && strings.TrimSpace(text) == "" {
			continue
		}
		coerced, err := field.Coerce(value)
		if err != nil {
			issues = append(issues, FieldIssue{Field: field.Name, Reason: err.Error()})
			continue
		}
		if items, isList := coerced.([]string); isList && len(items) == 0 {
			continue
		}
		record.Fields[field.Name] = coerced
	}
	return record, issues, nil
}
