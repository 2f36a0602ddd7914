package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Coerce converts a raw JSON value into the canonical type for the field:
// bool, float64, string (enum), or []string (list). A value that cannot be
// coerced is a schema mismatch, which callers treat as absent.
func (f Field) Coerce(value any) (any, error) {
	switch f.Kind {
	case KindBool:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "true", "yes":
				return true, nil
			case "false", "no":
				return false, nil
			}
		}
		return nil, fmt.Errorf("field %s: expected bool, got %T", f.Name, value)
	case KindNumeric:
		if number, ok := NumberFrom(value); ok {
			return number, nil
		}
		return nil, fmt.Errorf("field %s: expected number, got %v", f.Name, value)
	case KindEnum:
		text, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("field %s: expected string, got %T", f.Name, value)
		}
		text = strings.TrimSpace(text)
		for _, allowed := range f.Values {
			if strings.EqualFold(text, allowed) {
				return allowed, nil
			}
		}
		return nil, fmt.Errorf("field %s: %q is not an allowed value", f.Name, text)
	case KindList:
		switch v := value.(type) {
		case []string:
			return trimList(v), nil
		case []any:
			items := make([]string, 0, len(v))
			for _, item := range v {
				items = append(items, fmt.Sprintf("%v", item))
			}
			return trimList(items), nil
		case string:
			if strings.TrimSpace(v) == "" {
				return []string{}, nil
			}
			return []string{strings.TrimSpace(v)}, nil
		}
		return nil, fmt.Errorf("field %s: expected list, got %T", f.Name, value)
	}
	return nil, fmt.Errorf("field %s: unknown kind %q", f.Name, f.Kind)
}

func trimList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

var numberRegex = regexp.MustCompile(`[-+]?\d[\d,]*(?:\.\d+)?`)

// NumberFrom extracts a numeric value from a raw JSON value. Strings may carry
// units ("142 mg/dL", "7.2%"); the first number found wins.
func NumberFrom(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		match := numberRegex.FindString(v)
		if match == "" {
			return 0, false
		}
		number, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
		if err != nil {
			return 0, false
		}
		return number, true
	}
	return 0, false
}
