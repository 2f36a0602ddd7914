package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Kind is the declared value shape of an extraction field.
type Kind string

const (
	KindBool    Kind = "bool"
	KindNumeric Kind = "numeric"
	KindEnum    Kind = "enum"
	KindList    Kind = "list"
)

// Field declares one extraction target: its name, kind, and comparison rules.
type Field struct {
	Name        string  `yaml:"name" json:"name"`
	Kind        Kind    `yaml:"kind" json:"kind"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
	Values      []string `yaml:"values,omitempty" json:"values,omitempty"`
	AbsTolerance float64 `yaml:"abs_tolerance,omitempty" json:"abs_tolerance,omitempty"`
	RelTolerance float64 `yaml:"rel_tolerance,omitempty" json:"rel_tolerance,omitempty"`
}

// Schema is the fixed set of fields the extractor asks for and the validator
// scores. Validated once at load; read-only afterwards.
type Schema struct {
	Name   string  `yaml:"name" json:"name"`
	Fields []Field `yaml:"fields" json:"fields"`
}

// Field returns the declaration for name.
func (s Schema) Field(name string) (Field, bool) {
	for _, field := range s.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// Validate checks the schema is well formed: non-empty unique field names,
// known kinds, enum fields with at least one value, non-negative tolerances.
func (s Schema) Validate() error {
	if len(s.Fields) == 0 {
		return fmt.Errorf("schema %q: no fields declared", s.Name)
	}
	seen := make(map[string]bool, len(s.Fields))
	for _, field := range s.Fields {
		if field.Name == "" {
			return fmt.Errorf("schema %q: field with empty name", s.Name)
		}
		if seen[field.Name] {
			return fmt.Errorf("schema %q: duplicate field %q", s.Name, field.Name)
		}
		seen[field.Name] = true

		switch field.Kind {
		case KindBool, KindNumeric, KindList:
		case KindEnum:
			if len(field.Values) == 0 {
				return fmt.Errorf("schema %q: enum field %q has no values", s.Name, field.Name)
			}
		default:
			return fmt.Errorf("schema %q: field %q has unknown kind %q", s.Name, field.Name, field.Kind)
		}
		if field.AbsTolerance < 0 || field.RelTolerance < 0 {
			return fmt.Errorf("schema %q: field %q has negative tolerance", s.Name, field.Name)
		}
	}
	return nil
}

// Load reads and validates a schema from a YAML file.
func Load(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, err
	}
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Schema{}, fmt.Errorf("schema %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = path
	}
	if err := s.Validate(); err != nil {
		return Schema{}, err
	}
	return s, nil
}
