package validate

import (
	"sort"
	"time"

	"clinex/pkg/core"
	"clinex/pkg/schema"
)

// Scorer aligns extracted records with gold records by identifier and scores
// every schema field. Inputs are never mutated.
type Scorer struct {
	Schema schema.Schema
	// DefaultAbsTolerance applies to numeric fields that declare no tolerance.
	DefaultAbsTolerance float64

	// Warn is called when a gold or extracted value does not conform to the
	// field's declared kind; the value then scores as absent. Optional.
	Warn func(recordID, field, reason string)
}

// Score compares the two record sets. Identifiers present in only one set are
// reported as coverage gaps and excluded from every denominator.
func (s Scorer) Score(extracted, gold []core.Record) (Report, error) {
	if err := s.Schema.Validate(); err != nil {
		return Report{}, err
	}

	extractedByID := indexByID(extracted)
	goldByID := indexByID(gold)

	var scoredIDs []string
	var coverage Coverage
	seen := make(map[string]bool, len(gold))
	for _, record := range gold {
		if seen[record.ID] {
			continue
		}
		seen[record.ID] = true
		if _, ok := extractedByID[record.ID]; ok {
			scoredIDs = append(scoredIDs, record.ID)
		} else {
			coverage.OnlyGold = append(coverage.OnlyGold, record.ID)
		}
	}
	for _, record := range extracted {
		if _, ok := goldByID[record.ID]; !ok {
			coverage.OnlyExtracted = append(coverage.OnlyExtracted, record.ID)
		}
	}
	sort.Strings(coverage.OnlyGold)
	sort.Strings(coverage.OnlyExtracted)

	report := Report{
		SchemaName:  s.Schema.Name,
		Scored:      len(scoredIDs),
		Coverage:    coverage,
		GeneratedAt: time.Now(),
	}

	var overall Counts
	for _, field := range s.Schema.Fields {
		var counts Counts
		for _, id := range scoredIDs {
			counts.add(s.scorePair(field, id, goldByID[id], extractedByID[id]))
		}
		overall.add(counts)
		report.Fields = append(report.Fields, fieldMetrics(field.Name, field.Kind, counts))
	}
	report.Overall = fieldMetrics("overall", "", overall)
	return report, nil
}

// scorePair scores one field of one aligned record pair.
func (s Scorer) scorePair(field schema.Field, id string, gold, extracted core.Record) Counts {
	goldValue, goldPresent := s.fieldValue(field, id, gold)
	extractedValue, extractedPresent := s.fieldValue(field, id, extracted)

	if field.Kind == schema.KindList {
		return listCounts(asList(goldValue, goldPresent), asList(extractedValue, extractedPresent))
	}

	counts := Counts{Compared: 1}
	switch {
	case !goldPresent && !extractedPresent:
		counts.TrueNegatives = 1
		counts.Correct = 1
	case goldPresent && !extractedPresent:
		counts.FalseNegatives = 1
	case !goldPresent && extractedPresent:
		counts.FalsePositives = 1
	case s.scalarMatch(field, goldValue, extractedValue):
		counts.TruePositives = 1
		counts.Correct = 1
	default:
		// Wrong value: a spurious assertion and a missed gold value.
		counts.FalsePositives = 1
		counts.FalseNegatives = 1
	}
	return counts
}

// fieldValue reads and coerces one field. Mismatched values score as absent.
func (s Scorer) fieldValue(field schema.Field, id string, record core.Record) (any, bool) {
	raw, ok := record.Value(field.Name)
	if !ok {
		return nil, false
	}
	coerced, err := field.Coerce(raw)
	if err != nil {
		if s.Warn != nil {
			s.Warn(id, field.Name, err.Error())
		}
		return nil, false
	}
	if items, isList := coerced.([]string); isList && len(items) == 0 {
		return nil, false
	}
	return coerced, true
}

func asList(value any, present bool) []string {
	if !present {
		return nil
	}
	items, _ := value.([]string)
	return items
}

func fieldMetrics(name string, kind schema.Kind, counts Counts) FieldMetrics {
	return FieldMetrics{
		Field:     name,
		Kind:      kind,
		Counts:    counts,
		Accuracy:  counts.Accuracy(),
		Recall:    counts.Recall(),
		Precision: counts.Precision(),
	}
}

func indexByID(records []core.Record) map[string]core.Record {
	byID := make(map[string]core.Record, len(records))
	for _, record := range records {
		byID[record.ID] = record
	}
	return byID
}
