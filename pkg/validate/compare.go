package validate

import (
	"math"
	"strings"

	"clinex/pkg/schema"
)

// fallbackTolerance applies when a numeric field declares no tolerance and no
// global default is configured.
const fallbackTolerance = 1e-6

func normalizeText(input string) string {
	return strings.ToLower(strings.Join(strings.Fields(input), " "))
}

// scalarMatch compares two present values under the field's kind rule. Values
// arrive already coerced to canonical types.
func (s Scorer) scalarMatch(field schema.Field, gold, extracted any) bool {
	switch field.Kind {
	case schema.KindBool:
		goldBool, okGold := gold.(bool)
		extractedBool, okExtracted := extracted.(bool)
		return okGold && okExtracted && goldBool == extractedBool
	case schema.KindNumeric:
		goldNum, okGold := gold.(float64)
		extractedNum, okExtracted := extracted.(float64)
		if !okGold || !okExtracted {
			return false
		}
		return s.numericMatch(field, goldNum, extractedNum)
	case schema.KindEnum:
		goldText, okGold := gold.(string)
		extractedText, okExtracted := extracted.(string)
		return okGold && okExtracted && strings.EqualFold(goldText, extractedText)
	}
	return false
}

// numericMatch applies the field's absolute and/or relative tolerance. A field
// declaring neither uses the scorer's default absolute tolerance.
func (s Scorer) numericMatch(field schema.Field, gold, extracted float64) bool {
	diff := math.Abs(gold - extracted)
	abs := field.AbsTolerance
	rel := field.RelTolerance
	if abs == 0 && rel == 0 {
		abs = s.DefaultAbsTolerance
		if abs <= 0 {
			abs = fallbackTolerance
		}
	}
	if abs > 0 && diff <= abs {
		return true
	}
	if rel > 0 && diff <= rel*math.Abs(gold) {
		return true
	}
	return false
}

// listCounts scores one record pair for a list field at item granularity.
// Items match by normalized text; gold items recovered are true positives,
// gold items missed are false negatives, spurious extracted items are false
// positives. Correct means the two item sets match exactly.
func listCounts(gold, extracted []string) Counts {
	goldSet := make(map[string]bool, len(gold))
	for _, item := range gold {
		goldSet[normalizeText(item)] = true
	}
	extractedSet := make(map[string]bool, len(extracted))
	for _, item := range extracted {
		extractedSet[normalizeText(item)] = true
	}

	counts := Counts{Compared: 1}
	for item := range goldSet {
		if extractedSet[item] {
			counts.TruePositives++
		} else {
			counts.FalseNegatives++
		}
	}
	for item := range extractedSet {
		if !goldSet[item] {
			counts.FalsePositives++
		}
	}
	if counts.FalseNegatives == 0 && counts.FalsePositives == 0 {
		counts.Correct = 1
		if len(goldSet) == 0 {
			counts.TrueNegatives++
		}
	}
	return counts
}
