package validate

import (
	"time"

	"clinex/pkg/schema"
)

// Counts are per-field confusion counts. For scalar fields one record pair is
// one comparison; for list fields counts are at item granularity while
// Compared/Correct stay at record granularity.
type Counts struct {
	Compared       int `json:"compared"`
	Correct        int `json:"correct"`
	TruePositives  int `json:"true_positives"`
	TrueNegatives  int `json:"true_negatives"`
	FalsePositives int `json:"false_positives"`
	FalseNegatives int `json:"false_negatives"`
}

func (c *Counts) add(other Counts) {
	c.Compared += other.Compared
	c.Correct += other.Correct
	c.TruePositives += other.TruePositives
	c.TrueNegatives += other.TrueNegatives
	c.FalsePositives += other.FalsePositives
	c.FalseNegatives += other.FalseNegatives
}

// Accuracy is correct comparisons over total comparisons.
func (c Counts) Accuracy() float64 {
	if c.Compared == 0 {
		return 0
	}
	return float64(c.Correct) / float64(c.Compared)
}

// Recall is TP/(TP+FN). With nothing to recover it is 1 by convention.
func (c Counts) Recall() float64 {
	relevant := c.TruePositives + c.FalseNegatives
	if relevant == 0 {
		return 1
	}
	return float64(c.TruePositives) / float64(relevant)
}

// Precision is TP/(TP+FP). With nothing asserted it is 1 by convention.
func (c Counts) Precision() float64 {
	asserted := c.TruePositives + c.FalsePositives
	if asserted == 0 {
		return 1
	}
	return float64(c.TruePositives) / float64(asserted)
}

// FieldMetrics is the scored outcome for one schema field.
type FieldMetrics struct {
	Field     string      `json:"field"`
	Kind      schema.Kind `json:"kind"`
	Counts    Counts      `json:"counts"`
	Accuracy  float64     `json:"accuracy"`
	Recall    float64     `json:"recall"`
	Precision float64     `json:"precision"`
}

// Coverage lists identifiers present in only one of the two record sets. They
// are reported, never folded into the scored denominators.
type Coverage struct {
	OnlyGold      []string `json:"only_gold,omitempty"`
	OnlyExtracted []string `json:"only_extracted,omitempty"`
}

// Report is the full validation outcome. Derived data only; recomputed each
// run and never authoritative.
type Report struct {
	SchemaName  string         `json:"schema_name"`
	Scored      int            `json:"scored"`
	Fields      []FieldMetrics `json:"fields"`
	Overall     FieldMetrics   `json:"overall"`
	Coverage    Coverage       `json:"coverage"`
	GeneratedAt time.Time      `json:"generated_at"`
}
