package validate

import (
	"testing"

	"clinex/pkg/core"
	"clinex/pkg/schema"

	"github.com/stretchr/testify/require"
)

func testSchema() schema.Schema {
	return schema.Schema{
		Name: "test",
		Fields: []schema.Field{
			{Name: "diabetes", Kind: schema.KindBool},
			{Name: "diabetes_status", Kind: schema.KindEnum, Values: []string{"active", "historical", "family history"}},
			{Name: "bp_systolic", Kind: schema.KindNumeric, AbsTolerance: 5},
			{Name: "a1c_values", Kind: schema.KindList},
		},
	}
}

func record(id string, fields map[string]any) core.Record {
	return core.Record{ID: id, Fields: fields}
}

func TestIdenticalSetsScorePerfect(t *testing.T) {
	records := []core.Record{
		record("1", map[string]any{
			"diabetes":        true,
			"diabetes_status": "active",
			"bp_systolic":     140.0,
			"a1c_values":      []string{"7.2%"},
		}),
		record("2", map[string]any{
			"diabetes": false,
		}),
	}

	sc := Scorer{Schema: testSchema()}
	report, err := sc.Score(records, records)
	require.NoError(t, err)
	require.Equal(t, 2, report.Scored)
	require.Empty(t, report.Coverage.OnlyGold)
	require.Empty(t, report.Coverage.OnlyExtracted)

	for _, field := range report.Fields {
		require.Equal(t, 1.0, field.Accuracy, field.Field)
		require.Equal(t, 1.0, field.Recall, field.Field)
		require.Zero(t, field.Counts.FalsePositives, field.Field)
		require.Zero(t, field.Counts.FalseNegatives, field.Field)
	}
	require.Equal(t, 1.0, report.Overall.Accuracy)
	require.Equal(t, 1.0, report.Overall.Recall)
}

func TestNumericToleranceMatch(t *testing.T) {
	extracted := []core.Record{record("1", map[string]any{"diabetes": true, "bp_systolic": 140.0})}
	gold := []core.Record{record("1", map[string]any{"diabetes": true, "bp_systolic": 138.0})}

	sc := Scorer{Schema: testSchema()}
	report, err := sc.Score(extracted, gold)
	require.NoError(t, err)

	byField := fieldsByName(report)
	require.Equal(t, 1, byField["diabetes"].Counts.TruePositives)
	require.Equal(t, 1, byField["bp_systolic"].Counts.TruePositives)
	require.Equal(t, 1.0, byField["bp_systolic"].Accuracy)
}

func TestNumericOutsideTolerance(t *testing.T) {
	extracted := []core.Record{record("1", map[string]any{"bp_systolic": 150.0})}
	gold := []core.Record{record("1", map[string]any{"bp_systolic": 138.0})}

	sc := Scorer{Schema: testSchema()}
	report, err := sc.Score(extracted, gold)
	require.NoError(t, err)

	m := fieldsByName(report)["bp_systolic"]
	require.Equal(t, 0, m.Counts.TruePositives)
	require.Equal(t, 1, m.Counts.FalsePositives)
	require.Equal(t, 1, m.Counts.FalseNegatives)
	require.Equal(t, 0.0, m.Accuracy)
}

func TestMissingExtractedValueIsFalseNegative(t *testing.T) {
	extracted := []core.Record{record("1", map[string]any{"diabetes": true})}
	gold := []core.Record{record("1", map[string]any{"diabetes": true, "bp_systolic": 130.0})}

	sc := Scorer{Schema: testSchema()}
	report, err := sc.Score(extracted, gold)
	require.NoError(t, err)

	m := fieldsByName(report)["bp_systolic"]
	require.Equal(t, 1, m.Counts.FalseNegatives)
	require.Equal(t, 0, m.Counts.FalsePositives)
	require.Equal(t, 0.0, m.Recall)
}

func TestGoldOnlyIdentifierIsUnscored(t *testing.T) {
	extracted := []core.Record{record("1", map[string]any{"diabetes": true})}
	gold := []core.Record{
		record("1", map[string]any{"diabetes": true}),
		record("2", map[string]any{"diabetes": true}),
	}

	sc := Scorer{Schema: testSchema()}
	report, err := sc.Score(extracted, gold)
	require.NoError(t, err)

	require.Equal(t, 1, report.Scored)
	require.Equal(t, []string{"2"}, report.Coverage.OnlyGold)
	// The unscored record must not leak into any denominator.
	require.Equal(t, 0, fieldsByName(report)["diabetes"].Counts.FalseNegatives)
	require.Equal(t, 1.0, report.Overall.Recall)
}

func TestExtractedOnlyIdentifierIsUnscored(t *testing.T) {
	extracted := []core.Record{
		record("1", map[string]any{"diabetes": true}),
		record("9", map[string]any{"diabetes": true}),
	}
	gold := []core.Record{record("1", map[string]any{"diabetes": true})}

	sc := Scorer{Schema: testSchema()}
	report, err := sc.Score(extracted, gold)
	require.NoError(t, err)
	require.Equal(t, []string{"9"}, report.Coverage.OnlyExtracted)
	require.Equal(t, 1, report.Scored)
}

func TestListFieldItemRecall(t *testing.T) {
	extracted := []core.Record{record("1", map[string]any{
		"a1c_values": []string{"7.2%"},
	})}
	gold := []core.Record{record("1", map[string]any{
		"a1c_values": []string{"7.2%", "8.1%"},
	})}

	sc := Scorer{Schema: testSchema()}
	report, err := sc.Score(extracted, gold)
	require.NoError(t, err)

	m := fieldsByName(report)["a1c_values"]
	require.Equal(t, 1, m.Counts.TruePositives)
	require.Equal(t, 1, m.Counts.FalseNegatives)
	require.Equal(t, 0.5, m.Recall)
	require.Equal(t, 0.0, m.Accuracy)
}

func TestListMatchingIgnoresCaseAndWhitespace(t *testing.T) {
	extracted := []core.Record{record("1", map[string]any{
		"a1c_values": []string{"  7.2%  "},
	})}
	gold := []core.Record{record("1", map[string]any{
		"a1c_values": []string{"7.2%"},
	})}

	sc := Scorer{Schema: testSchema()}
	report, err := sc.Score(extracted, gold)
	require.NoError(t, err)
	require.Equal(t, 1.0, fieldsByName(report)["a1c_values"].Accuracy)
}

func TestBothAbsentIsTrueNegative(t *testing.T) {
	extracted := []core.Record{record("1", map[string]any{})}
	gold := []core.Record{record("1", map[string]any{})}

	sc := Scorer{Schema: testSchema()}
	report, err := sc.Score(extracted, gold)
	require.NoError(t, err)

	m := fieldsByName(report)["diabetes"]
	require.Equal(t, 1, m.Counts.TrueNegatives)
	require.Equal(t, 1.0, m.Accuracy)
	require.Equal(t, 1.0, m.Recall)
}

func TestNonConformingGoldValueScoresAsAbsent(t *testing.T) {
	extracted := []core.Record{record("1", map[string]any{})}
	gold := []core.Record{record("1", map[string]any{"diabetes_status": "unknown-status"})}

	var warned bool
	sc := Scorer{Schema: testSchema(), Warn: func(recordID, field, reason string) {
		warned = true
		require.Equal(t, "1", recordID)
		require.Equal(t, "diabetes_status", field)
	}}
	report, err := sc.Score(extracted, gold)
	require.NoError(t, err)
	require.True(t, warned)
	require.Equal(t, 1, fieldsByName(report)["diabetes_status"].Counts.TrueNegatives)
}

func TestRelativeTolerance(t *testing.T) {
	s := schema.Schema{Name: "rel", Fields: []schema.Field{
		{Name: "glucose", Kind: schema.KindNumeric, RelTolerance: 0.05},
	}}
	extracted := []core.Record{record("1", map[string]any{"glucose": 104.0})}
	gold := []core.Record{record("1", map[string]any{"glucose": 100.0})}

	sc := Scorer{Schema: s}
	report, err := sc.Score(extracted, gold)
	require.NoError(t, err)
	require.Equal(t, 1.0, report.Fields[0].Accuracy)
}

func TestNumericCoercionFromUnitStrings(t *testing.T) {
	extracted := []core.Record{record("1", map[string]any{"bp_systolic": "140 mmHg"})}
	gold := []core.Record{record("1", map[string]any{"bp_systolic": 138.0})}

	sc := Scorer{Schema: testSchema()}
	report, err := sc.Score(extracted, gold)
	require.NoError(t, err)
	require.Equal(t, 1, fieldsByName(report)["bp_systolic"].Counts.TruePositives)
}

func TestFailedRecordScoresAllAbsent(t *testing.T) {
	extracted := []core.Record{core.FailedRecord("1", nil)}
	gold := []core.Record{record("1", map[string]any{"diabetes": true})}

	sc := Scorer{Schema: testSchema()}
	report, err := sc.Score(extracted, gold)
	require.NoError(t, err)
	require.Equal(t, 1, fieldsByName(report)["diabetes"].Counts.FalseNegatives)
}

func fieldsByName(report Report) map[string]FieldMetrics {
	byName := make(map[string]FieldMetrics, len(report.Fields))
	for _, field := range report.Fields {
		byName[field.Field] = field
	}
	return byName
}
