package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecordMarshalsFlat(t *testing.T) {
	record := Record{
		ID:     "12345",
		Fields: map[string]any{"diabetes": true, "bp_systolic": 140.0},
	}

	data, err := json.Marshal(record)
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(data, &flat))
	require.Equal(t, "12345", flat["id"])
	require.Equal(t, true, flat["diabetes"])
	require.Equal(t, 140.0, flat["bp_systolic"])
	require.NotContains(t, flat, "fields")
	require.NotContains(t, flat, "error")
}

func TestRecordMarshalIncludesErrorFlag(t *testing.T) {
	data, err := json.Marshal(FailedRecord("7", errors.New("timed out")))
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(data, &flat))
	require.Equal(t, "7", flat["id"])
	require.Equal(t, "timed out", flat["error"])
}

func TestRecordUnmarshalsFlatShape(t *testing.T) {
	var record Record
	require.NoError(t, json.Unmarshal([]byte(`{"id":"9","diabetes":false,"a1c_values":["7.2%"]}`), &record))
	require.Equal(t, "9", record.ID)
	require.Equal(t, false, record.Fields["diabetes"])
	require.NotContains(t, record.Fields, "id")
}

func TestRecordUnmarshalsNestedShape(t *testing.T) {
	var record Record
	require.NoError(t, json.Unmarshal([]byte(`{"id":"9","fields":{"diabetes":true}}`), &record))
	require.Equal(t, "9", record.ID)
	require.Equal(t, true, record.Fields["diabetes"])
}

func TestRecordUnmarshalsNumericID(t *testing.T) {
	var record Record
	require.NoError(t, json.Unmarshal([]byte(`{"id":10045,"diabetes":true}`), &record))
	require.Equal(t, "10045", record.ID)
}

func TestRecordValueAbsentSemantics(t *testing.T) {
	record := Record{ID: "1", Fields: map[string]any{
		"present": "active",
		"blank":   "  ",
		"nothing": nil,
		"empty":   []string{},
	}}

	value, ok := record.Value("present")
	require.True(t, ok)
	require.Equal(t, "active", value)

	for _, name := range []string{"blank", "nothing", "empty", "missing"} {
		_, ok := record.Value(name)
		require.False(t, ok, name)
	}
}

func TestCalculateRunMetrics(t *testing.T) {
	results := []ExtractResult{
		{
			Record:   Record{ID: "1", Fields: map[string]any{"diabetes": true}},
			Response: Response{Latency: 100 * time.Millisecond, TokenUsage: TokenUsage{TotalTokens: 50}},
		},
		{
			Record:   Record{ID: "2", Fields: map[string]any{}},
			Response: Response{Latency: 300 * time.Millisecond, TokenUsage: TokenUsage{TotalTokens: 70}},
		},
		{
			Record: FailedRecord("3", errors.New("rate limited")),
		},
	}

	metrics := CalculateRunMetrics(results)
	require.Equal(t, 3, metrics.TotalNotes)
	require.Equal(t, 2, metrics.Extracted)
	require.Equal(t, 1, metrics.Failed)
	require.Equal(t, 120, metrics.TokenUsage.TotalTokens)
	require.Equal(t, 200*time.Millisecond, metrics.AvgLatency)
	require.Equal(t, 200*time.Millisecond, metrics.P50Latency)
}
