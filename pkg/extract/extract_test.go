package extract

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"clinex/pkg/core"
	"clinex/pkg/model"
	"clinex/pkg/notes"
	"clinex/pkg/schema"

	"github.com/stretchr/testify/require"
)

func testSchema() schema.Schema {
	return schema.Schema{
		Name: "test",
		Fields: []schema.Field{
			{Name: "diabetes", Kind: schema.KindBool},
			{Name: "bp_systolic", Kind: schema.KindNumeric, AbsTolerance: 5},
			{Name: "a1c_values", Kind: schema.KindList},
		},
	}
}

// scriptedModel answers based on the note text embedded in the prompt.
type scriptedModel struct {
	replies map[string]string
	failFor string
}

func (s scriptedModel) Name() string { return "scripted" }

func (s scriptedModel) Generate(_ context.Context, prompt string, _ core.GenerateOptions) (core.Response, error) {
	if s.failFor != "" && strings.Contains(prompt, s.failFor) {
		return core.Response{}, errors.New("provider unavailable")
	}
	for marker, reply := range s.replies {
		if strings.Contains(prompt, marker) {
			return core.Response{Content: reply, Latency: time.Millisecond}, nil
		}
	}
	return core.Response{Content: "{}", Latency: time.Millisecond}, nil
}

func TestParseRecordPlainJSON(t *testing.T) {
	content := `{"id":"1","diabetes":true,"bp_systolic":140,"a1c_values":["7.2%"]}`
	record, issues, err := ParseRecord("1", content, testSchema())
	require.NoError(t, err)
	require.Empty(t, issues)
	require.Equal(t, "1", record.ID)
	require.Equal(t, true, record.Fields["diabetes"])
	require.Equal(t, 140.0, record.Fields["bp_systolic"])
	require.Equal(t, []string{"7.2%"}, record.Fields["a1c_values"])
}

func TestParseRecordStripsCodeFences(t *testing.T) {
	content := "Here you go:\n```json\n{\"diabetes\": false}\n```\n"
	record, _, err := ParseRecord("1", content, testSchema())
	require.NoError(t, err)
	require.Equal(t, false, record.Fields["diabetes"])
}

func TestParseRecordKeepsNoteID(t *testing.T) {
	record, _, err := ParseRecord("42", `{"id":"999","diabetes":true}`, testSchema())
	require.NoError(t, err)
	require.Equal(t, "42", record.ID)
}

func TestParseRecordNullAndEmptyAreAbsent(t *testing.T) {
	content := `{"diabetes":null,"bp_systolic":"","a1c_values":[]}`
	record, issues, err := ParseRecord("1", content, testSchema())
	require.NoError(t, err)
	require.Empty(t, issues)
	require.Empty(t, record.Fields)
}

func TestParseRecordSchemaMismatchBecomesIssue(t *testing.T) {
	content := `{"diabetes":"sometimes","bp_systolic":120}`
	record, issues, err := ParseRecord("1", content, testSchema())
	require.NoError(t, err)
	require.Len(t, issues, 1)
	require.Equal(t, "diabetes", issues[0].Field)
	_, present := record.Value("diabetes")
	require.False(t, present)
	require.Equal(t, 120.0, record.Fields["bp_systolic"])
}

func TestParseRecordInvalidJSON(t *testing.T) {
	_, _, err := ParseRecord("1", "I could not find any data.", testSchema())
	require.Error(t, err)
}

func TestRunnerOneRecordPerNoteInInputOrder(t *testing.T) {
	source := notes.NewSliceSource([]notes.Note{
		{ID: "1", Text: "note alpha"},
		{ID: "2", Text: "note beta"},
		{ID: "3", Text: "note gamma"},
	})
	runner := Runner{
		Model: scriptedModel{replies: map[string]string{
			"note alpha": `{"diabetes":true}`,
			"note beta":  `{"diabetes":false}`,
			"note gamma": `{"bp_systolic":118}`,
		}},
		Schema:  testSchema(),
		Workers: 3,
	}

	report, err := runner.Run(context.Background(), source)
	require.NoError(t, err)
	require.Len(t, report.Results, 3)

	ids := make([]string, 0, 3)
	for _, result := range report.Results {
		ids = append(ids, result.Record.ID)
	}
	require.Equal(t, []string{"1", "2", "3"}, ids)
	require.Equal(t, 3, report.Metrics.Extracted)
}

func TestRunnerIsolatesFailures(t *testing.T) {
	source := notes.NewSliceSource([]notes.Note{
		{ID: "1", Text: "good note"},
		{ID: "2", Text: "broken note"},
		{ID: "3", Text: "another good note"},
	})
	runner := Runner{
		Model: scriptedModel{
			replies: map[string]string{
				"good note": `{"diabetes":true}`,
			},
			failFor: "broken note",
		},
		Schema:  testSchema(),
		Workers: 2,
	}

	report, err := runner.Run(context.Background(), source)
	require.NoError(t, err)
	require.Len(t, report.Results, 3)

	failed := report.Results[1].Record
	require.True(t, failed.Failed())
	require.Equal(t, "2", failed.ID)
	require.Empty(t, failed.Fields)
	require.Equal(t, 1, report.Metrics.Failed)
	require.Equal(t, 2, report.Metrics.Extracted)
}

func TestRunnerMalformedReplyBecomesErrorRecord(t *testing.T) {
	source := notes.NewSliceSource([]notes.Note{{ID: "1", Text: "the note"}})
	runner := Runner{
		Model:  model.MockModel{ResponseText: "not json at all"},
		Schema: testSchema(),
	}

	report, err := runner.Run(context.Background(), source)
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	require.True(t, report.Results[0].Record.Failed())
}

func TestRunnerCancelledRunMarksNotesFailed(t *testing.T) {
	source := notes.NewSliceSource([]notes.Note{
		{ID: "1", Text: "one"},
		{ID: "2", Text: "two"},
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := Runner{Model: model.MockModel{}, Schema: testSchema()}
	report, err := runner.Run(ctx, source)
	if err != nil {
		// The source may refuse to stream at all under an already-cancelled
		// context; that is a whole-run error, not a silent drop.
		require.ErrorIs(t, err, context.Canceled)
		return
	}
	require.Len(t, report.Results, 2)
	for _, result := range report.Results {
		require.True(t, result.Record.Failed())
	}
}

func TestRunnerSchemaMismatchWarns(t *testing.T) {
	source := notes.NewSliceSource([]notes.Note{{ID: "1", Text: "the note"}})
	var warned []FieldIssue
	runner := Runner{
		Model:  model.MockModel{ResponseText: `{"diabetes":"maybe"}`},
		Schema: testSchema(),
		Warn: func(noteID string, issue FieldIssue) {
			require.Equal(t, "1", noteID)
			warned = append(warned, issue)
		},
	}

	report, err := runner.Run(context.Background(), source)
	require.NoError(t, err)
	require.Len(t, warned, 1)
	require.False(t, report.Results[0].Record.Failed())
}

func TestWriteReadRecordSetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/results.json"
	records := []core.Record{
		{ID: "1", Fields: map[string]any{"diabetes": true, "bp_systolic": 140.0}},
		{ID: "2", Fields: map[string]any{}, Error: "provider unavailable"},
	}

	require.NoError(t, WriteRecordSet(path, records))
	loaded, err := ReadRecordSet(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	require.Equal(t, "1", loaded[0].ID)
	require.Equal(t, true, loaded[0].Fields["diabetes"])
	require.Equal(t, "provider unavailable", loaded[1].Error)
}

func TestBuildPromptContainsSchemaAndNote(t *testing.T) {
	prompt := BuildPrompt(notes.Note{ID: "7", Text: "pt with diabetes"}, testSchema())
	require.Contains(t, prompt, "pt with diabetes")
	require.Contains(t, prompt, "id to use: 7")
	require.Contains(t, prompt, `"bp_systolic": null`)
	require.Contains(t, prompt, `"a1c_values": []`)
}
