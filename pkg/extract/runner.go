package extract

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"clinex/pkg/core"
	"clinex/pkg/notes"
	"clinex/pkg/schema"
)

// NoteSource streams notes for extraction.
type NoteSource interface {
	Notes(ctx context.Context) (<-chan notes.Note, <-chan error)
}

// Runner fans notes out to a worker pool and produces one record per note.
// Calls are independent; a failed call yields an error-flagged record instead
// of aborting the run. Records come back in input order regardless of
// completion order.
type Runner struct {
	Model       core.Model
	Schema      schema.Schema
	Options     core.GenerateOptions
	Workers     int
	NoteTimeout time.Duration
	RateLimiter core.RateLimiter

	// Progress is called after each completed note. Optional.
	Progress func(completed, total int)
	// Warn is called for schema mismatches in model replies. Optional.
	Warn func(noteID string, issue FieldIssue)
}

type indexedNote struct {
	index int
	note  notes.Note
}

type indexedResult struct {
	index  int
	result core.ExtractResult
}

// Run extracts records for every note in the source. The source is drained
// before dispatch so that a run-level cancellation still yields a failed
// record for every remaining note rather than silently dropping it.
func (r *Runner) Run(ctx context.Context, source NoteSource) (core.RunReport, error) {
	if r.Model == nil {
		return core.RunReport{}, errors.New("extract: model is required")
	}
	if err := r.Schema.Validate(); err != nil {
		return core.RunReport{}, err
	}

	collected, err := collectNotes(ctx, source)
	if err != nil {
		return core.RunReport{}, err
	}

	workers := r.Workers
	if workers <= 0 {
		workers = 1
	}

	started := time.Now()
	taskCh := make(chan indexedNote)
	resultCh := make(chan indexedResult, workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for task := range taskCh {
				resultCh <- indexedResult{task.index, r.extractNote(ctx, task.note)}
			}
		}()
	}

	go func() {
		for i, note := range collected {
			taskCh <- indexedNote{i, note}
		}
		close(taskCh)
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]core.ExtractResult, 0, len(collected))
	indexes := make([]int, 0, len(collected))
	for item := range resultCh {
		results = append(results, item.result)
		indexes = append(indexes, item.index)
		if r.Progress != nil {
			r.Progress(len(results), len(collected))
		}
	}
	sort.Sort(&byIndex{indexes, results})

	return core.RunReport{
		SchemaName: r.Schema.Name,
		ModelName:  r.Model.Name(),
		Metrics:    core.CalculateRunMetrics(results),
		Results:    results,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}, nil
}

func (r *Runner) extractNote(ctx context.Context, note notes.Note) core.ExtractResult {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return failedResult(note.ID, err, start)
	}
	if r.RateLimiter != nil {
		if err := r.RateLimiter.Wait(ctx); err != nil {
			return failedResult(note.ID, err, start)
		}
	}

	noteCtx := ctx
	if r.NoteTimeout > 0 {
		var cancel context.CancelFunc
		noteCtx, cancel = context.WithTimeout(ctx, r.NoteTimeout)
		defer cancel()
	}

	opts := r.Options
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = SystemPrompt
	}
	response, err := r.Model.Generate(noteCtx, BuildPrompt(note, r.Schema), opts)
	if err != nil {
		return failedResult(note.ID, err, start)
	}

	record, issues, err := ParseRecord(note.ID, response.Content, r.Schema)
	if err != nil {
		return core.ExtractResult{
			Record:   core.FailedRecord(note.ID, err),
			Response: response,
			Duration: time.Since(start),
		}
	}
	if r.Warn != nil {
		for _, issue := range issues {
			r.Warn(note.ID, issue)
		}
	}
	return core.ExtractResult{
		Record:   record,
		Response: response,
		Duration: time.Since(start),
	}
}

func failedResult(id string, err error, start time.Time) core.ExtractResult {
	return core.ExtractResult{
		Record:   core.FailedRecord(id, err),
		Duration: time.Since(start),
	}
}

func collectNotes(ctx context.Context, source NoteSource) ([]notes.Note, error) {
	noteCh, errCh := source.Notes(ctx)
	var collected []notes.Note
	for note := range noteCh {
		collected = append(collected, note)
	}
	for err := range errCh {
		if err != nil {
			return nil, err
		}
	}
	return collected, nil
}

type byIndex struct {
	indexes []int
	results []core.ExtractResult
}

func (b *byIndex) Len() int           { return len(b.indexes) }
func (b *byIndex) Less(i, j int) bool { return b.indexes[i] < b.indexes[j] }
func (b *byIndex) Swap(i, j int) {
	b.indexes[i], b.indexes[j] = b.indexes[j], b.indexes[i]
	b.results[i], b.results[j] = b.results[j], b.results[i]
}
