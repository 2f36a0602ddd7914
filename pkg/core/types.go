package core

import (
	"math"
	"sort"
	"time"
)

// Response is a model response plus basic telemetry.
type Response struct {
	Content    string        `json:"content" yaml:"content"`
	TokenUsage TokenUsage    `json:"token_usage" yaml:"token_usage"`
	Latency    time.Duration `json:"latency" yaml:"latency"`
}

// TokenUsage captures token accounting for a request.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens" yaml:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens" yaml:"completion_tokens"`
	TotalTokens      int `json:"total_tokens" yaml:"total_tokens"`
}

// GenerateOptions controls model generation behavior.
type GenerateOptions struct {
	Temperature  float32  `json:"temperature" yaml:"temperature"`
	MaxTokens    int      `json:"max_tokens" yaml:"max_tokens"`
	TopP         float32  `json:"top_p" yaml:"top_p"`
	Stop         []string `json:"stop" yaml:"stop"`
	SystemPrompt string   `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`
}

// ExtractResult captures the outcome for one note.
type ExtractResult struct {
	Record   Record        `json:"record"`
	Response Response      `json:"response"`
	Duration time.Duration `json:"duration"`
}

// RunReport summarizes an extraction run.
type RunReport struct {
	SchemaName string          `json:"schema_name"`
	ModelName  string          `json:"model_name"`
	Metrics    RunMetrics      `json:"metrics"`
	Results    []ExtractResult `json:"results"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
}

// Records returns the extracted records in result order.
func (r RunReport) Records() []Record {
	records := make([]Record, 0, len(r.Results))
	for _, result := range r.Results {
		records = append(records, result.Record)
	}
	return records
}

// RunMetrics aggregates extraction run statistics.
type RunMetrics struct {
	TotalNotes int           `json:"total_notes"`
	Extracted  int           `json:"extracted"`
	Failed     int           `json:"failed"`
	TokenUsage TokenUsage    `json:"token_usage"`
	AvgLatency time.Duration `json:"avg_latency"`
	P50Latency time.Duration `json:"p50_latency"`
	P95Latency time.Duration `json:"p95_latency"`
	P99Latency time.Duration `json:"p99_latency"`
}

// CalculateRunMetrics aggregates telemetry across per-note results.
func CalculateRunMetrics(results []ExtractResult) RunMetrics {
	if len(results) == 0 {
		return RunMetrics{}
	}

	latencies := make([]time.Duration, 0, len(results))
	var failed int
	var totalTokens TokenUsage

	for _, result := range results {
		if result.Record.Error != "" {
			failed++
		} else {
			latencies = append(latencies, result.Response.Latency)
		}
		totalTokens.PromptTokens += result.Response.TokenUsage.PromptTokens
		totalTokens.CompletionTokens += result.Response.TokenUsage.CompletionTokens
		totalTokens.TotalTokens += result.Response.TokenUsage.TotalTokens
	}

	return RunMetrics{
		TotalNotes: len(results),
		Extracted:  len(results) - failed,
		Failed:     failed,
		TokenUsage: totalTokens,
		AvgLatency: averageDuration(latencies),
		P50Latency: percentileDuration(latencies, 0.50),
		P95Latency: percentileDuration(latencies, 0.95),
		P99Latency: percentileDuration(latencies, 0.99),
	}
}

func averageDuration(values []time.Duration) time.Duration {
	if len(values) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range values {
		sum += v
	}
	return time.Duration(int64(sum) / int64(len(values)))
}

func percentileDuration(values []time.Duration, p float64) time.Duration {
	if len(values) == 0 {
		return 0
	}
	copied := make([]time.Duration, len(values))
	copy(copied, values)
	sort.Slice(copied, func(i, j int) bool { return copied[i] < copied[j] })

	if p <= 0 {
		return copied[0]
	}
	if p >= 1 {
		return copied[len(copied)-1]
	}

	index := p * float64(len(copied)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return copied[lower]
	}
	weight := index - float64(lower)
	lowerVal := float64(copied[lower])
	upperVal := float64(copied[upper])
	return time.Duration(lowerVal*(1-weight) + upperVal*weight)
}
