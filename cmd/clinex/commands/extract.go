package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"clinex/pkg/cache"
	"clinex/pkg/core"
	"clinex/pkg/extract"
	"clinex/pkg/model"
	"clinex/pkg/notes"
	"clinex/pkg/reporter"
	"clinex/pkg/runlog"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newExtractCommand() *cobra.Command {
	var (
		inputPath      string
		outputPath     string
		schemaPath     string
		provider       string
		modelName      string
		mockResponse   string
		textColumn     string
		limit          int
		workers        int
		rateLimitRPS   float64
		rateLimitBurst int
		temperature    float64
		maxTokens      int
		topP           float64
		noteTimeout    time.Duration
		runTimeout     time.Duration
		useCache       bool
		cacheDir       string
		logDir         string
		runLogFormat   string
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract structured records from filtered notes via an LLM",
		RunE: func(cmd *cobra.Command, args []string) error {
			input := resolveString(inputPath, appConfig.Filtered)
			if input == "" {
				return errors.New("input notes file is required")
			}
			output := resolveString(outputPath, appConfig.Results)
			if output == "" {
				return errors.New("output path is required")
			}
			if _, err := os.Stat(input); err != nil {
				return fmt.Errorf("filtered notes file not found: %s (run clinex filter first)", input)
			}

			s, err := loadSchema(schemaPath)
			if err != nil {
				return err
			}

			evalModel, err := buildModel(
				resolveString(provider, appConfig.Provider),
				resolveString(modelName, appConfig.Model.Name),
				resolveString(mockResponse, appConfig.Model.MockResponse),
			)
			if err != nil {
				return err
			}
			if useCache {
				ttl := time.Duration(appConfig.Cache.TTLHours) * time.Hour
				store, err := cache.New(resolveString(cacheDir, appConfig.Cache.Dir), ttl)
				if err != nil {
					return err
				}
				evalModel = model.CachedModel{Model: evalModel, Cache: store}
			}

			var rateLimiter core.RateLimiter
			if rateLimitRPS > 0 {
				limiter, err := core.NewRateLimiter(rateLimitRPS, rateLimitBurst)
				if err != nil {
					return err
				}
				rateLimiter = limiter
			}

			source := notes.NewSource(input)
			source.TextColumn = resolveString(textColumn, appConfig.TextColumn)
			source.Limit = limit
			source.Warn = func(row int, reason string) {
				logger.Warn("skipping row", zap.Int("row", row), zap.String("reason", reason))
			}

			progress := newProgressBar(progressWriter(cmd))
			runner := extract.Runner{
				Model:       evalModel,
				Schema:      s,
				Options:     core.GenerateOptions{Temperature: float32(temperature), MaxTokens: maxTokens, TopP: float32(topP)},
				Workers:     resolveInt(workers, appConfig.Workers, 1),
				NoteTimeout: noteTimeout,
				RateLimiter: rateLimiter,
				Progress:    progress.Update,
				Warn: func(noteID string, issue extract.FieldIssue) {
					logger.Warn("schema mismatch in reply",
						zap.String("id", noteID),
						zap.String("field", issue.Field),
						zap.String("reason", issue.Reason),
					)
				},
			}

			ctx := cmd.Context()
			if runTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, runTimeout)
				defer cancel()
			}

			report, err := runner.Run(ctx, source)
			if err != nil {
				return err
			}
			progress.Finish()

			if err := extract.WriteRecordSet(output, report.Records()); err != nil {
				return err
			}
			logger.Info("wrote extraction results",
				zap.Int("records", len(report.Results)),
				zap.Int("failed", report.Metrics.Failed),
				zap.String("output", output),
			)
			for _, result := range report.Results {
				if result.Record.Failed() {
					logger.Warn("extraction failed",
						zap.String("id", result.Record.ID),
						zap.String("error", result.Record.Error),
					)
				}
			}
			reporter.RunSummary(cmd.OutOrStdout(), report)

			if runLogFormat != "none" {
				dir := resolveString(logDir, appConfig.LogDir)
				if dir == "" {
					dir = "./logs"
				}
				path, err := runlog.Write(dir, runlog.FromReport(report), report)
				if err != nil {
					return err
				}
				logger.Info("wrote run log", zap.String("path", path))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "filtered notes CSV")
	cmd.Flags().StringVar(&outputPath, "output", "", "extraction results JSON path")
	cmd.Flags().StringVar(&schemaPath, "schema", "", "extraction schema YAML (default built-in)")
	cmd.Flags().StringVar(&provider, "provider", "", "model provider (mock, gemini, openai, anthropic, ollama)")
	cmd.Flags().StringVar(&modelName, "model", "", "model name override")
	cmd.Flags().StringVar(&mockResponse, "mock-response", "", "fixed mock reply")
	cmd.Flags().StringVar(&textColumn, "text-column", "", "free-text column name (default text)")
	cmd.Flags().IntVar(&limit, "limit", 0, "process only the first N notes (0 = all)")
	cmd.Flags().IntVar(&workers, "workers", 0, "number of concurrent extraction workers")
	cmd.Flags().Float64Var(&rateLimitRPS, "rate-limit-rps", 0, "max requests per second (0 = unlimited)")
	cmd.Flags().IntVar(&rateLimitBurst, "rate-limit-burst", 1, "rate limit burst size")
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "model temperature (0 = provider default)")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "max completion tokens (0 = provider default)")
	cmd.Flags().Float64Var(&topP, "top-p", 0, "nucleus sampling top-p (0 = default)")
	cmd.Flags().DurationVar(&noteTimeout, "note-timeout", 90*time.Second, "per-note timeout")
	cmd.Flags().DurationVar(&runTimeout, "run-timeout", 0, "whole-run timeout; remaining notes are marked failed (0 = none)")
	cmd.Flags().BoolVar(&useCache, "cache", false, "cache model responses")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "response cache directory")
	cmd.Flags().StringVar(&logDir, "log-dir", "", "directory for run log archives")
	cmd.Flags().StringVar(&runLogFormat, "run-log", "zip", "run log format (zip, none)")

	return cmd
}

func buildModel(provider, modelName, mockResponse string) (core.Model, error) {
	if provider == "" {
		provider = "mock"
	}
	switch provider {
	case "mock":
		return model.MockModel{
			NameValue:    resolveString(modelName, "mock"),
			ResponseText: mockResponse,
		}, nil
	case "gemini":
		geminiModel, err := model.NewGeminiModelFromEnv(resolveString(modelName, appConfig.Gemini.Model))
		if err != nil {
			return nil, err
		}
		applyProviderConfig(appConfig.Gemini, &geminiModel.Timeout, &geminiModel.MaxRetries, &geminiModel.Backoff)
		return geminiModel, nil
	case "openai":
		openaiModel, err := model.NewOpenAIModelFromEnv(resolveString(modelName, appConfig.OpenAI.Model))
		if err != nil {
			return nil, err
		}
		applyProviderConfig(appConfig.OpenAI, &openaiModel.Timeout, &openaiModel.MaxRetries, &openaiModel.Backoff)
		return openaiModel, nil
	case "anthropic":
		anthropicModel, err := model.NewAnthropicModelFromEnv(resolveString(modelName, appConfig.Anthropic.Model))
		if err != nil {
			return nil, err
		}
		cfg := appConfig.Anthropic
		applyProviderConfig(ProviderConfig{
			TimeoutSeconds: cfg.TimeoutSeconds,
			MaxRetries:     cfg.MaxRetries,
			BackoffMillis:  cfg.BackoffMillis,
		}, &anthropicModel.Timeout, &anthropicModel.MaxRetries, &anthropicModel.Backoff)
		if cfg.MaxTokens > 0 {
			anthropicModel.MaxTokens = cfg.MaxTokens
		}
		return anthropicModel, nil
	case "ollama":
		return model.NewOllamaModel(appConfig.Ollama.BaseURL, resolveString(modelName, appConfig.Ollama.Model))
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}

func applyProviderConfig(cfg ProviderConfig, timeout *time.Duration, maxRetries *int, backoff *time.Duration) {
	if cfg.TimeoutSeconds > 0 {
		*timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if cfg.MaxRetries > 0 {
		*maxRetries = cfg.MaxRetries
	}
	if cfg.BackoffMillis > 0 {
		*backoff = time.Duration(cfg.BackoffMillis) * time.Millisecond
	}
}
