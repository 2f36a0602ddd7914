package commands

import (
	"errors"

	"clinex/pkg/notes"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newFilterCommand() *cobra.Command {
	var (
		inputPath  string
		outputPath string
		keywords   []string
		textColumn string
	)

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Filter discharge notes by clinical keywords",
		RunE: func(cmd *cobra.Command, args []string) error {
			input := resolveString(inputPath, appConfig.Notes)
			if input == "" {
				return errors.New("input notes file is required")
			}
			output := resolveString(outputPath, appConfig.Filtered)
			if output == "" {
				return errors.New("output path is required")
			}
			keywordSet := keywords
			if len(keywordSet) == 0 {
				keywordSet = appConfig.Keywords
			}
			if len(keywordSet) == 0 {
				return errors.New("at least one keyword is required")
			}

			filter := notes.Filter{
				TextColumn: resolveString(textColumn, appConfig.TextColumn),
				Matcher:    notes.NewMatcher(keywordSet),
				Warn: func(row int, reason string) {
					logger.Warn("skipping row", zap.Int("row", row), zap.String("reason", reason))
				},
				Progress: func(stats notes.FilterStats) {
					logger.Info("filter progress",
						zap.Int("scanned", stats.Scanned),
						zap.Int("matched", stats.Matched),
					)
				},
			}

			logger.Info("starting filtered read",
				zap.String("input", input),
				zap.Strings("keywords", keywordSet),
			)
			stats, err := filter.Run(cmd.Context(), input, output)
			if err != nil {
				return err
			}
			logger.Info("filter finished",
				zap.Int("scanned", stats.Scanned),
				zap.Int("matched", stats.Matched),
				zap.Int("skipped", stats.Skipped),
				zap.String("output", output),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "notes CSV, optionally gzip-compressed (.gz)")
	cmd.Flags().StringVar(&outputPath, "output", "", "filtered notes CSV path")
	cmd.Flags().StringSliceVar(&keywords, "keywords", nil, "keywords to match, case-insensitive")
	cmd.Flags().StringVar(&textColumn, "text-column", "", "free-text column name (default text)")

	return cmd
}
