package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"clinex/pkg/extract"
	"clinex/pkg/reporter"
	"clinex/pkg/validate"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newValidateCommand() *cobra.Command {
	var (
		resultsPath string
		goldPath    string
		schemaPath  string
		tolerance   float64
		format      string
		outputPath  string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Score extraction results against a gold standard",
		RunE: func(cmd *cobra.Command, args []string) error {
			results := resolveString(resultsPath, appConfig.Results)
			if results == "" {
				return errors.New("results path is required")
			}
			gold := resolveString(goldPath, appConfig.Gold)
			if gold == "" {
				return errors.New("gold standard path is required")
			}

			s, err := loadSchema(schemaPath)
			if err != nil {
				return err
			}
			extracted, err := extract.ReadRecordSet(results)
			if err != nil {
				return err
			}
			goldRecords, err := extract.ReadRecordSet(gold)
			if err != nil {
				return err
			}

			defaultTolerance := tolerance
			if defaultTolerance == 0 {
				defaultTolerance = appConfig.Tolerance
			}
			scorer := validate.Scorer{
				Schema:              s,
				DefaultAbsTolerance: defaultTolerance,
				Warn: func(recordID, field, reason string) {
					logger.Warn("value does not conform to schema",
						zap.String("id", recordID),
						zap.String("field", field),
						zap.String("reason", reason),
					)
				},
			}

			report, err := scorer.Score(extracted, goldRecords)
			if err != nil {
				return err
			}
			logger.Info("validation finished",
				zap.Int("scored", report.Scored),
				zap.Int("gold_only", len(report.Coverage.OnlyGold)),
				zap.Int("extracted_only", len(report.Coverage.OnlyExtracted)),
			)

			writer := io.Writer(cmd.OutOrStdout())
			output := resolveString(outputPath, appConfig.Output)
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return err
				}
				defer file.Close()
				writer = file
			}

			rep, err := buildReporter(resolveString(format, appConfig.Format), writer)
			if err != nil {
				return err
			}
			return rep.Report(report)
		},
	}

	cmd.Flags().StringVar(&resultsPath, "results", "", "extraction results JSON")
	cmd.Flags().StringVar(&goldPath, "gold", "", "gold standard JSON")
	cmd.Flags().StringVar(&schemaPath, "schema", "", "extraction schema YAML (default built-in)")
	cmd.Flags().Float64Var(&tolerance, "tolerance", 0, "default absolute tolerance for numeric fields without one")
	cmd.Flags().StringVar(&format, "format", "", "report format (table, json, markdown, csv)")
	cmd.Flags().StringVar(&outputPath, "output", "", "write report to file instead of stdout")

	return cmd
}

func buildReporter(format string, writer io.Writer) (reporter.Reporter, error) {
	if format == "" {
		format = reporter.FormatTable
	}
	switch format {
	case reporter.FormatJSON:
		return reporter.JSONReporter{Writer: writer, Pretty: true}, nil
	case reporter.FormatTable:
		return reporter.TableReporter{Writer: writer}, nil
	case reporter.FormatMarkdown:
		return reporter.MarkdownReporter{Writer: writer}, nil
	case reporter.FormatCSV:
		return reporter.CSVReporter{Writer: writer}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}
