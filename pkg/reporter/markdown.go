package reporter

import (
	"fmt"
	"io"

	"clinex/pkg/validate"
)

type MarkdownReporter struct {
	Writer io.Writer
}

func (r MarkdownReporter) Report(report validate.Report) error {
	if _, err := fmt.Fprintf(r.Writer, "# Extraction Validation Report\n\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(r.Writer, "- Schema: %s\n- Scored records: %d\n\n", report.SchemaName, report.Scored); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(r.Writer, "## Fields\n\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(r.Writer, "| Field | Kind | Compared | TP | TN | FP | FN | Accuracy | Recall | Precision |\n|---|---|---|---|---|---|---|---|---|---|\n"); err != nil {
		return err
	}
	rows := append(append([]validate.FieldMetrics{}, report.Fields...), report.Overall)
	for _, m := range rows {
		if _, err := fmt.Fprintf(
			r.Writer,
			"| %s | %s | %d | %d | %d | %d | %d | %.4f | %.4f | %.4f |\n",
			m.Field,
			m.Kind,
			m.Counts.Compared,
			m.Counts.TruePositives,
			m.Counts.TrueNegatives,
			m.Counts.FalsePositives,
			m.Counts.FalseNegatives,
			m.Accuracy,
			m.Recall,
			m.Precision,
		); err != nil {
			return err
		}
	}

	if len(report.Coverage.OnlyGold) > 0 || len(report.Coverage.OnlyExtracted) > 0 {
		if _, err := fmt.Fprintf(r.Writer, "\n## Unscored identifiers\n\n"); err != nil {
			return err
		}
		for _, id := range report.Coverage.OnlyGold {
			if _, err := fmt.Fprintf(r.Writer, "- `%s` (gold only)\n", id); err != nil {
				return err
			}
		}
		for _, id := range report.Coverage.OnlyExtracted {
			if _, err := fmt.Fprintf(r.Writer, "- `%s` (extracted only)\n", id); err != nil {
				return err
			}
		}
	}
	return nil
}
