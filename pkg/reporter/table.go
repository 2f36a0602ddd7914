package reporter

import (
	"fmt"
	"io"
	"strings"

	"clinex/pkg/validate"

	"github.com/olekukonko/tablewriter"
)

type TableReporter struct {
	Writer io.Writer
}

func (r TableReporter) Report(report validate.Report) error {
	fmt.Fprintf(r.Writer, "Schema: %s | Scored records: %d\n", report.SchemaName, report.Scored)

	table := tablewriter.NewWriter(r.Writer)
	table.Header([]string{"Field", "Kind", "Compared", "TP", "TN", "FP", "FN", "Accuracy", "Recall", "Precision"})
	for _, field := range report.Fields {
		table.Append(fieldRow(field))
	}
	table.Append(fieldRow(report.Overall))
	table.Render()

	if len(report.Coverage.OnlyGold) > 0 {
		fmt.Fprintf(r.Writer, "Unscored (gold only): %s\n", strings.Join(report.Coverage.OnlyGold, ", "))
	}
	if len(report.Coverage.OnlyExtracted) > 0 {
		fmt.Fprintf(r.Writer, "Unscored (extracted only): %s\n", strings.Join(report.Coverage.OnlyExtracted, ", "))
	}
	return nil
}

func fieldRow(m validate.FieldMetrics) []string {
	return []string{
		m.Field,
		string(m.Kind),
		fmt.Sprintf("%d", m.Counts.Compared),
		fmt.Sprintf("%d", m.Counts.TruePositives),
		fmt.Sprintf("%d", m.Counts.TrueNegatives),
		fmt.Sprintf("%d", m.Counts.FalsePositives),
		fmt.Sprintf("%d", m.Counts.FalseNegatives),
		fmt.Sprintf("%.4f", m.Accuracy),
		fmt.Sprintf("%.4f", m.Recall),
		fmt.Sprintf("%.4f", m.Precision),
	}
}
