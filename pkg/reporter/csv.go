package reporter

import (
	"encoding/csv"
	"io"
	"strconv"

	"clinex/pkg/validate"
)

type CSVReporter struct {
	Writer io.Writer
}

func (r CSVReporter) Report(report validate.Report) error {
	writer := csv.NewWriter(r.Writer)
	header := []string{"field", "kind", "compared", "true_positives", "true_negatives", "false_positives", "false_negatives", "accuracy", "recall", "precision"}
	if err := writer.Write(header); err != nil {
		return err
	}
	rows := append(append([]validate.FieldMetrics{}, report.Fields...), report.Overall)
	for _, m := range rows {
		record := []string{
			m.Field,
			string(m.Kind),
			strconv.Itoa(m.Counts.Compared),
			strconv.Itoa(m.Counts.TruePositives),
			strconv.Itoa(m.Counts.TrueNegatives),
			strconv.Itoa(m.Counts.FalsePositives),
			strconv.Itoa(m.Counts.FalseNegatives),
			strconv.FormatFloat(m.Accuracy, 'f', 4, 64),
			strconv.FormatFloat(m.Recall, 'f', 4, 64),
			strconv.FormatFloat(m.Precision, 'f', 4, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
