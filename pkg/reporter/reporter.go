package reporter

import "clinex/pkg/validate"

// Reporter writes a validation report.
type Reporter interface {
	Report(report validate.Report) error
}

const (
	FormatJSON     = "json"
	FormatTable    = "table"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
)
