package reporter

import (
	"fmt"
	"io"

	"clinex/pkg/core"

	"github.com/olekukonko/tablewriter"
)

// RunSummary renders the telemetry of an extraction run.
func RunSummary(w io.Writer, report core.RunReport) {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metric", "Value"})
	table.Append([]string{"Schema", report.SchemaName})
	table.Append([]string{"Model", report.ModelName})
	table.Append([]string{"Total notes", fmt.Sprintf("%d", report.Metrics.TotalNotes)})
	table.Append([]string{"Extracted", fmt.Sprintf("%d", report.Metrics.Extracted)})
	table.Append([]string{"Failed", fmt.Sprintf("%d", report.Metrics.Failed)})
	table.Append([]string{"Total tokens", fmt.Sprintf("%d", report.Metrics.TokenUsage.TotalTokens)})
	table.Append([]string{"Avg latency", report.Metrics.AvgLatency.String()})
	table.Append([]string{"P95 latency", report.Metrics.P95Latency.String()})
	table.Render()
}
