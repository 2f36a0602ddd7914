package commands

import (
	"os"

	"clinex/pkg/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available components",
		RunE: func(cmd *cobra.Command, args []string) error {
			writeList("Providers", []string{"mock", "gemini", "openai", "anthropic", "ollama"})
			writeList("Field kinds", []string{string(schema.KindBool), string(schema.KindNumeric), string(schema.KindEnum), string(schema.KindList)})
			writeList("Formats", []string{"table", "json", "markdown", "csv"})

			fields := make([]string, 0, len(schema.Default().Fields))
			for _, field := range schema.Default().Fields {
				fields = append(fields, field.Name+" ("+string(field.Kind)+")")
			}
			writeList("Default schema fields", fields)
			return nil
		},
	}
	return cmd
}

func writeList(title string, items []string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{title})
	for _, item := range items {
		table.Append([]string{item})
	}
	table.Render()
}
