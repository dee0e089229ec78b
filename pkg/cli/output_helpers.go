package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"nosql-catalog/internal/domain"
)

// getOutputFormat returns the effective output format from the root command's persistent flags.
func getOutputFormat(cmd *cobra.Command) string {
	v, _ := cmd.Root().PersistentFlags().GetString("output")
	return v
}

func validateOutputFormat(output string) error {
	if output != "" && output != "table" && output != "json" {
		return fmt.Errorf("unsupported output format %q: use 'table' or 'json'", output)
	}
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printSummary writes an import summary as a two-column table.
func printSummary(w io.Writer, s *domain.ImportSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := []struct {
		label string
		n     int
	}{
		{"total", s.Total},
		{"skipped", s.Skipped},
		{"inserted", s.Inserted},
		{"updated", s.Updated},
		{"unchanged", s.Unchanged},
		{"deleted", s.Deleted},
		{"failed", s.Failed},
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%d\n", r.label, r.n); err != nil {
			return err
		}
	}
	return tw.Flush()
}
