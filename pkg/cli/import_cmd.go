package cli

import (
	"github.com/spf13/cobra"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Reconcile the catalog against a CSV export",
		Long: "Reconcile the catalog against a CSV export. The file is authoritative:\n" +
			"new columns are inserted, changed ones updated, and columns missing\n" +
			"from the file are marked deleted.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd, opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			a, err := rt.app(cmd.Context())
			if err != nil {
				return err
			}
			if actor == "" {
				actor = rt.cfg.Import.Actor
			}

			summary, err := a.Services.Ingestion.ImportFile(cmd.Context(), actor, args[0])
			if err != nil {
				return err
			}
			if _, err := a.Services.Catalog.SeedTableDescriptions(cmd.Context()); err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), summary)
			}
			return printSummary(cmd.OutOrStdout(), summary)
		},
	}
	cmd.Flags().StringVar(&actor, "actor", "", "Audit actor recorded for changes (default IMPORT_ACTOR)")
	return cmd
}
