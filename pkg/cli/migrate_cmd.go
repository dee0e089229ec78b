package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"nosql-catalog/internal/db"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations to the catalog database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd, opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			v, err := db.SchemaVersion(cmd.Context(), rt.writeDB)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{
					"database":       rt.cfg.MetaDBPath,
					"schema_version": v,
				})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s is at schema version %d\n", rt.cfg.MetaDBPath, v)
			return nil
		},
	}
}
