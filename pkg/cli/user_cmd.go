package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newUserCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage API users",
	}
	cmd.AddCommand(newUserAddCmd(opts))
	return cmd
}

func newUserAddCmd(opts *rootOptions) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a user who can log in to the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("CATALOG_USER_PASSWORD")
			}

			rt, err := openRuntime(cmd, opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			a, err := rt.app(cmd.Context())
			if err != nil {
				return err
			}
			u, err := a.Services.Auth.Register(cmd.Context(), email, password)
			if err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{
					"id":         u.ID,
					"email":      u.Name,
					"created_at": u.CreatedAt,
				})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created user %s\n", u.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Login email (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password (default env CATALOG_USER_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
