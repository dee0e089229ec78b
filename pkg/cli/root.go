// Package cli implements the nosqlcatalog command-line interface.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"nosql-catalog/internal/app"
	"nosql-catalog/internal/config"
	"nosql-catalog/internal/db"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

type rootOptions struct {
	configPath string
	dbPath     string
	envFile    string
	output     string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "nosqlcatalog",
		Short:         "NoSQL schema metadata catalog",
		Long:          "Serve and manage a metadata catalog of NoSQL keyspaces, tables and columns.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutputFormat(opts.output); err != nil {
				return err
			}
			if !cmd.Flags().Changed("config") {
				if v := os.Getenv("CONFIG_FILE"); v != "" {
					opts.configPath = v
				}
			}
			return config.LoadDotEnv(opts.envFile)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file (env CONFIG_FILE)")
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Override META_DB_PATH")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Path to a .env file; a missing file is ignored")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "table", "Output format (table, json)")

	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newMigrateCmd(opts))
	rootCmd.AddCommand(newImportCmd(opts))
	rootCmd.AddCommand(newUserCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// runtime is the opened state shared by commands that touch the catalog.
type runtime struct {
	cfg     *config.Config
	logger  *slog.Logger
	writeDB *sql.DB
	readDB  *sql.DB
}

// openRuntime loads configuration, sets up logging, opens the catalog
// database and applies pending migrations.
func openRuntime(cmd *cobra.Command, opts *rootOptions) (*runtime, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	overrideFromFlags(cmd.Flags(), cfg)

	logger := newLogger(cmd.ErrOrStderr(), cfg.SlogLevel())
	slog.SetDefault(logger)
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	writeDB, readDB, err := db.OpenSQLitePair(cfg.MetaDBPath, 0)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(writeDB); err != nil {
		_ = readDB.Close()
		_ = writeDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &runtime{cfg: cfg, logger: logger, writeDB: writeDB, readDB: readDB}, nil
}

// overrideFromFlags applies explicitly set flags on top of the loaded config.
func overrideFromFlags(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("db") {
		cfg.MetaDBPath, _ = fs.GetString("db")
	}
	if f := fs.Lookup("listen"); f != nil && f.Changed {
		cfg.ListenAddr = f.Value.String()
	}
}

func (r *runtime) app(ctx context.Context) (*app.App, error) {
	return app.New(ctx, app.Deps{
		Cfg:     r.cfg,
		WriteDB: r.writeDB,
		ReadDB:  r.readDB,
		Logger:  r.logger,
	})
}

func (r *runtime) Close() {
	_ = r.readDB.Close()
	_ = r.writeDB.Close()
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
