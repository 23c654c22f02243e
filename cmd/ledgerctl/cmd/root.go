// Package cmd implements ledgerctl, the operator CLI for the provenance ledger.
package cmd

import (
	"context"
	"fmt"
	"os"

	"provenance-ledger/config"
	pgStorage "provenance-ledger/internal/adapter/storage/postgres"
	"provenance-ledger/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Inspect and maintain the provenance ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to the config file.")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level written to stderr.")

	root.AddCommand(
		newVerifyCmd(opts),
		newKeyCmd(opts),
		newHashCmd(),
		newMigrateCmd(opts),
	)
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// env is what the database-backed commands share.
type env struct {
	cfg  *config.Config
	pool *pgxpool.Pool
	log  zerolog.Logger
}

func (o *rootOptions) connect(ctx context.Context) (*env, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.NewWithWriter(o.logLevel, os.Stderr)

	// Schema changes only happen through the migrate command.
	dbCfg := cfg.Database
	dbCfg.AutoMigrate = false

	pool, err := pgStorage.NewPool(ctx, dbCfg, log)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, pool: pool, log: log}, nil
}

func (e *env) Close() {
	e.pool.Close()
}
