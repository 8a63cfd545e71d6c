// Package cli implements the ledgerctl operator commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-ledger/internal/app"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/db"
)

// NewRootCommand creates the root command with all subcommands registered.
func NewRootCommand(out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Operator tooling for the double-entry ledger",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.SetOut(out)

	rootCmd.AddCommand(newMigrateCommand())
	rootCmd.AddCommand(newReportCommand())
	rootCmd.AddCommand(newJobsCommand())
	rootCmd.AddCommand(newSeedCommand())

	return rootCmd
}

// env is what every command needs once configuration has been read.
type env struct {
	cfg    *app.Config
	logger *slog.Logger
	pool   *pgxpool.Pool
}

func connect(ctx context.Context) (*env, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		return nil, fmt.Errorf("connecting database: %w", err)
	}
	return &env{cfg: cfg, logger: app.NewLogger(cfg), pool: pool}, nil
}

func (e *env) Close() {
	e.pool.Close()
}
