package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-ledger/internal/platform/db"
)

func newMigrateCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the ledger schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dryRun {
				_, err := fmt.Fprint(cmd.OutOrStdout(), db.Schema())
				return err
			}
			e, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			if err := db.Migrate(cmd.Context(), e.pool); err != nil {
				return fmt.Errorf("applying schema: %w", err)
			}
			printSuccess(cmd.OutOrStdout(), "schema applied")
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the schema instead of applying it")

	return cmd
}
