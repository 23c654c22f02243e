package cmd

import (
	"fmt"

	pgStorage "provenance-ledger/internal/adapter/storage/postgres"

	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the ledger tables if they do not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			if err := pgStorage.Migrate(cmd.Context(), e.pool); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}
