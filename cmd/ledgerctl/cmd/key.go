package cmd

import (
	"fmt"
	"time"

	pgStorage "provenance-ledger/internal/adapter/storage/postgres"
	"provenance-ledger/internal/service"

	"github.com/spf13/cobra"
)

func newKeyCmd(opts *rootOptions) *cobra.Command {
	keyCmd := &cobra.Command{
		Use:   "key",
		Short: "Tag key epoch operations",
	}

	keyCmd.AddCommand(&cobra.Command{
		Use:   "current",
		Short: "Print the active key version, rotating first if the epoch has expired",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			e, err := opts.connect(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			wrapper, err := service.NewMasterKeyWrapper(e.cfg.Keys.MasterKey)
			if err != nil {
				return err
			}
			epochs := pgStorage.NewKeyEpochRepo(e.pool)
			audit := service.NewAuditService(pgStorage.NewAuditRepo(e.pool), e.log)
			custodian := service.NewKeyCustodian(epochs, wrapper, e.cfg.Keys.RotationMonths, time.Now, audit, e.log)

			active, err := custodian.CurrentKey(ctx)
			if err != nil {
				return err
			}
			epoch, err := epochs.GetByVersion(ctx, active.Version)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "version:     %s\n", active.Version)
			if epoch != nil {
				fmt.Fprintf(out, "active_from: %s\n", epoch.ActiveFrom.UTC().Format(time.RFC3339))
				fmt.Fprintf(out, "active_to:   %s\n", epoch.ActiveTo.UTC().Format(time.RFC3339))
			}
			return nil
		},
	})

	return keyCmd
}
