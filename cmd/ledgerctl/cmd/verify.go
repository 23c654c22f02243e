package cmd

import (
	"encoding/json"
	"fmt"

	"provenance-ledger/internal/adapter/http/dto"
	pgStorage "provenance-ledger/internal/adapter/storage/postgres"
	"provenance-ledger/internal/service"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newVerifyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <item-id>",
		Short: "Re-verify the ledger chain of one item",
		Long: "Rebuilds every block spanning the item's history and checks hashes, " +
			"Merkle roots and links. Exits non-zero when the chain is broken.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("item id must be a UUID: %w", err)
			}

			ctx := cmd.Context()
			e, err := opts.connect(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			svc := service.NewItemService(service.ItemServiceDeps{
				ProductLines: pgStorage.NewProductLineRepo(e.pool),
				Items:        pgStorage.NewItemRepo(e.pool),
				Blocks:       pgStorage.NewBlockRepo(e.pool),
				Transactions: pgStorage.NewLedgerTransactionRepo(e.pool),
				Transactor:   pgStorage.NewTransactor(e.pool),
				Audit:        service.NewAuditService(pgStorage.NewAuditRepo(e.pool), e.log),
			}, e.log)

			result, err := svc.VerifyItem(ctx, itemID)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(dto.ToVerifyResponse(itemID.String(), result)); err != nil {
				return err
			}
			if !result.IsValid() {
				return fmt.Errorf("chain invalid: %s", result.Reason)
			}
			return nil
		},
	}
}
