package cmd

import (
	"fmt"
	"io"
	"os"

	"provenance-ledger/pkg/canonical"

	"github.com/spf13/cobra"
)

func newHashCmd() *cobra.Command {
	var printCanonical bool

	hashCmd := &cobra.Command{
		Use:   "hash <json-file>",
		Short: "Print the SHA-256 of a JSON document's canonical form (- reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				raw []byte
				err error
			)
			if args[0] == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}

			canon, err := canonical.FromJSON(raw)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if printCanonical {
				fmt.Fprintln(out, string(canon))
			}
			fmt.Fprintln(out, canonical.HashBytes(canon))
			return nil
		},
	}
	hashCmd.Flags().BoolVarP(&printCanonical, "print", "p", false, "Also print the canonical form.")

	return hashCmd
}
