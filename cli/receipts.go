package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newReceiptsCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "receipts",
		Short: "List the receipts of stamped hashes, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			receipts, err := store.List()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if receipts == nil {
					return enc.Encode([]struct{}{})
				}
				return enc.Encode(receipts)
			}

			for _, r := range receipts {
				status := "pending"
				if r.Proof != nil {
					status = "proof"
				}
				_, _ = fmt.Fprintf(out, "%s %s %-7s %s\n", r.CreatedAt.Format(time.RFC3339), r.Hash.Hex(), status, r.URL)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print receipts as JSON")
	return cmd
}
