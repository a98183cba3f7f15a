package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFundsCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "funds",
		Short: "Move cash between accounts",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "transfer <from-id> <to-id> <amount>",
		Short: "Debit one account and credit another in a single transaction",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := rc.parseCash(args[2])
			if err != nil {
				return err
			}
			l, err := rc.Ledger()
			if err != nil {
				return err
			}
			if err := l.TransferFunds(cmd.Context(), args[0], args[1], amount); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "moved %s from %s to %s\n", amount.Format(rc.currency()), args[0], args[1])
			return nil
		},
	})
	return cmd
}
