package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/dunkbonds/ledger"
)

// newInstrumentCmd builds the "bond" and "swap" command trees.
func newInstrumentCmd(rc *RootConfig, kind ledger.Kind) *cobra.Command {
	cmd := &cobra.Command{
		Use:   kind.String(),
		Short: "Issue or transfer " + kind.String() + "s",
	}

	var issueQty int64
	issue := &cobra.Command{
		Use:   "issue <treasury-id> <buyer-id>",
		Short: "Issue new " + kind.String() + "s from the goal treasury",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := rc.Ledger()
			if err != nil {
				return err
			}
			link, err := l.Issue(cmd.Context(), ledger.IssueRequest{
				Kind:       kind,
				TreasuryID: args[0],
				BuyerID:    args[1],
				Qty:        issueQty,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: creditor %s debtor %s qty %d\n",
				kind, link.ID, link.CreditorID, link.DebtorID, link.Qty)
			return nil
		},
	}
	issue.Flags().Int64Var(&issueQty, "qty", 1, "units to issue")

	var transferQty int64
	counterparty := "debtor"
	if kind == ledger.KindSwap {
		counterparty = "creditor"
	}
	transfer := &cobra.Command{
		Use:   fmt.Sprintf("transfer <seller-id> <buyer-id> <%s-id>", counterparty),
		Short: "Sell " + kind.String() + "s held against a " + counterparty + " to another member",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := rc.Ledger()
			if err != nil {
				return err
			}
			res, err := l.Transfer(cmd.Context(), ledger.TransferRequest{
				Kind:           kind,
				SellerID:       args[0],
				BuyerID:        args[1],
				CounterpartyID: args[2],
				Qty:            transferQty,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s seller %s left %d, buyer %s holds %d\n",
				kind, args[0], res.Seller.Qty, args[1], res.Buyer.Qty)
			return nil
		},
	}
	transfer.Flags().Int64Var(&transferQty, "qty", 1, "units to transfer")

	cmd.AddCommand(issue, transfer)
	return cmd
}

func newSettleCmd(rc *RootConfig) *cobra.Command {
	var (
		kindStr      string
		counterparty string
		qty          int64
		priceStr     string
	)

	cmd := &cobra.Command{
		Use:   "settle <seller-id> <buyer-id>",
		Short: "Settle an executed trade: move the units and the payment together",
		Long: `Settle an executed trade. When the seller is the goal treasury the
units are issued, otherwise the seller's units against --counterparty are
transferred. The buyer pays --price per unit to the seller in the same
transaction.

Example:
  dunkbonds settle <seller-id> <buyer-id> --kind bond --counterparty <debtor-id> --qty 2 --price 9.50`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := ledger.ParseKind(kindStr)
			if err != nil {
				return err
			}
			price, err := rc.parseCash(priceStr)
			if err != nil {
				return err
			}
			l, err := rc.Ledger()
			if err != nil {
				return err
			}
			err = l.Settle(cmd.Context(), ledger.Execution{
				Kind:           kind,
				SellerID:       args[0],
				BuyerID:        args[1],
				CounterpartyID: counterparty,
				Qty:            qty,
				Price:          price,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "settled %d %s at %s\n", qty, kind, price.Format(rc.currency()))
			return nil
		},
	}

	cmd.Flags().StringVar(&kindStr, "kind", "bond", "instrument: bond|swap")
	cmd.Flags().StringVar(&counterparty, "counterparty", "", "debtor (bond) or creditor (swap) of the seller's link; unused for issuance")
	cmd.Flags().Int64Var(&qty, "qty", 1, "units traded")
	cmd.Flags().StringVar(&priceStr, "price", "0", "price per unit")
	return cmd
}
