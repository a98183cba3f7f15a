package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/dunkbonds/ledger"
)

func newAccountCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Open, inspect, fund and close goal accounts",
	}
	cmd.AddCommand(
		newAccountOpenCmd(rc),
		newAccountTreasuryCmd(rc),
		newAccountShowCmd(rc),
		newAccountListCmd(rc),
		newBalanceCmd(rc, "credit"),
		newBalanceCmd(rc, "debit"),
		newAccountCloseCmd(rc),
	)
	return cmd
}

func newAccountOpenCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "open <user-id> <goal-id>",
		Short: "Open a member account; prints its id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := rc.requireGoal(ctx, args[1]); err != nil {
				return err
			}
			l, err := rc.Ledger()
			if err != nil {
				return err
			}
			a, err := l.OpenAccount(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.ID)
			return nil
		},
	}
}

func newAccountTreasuryCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "treasury <goal-id>",
		Short: "Open the goal's treasury account; prints its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := rc.requireGoal(ctx, args[0]); err != nil {
				return err
			}
			l, err := rc.Ledger()
			if err != nil {
				return err
			}
			a, err := l.OpenTreasury(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.ID)
			return nil
		},
	}
}

func newAccountShowCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "show <account-id>",
		Short: "Show an account with its bond and swap links",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l, err := rc.Ledger()
			if err != nil {
				return err
			}
			a, err := l.Account(ctx, args[0])
			if err != nil {
				return err
			}
			links, err := l.Links(ctx, a.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			writeAccount(out, a, rc.currency())
			for _, lk := range links {
				side, other := "bond", "debtor"
				if lk.DebtorID == a.ID {
					side, other = "swap", "creditor"
				}
				fmt.Fprintf(out, "  %s x%d  %s %s\n", side, lk.Qty, other, lk.Counterparty(a.ID))
			}
			return nil
		},
	}
}

func newAccountListCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "list <goal-id>",
		Short: "List every account in a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := rc.Ledger()
			if err != nil {
				return err
			}
			accounts, err := l.Accounts(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, a := range accounts {
				writeAccount(cmd.OutOrStdout(), a, rc.currency())
			}
			return nil
		},
	}
}

// newBalanceCmd builds "credit" and "debit".
func newBalanceCmd(rc *RootConfig, op string) *cobra.Command {
	return &cobra.Command{
		Use:   op + " <account-id> <amount>",
		Short: "Apply a " + op + " to an account; prints the new balance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := rc.parseCash(args[1])
			if err != nil {
				return err
			}
			l, err := rc.Ledger()
			if err != nil {
				return err
			}
			apply := l.Credit
			if op == "debit" {
				apply = l.Debit
			}
			bal, err := apply(cmd.Context(), args[0], amount)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), bal.Format(rc.currency()))
			return nil
		},
	}
}

func newAccountCloseCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "close <account-id>",
		Short: "Close an account with no bonds, swaps or pending orders",
		Long: `Close an account. Closing is refused while the account holds bonds,
owes swaps or has pending line items in the --activity book; every
blocking reason is listed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := rc.Ledger()
			if err != nil {
				return err
			}
			book, err := rc.Activity()
			if err != nil {
				return err
			}

			err = l.CloseAccount(cmd.Context(), args[0], book)
			var ce *ledger.ClosureError
			if errors.As(err, &ce) {
				for _, r := range ce.Reasons() {
					fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", r)
				}
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "closed %s\n", args[0])
			return nil
		},
	}
}

func writeAccount(w io.Writer, a ledger.Account, currency string) {
	user := a.UserID
	if a.IsTreasury() {
		user = "-"
	}
	fmt.Fprintf(w, "%s  %-8s  %-10s  %-12s  %s\n", a.ID, a.Role, a.GoalID, user, a.Balance.Format(currency))
}
