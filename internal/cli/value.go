package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/dunkbonds/valuation"
)

func newValueCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "value <account-id>",
		Short: "Print an Org-mode valuation report for an account",
		Long: `Value an account against its goal's face value. Pending and executed
line items are read from the --activity book.`,
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
			r, err := valuation.NewEngine(l, rc.goals, book).Report(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return valuation.WriteReportOrg(cmd.OutOrStdout(), r, rc.currency())
		},
	}
}

func newHistoryCmd(rc *RootConfig) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "history <account-id>",
		Short: "Print an account's activity history from the --activity book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := rc.Activity()
			if err != nil {
				return err
			}
			events := valuation.History(book.ForAccount(args[0]))

			switch format {
			case "org":
				fmt.Fprint(cmd.OutOrStdout(), valuation.FormatHistoryOrg(args[0], rc.currency(), events))
				return nil
			case "csv":
				return valuation.WriteHistoryCSV(cmd.OutOrStdout(), rc.currency(), events)
			default:
				return fmt.Errorf("unknown --format %q (want org or csv)", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "org", "output format: org|csv")
	return cmd
}
