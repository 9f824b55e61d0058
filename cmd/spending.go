package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sms-classifier/internal/scanner"
	"sms-classifier/internal/store"
)

var (
	spendingDBPath string
	spendingSince  string
	spendingBy     string
)

var spendingCmd = &cobra.Command{
	Use:   "spending",
	Short: "Summarise stored debits per category or per wallet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		since, err := scanner.ParseDate(spendingSince)
		if err != nil {
			return err
		}

		db, err := openStore(cmd.Context(), spendingDBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		var rows []store.Spending
		switch spendingBy {
		case "category":
			rows, err = db.SpendingByCategory(cmd.Context(), since)
		case "wallet":
			rows, err = db.SpendingByWallet(cmd.Context(), since)
		default:
			return fmt.Errorf("invalid --by value %q (use category or wallet)", spendingBy)
		}
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "%s\tTOTAL\n", spendingBy)
		for _, row := range rows {
			fmt.Fprintf(tw, "%s\t%s\n", row.Key, row.Total.StringFixed(2))
		}
		return tw.Flush()
	},
}

func init() {
	RootCmd.AddCommand(spendingCmd)

	spendingCmd.Flags().StringVar(&spendingDBPath, "db", "", "SQLite database written by scan --db")
	spendingCmd.Flags().StringVar(&spendingSince, "since", "", "Only count debits from this date onwards (format: YYYY-MM-DD)")
	spendingCmd.Flags().StringVar(&spendingBy, "by", "category", "Group by category or wallet")
	_ = spendingCmd.MarkFlagRequired("db")
}
