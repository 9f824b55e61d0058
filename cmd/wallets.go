package cmd

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sms-classifier/internal/store"
)

var walletsDBPath string

var walletsCmd = &cobra.Command{
	Use:   "wallets",
	Short: "List the payment instruments seen in stored transactions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := openStore(cmd.Context(), walletsDBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		wallets, err := db.ListWallets(cmd.Context())
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tKIND\tINSTITUTION\tLAST USED")
		for _, w := range wallets {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				w.ID, w.DisplayName(), w.Kind, w.Institution, w.LastUsed.Format("2006-01-02 15:04"))
		}
		return tw.Flush()
	},
}

var walletsRenameCmd = &cobra.Command{
	Use:   "rename [wallet-id] [name]",
	Short: "Give a wallet a custom name (an empty name restores the detected one)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(cmd.Context(), walletsDBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.SetCustomName(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s.\n", args[0])
		return nil
	},
}

func init() {
	RootCmd.AddCommand(walletsCmd)
	walletsCmd.AddCommand(walletsRenameCmd)

	walletsCmd.PersistentFlags().StringVar(&walletsDBPath, "db", "", "SQLite database written by scan --db")
	_ = walletsCmd.MarkPersistentFlagRequired("db")
}

func openStore(ctx context.Context, path string) (*store.Store, error) {
	if path == "" {
		return nil, errors.New("--db is required")
	}
	db, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}
