package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"sms-classifier/internal/scanner"
)

var sendersCmd = &cobra.Command{
	Use:   "senders [xml-file]",
	Short: "List the sender ids found in an SMS backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		msgs, err := scanner.ReadBackup(args[0], scanner.ReadOptions{})
		if err != nil {
			return fmt.Errorf("failed to read SMS backup: %w", err)
		}

		for _, sender := range scanner.Senders(msgs) {
			fmt.Fprintln(cmd.OutOrStdout(), sender)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(sendersCmd)
}
