package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"sms-classifier/internal/scanner"
	"sms-classifier/internal/store"
	"sms-classifier/internal/writer"
)

var (
	outputDir      string
	senderName     string
	startDate      string
	scanLimit      int
	includeCredits bool
	scanDBPath     string
	splitOutput    bool
	noProgress     bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [xml-file]",
	Short: "Scan an SMS backup and extract transactions",
	Long: `Reads an SMS Backup & Restore XML file, classifies every financial message and
writes the transactions found to CSV. Only debits are kept unless --include-credits
is given. With --db the transactions and their payment instruments are also stored
in SQLite, and messages stored by an earlier scan are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	RootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVarP(&outputDir, "output", "o", ".", "Output directory for CSV files (created if not exists)")
	scanCmd.Flags().StringVarP(&senderName, "sender", "s", "", "Only scan messages from this sender id")
	scanCmd.Flags().StringVarP(&startDate, "from", "f", "", "Filter messages from this date onwards (format: YYYY-MM-DD)")
	scanCmd.Flags().IntVarP(&scanLimit, "limit", "n", 0, "Scan at most this many of the newest messages (0 for all)")
	scanCmd.Flags().BoolVar(&includeCredits, "include-credits", false, "Keep credit transactions too")
	scanCmd.Flags().StringVar(&scanDBPath, "db", "", "SQLite database to store transactions and wallets in")
	scanCmd.Flags().BoolVar(&splitOutput, "split", false, "Write one CSV file per wallet")
	scanCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")
}

func runScan(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	from, err := scanner.ParseDate(startDate)
	if err != nil {
		return err
	}

	p, err := loadParser()
	if err != nil {
		return err
	}

	msgs, err := scanner.ReadBackup(filePath, scanner.ReadOptions{
		Sender: senderName,
		From:   from,
		Limit:  scanLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to read SMS backup: %w", err)
	}
	slog.Info("Loaded messages", "file", filePath, "count", len(msgs))

	opts := scanner.Options{IncludeCredits: includeCredits}

	if scanDBPath != "" {
		db, err := store.Open(scanDBPath)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Migrate(cmd.Context()); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		opts.Store = db
	}

	if !noProgress && len(msgs) > 0 {
		bar := progressbar.NewOptions(len(msgs),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("Scanning messages..."),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(os.Stderr)
			}),
		)
		opts.Progress = func() {
			if err := bar.Add(1); err != nil {
				slog.Warn("Failed to update progress bar", "error", err)
			}
		}
	}

	result, err := scanner.New(p, opts).Scan(cmd.Context(), msgs)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scanned %d messages, found %d new transactions (%d duplicates).\n",
		result.Scanned, result.Found, result.Duplicates)
	if len(result.Transactions) == 0 {
		return nil
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w := writer.New(outputDir)
	if splitOutput {
		paths, err := w.WriteSplit(result.Transactions)
		if err != nil {
			return fmt.Errorf("failed to write transactions: %w", err)
		}
		for _, path := range paths {
			fmt.Fprintf(out, "Created %s.\n", path)
		}
		return nil
	}

	path, err := w.Write(result.Transactions)
	if err != nil {
		return fmt.Errorf("failed to write transactions: %w", err)
	}
	fmt.Fprintf(out, "Created %s with %d transactions.\n", path, len(result.Transactions))
	return nil
}
