package writer

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"sms-classifier/internal/models"
)

var (
	header = []string{"Date", "Time", "Amount", "Currency", "Merchant", "Category", "Wallet", "Type", "Sender ID"}

	unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
)

// Writer handles CSV file writing
type Writer struct {
	outputDir string
	now       func() time.Time
}

// New creates a new Writer instance
func New(outputDir string) *Writer {
	return &Writer{
		outputDir: outputDir,
		now:       time.Now,
	}
}

// Write writes all transactions to one timestamped CSV file and returns its path
func (w *Writer) Write(transactions []models.Transaction) (string, error) {
	filename := filepath.Join(w.outputDir, fmt.Sprintf("transactions_%s.csv", w.stamp()))
	if err := w.writeCSVFile(filename, transactions); err != nil {
		return "", err
	}
	return filename, nil
}

// WriteSplit writes one CSV file per wallet and returns the paths in wallet order
func (w *Writer) WriteSplit(transactions []models.Transaction) ([]string, error) {
	grouped := make(map[string][]models.Transaction)
	for _, tx := range transactions {
		grouped[tx.InstrumentID] = append(grouped[tx.InstrumentID], tx)
	}

	wallets := make([]string, 0, len(grouped))
	for id := range grouped {
		wallets = append(wallets, id)
	}
	sort.Strings(wallets)

	stamp := w.stamp()
	paths := make([]string, 0, len(wallets))
	for _, id := range wallets {
		name := unsafeFileChars.ReplaceAllString(id, "_")
		filename := filepath.Join(w.outputDir, fmt.Sprintf("transactions_%s_%s.csv", name, stamp))
		if err := w.writeCSVFile(filename, grouped[id]); err != nil {
			return paths, err
		}
		paths = append(paths, filename)
	}
	return paths, nil
}

func (w *Writer) stamp() string {
	return w.now().Format("20060102_150405")
}

// writeCSVFile writes a single CSV file, oldest transaction first
func (w *Writer) writeCSVFile(filename string, transactions []models.Transaction) error {
	sorted := make([]models.Transaction, len(transactions))
	copy(sorted, transactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", filename, err)
	}
	defer file.Close()

	// Write BOM for UTF-8
	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("error writing BOM to %s: %w", filename, err)
	}

	writer := csv.NewWriter(file)

	if err := writer.Write(header); err != nil {
		return fmt.Errorf("error writing header to %s: %w", filename, err)
	}

	for _, tx := range sorted {
		record := []string{
			tx.Timestamp.Format("2006-01-02"),
			tx.Timestamp.Format("15:04:05"),
			tx.Amount.StringFixed(2),
			tx.Currency,
			tx.Merchant,
			tx.Category,
			tx.InstrumentID,
			string(tx.Direction),
			tx.Sender,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("error writing transaction to %s: %w", filename, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("error flushing writer for %s: %w", filename, err)
	}

	return nil
}
