package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"sms-classifier/internal/models"
	"sms-classifier/internal/store"
)

// Classifier is the message classification contract the scanner needs
type Classifier interface {
	IsTransactionMessage(sender, body string) bool
	ClassifyMessage(msg models.Message) (models.ClassificationResult, bool)
}

// Store persists scan results
type Store interface {
	TransactionExists(ctx context.Context, sender, body string, ts time.Time) (bool, error)
	SaveTransaction(ctx context.Context, tx *models.Transaction) error
	UpsertWallet(ctx context.Context, w models.Wallet) error
}

// Options control a scan
type Options struct {
	// IncludeCredits keeps credit transactions; by default only debits are kept.
	IncludeCredits bool
	// Store is optional. Without it the scan only classifies.
	Store Store
	// Progress is called once per processed message.
	Progress func()
}

// Result summarises a scan
type Result struct {
	Scanned      int
	Found        int
	Duplicates   int
	Transactions []models.Transaction
}

// Scanner runs messages through a classifier
type Scanner struct {
	classifier Classifier
	opts       Options
}

// New creates a Scanner
func New(classifier Classifier, opts Options) *Scanner {
	return &Scanner{classifier: classifier, opts: opts}
}

// Scan classifies msgs in order. A message is kept when it passes the
// gatekeeper, classifies, has the wanted direction and was not seen before,
// either earlier in msgs or in the store. Store failures abort the scan.
func (s *Scanner) Scan(ctx context.Context, msgs []models.Message) (*Result, error) {
	result := &Result{}
	seen := make(map[string]bool)

	for _, msg := range msgs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Scanned++
		if s.opts.Progress != nil {
			s.opts.Progress()
		}

		item, ok := s.classify(msg)
		if !ok {
			continue
		}

		signature := fmt.Sprintf("%d|%s|%s", msg.ReceivedAt.UnixMilli(), msg.Sender, msg.Body)
		if seen[signature] {
			result.Duplicates++
			continue
		}
		seen[signature] = true

		if s.opts.Store != nil {
			stored, err := s.persist(ctx, msg, &item)
			if err != nil {
				return result, err
			}
			if !stored {
				result.Duplicates++
				continue
			}
		}

		result.Found++
		result.Transactions = append(result.Transactions, item.transaction)
	}

	slog.Info("Scan complete",
		"scanned", result.Scanned,
		"found", result.Found,
		"duplicates", result.Duplicates)
	return result, nil
}

type classified struct {
	transaction models.Transaction
	result      models.ClassificationResult
}

func (s *Scanner) classify(msg models.Message) (classified, bool) {
	if !s.classifier.IsTransactionMessage(msg.Sender, msg.Body) {
		slog.Debug("Skipping non-transaction message", "sender", msg.Sender)
		return classified{}, false
	}

	res, ok := s.classifier.ClassifyMessage(msg)
	if !ok {
		return classified{}, false
	}
	if res.Direction != models.DirectionDebit && !s.opts.IncludeCredits {
		slog.Debug("Skipping credit", "sender", msg.Sender, "amount", res.Amount.String())
		return classified{}, false
	}

	return classified{transaction: models.NewTransaction(msg, res), result: res}, true
}

func (s *Scanner) persist(ctx context.Context, msg models.Message, c *classified) (bool, error) {
	exists, err := s.opts.Store.TransactionExists(ctx, msg.Sender, msg.Body, msg.ReceivedAt)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	tx := &c.transaction
	if err := s.opts.Store.SaveTransaction(ctx, tx); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return false, nil
		}
		return false, err
	}
	if err := s.opts.Store.UpsertWallet(ctx, models.NewWallet(c.result, msg.ReceivedAt)); err != nil {
		return false, err
	}

	slog.Debug("Stored transaction",
		"id", tx.ID,
		"sender", msg.Sender,
		"amount", tx.Amount.String(),
		"category", tx.Category,
		"wallet", tx.InstrumentID)
	return true, nil
}
