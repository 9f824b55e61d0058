package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"sms-classifier/internal/models"
)

// Spending is the debit total for one category or wallet
type Spending struct {
	Key   string
	Total decimal.Decimal
}

// TransactionExists reports whether a message was already stored
func (s *Store) TransactionExists(ctx context.Context, sender, body string, ts time.Time) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM transactions
			WHERE sender_id = ? AND sms_body = ? AND timestamp = ?
		)
	`, sender, body, toMillis(ts)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check transaction: %w", err)
	}
	return exists, nil
}

// SaveTransaction stores tx, assigning its ID and CreatedAt when unset.
// A message stored before yields ErrDuplicate.
func (s *Store) SaveTransaction(ctx context.Context, tx *models.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, amount, currency, category, merchant, wallet_id,
			direction, timestamp, sms_body, sender_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(sender_id, sms_body, timestamp) DO NOTHING
	`, tx.ID, tx.Amount.String(), tx.Currency, tx.Category, tx.Merchant, tx.InstrumentID,
		string(tx.Direction), toMillis(tx.Timestamp), tx.Body, tx.Sender, toMillis(tx.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	if n == 0 {
		return ErrDuplicate
	}
	return nil
}

// ListTransactions returns stored transactions newest first. A zero since
// returns everything.
func (s *Store) ListTransactions(ctx context.Context, since time.Time) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, amount, currency, category, merchant, wallet_id,
			direction, timestamp, sms_body, sender_id, created_at
		FROM transactions
		WHERE timestamp >= ?
		ORDER BY timestamp DESC
	`, sinceMillis(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return txns, nil
}

// SpendingByCategory sums debits per category since the given time,
// largest total first.
func (s *Store) SpendingByCategory(ctx context.Context, since time.Time) ([]Spending, error) {
	return s.spendingBy(ctx, "category", since)
}

// SpendingByWallet sums debits per wallet since the given time, largest
// total first.
func (s *Store) SpendingByWallet(ctx context.Context, since time.Time) ([]Spending, error) {
	return s.spendingBy(ctx, "wallet_id", since)
}

// Amounts are stored as decimal text and summed with decimal, not SUM().
func (s *Store) spendingBy(ctx context.Context, column string, since time.Time) ([]Spending, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s, amount FROM transactions
		WHERE direction = ? AND timestamp >= ?
	`, column), string(models.DirectionDebit), sinceMillis(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query spending: %w", err)
	}
	defer func() { _ = rows.Close() }()

	totals := make(map[string]decimal.Decimal)
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan spending: %w", err)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid stored amount %q: %w", raw, err)
		}
		totals[key] = totals[key].Add(amount)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating spending: %w", err)
	}

	out := make([]Spending, 0, len(totals))
	for key, total := range totals {
		out = append(out, Spending{Key: key, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (models.Transaction, error) {
	var (
		tx                   models.Transaction
		amount, direction    string
		timestamp, createdAt int64
	)
	err := row.Scan(&tx.ID, &amount, &tx.Currency, &tx.Category, &tx.Merchant, &tx.InstrumentID,
		&direction, &timestamp, &tx.Body, &tx.Sender, &createdAt)
	if err == sql.ErrNoRows {
		return tx, ErrNotFound
	}
	if err != nil {
		return tx, fmt.Errorf("failed to scan transaction: %w", err)
	}

	tx.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return tx, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}
	tx.Direction = models.Direction(direction)
	tx.Timestamp = fromMillis(timestamp)
	tx.CreatedAt = fromMillis(createdAt)
	return tx, nil
}

func sinceMillis(since time.Time) int64 {
	if since.IsZero() {
		return 0
	}
	return toMillis(since)
}
