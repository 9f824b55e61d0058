package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sms-classifier/internal/models"
)

// UpsertWallet creates the wallet if it is new. For a known wallet only
// last_used changes, and only when w.LastUsed is later than the stored value.
func (s *Store) UpsertWallet(ctx context.Context, w models.Wallet) error {
	if w.ID == "" {
		return errors.New("wallet id is empty")
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO wallets (wallet_id, detected_name, custom_name, bank_name, card_type, created_at, last_used)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(wallet_id) DO UPDATE SET
			last_used = excluded.last_used
		WHERE excluded.last_used > wallets.last_used
	`, w.ID, w.DetectedName, w.CustomName, w.Institution, string(w.Kind),
		toMillis(w.CreatedAt), toMillis(w.LastUsed))
	if err != nil {
		return fmt.Errorf("failed to save wallet: %w", err)
	}
	return nil
}

// GetWallet returns the wallet with the given instrument id
func (s *Store) GetWallet(ctx context.Context, id string) (*models.Wallet, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT wallet_id, detected_name, custom_name, bank_name, card_type, created_at, last_used
		FROM wallets
		WHERE wallet_id = ?
	`, id)

	w, err := scanWallet(row)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// ListWallets returns all wallets, most recently used first
func (s *Store) ListWallets(ctx context.Context) ([]models.Wallet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT wallet_id, detected_name, custom_name, bank_name, card_type, created_at, last_used
		FROM wallets
		ORDER BY last_used DESC, wallet_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var wallets []models.Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wallets: %w", err)
	}
	return wallets, nil
}

// SetCustomName renames a wallet. An empty name restores the detected one.
func (s *Store) SetCustomName(ctx context.Context, id, name string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE wallets SET custom_name = ? WHERE wallet_id = ?
	`, name, id)
	if err != nil {
		return fmt.Errorf("failed to rename wallet: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to rename wallet: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("wallet %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanWallet(row rowScanner) (models.Wallet, error) {
	var (
		w                   models.Wallet
		kind                string
		createdAt, lastUsed int64
	)
	err := row.Scan(&w.ID, &w.DetectedName, &w.CustomName, &w.Institution, &kind, &createdAt, &lastUsed)
	if errors.Is(err, sql.ErrNoRows) {
		return w, ErrNotFound
	}
	if err != nil {
		return w, fmt.Errorf("failed to scan wallet: %w", err)
	}

	w.Kind = models.InstrumentKind(kind)
	w.CreatedAt = fromMillis(createdAt)
	w.LastUsed = fromMillis(lastUsed)
	return w, nil
}
