package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"pesobot/database"
	"pesobot/models"
)

// LedgerRepository implements the service.LedgerRepository interface
type LedgerRepository struct {
	q queryable
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *database.DB) *LedgerRepository {
	return &LedgerRepository{q: db.Pool}
}

// newLedgerRepositoryWithTx creates a new ledger repository with a transaction
func newLedgerRepositoryWithTx(tx queryable) *LedgerRepository {
	return &LedgerRepository{q: tx}
}

// Record appends a new ledger entry
func (r *LedgerRepository) Record(ctx context.Context, entry *models.LedgerEntry) error {
	metadataJSON, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger metadata: %w", err)
	}

	query := `
		INSERT INTO ledger_entries (telegram_id, wallet_before, wallet_after, withdrawable_before, withdrawable_after, entry_type, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query,
		entry.TelegramID,
		entry.WalletBefore,
		entry.WalletAfter,
		entry.WithdrawableBefore,
		entry.WithdrawableAfter,
		entry.EntryType,
		metadataJSON,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record ledger entry for account %d: %w", entry.TelegramID, err)
	}

	return nil
}

// GetByAccount returns the most recent entries for an account
func (r *LedgerRepository) GetByAccount(ctx context.Context, telegramID int64, limit int) ([]*models.LedgerEntry, error) {
	query := `
		SELECT id, telegram_id, wallet_before, wallet_after, withdrawable_before, withdrawable_after, entry_type, metadata, created_at
		FROM ledger_entries
		WHERE telegram_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, telegramID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entries for account %d: %w", telegramID, err)
	}
	defer rows.Close()

	var entries []*models.LedgerEntry
	for rows.Next() {
		var entry models.LedgerEntry
		var metadataJSON []byte
		err := rows.Scan(
			&entry.ID,
			&entry.TelegramID,
			&entry.WalletBefore,
			&entry.WalletAfter,
			&entry.WithdrawableBefore,
			&entry.WithdrawableAfter,
			&entry.EntryType,
			&metadataJSON,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal ledger metadata: %w", err)
			}
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}

	return entries, nil
}
