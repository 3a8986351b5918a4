package repository

import (
	"context"
	"fmt"

	"pesobot/database"
	"pesobot/models"
)

// WithdrawalRepository implements the service.WithdrawalRepository interface
type WithdrawalRepository struct {
	q queryable
}

// NewWithdrawalRepository creates a new withdrawal repository
func NewWithdrawalRepository(db *database.DB) *WithdrawalRepository {
	return &WithdrawalRepository{q: db.Pool}
}

// newWithdrawalRepositoryWithTx creates a new withdrawal repository with a transaction
func newWithdrawalRepositoryWithTx(tx queryable) *WithdrawalRepository {
	return &WithdrawalRepository{q: tx}
}

// Create appends a new withdrawal request, filling ID and CreatedAt
func (r *WithdrawalRepository) Create(ctx context.Context, withdrawal *models.Withdrawal) error {
	query := `
		INSERT INTO withdrawals (telegram_id, amount, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, withdrawal.TelegramID, withdrawal.Amount, withdrawal.Status).Scan(
		&withdrawal.ID,
		&withdrawal.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create withdrawal for account %d: %w", withdrawal.TelegramID, err)
	}

	return nil
}

// ListPending returns pending requests joined with the requester's
// best-effort username, oldest first
func (r *WithdrawalRepository) ListPending(ctx context.Context) ([]*models.PendingWithdrawal, error) {
	query := `
		SELECT w.id, w.telegram_id, w.amount, w.status, w.created_at, COALESCE(a.username, '')
		FROM withdrawals w
		LEFT JOIN accounts a ON a.telegram_id = w.telegram_id
		WHERE w.status = $1
		ORDER BY w.created_at ASC
	`

	rows, err := r.q.Query(ctx, query, models.WithdrawalStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending withdrawals: %w", err)
	}
	defer rows.Close()

	var pending []*models.PendingWithdrawal
	for rows.Next() {
		var w models.PendingWithdrawal
		err := rows.Scan(
			&w.ID,
			&w.TelegramID,
			&w.Amount,
			&w.Status,
			&w.CreatedAt,
			&w.Username,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan withdrawal: %w", err)
		}
		pending = append(pending, &w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate withdrawals: %w", err)
	}

	return pending, nil
}
