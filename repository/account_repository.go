package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"pesobot/database"
	"pesobot/models"
	"pesobot/service"
)

// AccountRepository implements the service.AccountRepository interface
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository with a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

const accountColumns = `telegram_id, username, wallet, withdrawable, captcha_code, captcha_issued_at, created_at, updated_at`

func scanAccount(row pgx.Row) (*models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.TelegramID,
		&account.Username,
		&account.Wallet,
		&account.Withdrawable,
		&account.CaptchaCode,
		&account.CaptchaIssuedAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetByTelegramID retrieves an account by Telegram ID, nil if unknown
func (r *AccountRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE telegram_id = $1
	`

	account, err := scanAccount(r.q.QueryRow(ctx, query, telegramID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", telegramID, err)
	}

	return account, nil
}

// Create creates a new account with the starting wallet grant
func (r *AccountRepository) Create(ctx context.Context, telegramID int64, username string, startingWallet int64) (*models.Account, error) {
	query := `
		INSERT INTO accounts (telegram_id, username, wallet, withdrawable)
		VALUES ($1, $2, $3, 0)
		RETURNING ` + accountColumns + `
	`

	account, err := scanAccount(r.q.QueryRow(ctx, query, telegramID, username, startingWallet))
	if err != nil {
		return nil, fmt.Errorf("failed to create account %d: %w", telegramID, err)
	}

	return account, nil
}

// UpdateUsername refreshes the best-effort display name, last write wins
func (r *AccountRepository) UpdateUsername(ctx context.Context, telegramID int64, username string) error {
	query := `
		UPDATE accounts
		SET username = $1, updated_at = NOW()
		WHERE telegram_id = $2
	`

	result, err := r.q.Exec(ctx, query, username, telegramID)
	if err != nil {
		return fmt.Errorf("failed to update username for account %d: %w", telegramID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %d: %w", telegramID, service.ErrAccountNotFound)
	}

	return nil
}

// ApplyDelta atomically adds both deltas in a single conditional UPDATE.
// The guard re-checks non-negativity as a last resort rather than trusting
// callers; a guard failure surfaces as ErrInvariantViolation.
func (r *AccountRepository) ApplyDelta(ctx context.Context, telegramID int64, deltaWallet, deltaWithdrawable int64) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET wallet = wallet + $1, withdrawable = withdrawable + $2, updated_at = NOW()
		WHERE telegram_id = $3
		  AND wallet + $1 >= 0
		  AND withdrawable + $2 >= 0
		RETURNING ` + accountColumns + `
	`

	account, err := scanAccount(r.q.QueryRow(ctx, query, deltaWallet, deltaWithdrawable, telegramID))
	if err == pgx.ErrNoRows {
		// Either the account is unknown or the guard rejected the delta
		existing, checkErr := r.GetByTelegramID(ctx, telegramID)
		if checkErr != nil {
			return nil, checkErr
		}
		if existing == nil {
			return nil, fmt.Errorf("account %d: %w", telegramID, service.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("account %d delta (%d, %d): %w", telegramID, deltaWallet, deltaWithdrawable, service.ErrInvariantViolation)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to apply delta to account %d: %w", telegramID, err)
	}

	return account, nil
}

// SetCaptcha replaces the single pending captcha slot
func (r *AccountRepository) SetCaptcha(ctx context.Context, telegramID int64, code string, issuedAt time.Time) error {
	query := `
		UPDATE accounts
		SET captcha_code = $1, captcha_issued_at = $2, updated_at = NOW()
		WHERE telegram_id = $3
	`

	result, err := r.q.Exec(ctx, query, code, issuedAt, telegramID)
	if err != nil {
		return fmt.Errorf("failed to set captcha for account %d: %w", telegramID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %d: %w", telegramID, service.ErrAccountNotFound)
	}

	return nil
}

// ClearCaptcha clears the pending captcha slot
func (r *AccountRepository) ClearCaptcha(ctx context.Context, telegramID int64) error {
	query := `
		UPDATE accounts
		SET captcha_code = NULL, captcha_issued_at = NULL, updated_at = NOW()
		WHERE telegram_id = $1
	`

	result, err := r.q.Exec(ctx, query, telegramID)
	if err != nil {
		return fmt.Errorf("failed to clear captcha for account %d: %w", telegramID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %d: %w", telegramID, service.ErrAccountNotFound)
	}

	return nil
}
