package service

import (
	"context"
	"time"

	"pesobot/events"
	"pesobot/models"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	// GetByTelegramID retrieves an account by Telegram ID, nil if unknown
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.Account, error)

	// Create creates a new account with the starting wallet grant
	Create(ctx context.Context, telegramID int64, username string, startingWallet int64) (*models.Account, error)

	// UpdateUsername refreshes the best-effort display name, last write wins
	UpdateUsername(ctx context.Context, telegramID int64, username string) error

	// ApplyDelta atomically adds both deltas in a single mutation and
	// returns the updated account. Fails with ErrInvariantViolation if
	// either resulting pool would go negative.
	ApplyDelta(ctx context.Context, telegramID int64, deltaWallet, deltaWithdrawable int64) (*models.Account, error)

	// SetCaptcha replaces the single pending captcha slot
	SetCaptcha(ctx context.Context, telegramID int64, code string, issuedAt time.Time) error

	// ClearCaptcha clears the pending captcha slot
	ClearCaptcha(ctx context.Context, telegramID int64) error
}

// WithdrawalRepository defines the interface for withdrawal request data access
type WithdrawalRepository interface {
	// Create appends a new pending withdrawal request, filling ID and CreatedAt
	Create(ctx context.Context, withdrawal *models.Withdrawal) error

	// ListPending returns pending requests joined with the requester's
	// username, ordered by creation time ascending
	ListPending(ctx context.Context) ([]*models.PendingWithdrawal, error)
}

// LedgerRepository defines the interface for the append-only balance journal
type LedgerRepository interface {
	// Record appends a new ledger entry
	Record(ctx context.Context, entry *models.LedgerEntry) error

	// GetByAccount returns the most recent entries for an account
	GetByAccount(ctx context.Context, telegramID int64, limit int) ([]*models.LedgerEntry, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// AccountService defines the interface for account operations
type AccountService interface {
	// GetOrCreateAccount retrieves an existing account or creates a new one
	// with the starting wallet grant; the grant is never repeated
	GetOrCreateAccount(ctx context.Context, telegramID int64, username string) (*models.Account, error)

	// GetAccount retrieves an account, ErrAccountNotFound if unknown
	GetAccount(ctx context.Context, telegramID int64) (*models.Account, error)
}

// CaptchaService defines the interface for the captcha earning flow
type CaptchaService interface {
	// Issue generates a fresh captcha for the user, silently replacing any
	// unsolved prior one
	Issue(ctx context.Context, telegramID int64, username string) (*models.CaptchaChallenge, error)

	// Verify checks an answer case-insensitively. On a match the reward is
	// credited to both pools and the captcha cleared; on a mismatch the
	// captcha stays active and ErrWrongCaptcha is returned.
	Verify(ctx context.Context, telegramID int64, username, answer string) (*models.CaptchaResult, error)
}

// GameService defines the interface for game settlement
type GameService interface {
	// PlayDice settles a parity bet: stake is debited from the wallet up
	// front, a d6 is rolled, and a win pays 2x into the wallet with the
	// profit portion credited to the withdrawable pool
	PlayDice(ctx context.Context, telegramID int64, username string, prediction models.Parity, stake int64) (*models.DiceResult, error)

	// PlayScatter settles a scatter spin with a fixed win chance; the reel
	// frames in the result are cosmetic and derived after the outcome
	PlayScatter(ctx context.Context, telegramID int64, username string, stake int64) (*models.ScatterResult, error)
}

// WithdrawService defines the interface for withdrawal requests
type WithdrawService interface {
	// Request debits both pools and appends a pending withdrawal request
	Request(ctx context.Context, telegramID int64, username string, amount int64) (*models.WithdrawResult, error)

	// ListPending returns all pending requests for admin review. Caller
	// authorization is the transport layer's concern.
	ListPending(ctx context.Context) ([]*models.PendingWithdrawal, error)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	AccountRepository() AccountRepository
	WithdrawalRepository() WithdrawalRepository
	LedgerRepository() LedgerRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
