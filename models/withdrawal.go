package models

import "time"

// WithdrawalStatus represents the review state of a withdrawal request
type WithdrawalStatus string

const (
	WithdrawalStatusPending  WithdrawalStatus = "pending"
	WithdrawalStatusApproved WithdrawalStatus = "approved"
	WithdrawalStatusRejected WithdrawalStatus = "rejected"
)

// Withdrawal represents a withdrawal request in the database.
// The funds are already debited from both pools when the row is created;
// status transitions past pending are an administrative action.
type Withdrawal struct {
	ID         int64            `db:"id"`
	TelegramID int64            `db:"telegram_id"`
	Amount     int64            `db:"amount"`
	Status     WithdrawalStatus `db:"status"`
	CreatedAt  time.Time        `db:"created_at"`
}

// PendingWithdrawal is a Withdrawal joined with the requesting account's
// best-effort username, as shown in the admin review listing.
type PendingWithdrawal struct {
	Withdrawal
	Username string `db:"username"`
}
