package service

import "errors"

// Sentinel errors returned by the ledger and settlement services. Callers
// distinguish them with errors.Is; every rejection leaves the account in
// its prior valid state.
var (
	// ErrAccountNotFound is returned by read-only lookups of unknown accounts.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInvalidStake is returned when a game stake is zero or negative.
	ErrInvalidStake = errors.New("stake must be a positive amount")

	// ErrInvalidAmount is returned when a withdrawal amount is zero or negative.
	ErrInvalidAmount = errors.New("amount must be a positive amount")

	// ErrInsufficientFunds is returned when a stake exceeds the wallet or a
	// withdrawal exceeds the withdrawable pool.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrBelowMinimum is returned when a withdrawal is under the configured floor.
	ErrBelowMinimum = errors.New("amount below withdrawal minimum")

	// ErrNoActiveCaptcha is returned when an answer arrives with no captcha outstanding.
	ErrNoActiveCaptcha = errors.New("no captcha outstanding")

	// ErrWrongCaptcha is returned on a mismatched answer; the captcha stays
	// active so the user may retry.
	ErrWrongCaptcha = errors.New("captcha answer does not match")

	// ErrInvariantViolation is returned by the store when an otherwise
	// validated delta would drive a pool negative. With correct pre-checks
	// it only fires when concurrent operations race on the same account.
	ErrInvariantViolation = errors.New("balance pool would go negative")
)
