package models

import "time"

// Parity is a dice-game prediction
type Parity string

const (
	ParityOdd  Parity = "odd"
	ParityEven Parity = "even"
)

// Valid reports whether the prediction is one of the two accepted values.
func (p Parity) Valid() bool {
	return p == ParityOdd || p == ParityEven
}

// DiceResult represents the settled outcome of a dice game (returned to the user)
type DiceResult struct {
	Stake           int64
	Prediction      Parity
	Roll            int
	Won             bool
	Payout          int64
	NewWallet       int64
	NewWithdrawable int64
}

// ScatterResult represents the settled outcome of a scatter spin.
// Frames and Symbols are purely cosmetic: the win is drawn first and the
// reel contents are derived from it, never the other way around.
type ScatterResult struct {
	Stake           int64
	Won             bool
	Payout          int64
	Symbols         []string
	Frames          [][]string
	NewWallet       int64
	NewWithdrawable int64
}

// CaptchaChallenge is an issued captcha awaiting an answer
type CaptchaChallenge struct {
	Code     string
	IssuedAt time.Time
}

// CaptchaResult represents a correct captcha solution and its reward
type CaptchaResult struct {
	Reward          int64
	NewWallet       int64
	NewWithdrawable int64
}

// WithdrawResult represents a successfully created withdrawal request
type WithdrawResult struct {
	RequestID       int64
	Amount          int64
	NewWallet       int64
	NewWithdrawable int64
}
