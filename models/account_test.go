package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAccount_HasPendingCaptcha(t *testing.T) {
	code := "AB3K9"
	empty := ""
	now := time.Now()

	tests := []struct {
		name     string
		account  Account
		expected bool
	}{
		{"no captcha", Account{TelegramID: 1}, false},
		{"active captcha", Account{TelegramID: 1, CaptchaCode: &code, CaptchaIssuedAt: &now}, true},
		{"cleared to empty string", Account{TelegramID: 1, CaptchaCode: &empty}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.account.HasPendingCaptcha())
		})
	}
}

func TestParity_Valid(t *testing.T) {
	assert.True(t, ParityOdd.Valid())
	assert.True(t, ParityEven.Valid())
	assert.False(t, Parity("").Valid())
	assert.False(t, Parity("seven").Valid())
	assert.False(t, Parity("Odd").Valid())
}
