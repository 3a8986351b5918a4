package bot

import (
	"fmt"
	"strings"
)

// FormatPesos formats a currency amount with thousand separators and the
// peso sign
func FormatPesos(amount int64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	str := fmt.Sprintf("%d", amount)
	n := len(str)

	var result strings.Builder
	if negative {
		result.WriteRune('-')
	}
	result.WriteRune('₱')
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}

	return result.String()
}

func helpText(firstName string, withdrawMinimum int64) string {
	return fmt.Sprintf(
		"👋 Hello %s!\n\n"+
			"This bot runs games to earn virtual pesos.\n\n"+
			"Available commands:\n"+
			"/balance - Show your wallet & withdrawable balance\n"+
			"/withdraw <b>amount</b> - Request withdrawal (min %s)\n"+
			"/captcha2earn - Solve a visual captcha to earn ₱1-₱10\n"+
			"/dice <b>odd|even</b> <b>amount</b> - 2x payout on win\n"+
			"/scatter <b>amount</b> - Slot-like spin (2x on win)\n\n"+
			"Type a command to begin. Good luck! 🍀",
		firstName, FormatPesos(withdrawMinimum))
}

func balanceText(wallet, withdrawable, withdrawMinimum int64) string {
	return fmt.Sprintf(
		"💼 <b>Wallet</b>: %s\n"+
			"💳 <b>Withdrawable</b>: %s\n\n"+
			"Wallet = funds you can bet with.\n"+
			"Withdrawable = funds eligible for withdrawal (must be ≥ %s to request).",
		FormatPesos(wallet), FormatPesos(withdrawable), FormatPesos(withdrawMinimum))
}

func diceResultText(roll int, prediction string, stake, payout, profit int64, won bool) string {
	if won {
		return fmt.Sprintf(
			"🎲 Roll: %d — <b>YOU WIN</b>!\nYou bet %s on %s. Payout: %s (2x).\nProfit %s added to withdrawable.\nUse /balance to view totals.",
			roll, FormatPesos(stake), prediction, FormatPesos(payout), FormatPesos(profit))
	}
	return fmt.Sprintf(
		"🎲 Roll: %d — <b>YOU LOSE</b>.\nYou lost %s. Better luck next time! Use /balance to view totals.",
		roll, FormatPesos(stake))
}

func scatterResultText(symbols []string, stake, payout, profit int64, won bool) string {
	reel := strings.Join(symbols, " ")
	if won {
		return fmt.Sprintf(
			"%s\n\n🎉 <b>YOU WIN!</b>\nYou bet %s — payout %s (2x). Profit %s added to withdrawable.\nUse /balance to see totals.",
			reel, FormatPesos(stake), FormatPesos(payout), FormatPesos(profit))
	}
	return fmt.Sprintf(
		"%s\n\n💨 <b>House wins</b> — You lost %s. Better luck next time!\nUse /balance to see totals.",
		reel, FormatPesos(stake))
}
