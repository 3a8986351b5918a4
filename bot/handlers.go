package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"pesobot/config"
	"pesobot/models"
	"pesobot/service"
)

// spinFrameDelay is the pause between cosmetic scatter reel frames
const spinFrameDelay = 500 * time.Millisecond

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.From.IsBot {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"telegramID": msg.From.ID,
				"panic":      r,
			}).Error("Update handler panicked")
		}
	}()

	switch msg.Command() {
	case "start", "help":
		b.handleStart(ctx, msg)
	case "balance":
		b.handleBalance(ctx, msg)
	case "captcha2earn":
		b.handleCaptcha(ctx, msg)
	case "dice":
		b.handleDice(ctx, msg)
	case "scatter":
		b.handleScatter(ctx, msg)
	case "withdraw":
		b.handleWithdraw(ctx, msg)
	case "pending_withdrawals":
		b.handlePendingWithdrawals(ctx, msg)
	default:
		b.handleText(ctx, msg)
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	if _, err := b.accountService.GetOrCreateAccount(ctx, msg.From.ID, displayName(msg.From)); err != nil {
		b.replyError(msg, err)
		return
	}
	b.reply(msg, helpText(msg.From.FirstName, config.Get().WithdrawMinimum))
}

func (b *Bot) handleBalance(ctx context.Context, msg *tgbotapi.Message) {
	account, err := b.accountService.GetOrCreateAccount(ctx, msg.From.ID, displayName(msg.From))
	if err != nil {
		b.replyError(msg, err)
		return
	}
	b.reply(msg, balanceText(account.Wallet, account.Withdrawable, config.Get().WithdrawMinimum))
}

func (b *Bot) handleCaptcha(ctx context.Context, msg *tgbotapi.Message) {
	challenge, err := b.captchaService.Issue(ctx, msg.From.ID, displayName(msg.From))
	if err != nil {
		b.replyError(msg, err)
		return
	}

	image, err := b.renderer.Render(challenge.Code)
	if err != nil {
		log.WithError(err).Error("Failed to render captcha image")
		b.reply(msg, "Something went wrong, please try /captcha2earn again.")
		return
	}

	photo := tgbotapi.NewPhoto(msg.Chat.ID, tgbotapi.FileBytes{
		Name:  "captcha.png",
		Bytes: image,
	})
	photo.Caption = "✅ Solve the captcha: send the text exactly (case-insensitive) as a message to this chat.\nYou will earn a random ₱1-₱10 if correct."
	if _, err := b.api.Send(photo); err != nil {
		log.WithError(err).Error("Failed to send captcha image")
	}
}

func (b *Bot) handleDice(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 2 {
		b.reply(msg, "Usage: /dice odd|even amount\nExample: /dice odd 50")
		return
	}

	prediction := models.Parity(strings.ToLower(args[0]))
	if !prediction.Valid() {
		b.reply(msg, "Choice must be 'odd' or 'even'.")
		return
	}

	stake, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		b.reply(msg, "Amount must be a whole number (pesos).")
		return
	}

	result, err := b.gameService.PlayDice(ctx, msg.From.ID, displayName(msg.From), prediction, stake)
	if err != nil {
		b.replyError(msg, err)
		return
	}

	profit := result.Payout - result.Stake
	b.reply(msg, diceResultText(result.Roll, string(result.Prediction), result.Stake, result.Payout, profit, result.Won))
}

func (b *Bot) handleScatter(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 1 {
		b.reply(msg, "Usage: /scatter amount\nExample: /scatter 50")
		return
	}

	stake, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.reply(msg, "Amount must be a whole number (pesos).")
		return
	}

	// The outcome is fully settled before the first frame is shown; the
	// spin below is pure presentation
	result, err := b.gameService.PlayScatter(ctx, msg.From.ID, displayName(msg.From), stake)
	if err != nil {
		b.replyError(msg, err)
		return
	}

	spinning, err := b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, "🎰 Spinning..."))
	if err != nil {
		log.WithError(err).Error("Failed to send spin message")
		return
	}

frames:
	for _, frame := range result.Frames {
		edit := tgbotapi.NewEditMessageText(spinning.Chat.ID, spinning.MessageID, strings.Join(frame, " "))
		if _, err := b.api.Send(edit); err != nil {
			log.WithError(err).Debug("Failed to edit spin frame")
		}
		select {
		case <-ctx.Done():
			break frames
		case <-time.After(spinFrameDelay):
		}
	}

	profit := result.Payout - result.Stake
	final := tgbotapi.NewEditMessageText(spinning.Chat.ID, spinning.MessageID,
		scatterResultText(result.Symbols, result.Stake, result.Payout, profit, result.Won))
	final.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(final); err != nil {
		log.WithError(err).Error("Failed to send spin result")
	}
}

func (b *Bot) handleWithdraw(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 1 {
		b.reply(msg, fmt.Sprintf("Usage: /withdraw amount\nMinimum withdrawal: %s", FormatPesos(config.Get().WithdrawMinimum)))
		return
	}

	amount, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.reply(msg, "Amount must be a whole number.")
		return
	}

	result, err := b.withdrawService.Request(ctx, msg.From.ID, displayName(msg.From), amount)
	if err != nil {
		b.replyError(msg, err)
		return
	}

	b.reply(msg, fmt.Sprintf(
		"✅ Withdrawal request #%d created for %s. An admin will review it.",
		result.RequestID, FormatPesos(result.Amount)))
}

func (b *Bot) handlePendingWithdrawals(ctx context.Context, msg *tgbotapi.Message) {
	// The service exposes the listing unconditionally; access is gated here
	if b.config.AdminID == 0 || msg.From.ID != b.config.AdminID {
		b.reply(msg, "Unauthorized.")
		return
	}

	pending, err := b.withdrawService.ListPending(ctx)
	if err != nil {
		b.replyError(msg, err)
		return
	}
	if len(pending) == 0 {
		b.reply(msg, "No pending withdrawals.")
		return
	}

	var lines []string
	for _, w := range pending {
		name := w.Username
		if name == "" {
			name = fmt.Sprintf("%d", w.TelegramID)
		}
		lines = append(lines, fmt.Sprintf("ID:%d user:%s amount:%s time:%s",
			w.ID, name, FormatPesos(w.Amount), w.CreatedAt.Format("2006-01-02 15:04:05")))
	}
	b.reply(msg, strings.Join(lines, "\n"))
}

// handleText routes free text to captcha verification and otherwise
// answers with the generic fallback
func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Text == "" {
		return
	}

	result, err := b.captchaService.Verify(ctx, msg.From.ID, displayName(msg.From), msg.Text)
	switch {
	case err == nil:
		b.reply(msg, fmt.Sprintf(
			"✅ Correct! You earned %s. Your withdrawable and wallet increased by %s.\nUse /balance to see totals.",
			FormatPesos(result.Reward), FormatPesos(result.Reward)))
	case errors.Is(err, service.ErrWrongCaptcha):
		b.reply(msg, "❌ That's not correct. Try again or use /captcha2earn to get a new captcha.")
	case errors.Is(err, service.ErrNoActiveCaptcha):
		b.reply(msg, "I didn't recognize that. Use /help to see available commands.")
	default:
		b.replyError(msg, err)
	}
}

// replyError maps service errors to user-visible messages
func (b *Bot) replyError(msg *tgbotapi.Message, err error) {
	cfg := config.Get()
	switch {
	case errors.Is(err, service.ErrInvalidStake):
		b.reply(msg, "Bet must be positive.")
	case errors.Is(err, service.ErrInvalidAmount):
		b.reply(msg, "Amount must be positive.")
	case errors.Is(err, service.ErrBelowMinimum):
		b.reply(msg, fmt.Sprintf("Minimum withdrawal amount is %s.", FormatPesos(cfg.WithdrawMinimum)))
	case errors.Is(err, service.ErrInsufficientFunds):
		b.reply(msg, "You don't have enough funds for that. Use /balance to see totals.")
	default:
		log.WithError(err).WithField("telegramID", msg.From.ID).Error("Command failed")
		b.reply(msg, "Something went wrong, please try again.")
	}
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ParseMode = tgbotapi.ModeHTML
	reply.ReplyToMessageID = msg.MessageID
	if _, err := b.api.Send(reply); err != nil {
		log.WithError(err).Error("Failed to send reply")
	}
}

// displayName picks the best-effort label for an account, preferring the
// handle over the profile name
func displayName(user *tgbotapi.User) string {
	if user.UserName != "" {
		return user.UserName
	}
	return strings.TrimSpace(user.FirstName + " " + user.LastName)
}
