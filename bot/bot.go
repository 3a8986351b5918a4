package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"pesobot/captcha"
	"pesobot/events"
	"pesobot/service"
)

// Config holds bot configuration
type Config struct {
	Token   string
	AdminID int64
}

type Bot struct {
	config          Config
	api             *tgbotapi.BotAPI
	accountService  service.AccountService
	captchaService  service.CaptchaService
	gameService     service.GameService
	withdrawService service.WithdrawService
	renderer        *captcha.Renderer
	eventBus        *events.Bus
}

func New(config Config, accountService service.AccountService, captchaService service.CaptchaService, gameService service.GameService, withdrawService service.WithdrawService, renderer *captcha.Renderer, eventBus *events.Bus) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating telegram session: %w", err)
	}

	bot := &Bot{
		config:          config,
		api:             api,
		accountService:  accountService,
		captchaService:  captchaService,
		gameService:     gameService,
		withdrawService: withdrawService,
		renderer:        renderer,
		eventBus:        eventBus,
	}

	// Nudge the admin whenever a withdrawal request lands
	if config.AdminID != 0 {
		eventBus.Subscribe(events.EventTypeWithdrawalRequested, bot.notifyWithdrawalRequested)
		log.Info("Admin withdrawal notifications enabled")
	}

	log.Infof("Authorized as @%s", api.Self.UserName)
	return bot, nil
}

// Run consumes Telegram updates until the context is cancelled. Each
// update is handled on its own goroutine; per-account serialization is
// the ledger store's job, not the router's.
func (b *Bot) Run(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

// notifyWithdrawalRequested delivers a withdrawal review nudge to the admin
func (b *Bot) notifyWithdrawalRequested(ctx context.Context, event events.Event) {
	e, ok := event.(events.WithdrawalRequestedEvent)
	if !ok {
		return
	}

	name := e.Username
	if name == "" {
		name = fmt.Sprintf("%d", e.TelegramID)
	}

	msg := tgbotapi.NewMessage(b.config.AdminID, fmt.Sprintf(
		"🔔 New withdrawal request #%d\nUser: %s\nAmount: %s\nUse /pending_withdrawals to review.",
		e.RequestID, name, FormatPesos(e.Amount)))
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).Error("Failed to notify admin of withdrawal request")
	}
}
