package cmd

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"pesobot/bot"
	"pesobot/captcha"
	"pesobot/config"
	"pesobot/database"
	"pesobot/events"
	"pesobot/repository"
	"pesobot/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting pesobot...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established")

	// Initialize event bus and unit of work factory
	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	rng := service.SystemRand()
	accountService := service.NewAccountService(uowFactory)
	captchaService := service.NewCaptchaService(uowFactory, rng)
	gameService := service.NewGameService(uowFactory, rng)
	withdrawService := service.NewWithdrawService(uowFactory)

	// Initialize captcha image renderer
	renderer, err := captcha.NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to initialize captcha renderer: %w", err)
	}

	// Initialize Telegram bot
	botConfig := bot.Config{
		Token:   cfg.TelegramToken,
		AdminID: cfg.AdminID,
	}
	telegramBot, err := bot.New(botConfig, accountService, captchaService, gameService, withdrawService, renderer, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}

	log.Infof("Bot is running in %s mode", cfg.Environment)
	if err := telegramBot.Run(ctx); err != nil {
		return fmt.Errorf("bot stopped with error: %w", err)
	}

	// Cleanup resources
	log.Info("Shutting down...")
	db.Close()
	log.Info("Shutdown completed")

	return nil
}
