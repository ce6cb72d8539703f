package telegram

import (
	"context"
	"time"

	"signal-desk/config"
	"signal-desk/internal/service"
	"signal-desk/pkg/logger"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gopkg.in/telebot.v3"
)

type TelegramBotHandler struct {
	ctx       context.Context
	cfg       *config.Config
	bot       *telebot.Bot
	log       *logger.Logger
	echo      *echo.Echo
	validator *goValidator.Validate
	service   *service.Service
	polling   bool
}

func NewTelegramBotHandler(
	ctx context.Context,
	cfg *config.Config,
	log *logger.Logger,
	bot *telebot.Bot,
	echo *echo.Echo,
	validator *goValidator.Validate,
	service *service.Service) *TelegramBotHandler {
	return &TelegramBotHandler{
		ctx:       ctx,
		cfg:       cfg,
		log:       log,
		bot:       bot,
		echo:      echo,
		validator: validator,
		service:   service,
		polling:   cfg.Telegram.WebhookURL == "",
	}
}

// Start connects the bot. With a webhook URL configured, updates arrive
// through the echo route; otherwise the bot long-polls until Stop.
// RegisterHandlers must run first.
func (t *TelegramBotHandler) Start() {
	t.log.Info("Starting Telegram bot...")

	if t.polling {
		t.log.Info("Telegram webhook is disabled, using long polling")
		t.bot.Start()
		return
	}

	t.log.Info("Setting webhook URL", logger.StringField("webhook_url", t.cfg.Telegram.WebhookURL))
	if err := t.bot.SetWebhook(&telebot.Webhook{
		Endpoint: &telebot.WebhookEndpoint{
			PublicURL: t.cfg.Telegram.WebhookURL,
		},
	}); err != nil {
		t.log.Error("Failed to set telegram webhook", logger.ErrorField(err))
	}
}

func (t *TelegramBotHandler) Stop() {
	t.log.Info("Stopping Telegram bot...")
	if !t.polling {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stopDone := make(chan struct{})
	go func() {
		t.bot.Stop()
		close(stopDone)
	}()

	select {
	case <-stopDone:
		t.log.Info("Telegram bot stopped successfully")
	case <-ctx.Done():
		t.log.Warn("Timeout while stopping bot, forcing shutdown")
	}
}
