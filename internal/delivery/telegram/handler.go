package telegram

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"signal-desk/internal/dto"
	"signal-desk/pkg/logger"

	"github.com/labstack/echo/v4"
	"gopkg.in/telebot.v3"
)

func (t *TelegramBotHandler) WithContext(handler func(ctx context.Context, c telebot.Context) error) func(c telebot.Context) error {
	return func(c telebot.Context) error {
		ctx, cancel := context.WithTimeout(t.ctx, time.Minute)
		defer cancel()

		return handler(ctx, c)
	}
}

// onlyConfiguredChat drops updates from chats other than telegram.chat_id.
func (t *TelegramBotHandler) onlyConfiguredChat(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		if t.cfg.Telegram.ChatID != 0 && (c.Chat() == nil || c.Chat().ID != t.cfg.Telegram.ChatID) {
			t.log.Warn("Ignoring update from unknown chat")
			return nil
		}
		return next(c)
	}
}

func (t *TelegramBotHandler) RegisterHandlers() {
	if t.cfg.Telegram.WebhookURL != "" {
		t.echo.POST("/api/v1/telegram/webhook", func(c echo.Context) error {
			var update telebot.Update
			if err := c.Bind(&update); err != nil {
				t.log.ErrorContext(t.ctx, "Cannot bind JSON", logger.ErrorField(err))
				return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
			}
			t.bot.ProcessUpdate(update)
			return c.JSON(http.StatusOK, dto.NewBaseResponse(http.StatusOK, "ok", nil))
		})
	}

	t.bot.Use(t.onlyConfiguredChat)
	t.bot.Handle("/start", t.WithContext(t.handleHelp))
	t.bot.Handle("/help", t.WithContext(t.handleHelp))
	t.bot.Handle("/signal", t.WithContext(t.handleSignal))
	t.bot.Handle("/portfolio", t.WithContext(t.handlePortfolio))
}

func (t *TelegramBotHandler) handleHelp(ctx context.Context, c telebot.Context) error {
	return c.Send(helpText)
}

func (t *TelegramBotHandler) handleSignal(ctx context.Context, c telebot.Context) error {
	req, err := parseSignalArgs(c.Args())
	if err == nil {
		err = t.validator.Struct(req)
	}
	if err != nil {
		return c.Send(fmt.Sprintf("%s\n\n%s", err.Error(), signalUsage))
	}

	resp := t.service.SignalService.Evaluate(ctx, req)
	return c.Send(formatSignal(resp))
}

func (t *TelegramBotHandler) handlePortfolio(ctx context.Context, c telebot.Context) error {
	resp, err := t.service.PortfolioService.Positions(ctx)
	if err != nil {
		t.log.ErrorContext(ctx, "Failed to load portfolio", logger.ErrorField(err))
		return c.Send("Failed to load portfolio, please try again later")
	}
	return c.Send(formatPortfolio(resp.Positions))
}
