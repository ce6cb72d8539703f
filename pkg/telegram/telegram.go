package telegram

import (
	"context"
	"strconv"
	"sync"
	"time"

	"signal-desk/config"
	"signal-desk/pkg/logger"
	"signal-desk/pkg/utils"

	"golang.org/x/time/rate"
	"gopkg.in/telebot.v3"
)

// Messenger is the part of *telebot.Bot used for outbound messages.
type Messenger interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

type chatLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// chatRecipient lets us send to a chat id without fetching the chat first.
type chatRecipient int64

func (c chatRecipient) Recipient() string {
	return strconv.FormatInt(int64(c), 10)
}

type TelegramRateLimiter struct {
	cfg           *config.TelegramConfig
	log           *logger.Logger
	globalLimiter *rate.Limiter
	chatLimiters  map[int64]*chatLimiterEntry
	bot           Messenger
	mu            sync.Mutex
	wg            sync.WaitGroup
}

func NewTelegramRateLimiter(cfg *config.TelegramConfig, log *logger.Logger, bot Messenger) *TelegramRateLimiter {
	global := cfg.MaxGlobalRequestPerSecond
	if global <= 0 {
		global = 30
	}
	return &TelegramRateLimiter{
		cfg:           cfg,
		log:           log,
		bot:           bot,
		globalLimiter: rate.NewLimiter(rate.Limit(global), global),
		chatLimiters:  make(map[int64]*chatLimiterEntry),
	}
}

// SendMessage sends text to chatID once both the global and the per-chat limiter allow it.
func (t *TelegramRateLimiter) SendMessage(ctx context.Context, chatID int64, message string, opts ...interface{}) error {
	if err := t.checkRateLimit(ctx, chatID); err != nil {
		return err
	}
	_, err := t.bot.Send(chatRecipient(chatID), message, opts...)
	if err != nil {
		t.log.ErrorContext(ctx, "Failed to send telegram message", logger.ErrorField(err))
		return err
	}
	return nil
}

func (t *TelegramRateLimiter) getChatLimiter(chatID int64) *chatLimiterEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	if limiter, exists := t.chatLimiters[chatID]; exists {
		limiter.lastAccess = time.Now()
		return limiter
	}

	perChat := t.cfg.MaxChatRequestPerSecond
	if perChat <= 0 {
		perChat = 1
	}
	t.chatLimiters[chatID] = &chatLimiterEntry{
		limiter:    rate.NewLimiter(rate.Limit(perChat), perChat),
		lastAccess: time.Now(),
	}
	return t.chatLimiters[chatID]
}

func (t *TelegramRateLimiter) checkRateLimit(ctx context.Context, chatID int64) error {
	chatLimiter := t.getChatLimiter(chatID)

	if err := t.globalLimiter.Wait(ctx); err != nil {
		t.log.ErrorContext(ctx, "Failed to wait for global rate limit", logger.ErrorField(err))
		return err
	}
	if err := chatLimiter.limiter.Wait(ctx); err != nil {
		t.log.ErrorContext(ctx, "Failed to wait for chat rate limit", logger.ErrorField(err))
		return err
	}
	return nil
}

func (t *TelegramRateLimiter) StartCleanupExpired(ctx context.Context) {
	if t.cfg.RateLimitCleanupDuration <= 0 {
		return
	}
	t.wg.Add(1)
	utils.GoSafe(func() {
		defer t.wg.Done()
		ticker := time.NewTicker(t.cfg.RateLimitCleanupDuration)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				t.log.Info("Received signal to stop Telegram rate limiter cleanup expired")
				return
			case <-ticker.C:
				t.mu.Lock()
				now := time.Now()
				for chatID, entry := range t.chatLimiters {
					if now.Sub(entry.lastAccess) > t.cfg.RatelimitExpireDuration {
						delete(t.chatLimiters, chatID)
					}
				}
				t.mu.Unlock()
			}
		}
	})
}

func (t *TelegramRateLimiter) StopCleanupExpired() {
	t.wg.Wait()
	t.log.Info("Telegram rate limiter stopped")
}
