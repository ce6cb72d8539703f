package cmd

import (
	"context"
	"fmt"
	"time"

	"signal-desk/config"
	"signal-desk/internal/repository"
	"signal-desk/pkg/cache"
	"signal-desk/pkg/logger"
	"signal-desk/pkg/notifier"
	"signal-desk/pkg/postgres"
	"signal-desk/pkg/redisdb"
	"signal-desk/pkg/telegram"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/telebot.v3"
)

type AppDependency struct {
	db          *postgres.DB
	redis       *redis.Client
	cfg         *config.Config
	log         *logger.Logger
	validator   *goValidator.Validate
	echo        *echo.Echo
	cache       cache.Cache
	telegram    *telegram.TelegramRateLimiter
	telegramBot *telebot.Bot
	dispatcher  *notifier.Dispatcher
}

// loadConfig loads and validates configuration and builds the base logger.
func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func NewAppDependency(ctx context.Context) (*AppDependency, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		log.Error("Invalid configuration", zap.Error(err))
		return nil, err
	}

	dep := &AppDependency{
		cfg:       cfg,
		log:       log,
		validator: goValidator.New(),
		echo:      echo.New(),
		cache:     cache.NewCache(cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval),
	}
	dep.echo.HideBanner = true

	if cfg.Telegram.BotToken != "" {
		bot, err := telebot.NewBot(telebot.Settings{
			Token:  cfg.Telegram.BotToken,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) {
				log.Error("Telegram bot error", zap.Error(err))
			},
		})
		if err != nil {
			log.Error("Failed to create telegram bot", zap.Error(err))
			return nil, err
		}
		dep.telegramBot = bot
		dep.telegram = telegram.NewTelegramRateLimiter(&cfg.Telegram, log, bot)
		dep.telegram.StartCleanupExpired(ctx)
	}

	dep.dispatcher = notifier.NewDispatcher(log, cfg.Notifier.Timeout, dep.buildNotifiers()...)
	log.Info("Notifier channels ready", zap.Strings("channels", dep.dispatcher.Channels()))

	if cfg.Notifier.AlertLevel != "" {
		level, err := zapcore.ParseLevel(cfg.Notifier.AlertLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid notifier.alert_level: %w", err)
		}
		dep.log = log.WithAlert(dep.dispatcher, level)
	}

	if cfg.NeedsDatabase() {
		db, err := postgres.NewDB(cfg.DB, dep.log)
		if err != nil {
			dep.log.Error("Failed to connect to database", zap.Error(err))
			return nil, err
		}
		dep.db = db
	}

	if cfg.Portfolio.Backend == config.BackendRedis {
		client, err := redisdb.NewClient(cfg.Redis)
		if err != nil {
			dep.log.Error("Failed to connect to redis", zap.Error(err))
			return nil, err
		}
		dep.redis = client
	}

	return dep, nil
}

func (d *AppDependency) buildNotifiers() []notifier.Notifier {
	var out []notifier.Notifier
	for _, ch := range d.cfg.Notifier.Channels {
		switch ch {
		case config.ChannelGoogleChat:
			out = append(out, notifier.NewGoogleChat(d.cfg.GoogleChat.WebhookURL, d.cfg.Notifier.Timeout, d.cfg.Notifier.RetryCount))
		case config.ChannelPushover:
			p := d.cfg.Pushover
			out = append(out, notifier.NewPushover(p.BaseURL, p.Token, p.User, p.Priority, d.cfg.Notifier.Timeout, d.cfg.Notifier.RetryCount))
		case config.ChannelTelegram:
			out = append(out, notifier.NewTelegram(d.telegram, d.cfg.Telegram.ChatID))
		}
	}
	return out
}

func (d *AppDependency) Stores() repository.Stores {
	stores := repository.Stores{Redis: d.redis}
	if d.db != nil {
		stores.DB = d.db.DB
	}
	return stores
}

func (d *AppDependency) Close() error {
	d.log.Info("Closing app dependency")
	d.dispatcher.Wait()
	if d.telegram != nil {
		d.telegram.StopCleanupExpired()
	}
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			d.log.Warn("Failed to close redis", zap.Error(err))
		}
	}
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}
