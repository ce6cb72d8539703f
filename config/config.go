package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrMissingConfig = errors.New("missing required config")

const (
	ChannelGoogleChat = "google_chat"
	ChannelPushover   = "pushover"
	ChannelTelegram   = "telegram"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendSheets   = "sheets"
	BackendNone     = "none"
)

type Config struct {
	Log        Logger           `mapstructure:"logger"`
	DB         Database         `mapstructure:"database"`
	Redis      Redis            `mapstructure:"redis"`
	API        API              `mapstructure:"api"`
	Signal     Signal           `mapstructure:"signal"`
	Portfolio  Portfolio        `mapstructure:"portfolio"`
	Journal    Journal          `mapstructure:"journal"`
	Notifier   Notifier         `mapstructure:"notifier"`
	GoogleChat GoogleChatConfig `mapstructure:"google_chat"`
	Pushover   PushoverConfig   `mapstructure:"pushover"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Cache      Cache            `mapstructure:"cache"`
	Scheduler  Scheduler        `mapstructure:"scheduler"`
	Backtest   Backtest         `mapstructure:"backtest"`
	Ingest     Ingest           `mapstructure:"ingest"`
	Gemini     Gemini           `mapstructure:"gemini"`
	Neo4j      Neo4j            `mapstructure:"neo4j"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Key      string `mapstructure:"key"`
}

type API struct {
	Port               int           `mapstructure:"port"`
	APIKey             string        `mapstructure:"api_key"`
	RateLimitPerSecond int           `mapstructure:"rate_limit_per_second"`
	RateLimitBurst     int           `mapstructure:"rate_limit_burst"`
	SlowRequest        time.Duration `mapstructure:"slow_request"`
}

// Signal holds the single symbol/trigger pair that produces a BUY.
type Signal struct {
	Symbol         string        `mapstructure:"symbol"`
	Trigger        string        `mapstructure:"trigger"`
	Conviction     float64       `mapstructure:"conviction"`
	NotifyCooldown time.Duration `mapstructure:"notify_cooldown"`
	ScanConcurrent int           `mapstructure:"scan_concurrency"`
}

type Portfolio struct {
	Backend string `mapstructure:"backend"`
}

type Journal struct {
	Backend string      `mapstructure:"backend"`
	Sheets  SheetConfig `mapstructure:"sheets"`
}

type SheetConfig struct {
	CredentialsFile string        `mapstructure:"credentials_file"`
	SpreadsheetID   string        `mapstructure:"spreadsheet_id"`
	Range           string        `mapstructure:"range"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

type Notifier struct {
	Channels   []string      `mapstructure:"channels"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RetryCount int           `mapstructure:"retry_count"`
	AlertLevel string        `mapstructure:"alert_level"`
}

type GoogleChatConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
}

type PushoverConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	Token    string `mapstructure:"token"`
	User     string `mapstructure:"user"`
	Priority int    `mapstructure:"priority"`
}

type TelegramConfig struct {
	BotToken                  string        `mapstructure:"bot_token"`
	ChatID                    int64         `mapstructure:"chat_id"`
	WebhookURL                string        `mapstructure:"webhook_url"`
	TimeoutDuration           time.Duration `mapstructure:"timeout_duration"`
	MaxGlobalRequestPerSecond int           `mapstructure:"max_global_request_per_second"`
	MaxChatRequestPerSecond   int           `mapstructure:"max_chat_request_per_second"`
	RatelimitExpireDuration   time.Duration `mapstructure:"ratelimit_expire_duration"`
	RateLimitCleanupDuration  time.Duration `mapstructure:"rate_limit_cleanup_duration"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

type Scheduler struct {
	Enabled   bool     `mapstructure:"enabled"`
	ScanCron  string   `mapstructure:"scan_cron"`
	Watchlist []string `mapstructure:"watchlist"`
	Trigger   string   `mapstructure:"trigger"`
	Timeframe string   `mapstructure:"timeframe"`
}

type Backtest struct {
	File             string        `mapstructure:"file"`
	DataDir          string        `mapstructure:"data_dir"`
	Cash             float64       `mapstructure:"cash"`
	Commission       float64       `mapstructure:"commission"`
	Slippage         float64       `mapstructure:"slippage"`
	PositionFraction float64       `mapstructure:"position_fraction"`
	EntryScores      []float64     `mapstructure:"entry_scores"`
	ExitScores       []float64     `mapstructure:"exit_scores"`
	MaxConcurrency   int           `mapstructure:"max_concurrency"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

type Ingest struct {
	Dir                 string `mapstructure:"dir"`
	BatchSize           int    `mapstructure:"batch_size"`
	EmbeddingModel      string `mapstructure:"embedding_model"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int    `mapstructure:"max_token_per_minute"`
}

type Gemini struct {
	APIKey string `mapstructure:"api_key"`
}

type Neo4j struct {
	URI      string `mapstructure:"uri"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")

	v.SetDefault("api.port", 8080)
	v.SetDefault("api.rate_limit_per_second", 10)
	v.SetDefault("api.rate_limit_burst", 30)
	v.SetDefault("api.slow_request", "2s")

	v.SetDefault("signal.symbol", "NEM")
	v.SetDefault("signal.trigger", "breakout")
	v.SetDefault("signal.conviction", 8.7)
	v.SetDefault("signal.notify_cooldown", "1h")
	v.SetDefault("signal.scan_concurrency", 8)

	v.SetDefault("portfolio.backend", BackendMemory)
	v.SetDefault("journal.backend", BackendNone)
	v.SetDefault("journal.sheets.range", "Sheet1!A:E")
	v.SetDefault("journal.sheets.timeout", "10s")

	v.SetDefault("notifier.channels", []string{ChannelGoogleChat})
	v.SetDefault("notifier.timeout", "10s")
	v.SetDefault("notifier.retry_count", 0)
	v.SetDefault("notifier.alert_level", "error")

	v.SetDefault("pushover.base_url", "https://api.pushover.net")
	v.SetDefault("telegram.timeout_duration", "10s")
	v.SetDefault("telegram.max_global_request_per_second", 30)
	v.SetDefault("telegram.max_chat_request_per_second", 1)
	v.SetDefault("telegram.ratelimit_expire_duration", "10m")
	v.SetDefault("telegram.rate_limit_cleanup_duration", "5m")

	v.SetDefault("cache.default_expiration", "1h")
	v.SetDefault("cache.cleanup_interval", "10m")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.key", "portfolio")

	v.SetDefault("scheduler.scan_cron", "*/30 9-16 * * 1-5")
	v.SetDefault("scheduler.trigger", "breakout")
	v.SetDefault("scheduler.timeframe", "daily")

	v.SetDefault("backtest.file", "historical_signals.csv")
	v.SetDefault("backtest.data_dir", "data")
	v.SetDefault("backtest.cash", 100000)
	v.SetDefault("backtest.commission", 0.0005)
	v.SetDefault("backtest.slippage", 0.001)
	v.SetDefault("backtest.position_fraction", 0.1)
	v.SetDefault("backtest.entry_scores", []float64{6, 7, 8, 9})
	v.SetDefault("backtest.exit_scores", []float64{2, 3, 4})
	v.SetDefault("backtest.max_concurrency", 4)
	v.SetDefault("backtest.timeout", "5m")

	v.SetDefault("ingest.dir", "judgments")
	v.SetDefault("ingest.batch_size", 50)
	v.SetDefault("ingest.embedding_model", "text-embedding-004")
	v.SetDefault("ingest.max_request_per_minute", 600)
	v.SetDefault("ingest.max_token_per_minute", 1000000)

	v.SetDefault("neo4j.uri", "bolt://neo4j:7687")
	v.SetDefault("neo4j.user", "neo4j")
	v.SetDefault("neo4j.database", "neo4j")

	// credentials have no defaults but must be known keys for env lookup
	for _, key := range []string{
		"api.api_key",
		"pushover.token", "pushover.user",
		"telegram.bot_token", "telegram.webhook_url",
		"gemini.api_key", "neo4j.password",
		"redis.password",
		"journal.sheets.credentials_file", "journal.sheets.spreadsheet_id",
		"database.host", "database.user", "database.password", "database.name",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("telegram.chat_id", 0)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	_ = v.BindEnv("google_chat.webhook_url", "GOOGLE_CHAT_WEBHOOK_URL", "GOOGLE_CHAT_WEBHOOK")
}

// Load reads config.yaml from path (or the working directory) and the environment.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// HasChannel reports whether the notifier channel is enabled.
func (c *Config) HasChannel(name string) bool {
	for _, ch := range c.Notifier.Channels {
		if ch == name {
			return true
		}
	}
	return false
}

// Validate checks the credentials required by the enabled notifier channels and
// storage backends.
func (c *Config) Validate() error {
	var missing []string

	for _, ch := range c.Notifier.Channels {
		switch ch {
		case ChannelGoogleChat:
			if c.GoogleChat.WebhookURL == "" {
				missing = append(missing, "google_chat.webhook_url")
			}
		case ChannelPushover:
			if c.Pushover.Token == "" {
				missing = append(missing, "pushover.token")
			}
			if c.Pushover.User == "" {
				missing = append(missing, "pushover.user")
			}
		case ChannelTelegram:
			if c.Telegram.BotToken == "" {
				missing = append(missing, "telegram.bot_token")
			}
			if c.Telegram.ChatID == 0 {
				missing = append(missing, "telegram.chat_id")
			}
		default:
			return fmt.Errorf("unknown notifier channel %q", ch)
		}
	}

	switch c.Portfolio.Backend {
	case BackendMemory, BackendPostgres, BackendRedis:
	default:
		return fmt.Errorf("unknown portfolio backend %q", c.Portfolio.Backend)
	}

	switch c.Journal.Backend {
	case BackendNone, BackendPostgres:
	case BackendSheets:
		if c.Journal.Sheets.SpreadsheetID == "" {
			missing = append(missing, "journal.sheets.spreadsheet_id")
		}
		if c.Journal.Sheets.CredentialsFile == "" {
			missing = append(missing, "journal.sheets.credentials_file")
		}
	default:
		return fmt.Errorf("unknown journal backend %q", c.Journal.Backend)
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}
	return nil
}

// NeedsDatabase reports whether any component is backed by postgres.
func (c *Config) NeedsDatabase() bool {
	return c.Portfolio.Backend == BackendPostgres || c.Journal.Backend == BackendPostgres
}

// ValidateIngest checks the credentials the ingest job needs.
func (c *Config) ValidateIngest() error {
	var missing []string
	if c.Gemini.APIKey == "" {
		missing = append(missing, "gemini.api_key")
	}
	if c.Neo4j.URI == "" {
		missing = append(missing, "neo4j.uri")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}
	return nil
}
