package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Sheets    SheetsConfig
	Mongo     MongoConfig
	Monitor   MonitorConfig
	Redis     RedisConfig
	Email     EmailConfig
	Telegram  TelegramConfig
	Twilio    TwilioConfig
	Reminders RemindersConfig
	Commands  CommandsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	RequestTimeout  time.Duration
}

// MongoConfig holds settings for the transfer intent log.
type MongoConfig struct {
	URI    string
	DBName string
}

// MonitorConfig holds the ledger watch list and scan cadence.
type MonitorConfig struct {
	Ledgers  []string
	Interval time.Duration
	DedupTTL time.Duration
}

// RedisConfig enables the persistent alert dedup store when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// EmailConfig contains SMTP settings for the email alert channel.
type EmailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	To       string
}

// TelegramConfig contains Bot API credentials for the telegram channel.
type TelegramConfig struct {
	BotToken string
	ChatID   string
}

// TwilioConfig contains credentials for the WhatsApp-over-Twilio channel.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
	To         string
}

// RemindersConfig points at the event reminder file and its daily schedule.
type RemindersConfig struct {
	Path         string
	CronSchedule string
	WindowDays   int
}

// CommandsConfig enables the Telegram buy/add command bot when Ledger is
// set alongside the Telegram credentials.
type CommandsConfig struct {
	Ledger       string
	PollInterval time.Duration
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are acceptable when configuration comes from
		// the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			RequestTimeout:  getenvDuration("SHEETS_REQUEST_TIMEOUT", 15*time.Second),
		},
		Mongo: MongoConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "stockwatch"),
		},
		Monitor: MonitorConfig{
			Ledgers:  splitList(os.Getenv("MONITOR_LEDGERS")),
			Interval: getenvDuration("MONITOR_INTERVAL", 60*time.Second),
			DedupTTL: getenvDuration("ALERT_DEDUP_TTL", 24*time.Hour),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getenvInt("REDIS_DB", 0),
		},
		Email: EmailConfig{
			Host:     getenvWithDefault("SMTP_HOST", "smtp.gmail.com"),
			Port:     getenvWithDefault("SMTP_PORT", "587"),
			Username: os.Getenv("SENDER_EMAIL"),
			Password: os.Getenv("SENDER_PASSWORD"),
			From:     os.Getenv("SENDER_EMAIL"),
			To:       os.Getenv("RECEIVER_EMAIL"),
		},
		Telegram: TelegramConfig{
			BotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
			ChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
		},
		Twilio: TwilioConfig{
			AccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
			AuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
			From:       getenvWithDefault("TWILIO_WHATSAPP_FROM", "whatsapp:+14155238886"),
			To:         os.Getenv("WHATSAPP_TO"),
		},
		Reminders: RemindersConfig{
			Path:         os.Getenv("REMINDERS_PATH"),
			CronSchedule: getenvWithDefault("REMINDERS_CRON_SCHEDULE", "0 8 * * *"),
			WindowDays:   getenvInt("REMINDERS_WINDOW_DAYS", 15),
		},
		Commands: CommandsConfig{
			Ledger:       os.Getenv("COMMAND_LEDGER"),
			PollInterval: getenvDuration("COMMAND_POLL_INTERVAL", 5*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Sheets.CredentialsPath == "" {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided")
	}

	if c.Sheets.RequestTimeout <= 0 {
		return errors.New("SHEETS_REQUEST_TIMEOUT must be positive")
	}

	if c.Mongo.URI == "" {
		return errors.New("MONGODB_URI must be provided")
	}

	if c.Monitor.Interval <= 0 {
		return errors.New("MONITOR_INTERVAL must be positive")
	}

	if c.Monitor.DedupTTL <= 0 {
		return errors.New("ALERT_DEDUP_TTL must be positive")
	}

	if c.Reminders.WindowDays < 0 {
		return errors.New("REMINDERS_WINDOW_DAYS must not be negative")
	}

	// Channels and the watched ledger list stay optional: the HTTP surface
	// works without them and the scheduler skips jobs that lack config.
	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
