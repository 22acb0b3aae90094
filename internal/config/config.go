package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultConfigPath      = "config.toml"
	DefaultHTTPAddr        = ":8080"
	DefaultJWTExpiresIn    = "24h"
	DefaultPGHost          = "127.0.0.1"
	DefaultPGPort          = 5432
	DefaultPGUser          = "postgres"
	DefaultPGDatabase      = "acoustic_crm"
	DefaultPGSSLMode       = "disable"
	DefaultDedupTTL        = "24h"
	DefaultCommentSyncSpec = "@every 5m"
	DefaultEskizBaseURL    = "https://notify.eskiz.uz/api"
	DefaultEskizSender     = "Acoustic"
)

type Config struct {
	Log       LogConfig       `toml:"log"`
	Server    ServerConfig    `toml:"server"`
	Admin     AdminConfig     `toml:"admin"`
	Auth      AuthConfig      `toml:"auth"`
	Postgres  PostgresConfig  `toml:"postgres"`
	Redis     RedisConfig     `toml:"redis"`
	Webhook   WebhookConfig   `toml:"webhook"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Telegram  TelegramConfig  `toml:"telegram"`
	YouTube   YouTubeConfig   `toml:"youtube"`
	Eskiz     EskizConfig     `toml:"eskiz"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type AdminConfig struct {
	Email     string `toml:"email"`
	Password  string `toml:"password"`
	FirstName string `toml:"first_name"`
	LastName  string `toml:"last_name"`
}

type AuthConfig struct {
	JWTSecret    string `toml:"jwt_secret"`
	JWTExpiresIn string `toml:"jwt_expires_in"`
}

// ExpiresIn parses JWTExpiresIn, falling back to the default on empty or invalid input.
func (c AuthConfig) ExpiresIn() time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(c.JWTExpiresIn))
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultJWTExpiresIn)
	}
	return d
}

type PostgresConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"sslmode"`
}

// DSN returns a postgres connection URL usable by both pgx and golang-migrate.
func (c PostgresConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.Database,
	}
	q := u.Query()
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// RedisConfig enables the inbound dedup cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	DedupTTL string `toml:"dedup_ttl"`
}

// TTL parses DedupTTL, falling back to the default on empty or invalid input.
func (c RedisConfig) TTL() time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(c.DedupTTL))
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultDedupTTL)
	}
	return d
}

type WebhookConfig struct {
	// BaseURL is the externally reachable origin used when registering platform webhooks.
	BaseURL string `toml:"base_url"`
	// SecretToken is sent to Telegram on setWebhook and checked on every delivery when set.
	SecretToken string `toml:"secret_token"`
}

type SchedulerConfig struct {
	Enabled         bool   `toml:"enabled"`
	CommentSyncSpec string `toml:"comment_sync_spec"`
}

// TelegramConfig, YouTubeConfig and EskizConfig are fallback credentials used
// when no active integration row exists for the platform.
type TelegramConfig struct {
	BotToken string `toml:"bot_token"`
}

type YouTubeConfig struct {
	APIKey      string `toml:"api_key"`
	ChannelID   string `toml:"channel_id"`
	AccessToken string `toml:"access_token"`
}

type EskizConfig struct {
	BaseURL  string `toml:"base_url"`
	Email    string `toml:"email"`
	Password string `toml:"password"`
	From     string `toml:"from"`
}

func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Admin: AdminConfig{
			Email:     "admin@example.com",
			Password:  "change-your-password-here",
			FirstName: "Super",
			LastName:  "Admin",
		},
		Auth: AuthConfig{
			JWTExpiresIn: DefaultJWTExpiresIn,
		},
		Postgres: PostgresConfig{
			Host:     DefaultPGHost,
			Port:     DefaultPGPort,
			User:     DefaultPGUser,
			Database: DefaultPGDatabase,
			SSLMode:  DefaultPGSSLMode,
		},
		Redis: RedisConfig{
			DedupTTL: DefaultDedupTTL,
		},
		Scheduler: SchedulerConfig{
			Enabled:         true,
			CommentSyncSpec: DefaultCommentSyncSpec,
		},
		Eskiz: EskizConfig{
			BaseURL: DefaultEskizBaseURL,
			From:    DefaultEskizSender,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}
