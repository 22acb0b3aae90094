package integrations

import (
	"errors"
	"time"

	"github.com/acoustichub/crm/internal/channel"
	"github.com/acoustichub/crm/internal/config"
	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/sqlc"
)

var (
	ErrIntegrationNotFound = errors.New("integration not found")
	ErrUnsupportedPlatform = errors.New("platform is not supported")
	ErrTermsRequired       = errors.New("terms must be accepted before connecting an integration")
	ErrTermsExpired        = errors.New("terms acceptance expired, reload and try again")
	ErrInvalidConfig       = errors.New("invalid integration config")
)

// TermsMaxAge bounds how long a terms acceptance stays valid for Configure.
const TermsMaxAge = 5 * time.Minute

var allowedPlatforms = []channel.ChannelType{
	channel.ChannelTelegram,
	channel.ChannelInstagram,
	channel.ChannelYouTube,
	channel.ChannelFacebook,
	channel.ChannelWhatsApp,
	channel.ChannelEskizSMS,
}

// Integration is the public view of a credentials row. Config is never exposed.
type Integration struct {
	ID              string     `json:"id"`
	Platform        string     `json:"platform"`
	Name            string     `json:"name,omitempty"`
	IsActive        bool       `json:"isActive"`
	WebhookURL      string     `json:"webhookUrl,omitempty"`
	TermsAcceptedAt *time.Time `json:"termsAcceptedAt,omitempty"`
	LastSyncAt      *time.Time `json:"lastSync,omitempty"`
	CreatedBy       string     `json:"createdBy,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	// SetupError is set by Configure when platform setup failed after saving.
	SetupError      string     `json:"setupError,omitempty"`
}

type ConfigureInput struct {
	Platform        string         `json:"platform" validate:"required"`
	Name            string         `json:"name" validate:"omitempty,max=255"`
	Config          map[string]any `json:"config"`
	TermsAcceptedAt *time.Time     `json:"termsAcceptedAt"`
}

func FromRow(row sqlc.Integration) Integration {
	return Integration{
		ID:              db.UUIDString(row.ID),
		Platform:        row.Platform,
		Name:            row.Name,
		IsActive:        row.IsActive,
		WebhookURL:      db.TextValue(row.WebhookUrl),
		TermsAcceptedAt: db.TimePtrFromPg(row.TermsAcceptedAt),
		LastSyncAt:      db.TimePtrFromPg(row.LastSyncAt),
		CreatedBy:       db.UUIDString(row.CreatedBy),
		CreatedAt:       db.TimeFromPg(row.CreatedAt),
	}
}

// Fallbacks maps platforms to the credentials used when no active row exists.
type Fallbacks map[channel.ChannelType]map[string]any

// FallbacksFromConfig collects the platform credentials set in the config
// file. Platforms with no credentials are left out.
func FallbacksFromConfig(cfg config.Config) Fallbacks {
	out := Fallbacks{}
	if cfg.Telegram.BotToken != "" {
		out[channel.ChannelTelegram] = map[string]any{"botToken": cfg.Telegram.BotToken}
	}
	if cfg.YouTube.APIKey != "" {
		out[channel.ChannelYouTube] = map[string]any{
			"apiKey":      cfg.YouTube.APIKey,
			"channelId":   cfg.YouTube.ChannelID,
			"accessToken": cfg.YouTube.AccessToken,
		}
	}
	if cfg.Eskiz.Email != "" {
		out[channel.ChannelEskizSMS] = map[string]any{
			"email":    cfg.Eskiz.Email,
			"password": cfg.Eskiz.Password,
			"from":     cfg.Eskiz.From,
			"baseUrl":  cfg.Eskiz.BaseURL,
		}
	}
	return out
}
