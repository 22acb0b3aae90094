// Package integrations stores platform credentials and resolves the active
// credentials for each platform.
package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/acoustichub/crm/internal/channel"
	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/sqlc"
)

type Store interface {
	CreateIntegration(ctx context.Context, arg sqlc.CreateIntegrationParams) (sqlc.Integration, error)
	ListIntegrations(ctx context.Context) ([]sqlc.Integration, error)
	GetIntegrationByID(ctx context.Context, id pgtype.UUID) (sqlc.Integration, error)
	GetActiveIntegrationByPlatform(ctx context.Context, platform string) (sqlc.Integration, error)
	SetIntegrationActive(ctx context.Context, arg sqlc.SetIntegrationActiveParams) (sqlc.Integration, error)
	SetIntegrationWebhookURL(ctx context.Context, arg sqlc.SetIntegrationWebhookURLParams) error
	TouchIntegrationSync(ctx context.Context, id pgtype.UUID) error
	DeleteIntegration(ctx context.Context, id pgtype.UUID) (int64, error)
}

// Platforms is the registry subset used to validate and set up credentials.
type Platforms interface {
	NormalizeConfig(channelType channel.ChannelType, raw map[string]any) (map[string]any, error)
	GetConfigurer(channelType channel.ChannelType) (channel.Configurer, bool)
}

type Service struct {
	store     Store
	platforms Platforms
	fallbacks Fallbacks
	now       func() time.Time
	logger    *slog.Logger
}

func NewService(log *slog.Logger, store Store, platforms Platforms, fallbacks Fallbacks) *Service {
	if log == nil {
		log = slog.Default()
	}
	if fallbacks == nil {
		fallbacks = Fallbacks{}
	}
	return &Service{
		store:     store,
		platforms: platforms,
		fallbacks: fallbacks,
		now:       time.Now,
		logger:    log.With(slog.String("service", "integrations")),
	}
}

// Configure validates and stores new credentials for a platform, then runs
// platform side setup such as webhook registration. A failed setup is logged
// and reported on the returned Integration; the saved row is kept active.
func (s *Service) Configure(ctx context.Context, input ConfigureInput, userID string) (Integration, error) {
	platform := channel.ChannelType(strings.ToLower(strings.TrimSpace(input.Platform)))
	if !slices.Contains(allowedPlatforms, platform) {
		return Integration{}, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, input.Platform)
	}
	if input.TermsAcceptedAt == nil || input.TermsAcceptedAt.IsZero() {
		return Integration{}, ErrTermsRequired
	}
	if s.now().Sub(*input.TermsAcceptedAt) > TermsMaxAge {
		return Integration{}, ErrTermsExpired
	}
	createdBy, err := db.OptionalUUID(userID)
	if err != nil {
		return Integration{}, fmt.Errorf("%w: user id", ErrInvalidConfig)
	}
	creds, err := s.platforms.NormalizeConfig(platform, maps.Clone(input.Config))
	if err != nil {
		return Integration{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if creds == nil {
		creds = map[string]any{}
	}

	raw, err := json.Marshal(creds)
	if err != nil {
		return Integration{}, fmt.Errorf("marshal config: %w", err)
	}
	row, err := s.store.CreateIntegration(ctx, sqlc.CreateIntegrationParams{
		Platform:        platform.String(),
		Name:            strings.TrimSpace(input.Name),
		Config:          raw,
		TermsAcceptedAt: db.Timestamptz(*input.TermsAcceptedAt),
		CreatedBy:       createdBy,
	})
	if err != nil {
		return Integration{}, fmt.Errorf("create integration: %w", err)
	}
	it := FromRow(row)
	s.logger.Info("integration configured",
		slog.String("platform", platform.String()),
		slog.String("integration_id", it.ID),
	)

	configurer, ok := s.platforms.GetConfigurer(platform)
	if !ok {
		return it, nil
	}
	webhookURL, err := configurer.Configure(ctx, channel.Config{ID: it.ID, Channel: platform, Credentials: creds})
	if err != nil {
		s.logger.Warn("platform setup failed",
			slog.String("platform", platform.String()),
			slog.String("integration_id", it.ID),
			slog.Any("error", err),
		)
		it.SetupError = err.Error()
		return it, nil
	}
	if webhookURL == "" {
		return it, nil
	}
	if err := s.store.SetIntegrationWebhookURL(ctx, sqlc.SetIntegrationWebhookURLParams{ID: row.ID, WebhookUrl: db.Text(webhookURL)}); err != nil {
		return it, fmt.Errorf("store webhook url: %w", err)
	}
	it.WebhookURL = webhookURL
	return it, nil
}

// List returns every integration ordered by platform, newest first within a platform.
func (s *Service) List(ctx context.Context) ([]Integration, error) {
	rows, err := s.store.ListIntegrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list integrations: %w", err)
	}
	out := make([]Integration, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromRow(row))
	}
	slices.SortStableFunc(out, func(a, b Integration) int { return strings.Compare(a.Platform, b.Platform) })
	return out, nil
}

func (s *Service) Toggle(ctx context.Context, integrationID string, active bool) (Integration, error) {
	id, err := db.ParseUUID(integrationID)
	if err != nil {
		return Integration{}, ErrIntegrationNotFound
	}
	row, err := s.store.SetIntegrationActive(ctx, sqlc.SetIntegrationActiveParams{ID: id, IsActive: active})
	if errors.Is(err, pgx.ErrNoRows) {
		return Integration{}, ErrIntegrationNotFound
	}
	if err != nil {
		return Integration{}, fmt.Errorf("toggle integration: %w", err)
	}
	return FromRow(row), nil
}

func (s *Service) Delete(ctx context.Context, integrationID string) error {
	id, err := db.ParseUUID(integrationID)
	if err != nil {
		return ErrIntegrationNotFound
	}
	n, err := s.store.DeleteIntegration(ctx, id)
	if err != nil {
		return fmt.Errorf("delete integration: %w", err)
	}
	if n == 0 {
		return ErrIntegrationNotFound
	}
	return nil
}

// ActiveConfig returns the newest active credentials for the platform, then
// the config file fallback, else channel.ErrConfigNotFound.
func (s *Service) ActiveConfig(ctx context.Context, channelType channel.ChannelType) (channel.Config, error) {
	row, err := s.store.GetActiveIntegrationByPlatform(ctx, channelType.String())
	switch {
	case err == nil:
		creds, err := channel.DecodeConfigMap(row.Config)
		if err != nil {
			return channel.Config{}, fmt.Errorf("decode %s config: %w", channelType, err)
		}
		return channel.Config{
			ID:          db.UUIDString(row.ID),
			Channel:     channelType,
			Credentials: creds,
			WebhookURL:  db.TextValue(row.WebhookUrl),
			LastSyncAt:  db.TimeFromPg(row.LastSyncAt),
		}, nil
	case errors.Is(err, pgx.ErrNoRows):
	default:
		return channel.Config{}, fmt.Errorf("load %s integration: %w", channelType, err)
	}
	if creds, ok := s.fallbacks[channelType]; ok {
		return channel.Config{Channel: channelType, Credentials: maps.Clone(creds)}, nil
	}
	return channel.Config{}, fmt.Errorf("%w: %s", channel.ErrConfigNotFound, channelType)
}

// TouchSync records a completed sync. Fallback configs have no row and are skipped.
func (s *Service) TouchSync(ctx context.Context, cfg channel.Config) error {
	if cfg.ID == "" {
		return nil
	}
	id, err := db.ParseUUID(cfg.ID)
	if err != nil {
		return fmt.Errorf("%w: integration id", ErrInvalidConfig)
	}
	if err := s.store.TouchIntegrationSync(ctx, id); err != nil {
		return fmt.Errorf("touch integration sync: %w", err)
	}
	return nil
}
