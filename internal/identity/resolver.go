// Package identity maps platform user ids onto CRM clients, creating the
// client on first contact.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/acoustichub/crm/internal/channel"
	"github.com/acoustichub/crm/internal/clients"
	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/sqlc"
)

var (
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrMissingUserID       = errors.New("external user id is required")
)

// errCreateRaced signals that another writer inserted the same channel first.
var errCreateRaced = errors.New("channel created concurrently")

type Store interface {
	GetChannelByPlatformUser(ctx context.Context, arg sqlc.GetChannelByPlatformUserParams) (sqlc.ClientChannel, error)
	GetClientByID(ctx context.Context, id pgtype.UUID) (sqlc.Client, error)
}

type TxStore interface {
	CreateClient(ctx context.Context, arg sqlc.CreateClientParams) (sqlc.Client, error)
	CreateClientChannel(ctx context.Context, arg sqlc.CreateClientChannelParams) (sqlc.ClientChannel, error)
}

type Transactor interface {
	WithTx(ctx context.Context, fn func(TxStore) error) error
}

// Resolver finds or creates the client behind a platform identity.
type Resolver struct {
	store  Store
	tx     Transactor
	logger *slog.Logger
}

func NewResolver(log *slog.Logger, store Store, tx Transactor) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{
		store:  store,
		tx:     tx,
		logger: log.With(slog.String("service", "identity")),
	}
}

// Resolve returns the client owning (platform, externalUserID). An existing
// client is returned as stored; hints only seed a newly created one.
func (r *Resolver) Resolve(ctx context.Context, platform, externalUserID string, hints channel.Identity) (clients.Client, error) {
	ct, ok := channel.ParsePlatform(platform)
	if !ok {
		return clients.Client{}, fmt.Errorf("%w: %q", ErrUnsupportedPlatform, platform)
	}
	userID := strings.TrimSpace(externalUserID)
	if userID == "" {
		return clients.Client{}, ErrMissingUserID
	}

	if client, found, err := r.lookup(ctx, ct, userID); err != nil || found {
		return client, err
	}

	var created sqlc.Client
	err := r.tx.WithTx(ctx, func(q TxStore) error {
		meta, err := clients.EncodeMetadata(nil)
		if err != nil {
			return err
		}
		client, err := q.CreateClient(ctx, sqlc.CreateClientParams{
			Name:        db.Text(displayName(ct, userID, hints)),
			PhoneNumber: db.Text(hints.Phone),
			Source:      ct.String(),
			Status:      clients.InitialStatus,
			Tags:        []string{},
			Metadata:    meta,
		})
		if err != nil {
			return fmt.Errorf("create client: %w", err)
		}
		_, err = q.CreateClientChannel(ctx, sqlc.CreateClientChannelParams{
			ClientID:   client.ID,
			Platform:   ct.String(),
			Username:   db.Text(hints.Username),
			UserID:     userID,
			ProfileUrl: db.Text(hints.ProfileURL),
			IsPrimary:  true,
			Metadata:   meta,
		})
		if errors.Is(err, pgx.ErrNoRows) {
			return errCreateRaced
		}
		if err != nil {
			return fmt.Errorf("create client channel: %w", err)
		}
		created = client
		return nil
	})
	if errors.Is(err, errCreateRaced) {
		r.logger.Debug("identity created concurrently, using winner", slog.String("platform", ct.String()), slog.String("user_id", userID))
		client, found, err := r.lookup(ctx, ct, userID)
		if err != nil {
			return clients.Client{}, err
		}
		if !found {
			return clients.Client{}, fmt.Errorf("resolve %s/%s: channel vanished after conflict", ct, userID)
		}
		return client, nil
	}
	if err != nil {
		return clients.Client{}, err
	}
	r.logger.Info("client created from platform identity",
		slog.String("client_id", db.UUIDString(created.ID)),
		slog.String("platform", ct.String()),
		slog.String("user_id", userID),
	)
	return clients.FromRow(created), nil
}

func (r *Resolver) lookup(ctx context.Context, ct channel.ChannelType, userID string) (clients.Client, bool, error) {
	ch, err := r.store.GetChannelByPlatformUser(ctx, sqlc.GetChannelByPlatformUserParams{Platform: ct.String(), UserID: userID})
	if errors.Is(err, pgx.ErrNoRows) {
		return clients.Client{}, false, nil
	}
	if err != nil {
		return clients.Client{}, false, fmt.Errorf("lookup channel: %w", err)
	}
	row, err := r.store.GetClientByID(ctx, ch.ClientID)
	if err != nil {
		return clients.Client{}, false, fmt.Errorf("load client for channel: %w", err)
	}
	return clients.FromRow(row), true, nil
}

var platformLabels = map[channel.ChannelType]string{
	channel.ChannelTelegram:  "Telegram",
	channel.ChannelInstagram: "Instagram",
	channel.ChannelYouTube:   "YouTube",
	channel.ChannelFacebook:  "Facebook",
	channel.ChannelWhatsApp:  "WhatsApp",
	channel.ChannelManual:    "Manual",
}

func displayName(ct channel.ChannelType, userID string, hints channel.Identity) string {
	if label := hints.Label(); label != "" {
		return label
	}
	return platformLabels[ct] + " " + userID
}
