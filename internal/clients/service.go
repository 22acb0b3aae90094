// Package clients manages client records: manual CRUD, filtered listing and
// merging duplicate identities.
package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/acoustichub/crm/internal/channel"
	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/sqlc"
)

// Store is the query subset the client service reads and writes through.
type Store interface {
	CreateClient(ctx context.Context, arg sqlc.CreateClientParams) (sqlc.Client, error)
	GetClientByID(ctx context.Context, id pgtype.UUID) (sqlc.Client, error)
	ListClients(ctx context.Context, arg sqlc.ListClientsParams) ([]sqlc.Client, error)
	UpdateClient(ctx context.Context, arg sqlc.UpdateClientParams) (sqlc.Client, error)
	ListChannelsByClient(ctx context.Context, clientID pgtype.UUID) ([]sqlc.ClientChannel, error)
}

// MergeStore is the query subset used inside the merge transaction.
type MergeStore interface {
	GetClientForUpdate(ctx context.Context, id pgtype.UUID) (sqlc.Client, error)
	FillClientPhone(ctx context.Context, arg sqlc.FillClientPhoneParams) error
	ReassignClientChannels(ctx context.Context, arg sqlc.ReassignClientChannelsParams) (int64, error)
	ReassignMessages(ctx context.Context, arg sqlc.ReassignMessagesParams) (int64, error)
	ReassignComments(ctx context.Context, arg sqlc.ReassignCommentsParams) (int64, error)
	ReassignConversations(ctx context.Context, arg sqlc.ReassignConversationsParams) (int64, error)
	ReassignSmsLogs(ctx context.Context, arg sqlc.ReassignSmsLogsParams) (int64, error)
	ReassignDispatchLogs(ctx context.Context, arg sqlc.ReassignDispatchLogsParams) (int64, error)
	ReassignStatusHistory(ctx context.Context, arg sqlc.ReassignStatusHistoryParams) (int64, error)
	GetLatestStatusHistory(ctx context.Context, clientID pgtype.UUID) (sqlc.ClientStatusHistory, error)
	CreateStatusHistory(ctx context.Context, arg sqlc.CreateStatusHistoryParams) (sqlc.ClientStatusHistory, error)
	AppendClientMergedFrom(ctx context.Context, arg sqlc.AppendClientMergedFromParams) (sqlc.Client, error)
	DeleteClient(ctx context.Context, id pgtype.UUID) (int64, error)
}

// Transactor runs fn inside one database transaction.
type Transactor interface {
	WithTx(ctx context.Context, fn func(MergeStore) error) error
}

type Service struct {
	store  Store
	tx     Transactor
	now    func() time.Time
	logger *slog.Logger
}

func NewService(log *slog.Logger, store Store, tx Transactor) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:  store,
		tx:     tx,
		now:    time.Now,
		logger: log.With(slog.String("service", "clients")),
	}
}

// List returns clients matching filter, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Client, error) {
	branchID, err := db.OptionalUUID(filter.BranchID)
	if err != nil {
		return nil, fmt.Errorf("%w: branch id", ErrInvalidClient)
	}
	rows, err := s.store.ListClients(ctx, sqlc.ListClientsParams{
		Status:   db.Text(filter.Status),
		BranchID: branchID,
		Source:   db.Text(filter.Source),
		Search:   db.Text(filter.Search),
	})
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	out := make([]Client, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromRow(row))
	}
	return out, nil
}

// Get returns a client with its platform channels.
func (s *Service) Get(ctx context.Context, id string) (Client, error) {
	pgID, err := parseClientID(id)
	if err != nil {
		return Client{}, err
	}
	row, err := s.store.GetClientByID(ctx, pgID)
	if err != nil {
		return Client{}, notFound(err)
	}
	client := FromRow(row)
	channels, err := s.store.ListChannelsByClient(ctx, pgID)
	if err != nil {
		return Client{}, fmt.Errorf("list client channels: %w", err)
	}
	client.Channels = make([]Channel, 0, len(channels))
	for _, ch := range channels {
		client.Channels = append(client.Channels, ChannelFromRow(ch))
	}
	return client, nil
}

// Create stores a client added by staff. Source defaults to manual.
func (s *Service) Create(ctx context.Context, input CreateInput) (Client, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Client{}, fmt.Errorf("%w: name is required", ErrInvalidClient)
	}
	source := strings.ToLower(strings.TrimSpace(input.Source))
	if source == "" {
		source = channel.ChannelManual.String()
	}
	if _, ok := channel.ParsePlatform(source); !ok {
		return Client{}, fmt.Errorf("%w: unsupported source %q", ErrInvalidClient, input.Source)
	}
	branchID, err := db.OptionalUUID(input.BranchID)
	if err != nil {
		return Client{}, fmt.Errorf("%w: branch id", ErrInvalidClient)
	}
	meta, err := EncodeMetadata(input.Metadata)
	if err != nil {
		return Client{}, fmt.Errorf("marshal client metadata: %w", err)
	}
	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}
	row, err := s.store.CreateClient(ctx, sqlc.CreateClientParams{
		Name:        db.Text(name),
		PhoneNumber: db.Text(input.PhoneNumber),
		Email:       db.Text(input.Email),
		Source:      source,
		BranchID:    branchID,
		Status:      InitialStatus,
		Tags:        tags,
		Notes:       db.Text(input.Notes),
		Metadata:    meta,
	})
	if err != nil {
		return Client{}, fmt.Errorf("create client: %w", err)
	}
	s.logger.Info("client created", slog.String("client_id", db.UUIDString(row.ID)), slog.String("source", source))
	return FromRow(row), nil
}

// Update applies a partial update. Status changes go through the kanban pipeline.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (Client, error) {
	pgID, err := parseClientID(id)
	if err != nil {
		return Client{}, err
	}
	current, err := s.store.GetClientByID(ctx, pgID)
	if err != nil {
		return Client{}, notFound(err)
	}
	params := sqlc.UpdateClientParams{
		ID:          pgID,
		Name:        current.Name,
		PhoneNumber: current.PhoneNumber,
		Email:       current.Email,
		BranchID:    current.BranchID,
		Tags:        current.Tags,
		Notes:       current.Notes,
		Metadata:    current.Metadata,
	}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return Client{}, fmt.Errorf("%w: name cannot be empty", ErrInvalidClient)
		}
		params.Name = db.TextPtr(input.Name)
	}
	if input.PhoneNumber != nil {
		params.PhoneNumber = db.TextPtr(input.PhoneNumber)
	}
	if input.Email != nil {
		params.Email = db.TextPtr(input.Email)
	}
	if input.BranchID != nil {
		branchID, err := db.OptionalUUID(*input.BranchID)
		if err != nil {
			return Client{}, fmt.Errorf("%w: branch id", ErrInvalidClient)
		}
		params.BranchID = branchID
	}
	if input.Tags != nil {
		params.Tags = input.Tags
	}
	if input.Notes != nil {
		params.Notes = db.TextPtr(input.Notes)
	}
	if input.Metadata != nil {
		meta, err := EncodeMetadata(input.Metadata)
		if err != nil {
			return Client{}, fmt.Errorf("marshal client metadata: %w", err)
		}
		params.Metadata = meta
	}
	row, err := s.store.UpdateClient(ctx, params)
	if err != nil {
		return Client{}, notFound(err)
	}
	return FromRow(row), nil
}

func parseClientID(id string) (pgtype.UUID, error) {
	pgID, err := db.ParseUUID(id)
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("%w: %s", ErrInvalidClientID, id)
	}
	return pgID, nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrClientNotFound
	}
	return err
}
