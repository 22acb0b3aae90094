// Package sms sends branch information to clients by SMS and keeps the send log.
package sms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/acoustichub/crm/internal/branches"
	"github.com/acoustichub/crm/internal/channel"
	"github.com/acoustichub/crm/internal/clients"
	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/sqlc"
	"github.com/acoustichub/crm/internal/prune"
)

var (
	ErrInvalidRequest = errors.New("invalid sms request")
	ErrSendFailed     = errors.New("sms delivery failed")
)

const (
	Provider = "eskiz"

	defaultHistoryLimit = 200
)

type Log struct {
	ID                string     `json:"id"`
	ClientID          string     `json:"clientId,omitempty"`
	BranchID          string     `json:"branchId,omitempty"`
	PhoneNumber       string     `json:"phoneNumber"`
	Content           string     `json:"content"`
	SentBy            string     `json:"sentBy,omitempty"`
	Provider          string     `json:"provider"`
	ProviderMessageID string     `json:"providerMessageId,omitempty"`
	Status            string     `json:"status"`
	ErrorMessage      string     `json:"errorMessage,omitempty"`
	SentAt            *time.Time `json:"sentAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

func LogFromRow(row sqlc.SmsLog) Log {
	return Log{
		ID:                db.UUIDString(row.ID),
		ClientID:          db.UUIDString(row.ClientID),
		BranchID:          db.UUIDString(row.BranchID),
		PhoneNumber:       row.PhoneNumber,
		Content:           row.Content,
		SentBy:            db.UUIDString(row.SentBy),
		Provider:          row.Provider,
		ProviderMessageID: db.TextValue(row.ProviderMessageID),
		Status:            row.Status,
		ErrorMessage:      db.TextValue(row.ErrorMessage),
		SentAt:            db.TimePtrFromPg(row.SentAt),
		CreatedAt:         db.TimeFromPg(row.CreatedAt),
	}
}

// SendInput addresses a branch info SMS. An empty PhoneNumber uses the client's phone.
type SendInput struct {
	ClientID    string `json:"clientId" validate:"required,uuid"`
	BranchID    string `json:"branchId" validate:"required,uuid"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,max=32"`
}

type SendResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId"`
	Log       Log    `json:"log"`
}

type HistoryFilter struct {
	ClientID string
	BranchID string
	Limit    int
}

type Store interface {
	GetClientByID(ctx context.Context, id pgtype.UUID) (sqlc.Client, error)
	GetBranchByID(ctx context.Context, id pgtype.UUID) (sqlc.Branch, error)
	CreateSmsLog(ctx context.Context, arg sqlc.CreateSmsLogParams) (sqlc.SmsLog, error)
	MarkSmsLogSent(ctx context.Context, arg sqlc.MarkSmsLogSentParams) (sqlc.SmsLog, error)
	MarkSmsLogFailed(ctx context.Context, arg sqlc.MarkSmsLogFailedParams) (sqlc.SmsLog, error)
	ListSmsLogs(ctx context.Context, arg sqlc.ListSmsLogsParams) ([]sqlc.SmsLog, error)
}

type Service struct {
	store   Store
	sender  channel.Sender
	configs channel.ConfigProvider
	logger  *slog.Logger
}

func NewService(log *slog.Logger, store Store, sender channel.Sender, configs channel.ConfigProvider) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:   store,
		sender:  sender,
		configs: configs,
		logger:  log.With(slog.String("service", "sms")),
	}
}

// Send renders the branch template for the client and delivers it. The
// attempt is logged whether or not delivery succeeds.
func (s *Service) Send(ctx context.Context, input SendInput, userID string) (SendResult, error) {
	clientID, err := db.ParseUUID(input.ClientID)
	if err != nil {
		return SendResult{}, fmt.Errorf("%w: client id", ErrInvalidRequest)
	}
	branchID, err := db.ParseUUID(input.BranchID)
	if err != nil {
		return SendResult{}, fmt.Errorf("%w: branch id", ErrInvalidRequest)
	}
	sentBy, err := db.OptionalUUID(userID)
	if err != nil {
		return SendResult{}, fmt.Errorf("%w: user id", ErrInvalidRequest)
	}
	client, err := s.store.GetClientByID(ctx, clientID)
	if errors.Is(err, pgx.ErrNoRows) {
		return SendResult{}, clients.ErrClientNotFound
	}
	if err != nil {
		return SendResult{}, fmt.Errorf("load client: %w", err)
	}
	branch, err := s.store.GetBranchByID(ctx, branchID)
	if errors.Is(err, pgx.ErrNoRows) {
		return SendResult{}, branches.ErrBranchNotFound
	}
	if err != nil {
		return SendResult{}, fmt.Errorf("load branch: %w", err)
	}
	phone := strings.TrimSpace(input.PhoneNumber)
	if phone == "" {
		phone = db.TextValue(client.PhoneNumber)
	}
	if phone == "" {
		return SendResult{}, fmt.Errorf("%w: phone number is required", ErrInvalidRequest)
	}

	content := Render(branch, client)
	logRow, err := s.store.CreateSmsLog(ctx, sqlc.CreateSmsLogParams{
		ClientID:    clientID,
		BranchID:    branchID,
		PhoneNumber: phone,
		Content:     content,
		SentBy:      sentBy,
		Provider:    Provider,
	})
	if err != nil {
		return SendResult{}, fmt.Errorf("create sms log: %w", err)
	}

	result, sendErr := s.deliver(ctx, phone, content)
	if sendErr != nil {
		if _, err := s.store.MarkSmsLogFailed(ctx, sqlc.MarkSmsLogFailedParams{
			ID:           logRow.ID,
			ErrorMessage: db.Text(prune.ErrorText(sendErr)),
		}); err != nil {
			s.logger.Error("mark sms failed", slog.String("sms_log_id", db.UUIDString(logRow.ID)), slog.Any("error", err))
		}
		s.logger.Warn("sms delivery failed", slog.String("client_id", input.ClientID), slog.Any("error", sendErr))
		return SendResult{}, fmt.Errorf("%w: %w", ErrSendFailed, sendErr)
	}
	sent, err := s.store.MarkSmsLogSent(ctx, sqlc.MarkSmsLogSentParams{
		ID:                logRow.ID,
		ProviderMessageID: db.Text(result.ExternalID),
	})
	if err != nil {
		return SendResult{}, fmt.Errorf("mark sms sent: %w", err)
	}
	return SendResult{Success: true, MessageID: result.ExternalID, Log: LogFromRow(sent)}, nil
}

func (s *Service) deliver(ctx context.Context, phone, content string) (channel.SendResult, error) {
	cfg, err := s.configs.ActiveConfig(ctx, channel.ChannelEskizSMS)
	if err != nil {
		return channel.SendResult{}, err
	}
	return s.sender.Send(ctx, cfg, channel.OutboundMessage{Target: phone, Text: content})
}

// History returns logged sends newest first.
func (s *Service) History(ctx context.Context, filter HistoryFilter) ([]Log, error) {
	clientID, err := db.OptionalUUID(filter.ClientID)
	if err != nil {
		return nil, fmt.Errorf("%w: client id", ErrInvalidRequest)
	}
	branchID, err := db.OptionalUUID(filter.BranchID)
	if err != nil {
		return nil, fmt.Errorf("%w: branch id", ErrInvalidRequest)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	rows, err := s.store.ListSmsLogs(ctx, sqlc.ListSmsLogsParams{ClientID: clientID, BranchID: branchID, LimitCount: int32(limit)})
	if err != nil {
		return nil, fmt.Errorf("list sms logs: %w", err)
	}
	out := make([]Log, 0, len(rows))
	for _, row := range rows {
		out = append(out, LogFromRow(row))
	}
	return out, nil
}
