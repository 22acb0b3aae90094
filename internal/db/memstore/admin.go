package memstore

import (
	"context"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/sqlc"
)

func (s *Store) ListBranches(_ context.Context) ([]sqlc.Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]sqlc.Branch, 0, len(s.branches))
	for _, b := range s.branches {
		items = append(items, b)
	}
	slices.SortFunc(items, func(a, b sqlc.Branch) int { return strings.Compare(a.Name, b.Name) })
	return items, nil
}

func (s *Store) GetBranchByID(_ context.Context, id pgtype.UUID) (sqlc.Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.branches[id.Bytes]
	if !ok {
		return sqlc.Branch{}, errNoRows
	}
	return b, nil
}

func (s *Store) CreateBranch(_ context.Context, arg sqlc.CreateBranchParams) (sqlc.Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.stamp()
	b := sqlc.Branch{
		ID:           db.NewUUID(),
		Name:         arg.Name,
		Address:      arg.Address,
		Phone:        arg.Phone,
		WorkingHours: arg.WorkingHours,
		SmsTemplate:  arg.SmsTemplate,
		Region:       arg.Region,
		IsActive:     arg.IsActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.branches[b.ID.Bytes] = b
	return b, nil
}

func (s *Store) UpdateBranch(_ context.Context, arg sqlc.UpdateBranchParams) (sqlc.Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.branches[arg.ID.Bytes]
	if !ok {
		return sqlc.Branch{}, errNoRows
	}
	b.Name = arg.Name
	b.Address = arg.Address
	b.Phone = arg.Phone
	b.WorkingHours = arg.WorkingHours
	b.SmsTemplate = arg.SmsTemplate
	b.Region = arg.Region
	b.IsActive = arg.IsActive
	b.UpdatedAt = s.stamp()
	s.branches[b.ID.Bytes] = b
	return b, nil
}

func (s *Store) DeleteBranch(_ context.Context, id pgtype.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.branches[id.Bytes]; !ok {
		return 0, nil
	}
	delete(s.branches, id.Bytes)
	return 1, nil
}

func (s *Store) CreateIntegration(_ context.Context, arg sqlc.CreateIntegrationParams) (sqlc.Integration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateIntegration"); err != nil {
		return sqlc.Integration{}, err
	}
	now := s.stamp()
	it := sqlc.Integration{
		ID:              db.NewUUID(),
		Platform:        arg.Platform,
		Name:            arg.Name,
		Config:          arg.Config,
		WebhookUrl:      arg.WebhookUrl,
		IsActive:        true,
		TermsAcceptedAt: arg.TermsAcceptedAt,
		CreatedBy:       arg.CreatedBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.integrations[it.ID.Bytes] = it
	return it, nil
}

func (s *Store) sortedIntegrations() []sqlc.Integration {
	items := make([]sqlc.Integration, 0, len(s.integrations))
	for _, it := range s.integrations {
		items = append(items, it)
	}
	slices.SortFunc(items, func(a, b sqlc.Integration) int {
		if c := newestFirst(a.CreatedAt, b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(db.UUIDString(b.ID), db.UUIDString(a.ID))
	})
	return items
}

func (s *Store) ListIntegrations(_ context.Context) ([]sqlc.Integration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedIntegrations(), nil
}

func (s *Store) GetIntegrationByID(_ context.Context, id pgtype.UUID) (sqlc.Integration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.integrations[id.Bytes]
	if !ok {
		return sqlc.Integration{}, errNoRows
	}
	return it, nil
}

func (s *Store) GetActiveIntegrationByPlatform(_ context.Context, platform string) (sqlc.Integration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.sortedIntegrations() {
		if it.Platform == platform && it.IsActive {
			return it, nil
		}
	}
	return sqlc.Integration{}, errNoRows
}

func (s *Store) SetIntegrationActive(_ context.Context, arg sqlc.SetIntegrationActiveParams) (sqlc.Integration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.integrations[arg.ID.Bytes]
	if !ok {
		return sqlc.Integration{}, errNoRows
	}
	it.IsActive = arg.IsActive
	it.UpdatedAt = s.stamp()
	s.integrations[it.ID.Bytes] = it
	return it, nil
}

func (s *Store) SetIntegrationWebhookURL(_ context.Context, arg sqlc.SetIntegrationWebhookURLParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.integrations[arg.ID.Bytes]
	if !ok {
		return nil
	}
	it.WebhookUrl = arg.WebhookUrl
	s.integrations[it.ID.Bytes] = it
	return nil
}

func (s *Store) TouchIntegrationSync(_ context.Context, id pgtype.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.integrations[id.Bytes]
	if !ok {
		return nil
	}
	it.LastSyncAt = s.stamp()
	s.integrations[it.ID.Bytes] = it
	return nil
}

func (s *Store) DeleteIntegration(_ context.Context, id pgtype.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.integrations[id.Bytes]; !ok {
		return 0, nil
	}
	delete(s.integrations, id.Bytes)
	return 1, nil
}

func (s *Store) CreateSmsLog(_ context.Context, arg sqlc.CreateSmsLogParams) (sqlc.SmsLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := sqlc.SmsLog{
		ID:          db.NewUUID(),
		ClientID:    arg.ClientID,
		BranchID:    arg.BranchID,
		PhoneNumber: arg.PhoneNumber,
		Content:     arg.Content,
		SentBy:      arg.SentBy,
		Provider:    arg.Provider,
		Status:      "pending",
		CreatedAt:   s.stamp(),
	}
	s.smsLogs[l.ID.Bytes] = l
	return l, nil
}

func (s *Store) MarkSmsLogSent(_ context.Context, arg sqlc.MarkSmsLogSentParams) (sqlc.SmsLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.smsLogs[arg.ID.Bytes]
	if !ok {
		return sqlc.SmsLog{}, errNoRows
	}
	l.Status = "sent"
	l.ProviderMessageID = arg.ProviderMessageID
	l.SentAt = s.stamp()
	s.smsLogs[l.ID.Bytes] = l
	return l, nil
}

func (s *Store) MarkSmsLogFailed(_ context.Context, arg sqlc.MarkSmsLogFailedParams) (sqlc.SmsLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.smsLogs[arg.ID.Bytes]
	if !ok {
		return sqlc.SmsLog{}, errNoRows
	}
	l.Status = "failed"
	l.ErrorMessage = arg.ErrorMessage
	s.smsLogs[l.ID.Bytes] = l
	return l, nil
}

func (s *Store) ListSmsLogs(_ context.Context, arg sqlc.ListSmsLogsParams) ([]sqlc.SmsLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []sqlc.SmsLog
	for _, l := range s.smsLogs {
		if arg.ClientID.Valid && l.ClientID != arg.ClientID {
			continue
		}
		if arg.BranchID.Valid && l.BranchID != arg.BranchID {
			continue
		}
		items = append(items, l)
	}
	slices.SortFunc(items, func(a, b sqlc.SmsLog) int { return newestFirst(a.CreatedAt, b.CreatedAt) })
	if arg.LimitCount > 0 && len(items) > int(arg.LimitCount) {
		items = items[:arg.LimitCount]
	}
	return items, nil
}

func (s *Store) ReassignSmsLogs(_ context.Context, arg sqlc.ReassignSmsLogsParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k, l := range s.smsLogs {
		if l.ClientID == arg.SecondaryID {
			l.ClientID = arg.PrimaryID
			s.smsLogs[k] = l
			n++
		}
	}
	return n, nil
}

func (s *Store) CreateDispatchLog(_ context.Context, arg sqlc.CreateDispatchLogParams) (sqlc.DispatchLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := sqlc.DispatchLog{
		ID:             db.NewUUID(),
		ConversationID: arg.ConversationID,
		ClientID:       arg.ClientID,
		Platform:       arg.Platform,
		Content:        arg.Content,
		SentBy:         arg.SentBy,
		Status:         "pending",
		CreatedAt:      s.stamp(),
	}
	s.dispatchLogs[l.ID.Bytes] = l
	return l, nil
}

func (s *Store) MarkDispatchSent(_ context.Context, arg sqlc.MarkDispatchSentParams) (sqlc.DispatchLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.dispatchLogs[arg.ID.Bytes]
	if !ok {
		return sqlc.DispatchLog{}, errNoRows
	}
	l.Status = "sent"
	l.PlatformMessageID = arg.PlatformMessageID
	s.dispatchLogs[l.ID.Bytes] = l
	return l, nil
}

func (s *Store) MarkDispatchFailed(_ context.Context, arg sqlc.MarkDispatchFailedParams) (sqlc.DispatchLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.dispatchLogs[arg.ID.Bytes]
	if !ok {
		return sqlc.DispatchLog{}, errNoRows
	}
	l.Status = "failed"
	l.ErrorMessage = arg.ErrorMessage
	s.dispatchLogs[l.ID.Bytes] = l
	return l, nil
}

func (s *Store) ListDispatchLogsByConversation(_ context.Context, conversationID pgtype.UUID) ([]sqlc.DispatchLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []sqlc.DispatchLog
	for _, l := range s.dispatchLogs {
		if l.ConversationID == conversationID {
			items = append(items, l)
		}
	}
	slices.SortFunc(items, func(a, b sqlc.DispatchLog) int { return newestFirst(a.CreatedAt, b.CreatedAt) })
	return items, nil
}

func (s *Store) ReassignDispatchLogs(_ context.Context, arg sqlc.ReassignDispatchLogsParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k, l := range s.dispatchLogs {
		if l.ClientID == arg.SecondaryID {
			l.ClientID = arg.PrimaryID
			s.dispatchLogs[k] = l
			n++
		}
	}
	return n, nil
}
