package memstore

import (
	"context"
	"slices"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/sqlc"
)

func (s *Store) CreateClient(_ context.Context, arg sqlc.CreateClientParams) (sqlc.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateClient"); err != nil {
		return sqlc.Client{}, err
	}
	now := s.stamp()
	c := sqlc.Client{
		ID:          db.NewUUID(),
		Name:        arg.Name,
		PhoneNumber: arg.PhoneNumber,
		Email:       arg.Email,
		Source:      arg.Source,
		BranchID:    arg.BranchID,
		Status:      arg.Status,
		Tags:        slices.Clone(arg.Tags),
		Notes:       arg.Notes,
		Metadata:    arg.Metadata,
		MergedFrom:  []pgtype.UUID{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	s.clients[c.ID.Bytes] = c
	return c, nil
}

func (s *Store) GetClientByID(_ context.Context, id pgtype.UUID) (sqlc.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id.Bytes]
	if !ok {
		return sqlc.Client{}, errNoRows
	}
	return c, nil
}

func (s *Store) GetClientForUpdate(ctx context.Context, id pgtype.UUID) (sqlc.Client, error) {
	return s.GetClientByID(ctx, id)
}

func (s *Store) ListClients(_ context.Context, arg sqlc.ListClientsParams) ([]sqlc.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []sqlc.Client
	for _, c := range s.clients {
		if arg.Status.Valid && c.Status != arg.Status.String {
			continue
		}
		if arg.BranchID.Valid && c.BranchID != arg.BranchID {
			continue
		}
		if arg.Source.Valid && c.Source != arg.Source.String {
			continue
		}
		if arg.Search.Valid && !containsFold(textOrEmpty(c.Name), arg.Search.String) && !containsFold(textOrEmpty(c.PhoneNumber), arg.Search.String) {
			continue
		}
		items = append(items, c)
	}
	slices.SortFunc(items, func(a, b sqlc.Client) int { return newestFirst(a.CreatedAt, b.CreatedAt) })
	return items, nil
}

func (s *Store) UpdateClient(_ context.Context, arg sqlc.UpdateClientParams) (sqlc.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[arg.ID.Bytes]
	if !ok {
		return sqlc.Client{}, errNoRows
	}
	c.Name = arg.Name
	c.PhoneNumber = arg.PhoneNumber
	c.Email = arg.Email
	c.BranchID = arg.BranchID
	c.Tags = slices.Clone(arg.Tags)
	c.Notes = arg.Notes
	c.Metadata = arg.Metadata
	c.UpdatedAt = s.stamp()
	s.clients[c.ID.Bytes] = c
	return c, nil
}

func (s *Store) UpdateClientStatus(_ context.Context, arg sqlc.UpdateClientStatusParams) (sqlc.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpdateClientStatus"); err != nil {
		return sqlc.Client{}, err
	}
	c, ok := s.clients[arg.ID.Bytes]
	if !ok {
		return sqlc.Client{}, errNoRows
	}
	c.Status = arg.Status
	c.UpdatedAt = s.stamp()
	s.clients[c.ID.Bytes] = c
	return c, nil
}

func (s *Store) FillClientPhone(_ context.Context, arg sqlc.FillClientPhoneParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[arg.ID.Bytes]
	if !ok || textOrEmpty(c.PhoneNumber) != "" {
		return nil
	}
	c.PhoneNumber = arg.PhoneNumber
	c.UpdatedAt = s.stamp()
	s.clients[c.ID.Bytes] = c
	return nil
}

func (s *Store) AppendClientMergedFrom(_ context.Context, arg sqlc.AppendClientMergedFromParams) (sqlc.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[arg.ID.Bytes]
	if !ok {
		return sqlc.Client{}, errNoRows
	}
	c.MergedFrom = append(slices.Clone(c.MergedFrom), arg.SecondaryID)
	c.UpdatedAt = s.stamp()
	s.clients[c.ID.Bytes] = c
	return c, nil
}

// DeleteClient cascades to the rows a client owns, mirroring the FK rules.
func (s *Store) DeleteClient(_ context.Context, id pgtype.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeleteClient"); err != nil {
		return 0, err
	}
	if _, ok := s.clients[id.Bytes]; !ok {
		return 0, nil
	}
	delete(s.clients, id.Bytes)
	for k, v := range s.channels {
		if v.ClientID == id {
			delete(s.channels, k)
		}
	}
	for k, v := range s.conversations {
		if v.ClientID == id {
			delete(s.conversations, k)
		}
	}
	for k, v := range s.messages {
		if v.ClientID == id {
			delete(s.messages, k)
		}
	}
	for k, v := range s.comments {
		if v.ClientID == id {
			delete(s.comments, k)
		}
	}
	for k, v := range s.history {
		if v.ClientID == id {
			delete(s.history, k)
		}
	}
	// sms_logs and dispatch_logs reference clients with ON DELETE SET NULL.
	for k, v := range s.smsLogs {
		if v.ClientID == id {
			v.ClientID = pgtype.UUID{}
			s.smsLogs[k] = v
		}
	}
	for k, v := range s.dispatchLogs {
		if v.ClientID == id {
			v.ClientID = pgtype.UUID{}
			s.dispatchLogs[k] = v
		}
	}
	return 1, nil
}
