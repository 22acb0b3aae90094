package memstore

import (
	"context"
	"slices"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/sqlc"
)

func (s *Store) GetChannelByPlatformUser(_ context.Context, arg sqlc.GetChannelByPlatformUserParams) (sqlc.ClientChannel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.channels {
		if ch.Platform == arg.Platform && ch.UserID == arg.UserID {
			return ch, nil
		}
	}
	return sqlc.ClientChannel{}, errNoRows
}

// CreateClientChannel returns pgx.ErrNoRows on a (platform, user_id) conflict,
// matching ON CONFLICT DO NOTHING RETURNING.
func (s *Store) CreateClientChannel(_ context.Context, arg sqlc.CreateClientChannelParams) (sqlc.ClientChannel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateClientChannel"); err != nil {
		return sqlc.ClientChannel{}, err
	}
	for _, ch := range s.channels {
		if ch.Platform == arg.Platform && ch.UserID == arg.UserID {
			return sqlc.ClientChannel{}, errNoRows
		}
	}
	now := s.stamp()
	ch := sqlc.ClientChannel{
		ID:         db.NewUUID(),
		ClientID:   arg.ClientID,
		Platform:   arg.Platform,
		Username:   arg.Username,
		UserID:     arg.UserID,
		ProfileUrl: arg.ProfileUrl,
		IsPrimary:  arg.IsPrimary,
		Metadata:   arg.Metadata,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.channels[ch.ID.Bytes] = ch
	return ch, nil
}

func (s *Store) FillChannelProfile(_ context.Context, arg sqlc.FillChannelProfileParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.channels[arg.ID.Bytes]
	if !ok {
		return nil
	}
	if textOrEmpty(ch.Username) == "" && arg.Username.Valid {
		ch.Username = arg.Username
	}
	if textOrEmpty(ch.ProfileUrl) == "" && arg.ProfileUrl.Valid {
		ch.ProfileUrl = arg.ProfileUrl
	}
	ch.UpdatedAt = s.stamp()
	s.channels[ch.ID.Bytes] = ch
	return nil
}

func (s *Store) ListChannelsByClient(_ context.Context, clientID pgtype.UUID) ([]sqlc.ClientChannel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []sqlc.ClientChannel
	for _, ch := range s.channels {
		if ch.ClientID == clientID {
			items = append(items, ch)
		}
	}
	slices.SortFunc(items, func(a, b sqlc.ClientChannel) int {
		if a.IsPrimary != b.IsPrimary {
			if a.IsPrimary {
				return -1
			}
			return 1
		}
		return a.CreatedAt.Time.Compare(b.CreatedAt.Time)
	})
	return items, nil
}

func (s *Store) ReassignClientChannels(_ context.Context, arg sqlc.ReassignClientChannelsParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ReassignClientChannels"); err != nil {
		return 0, err
	}
	var n int64
	for k, ch := range s.channels {
		if ch.ClientID == arg.SecondaryID {
			ch.ClientID = arg.PrimaryID
			ch.IsPrimary = false
			ch.UpdatedAt = s.stamp()
			s.channels[k] = ch
			n++
		}
	}
	return n, nil
}
