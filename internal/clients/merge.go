package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/sqlc"
)

// Merge folds secondary into primary: the primary keeps its own fields, takes
// the secondary's phone when it has none, and inherits every channel,
// conversation, message, comment, history entry and delivery log. The
// secondary is deleted.
//
// The secondary's history rows may be newer than the primary's, so a
// checkpoint row restating the primary's status is appended last. The newest
// history row then always matches the client's status, and it carries the
// dwell the primary had accrued.
func (s *Service) Merge(ctx context.Context, primaryID, secondaryID string) (Client, error) {
	pID, err := parseClientID(primaryID)
	if err != nil {
		return Client{}, err
	}
	sID, err := parseClientID(secondaryID)
	if err != nil {
		return Client{}, err
	}
	if pID.Bytes == sID.Bytes {
		return Client{}, ErrSelfMerge
	}

	var merged sqlc.Client
	var moved int64
	err = s.tx.WithTx(ctx, func(q MergeStore) error {
		primary, err := q.GetClientForUpdate(ctx, pID)
		if err != nil {
			return mergeLookup(err)
		}
		secondary, err := q.GetClientForUpdate(ctx, sID)
		if err != nil {
			return mergeLookup(err)
		}

		if !primary.PhoneNumber.Valid && secondary.PhoneNumber.Valid {
			if err := q.FillClientPhone(ctx, sqlc.FillClientPhoneParams{ID: pID, PhoneNumber: secondary.PhoneNumber}); err != nil {
				return fmt.Errorf("copy phone: %w", err)
			}
		}

		now := s.now()
		var dwell int64
		latest, err := q.GetLatestStatusHistory(ctx, pID)
		switch {
		case err == nil:
			dwell = Dwell(latest, now)
		case errors.Is(err, pgx.ErrNoRows):
		default:
			return fmt.Errorf("load latest history: %w", err)
		}

		n, err := q.ReassignClientChannels(ctx, sqlc.ReassignClientChannelsParams{PrimaryID: pID, SecondaryID: sID})
		if err != nil {
			return fmt.Errorf("reassign channels: %w", err)
		}
		moved = n
		if _, err := q.ReassignConversations(ctx, sqlc.ReassignConversationsParams{PrimaryID: pID, SecondaryID: sID}); err != nil {
			return fmt.Errorf("reassign conversations: %w", err)
		}
		if _, err := q.ReassignMessages(ctx, sqlc.ReassignMessagesParams{PrimaryID: pID, SecondaryID: sID}); err != nil {
			return fmt.Errorf("reassign messages: %w", err)
		}
		if _, err := q.ReassignComments(ctx, sqlc.ReassignCommentsParams{PrimaryID: pID, SecondaryID: sID}); err != nil {
			return fmt.Errorf("reassign comments: %w", err)
		}
		if _, err := q.ReassignSmsLogs(ctx, sqlc.ReassignSmsLogsParams{PrimaryID: pID, SecondaryID: sID}); err != nil {
			return fmt.Errorf("reassign sms logs: %w", err)
		}
		if _, err := q.ReassignDispatchLogs(ctx, sqlc.ReassignDispatchLogsParams{PrimaryID: pID, SecondaryID: sID}); err != nil {
			return fmt.Errorf("reassign dispatch logs: %w", err)
		}
		if _, err := q.ReassignStatusHistory(ctx, sqlc.ReassignStatusHistoryParams{PrimaryID: pID, SecondaryID: sID}); err != nil {
			return fmt.Errorf("reassign status history: %w", err)
		}
		if _, err := q.CreateStatusHistory(ctx, sqlc.CreateStatusHistoryParams{
			ClientID:        pID,
			FromStatus:      db.Text(primary.Status),
			ToStatus:        primary.Status,
			DurationSeconds: dwell,
			Notes:           db.Text("merged " + db.UUIDString(sID)),
			CreatedAt:       db.Timestamptz(now),
		}); err != nil {
			return fmt.Errorf("append merge checkpoint: %w", err)
		}

		merged, err = q.AppendClientMergedFrom(ctx, sqlc.AppendClientMergedFromParams{SecondaryID: sID, ID: pID})
		if err != nil {
			return fmt.Errorf("record merge: %w", err)
		}
		deleted, err := q.DeleteClient(ctx, sID)
		if err != nil {
			return fmt.Errorf("delete secondary: %w", err)
		}
		if deleted == 0 {
			return ErrAlreadyMerged
		}
		return nil
	})
	if err != nil {
		return Client{}, err
	}
	s.logger.Info("clients merged",
		slog.String("primary_id", db.UUIDString(pID)),
		slog.String("secondary_id", db.UUIDString(sID)),
		slog.Int64("channels_moved", moved),
	)
	return FromRow(merged), nil
}

func mergeLookup(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAlreadyMerged
	}
	return fmt.Errorf("load client: %w", err)
}
