// Package inbound turns normalized platform events into stored clients,
// conversations, messages and comments.
package inbound

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/acoustichub/crm/internal/channel"
	"github.com/acoustichub/crm/internal/clients"
	"github.com/acoustichub/crm/internal/comments"
	"github.com/acoustichub/crm/internal/conversation"
	"github.com/acoustichub/crm/internal/dedup"
	messagepkg "github.com/acoustichub/crm/internal/message"
)

// ErrInvalidEvent is returned for events missing the fields every adapter must fill.
var ErrInvalidEvent = errors.New("invalid inbound event")

// IdentityResolver maps a platform user to its CRM client.
type IdentityResolver interface {
	Resolve(ctx context.Context, platform, externalUserID string, hints channel.Identity) (clients.Client, error)
}

// ConversationTracker finds or opens the conversation a message belongs to.
type ConversationTracker interface {
	Resolve(ctx context.Context, platform, externalID, clientID string) (conversation.Conversation, error)
	Touch(ctx context.Context, conversationID string, inbound bool) error
}

type CommentWriter interface {
	Exists(ctx context.Context, platform, platformCommentID string) (bool, error)
	Persist(ctx context.Context, input comments.PersistInput) (comments.Comment, error)
}

// Outcome reports what Process did with an event.
type Outcome string

const (
	OutcomeStored    Outcome = "stored"
	OutcomeDuplicate Outcome = "duplicate"
)

type Result struct {
	Outcome        Outcome
	ClientID       string
	ConversationID string
	MessageID      string
	CommentID      string
}

// Summary counts batch results. Duplicates are successes and are not counted as failed.
type Summary struct {
	Processed  int `json:"processed"`
	Duplicates int `json:"duplicates"`
	Failed     int `json:"failed"`
}

// Processor ingests one event at a time. Steps run strictly in order:
// dedup, identity, conversation, persist, touch.
type Processor struct {
	identity      IdentityResolver
	conversations ConversationTracker
	messages      messagepkg.Writer
	comments      CommentWriter
	guard         dedup.Guard
	logger        *slog.Logger
}

func NewProcessor(
	log *slog.Logger,
	identity IdentityResolver,
	conversations ConversationTracker,
	messages messagepkg.Writer,
	commentWriter CommentWriter,
	guard dedup.Guard,
) *Processor {
	if log == nil {
		log = slog.Default()
	}
	if guard == nil {
		guard = dedup.Noop{}
	}
	return &Processor{
		identity:      identity,
		conversations: conversations,
		messages:      messages,
		comments:      commentWriter,
		guard:         guard,
		logger:        log.With(slog.String("component", "inbound")),
	}
}

// Process stores a single event. A duplicate event is a successful no-op.
func (p *Processor) Process(ctx context.Context, event channel.InboundEvent) (Result, error) {
	if err := validateEvent(event); err != nil {
		return Result{}, err
	}
	if event.Kind == channel.EventComment {
		return p.processComment(ctx, event)
	}
	return p.processMessage(ctx, event)
}

// Emit adapts Process to the Poller callback.
func (p *Processor) Emit(ctx context.Context, event channel.InboundEvent) error {
	_, err := p.Process(ctx, event)
	return err
}

// ProcessBatch processes each event in isolation. A failing event is logged
// and the rest of the batch still runs.
func (p *Processor) ProcessBatch(ctx context.Context, events []channel.InboundEvent) Summary {
	var summary Summary
	for _, event := range events {
		result, err := p.Process(ctx, event)
		if err != nil {
			summary.Failed++
			p.logger.Error("inbound event failed",
				slog.String("platform", event.Channel.String()),
				slog.String("external_id", event.ExternalID),
				slog.Any("error", err),
			)
			continue
		}
		if result.Outcome == OutcomeDuplicate {
			summary.Duplicates++
			continue
		}
		summary.Processed++
	}
	return summary
}

func (p *Processor) processMessage(ctx context.Context, event channel.InboundEvent) (Result, error) {
	platform := event.Channel.String()
	key := dedup.Key(platform, event.ExternalID)
	if p.seen(ctx, key) {
		return Result{Outcome: OutcomeDuplicate}, nil
	}
	exists, err := p.messages.Exists(ctx, platform, event.ExternalID)
	if err != nil {
		return Result{}, err
	}
	if exists {
		p.mark(ctx, key)
		return Result{Outcome: OutcomeDuplicate}, nil
	}

	client, err := p.identity.Resolve(ctx, platform, event.Client.ID, event.Client)
	if err != nil {
		return Result{}, fmt.Errorf("resolve identity: %w", err)
	}
	externalConversation := strings.TrimSpace(event.ConversationID)
	if externalConversation == "" {
		externalConversation = event.Client.ID
	}
	conv, err := p.conversations.Resolve(ctx, platform, externalConversation, client.ID)
	if err != nil {
		return Result{}, fmt.Errorf("resolve conversation: %w", err)
	}

	author := event.Author
	if strings.TrimSpace(author.ID) == "" {
		author = event.Client
	}
	messageType := event.MessageType
	if messageType == "" {
		messageType = channel.MessageText
	}
	msg, err := p.messages.Persist(ctx, messagepkg.PersistInput{
		ConversationID:    conv.ID,
		ClientID:          client.ID,
		Platform:          platform,
		PlatformMessageID: event.ExternalID,
		MessageType:       string(messageType),
		Content:           event.Text,
		MediaURL:          event.MediaURL,
		Inbound:           true,
		SenderName:        author.Label(),
		SenderID:          author.ID,
		RepliedTo:         event.ReplyTo,
		Metadata:          event.Metadata,
		ReceivedAt:        event.ReceivedAt,
	})
	if errors.Is(err, messagepkg.ErrDuplicate) {
		p.mark(ctx, key)
		return Result{Outcome: OutcomeDuplicate, ClientID: client.ID, ConversationID: conv.ID}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("persist message: %w", err)
	}
	if err := p.conversations.Touch(ctx, conv.ID, true); err != nil {
		return Result{}, fmt.Errorf("touch conversation: %w", err)
	}
	p.mark(ctx, key)

	p.logger.Debug("inbound message stored",
		slog.String("platform", platform),
		slog.String("client_id", client.ID),
		slog.String("message_id", msg.ID),
	)
	return Result{
		Outcome:        OutcomeStored,
		ClientID:       client.ID,
		ConversationID: conv.ID,
		MessageID:      msg.ID,
	}, nil
}

func (p *Processor) processComment(ctx context.Context, event channel.InboundEvent) (Result, error) {
	platform := event.Channel.String()
	key := dedup.CommentKey(platform, event.ExternalID)
	if p.seen(ctx, key) {
		return Result{Outcome: OutcomeDuplicate}, nil
	}
	exists, err := p.comments.Exists(ctx, platform, event.ExternalID)
	if err != nil {
		return Result{}, err
	}
	if exists {
		p.mark(ctx, key)
		return Result{Outcome: OutcomeDuplicate}, nil
	}

	client, err := p.identity.Resolve(ctx, platform, event.Client.ID, event.Client)
	if err != nil {
		return Result{}, fmt.Errorf("resolve identity: %w", err)
	}
	author := event.Author
	if strings.TrimSpace(author.ID) == "" {
		author = event.Client
	}
	comment, err := p.comments.Persist(ctx, comments.PersistInput{
		ClientID:          client.ID,
		Platform:          platform,
		PlatformCommentID: event.ExternalID,
		PostID:            event.PostID,
		PostURL:           event.PostURL,
		Content:           event.Text,
		AuthorName:        author.Label(),
		AuthorID:          author.ID,
		AuthorUsername:    author.Username,
		ParentCommentID:   event.ParentID,
		Metadata:          event.Metadata,
		PublishedAt:       event.ReceivedAt,
	})
	if errors.Is(err, comments.ErrDuplicate) {
		p.mark(ctx, key)
		return Result{Outcome: OutcomeDuplicate, ClientID: client.ID}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("persist comment: %w", err)
	}
	p.mark(ctx, key)
	return Result{Outcome: OutcomeStored, ClientID: client.ID, CommentID: comment.ID}, nil
}

// seen treats cache errors as a miss; the database check still guards the write.
func (p *Processor) seen(ctx context.Context, key string) bool {
	ok, err := p.guard.Seen(ctx, key)
	if err != nil {
		p.logger.Warn("dedup lookup failed", slog.String("key", key), slog.Any("error", err))
		return false
	}
	return ok
}

func (p *Processor) mark(ctx context.Context, key string) {
	if err := p.guard.Mark(ctx, key); err != nil {
		p.logger.Warn("dedup mark failed", slog.String("key", key), slog.Any("error", err))
	}
}

func validateEvent(event channel.InboundEvent) error {
	if strings.TrimSpace(event.Channel.String()) == "" {
		return fmt.Errorf("%w: platform is required", ErrInvalidEvent)
	}
	if strings.TrimSpace(event.ExternalID) == "" {
		return fmt.Errorf("%w: external id is required", ErrInvalidEvent)
	}
	if strings.TrimSpace(event.Client.ID) == "" {
		return fmt.Errorf("%w: client identity is required", ErrInvalidEvent)
	}
	return nil
}
