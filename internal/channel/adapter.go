package channel

import (
	"context"
	"errors"
)

// ErrConfigNotFound is returned when a platform has neither an active
// integration row nor fallback credentials.
var ErrConfigNotFound = errors.New("channel config not found")

// Adapter is the base interface every channel adapter must implement.
type Adapter interface {
	Type() ChannelType
	Descriptor() Descriptor
}

// Descriptor holds read-only metadata for a registered channel type.
// All behavior is expressed through the optional interfaces below.
type Descriptor struct {
	Type           ChannelType  `json:"type"`
	DisplayName    string       `json:"display_name"`
	Capabilities   Capabilities `json:"capabilities"`
	RequiredFields []string     `json:"required_fields,omitempty"`
}

// Capabilities advertises which optional interfaces an adapter implements.
type Capabilities struct {
	Webhook      bool `json:"webhook"`
	Poll         bool `json:"poll"`
	Send         bool `json:"send"`
	CommentReply bool `json:"comment_reply"`
}

// WebhookParser turns a pushed platform payload into inbound events.
type WebhookParser interface {
	ParseWebhook(ctx context.Context, cfg Config, body []byte) ([]InboundEvent, error)
}

// Poller pulls new platform items and emits them one at a time. A failing emit
// does not stop the poll.
type Poller interface {
	Poll(ctx context.Context, cfg Config, emit func(context.Context, InboundEvent) error) error
}

// Sender delivers an outbound message and returns the platform's message id.
type Sender interface {
	Send(ctx context.Context, cfg Config, msg OutboundMessage) (SendResult, error)
}

// CommentReplier posts a public reply under an existing comment.
type CommentReplier interface {
	ReplyToComment(ctx context.Context, cfg Config, reply CommentReply) (SendResult, error)
}

// Configurer performs platform-side setup after credentials are saved, such as
// registering a webhook. It returns the webhook URL it registered, if any.
type Configurer interface {
	Configure(ctx context.Context, cfg Config) (string, error)
}

// ConfigNormalizer validates and normalizes raw credential maps.
type ConfigNormalizer interface {
	NormalizeConfig(raw map[string]any) (map[string]any, error)
}

// ConfigProvider resolves the credentials to use for a platform.
type ConfigProvider interface {
	ActiveConfig(ctx context.Context, channelType ChannelType) (Config, error)
}
