// Package channel provides a unified abstraction for the external platforms the
// CRM talks to. It defines the normalized event and message types, the adapter
// capability interfaces, and a registry that adapters are looked up from.
package channel

import (
	"strings"
	"time"
)

// ChannelType identifies an external platform (e.g., "telegram", "youtube").
type ChannelType string

const (
	ChannelTelegram  ChannelType = "telegram"
	ChannelInstagram ChannelType = "instagram"
	ChannelYouTube   ChannelType = "youtube"
	ChannelFacebook  ChannelType = "facebook"
	ChannelWhatsApp  ChannelType = "whatsapp"
	ChannelManual    ChannelType = "manual"
	ChannelEskizSMS  ChannelType = "eskiz_sms"
)

// String returns the channel type as a plain string.
func (c ChannelType) String() string {
	return string(c)
}

var clientPlatforms = map[ChannelType]struct{}{
	ChannelTelegram:  {},
	ChannelInstagram: {},
	ChannelYouTube:   {},
	ChannelFacebook:  {},
	ChannelWhatsApp:  {},
	ChannelManual:    {},
}

// IsClientPlatform reports whether a client identity may originate from ct.
func IsClientPlatform(ct ChannelType) bool {
	_, ok := clientPlatforms[normalizeChannelType(ct.String())]
	return ok
}

// ParsePlatform normalizes raw and reports whether it names a client platform.
func ParsePlatform(raw string) (ChannelType, bool) {
	ct := normalizeChannelType(raw)
	return ct, IsClientPlatform(ct)
}

// MessageType classifies message content.
type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
	MessageVideo MessageType = "video"
	MessageAudio MessageType = "audio"
	MessageFile  MessageType = "file"
)

// EventKind distinguishes direct messages from public comments.
type EventKind string

const (
	EventMessage EventKind = "message"
	EventComment EventKind = "comment"
)

// Identity describes a person (or a synthetic group identity) on a platform.
type Identity struct {
	ID          string
	Username    string
	DisplayName string
	ProfileURL  string
	Phone       string
}

// Label returns the best human readable name for the identity.
func (i Identity) Label() string {
	if name := strings.TrimSpace(i.DisplayName); name != "" {
		return name
	}
	if username := strings.TrimSpace(i.Username); username != "" {
		return username
	}
	return ""
}

// InboundEvent is a platform payload normalized by an adapter. Client is the
// identity the event is filed under; Author is who actually wrote it. The two
// differ for group chats, where every member shares one synthetic client.
type InboundEvent struct {
	Kind           EventKind
	Channel        ChannelType
	ExternalID     string
	Client         Identity
	Author         Identity
	ConversationID string
	MessageType    MessageType
	Text           string
	MediaURL       string
	ReplyTo        string
	PostID         string
	PostURL        string
	ParentID       string
	ReceivedAt     time.Time
	Metadata       map[string]any
}

// Config carries resolved platform credentials for one operation.
type Config struct {
	ID          string
	Channel     ChannelType
	Credentials map[string]any
	WebhookURL  string
	LastSyncAt  time.Time
}

// Credential returns the trimmed string credential stored under key.
func (c Config) Credential(key string) string {
	return ReadString(c.Credentials, key)
}

// OutboundMessage is a reply addressed to a platform conversation or a phone number.
type OutboundMessage struct {
	Target  string `json:"target"`
	Text    string `json:"text"`
	ReplyTo string `json:"reply_to,omitempty"`
}

// SendResult holds the platform's identifier for a delivered message.
type SendResult struct {
	ExternalID string `json:"external_id"`
}

// CommentReply addresses a reply to a platform comment by its platform id.
type CommentReply struct {
	CommentID string
	PostID    string
	Text      string
}
