package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/acoustichub/crm/internal/channel"
)

const (
	Type channel.ChannelType = channel.ChannelTelegram

	telegramMaxMessageLength = 4096

	// WebhookPath is where platform deliveries arrive, relative to the public base URL.
	WebhookPath = "/api/v1/webhook/telegram"
	// SecretTokenHeader carries the secret registered with setWebhook.
	SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"
)

// Options configures webhook registration.
type Options struct {
	WebhookBaseURL string
	SecretToken    string
}

// TelegramAdapter implements webhook ingest, sending and webhook setup for Telegram.
type TelegramAdapter struct {
	logger      *slog.Logger
	opts        Options
	apiEndpoint string
	client      *http.Client
	mu          sync.RWMutex
	bots        map[string]*tgbotapi.BotAPI // keyed by bot token
}

// NewTelegramAdapter creates a TelegramAdapter with the given logger.
func NewTelegramAdapter(log *slog.Logger, opts Options) *TelegramAdapter {
	if log == nil {
		log = slog.Default()
	}
	adapter := &TelegramAdapter{
		logger:      log.With(slog.String("adapter", "telegram")),
		opts:        opts,
		apiEndpoint: tgbotapi.APIEndpoint,
		client:      &http.Client{Timeout: 30 * time.Second},
		bots:        make(map[string]*tgbotapi.BotAPI),
	}
	_ = tgbotapi.SetLogger(&slogBotLogger{log: adapter.logger})
	return adapter
}

func (a *TelegramAdapter) getOrCreateBot(token, configID string) (*tgbotapi.BotAPI, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}
	a.mu.RLock()
	bot, ok := a.bots[token]
	a.mu.RUnlock()
	if ok {
		return bot, nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if bot, ok := a.bots[token]; ok {
		return bot, nil
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, a.apiEndpoint, a.client)
	if err != nil {
		a.logger.Error("create bot failed", slog.String("config_id", configID), slog.Any("error", err))
		return nil, err
	}
	a.bots[token] = bot
	return bot, nil
}

// Type returns the Telegram channel type.
func (a *TelegramAdapter) Type() channel.ChannelType {
	return Type
}

// Descriptor returns the Telegram channel metadata.
func (a *TelegramAdapter) Descriptor() channel.Descriptor {
	return channel.Descriptor{
		Type:        Type,
		DisplayName: "Telegram",
		Capabilities: channel.Capabilities{
			Webhook: true,
			Send:    true,
		},
		RequiredFields: []string{"botToken"},
	}
}

// NormalizeConfig validates and normalizes a Telegram credential map.
func (a *TelegramAdapter) NormalizeConfig(raw map[string]any) (map[string]any, error) {
	if token := channel.ReadString(raw, "botToken", "bot_token"); token != "" {
		raw["botToken"] = token
		delete(raw, "bot_token")
	}
	return channel.RequireFields(raw, "botToken")
}

func botToken(cfg channel.Config) string {
	return cfg.Credential("botToken")
}

// WebhookURL returns the public delivery URL for the configured base.
func (a *TelegramAdapter) WebhookURL() string {
	base := strings.TrimRight(strings.TrimSpace(a.opts.WebhookBaseURL), "/")
	if base == "" {
		return ""
	}
	return base + WebhookPath
}

// Configure registers the webhook for the saved bot token.
func (a *TelegramAdapter) Configure(ctx context.Context, cfg channel.Config) (string, error) {
	url := a.WebhookURL()
	if url == "" {
		a.logger.Warn("webhook base url not set, skipping webhook registration", slog.String("config_id", cfg.ID))
		return "", nil
	}
	bot, err := a.getOrCreateBot(botToken(cfg), cfg.ID)
	if err != nil {
		return "", err
	}
	params := tgbotapi.Params{"url": url}
	if secret := strings.TrimSpace(a.opts.SecretToken); secret != "" {
		params["secret_token"] = secret
	}
	resp, err := bot.MakeRequest("setWebhook", params)
	if err != nil {
		return "", fmt.Errorf("set webhook: %w", err)
	}
	if !resp.Ok {
		return "", fmt.Errorf("set webhook: %s", resp.Description)
	}
	a.logger.Info("webhook registered", slog.String("config_id", cfg.ID), slog.String("url", url))
	return url, nil
}

// ValidSecret reports whether a delivery carries the expected secret token.
// With no secret configured every delivery is accepted.
func (a *TelegramAdapter) ValidSecret(header string) bool {
	secret := strings.TrimSpace(a.opts.SecretToken)
	return secret == "" || strings.TrimSpace(header) == secret
}

// ParseWebhook decodes one Telegram update. Updates without a supported
// message return no events.
func (a *TelegramAdapter) ParseWebhook(ctx context.Context, cfg channel.Config, body []byte) ([]channel.InboundEvent, error) {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return nil, fmt.Errorf("decode telegram update: %w", err)
	}
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return nil, nil
	}
	messageType, fileID, ok := classifyTelegramMessage(msg)
	if !ok {
		a.logger.Debug("unsupported update skipped", slog.Int("update_id", update.UpdateID))
		return nil, nil
	}

	chatID := strconv.FormatInt(msg.Chat.ID, 10)
	author := resolveTelegramSender(msg)
	client := author
	if isTelegramGroup(msg.Chat) {
		client = groupIdentity(msg.Chat)
	}
	if client.ID == "" {
		return nil, fmt.Errorf("telegram update %d has no sender", update.UpdateID)
	}

	event := channel.InboundEvent{
		Kind:           channel.EventMessage,
		Channel:        Type,
		ExternalID:     telegramMessageKey(chatID, msg.MessageID),
		Client:         client,
		Author:         author,
		ConversationID: chatID,
		MessageType:    messageType,
		Text:           strings.TrimSpace(msg.Text),
		ReceivedAt:     msg.Time(),
		Metadata: map[string]any{
			"update_id":  update.UpdateID,
			"chat_type":  msg.Chat.Type,
			"message_id": msg.MessageID,
		},
	}
	if messageType != channel.MessageText {
		event.Text = strings.TrimSpace(msg.Caption)
		event.MediaURL = a.resolveFileURL(cfg, fileID)
		event.Metadata["file_id"] = fileID
	}
	if msg.ReplyToMessage != nil {
		event.ReplyTo = telegramMessageKey(chatID, msg.ReplyToMessage.MessageID)
	}
	return []channel.InboundEvent{event}, nil
}

// resolveFileURL looks up a fetchable URL for a file id. Failures are logged
// and yield an empty URL so the message itself is still stored.
func (a *TelegramAdapter) resolveFileURL(cfg channel.Config, fileID string) string {
	if strings.TrimSpace(fileID) == "" {
		return ""
	}
	bot, err := a.getOrCreateBot(botToken(cfg), cfg.ID)
	if err != nil {
		a.logger.Warn("resolve file url failed", slog.Any("error", err))
		return ""
	}
	url, err := bot.GetFileDirectURL(fileID)
	if err != nil {
		a.logger.Warn("resolve file url failed", slog.String("file_id", fileID), slog.Any("error", err))
		return ""
	}
	return strings.TrimSpace(url)
}

// Send delivers a text reply to a chat.
func (a *TelegramAdapter) Send(ctx context.Context, cfg channel.Config, msg channel.OutboundMessage) (channel.SendResult, error) {
	to := strings.TrimSpace(msg.Target)
	if to == "" {
		return channel.SendResult{}, fmt.Errorf("telegram target is required")
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return channel.SendResult{}, fmt.Errorf("message is required")
	}
	bot, err := a.getOrCreateBot(botToken(cfg), cfg.ID)
	if err != nil {
		return channel.SendResult{}, err
	}
	chatID, messageID, err := sendTelegramTextReturnMessage(bot, to, text, parseReplyToMessageID(msg.ReplyTo))
	if err != nil {
		a.logger.Error("send message failed", slog.String("config_id", cfg.ID), slog.Any("error", err))
		return channel.SendResult{}, err
	}
	return channel.SendResult{ExternalID: telegramMessageKey(strconv.FormatInt(chatID, 10), messageID)}, nil
}

// telegramMessageKey scopes a message id to its chat, since Telegram message
// ids are only unique within one chat.
func telegramMessageKey(chatID string, messageID int) string {
	return chatID + "_" + strconv.Itoa(messageID)
}

func classifyTelegramMessage(msg *tgbotapi.Message) (channel.MessageType, string, bool) {
	switch {
	case len(msg.Photo) > 0:
		return channel.MessageImage, pickTelegramPhoto(msg.Photo).FileID, true
	case msg.Video != nil:
		return channel.MessageVideo, msg.Video.FileID, true
	case msg.Document != nil:
		return channel.MessageFile, msg.Document.FileID, true
	case msg.Voice != nil:
		return channel.MessageAudio, msg.Voice.FileID, true
	case msg.Audio != nil:
		return channel.MessageAudio, msg.Audio.FileID, true
	case strings.TrimSpace(msg.Text) != "":
		return channel.MessageText, "", true
	}
	return "", "", false
}

func isTelegramGroup(chat *tgbotapi.Chat) bool {
	return chat != nil && (chat.Type == "group" || chat.Type == "supergroup")
}

func groupIdentity(chat *tgbotapi.Chat) channel.Identity {
	chatID := strconv.FormatInt(chat.ID, 10)
	title := strings.TrimSpace(chat.Title)
	if title == "" {
		title = "Guruh " + chatID
	}
	return channel.Identity{
		ID:          "group_" + chatID,
		Username:    strings.TrimSpace(chat.UserName),
		DisplayName: title,
	}
}

func resolveTelegramSender(msg *tgbotapi.Message) channel.Identity {
	if msg == nil {
		return channel.Identity{}
	}
	if msg.From != nil {
		username := strings.TrimSpace(msg.From.UserName)
		identity := channel.Identity{
			ID:          strconv.FormatInt(msg.From.ID, 10),
			Username:    username,
			DisplayName: strings.TrimSpace(msg.From.FirstName + " " + msg.From.LastName),
		}
		if identity.DisplayName == "" {
			identity.DisplayName = username
		}
		if username != "" {
			identity.ProfileURL = "https://t.me/" + username
		}
		return identity
	}
	if msg.SenderChat != nil {
		displayName := strings.TrimSpace(msg.SenderChat.Title)
		if displayName == "" {
			displayName = strings.TrimSpace(msg.SenderChat.UserName)
		}
		return channel.Identity{
			ID:          strconv.FormatInt(msg.SenderChat.ID, 10),
			Username:    strings.TrimSpace(msg.SenderChat.UserName),
			DisplayName: displayName,
		}
	}
	return channel.Identity{}
}

// parseReplyToMessageID accepts either a bare message id or a chat-scoped key.
func parseReplyToMessageID(raw string) int {
	raw = strings.TrimSpace(raw)
	if idx := strings.LastIndex(raw, "_"); idx >= 0 {
		raw = raw[idx+1:]
	}
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}

// sendTelegramTextReturnMessage sends a text message and returns the chat ID and message ID.
func sendTelegramTextReturnMessage(bot *tgbotapi.BotAPI, target string, text string, replyTo int) (chatID int64, messageID int, err error) {
	text = truncateTelegramText(sanitizeTelegramText(text))
	var sent tgbotapi.Message
	if strings.HasPrefix(target, "@") {
		message := tgbotapi.NewMessageToChannel(target, text)
		if replyTo > 0 {
			message.ReplyToMessageID = replyTo
		}
		sent, err = bot.Send(message)
		if err != nil {
			return 0, 0, err
		}
	} else {
		chatID, err = strconv.ParseInt(target, 10, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("telegram target must be @username or chat_id")
		}
		message := tgbotapi.NewMessage(chatID, text)
		if replyTo > 0 {
			message.ReplyToMessageID = replyTo
		}
		sent, err = bot.Send(message)
		if err != nil {
			return 0, 0, err
		}
	}
	if sent.Chat != nil {
		chatID = sent.Chat.ID
	}
	messageID = sent.MessageID
	return chatID, messageID, nil
}

func pickTelegramPhoto(items []tgbotapi.PhotoSize) tgbotapi.PhotoSize {
	if len(items) == 0 {
		return tgbotapi.PhotoSize{}
	}
	best := items[0]
	for _, item := range items[1:] {
		if item.FileSize > best.FileSize {
			best = item
			continue
		}
		if item.Width*item.Height > best.Width*best.Height {
			best = item
		}
	}
	return best
}

// sanitizeTelegramText ensures text is valid UTF-8 for the Telegram API.
func sanitizeTelegramText(text string) string {
	if utf8.ValidString(text) {
		return text
	}
	return strings.ToValidUTF8(text, "")
}

// truncateTelegramText truncates text to telegramMaxMessageLength on a valid
// UTF-8 rune boundary, appending "..." when truncation occurs.
func truncateTelegramText(text string) string {
	if len(text) <= telegramMaxMessageLength {
		return text
	}
	const suffix = "..."
	limit := telegramMaxMessageLength - len(suffix)
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit] + suffix
}
