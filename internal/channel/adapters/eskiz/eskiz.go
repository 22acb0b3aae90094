// Package eskiz sends SMS through the Eskiz.uz gateway.
package eskiz

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/acoustichub/crm/internal/channel"
)

const (
	Type channel.ChannelType = channel.ChannelEskizSMS

	DefaultBaseURL = "https://notify.eskiz.uz/api"
	DefaultSender  = "Acoustic"
)

var (
	// ErrLoginFailed indicates the gateway rejected the account credentials.
	ErrLoginFailed = errors.New("eskiz login failed")
	// ErrTokenExpired indicates the cached bearer token is no longer accepted.
	ErrTokenExpired = errors.New("eskiz token expired")
)

var nonDigits = regexp.MustCompile(`\D`)

// NormalizePhone strips everything but digits and rewrites a leading 8 to 998.
func NormalizePhone(phone string) string {
	digits := nonDigits.ReplaceAllString(phone, "")
	if strings.HasPrefix(digits, "8") {
		digits = "998" + digits[1:]
	}
	return digits
}

// EskizAdapter delivers SMS and caches the gateway bearer token per account.
type EskizAdapter struct {
	logger     *slog.Logger
	httpClient *http.Client
	baseURL    string
	sender     string

	mu     sync.Mutex
	tokens map[string]string // keyed by baseURL + account email
}

// NewEskizAdapter creates an adapter. Empty baseURL and sender fall back to defaults.
func NewEskizAdapter(log *slog.Logger, baseURL, sender string) *EskizAdapter {
	if log == nil {
		log = slog.Default()
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if strings.TrimSpace(sender) == "" {
		sender = DefaultSender
	}
	return &EskizAdapter{
		logger:     log.With(slog.String("adapter", "eskiz")),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		sender:     sender,
		tokens:     make(map[string]string),
	}
}

func (a *EskizAdapter) Type() channel.ChannelType {
	return Type
}

func (a *EskizAdapter) Descriptor() channel.Descriptor {
	return channel.Descriptor{
		Type:           Type,
		DisplayName:    "Eskiz.uz SMS",
		Capabilities:   channel.Capabilities{Send: true},
		RequiredFields: []string{"email", "password"},
	}
}

func (a *EskizAdapter) NormalizeConfig(raw map[string]any) (map[string]any, error) {
	out, err := channel.RequireFields(raw, "email", "password")
	if err != nil {
		return nil, err
	}
	if from := channel.ReadString(out, "from"); from == "" {
		out["from"] = a.sender
	}
	return out, nil
}

type loginResponse struct {
	Message string `json:"message"`
	Data    struct {
		Token string `json:"token"`
	} `json:"data"`
}

type sendRequest struct {
	MobilePhone string `json:"mobile_phone"`
	Message     string `json:"message"`
	From        string `json:"from"`
}

type sendResponse struct {
	ID      any    `json:"id"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

func (a *EskizAdapter) endpoint(cfg channel.Config) string {
	if base := cfg.Credential("baseUrl"); base != "" {
		return strings.TrimRight(base, "/")
	}
	return a.baseURL
}

// Send delivers msg.Text to the phone number in msg.Target.
func (a *EskizAdapter) Send(ctx context.Context, cfg channel.Config, msg channel.OutboundMessage) (channel.SendResult, error) {
	phone := NormalizePhone(msg.Target)
	if phone == "" {
		return channel.SendResult{}, fmt.Errorf("phone number is required")
	}
	if strings.TrimSpace(msg.Text) == "" {
		return channel.SendResult{}, fmt.Errorf("message is required")
	}
	email := cfg.Credential("email")
	password := cfg.Credential("password")
	if email == "" || password == "" {
		return channel.SendResult{}, fmt.Errorf("eskiz email and password are required")
	}
	from := cfg.Credential("from")
	if from == "" {
		from = a.sender
	}
	base := a.endpoint(cfg)
	cacheKey := base + "|" + email

	const maxAttempts = 2
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		token, err := a.token(ctx, base, cacheKey, email, password)
		if err != nil {
			return channel.SendResult{}, err
		}
		id, err := a.send(ctx, base, token, sendRequest{MobilePhone: phone, Message: msg.Text, From: from})
		if err == nil {
			a.logger.Info("sms sent", slog.String("phone", phone), slog.String("provider_id", id))
			return channel.SendResult{ExternalID: id}, nil
		}
		lastErr = err
		if !errors.Is(err, ErrTokenExpired) {
			break
		}
		a.forgetToken(cacheKey)
		a.logger.Warn("eskiz token rejected, logging in again", slog.Int("attempt", attempt))
	}
	return channel.SendResult{}, lastErr
}

func (a *EskizAdapter) token(ctx context.Context, base, cacheKey, email, password string) (string, error) {
	a.mu.Lock()
	token, ok := a.tokens[cacheKey]
	a.mu.Unlock()
	if ok {
		return token, nil
	}
	token, err := a.login(ctx, base, email, password)
	if err != nil {
		return "", err
	}
	a.mu.Lock()
	a.tokens[cacheKey] = token
	a.mu.Unlock()
	return token, nil
}

func (a *EskizAdapter) forgetToken(cacheKey string) {
	a.mu.Lock()
	delete(a.tokens, cacheKey)
	a.mu.Unlock()
}

func (a *EskizAdapter) login(ctx context.Context, base, email, password string) (string, error) {
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", fmt.Errorf("failed to marshal login request: %w", err)
	}
	body, status, err := a.post(ctx, base+"/auth/login", "", payload)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		a.logger.Error("eskiz login rejected", slog.Int("status_code", status), slog.String("body", string(body)))
		return "", fmt.Errorf("%w: status %d", ErrLoginFailed, status)
	}
	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse login response: %w", err)
	}
	token := strings.TrimSpace(resp.Data.Token)
	if token == "" {
		return "", fmt.Errorf("%w: empty token", ErrLoginFailed)
	}
	return token, nil
}

func (a *EskizAdapter) send(ctx context.Context, base, token string, req sendRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal send request: %w", err)
	}
	body, status, err := a.post(ctx, base+"/message/sms/send", token, payload)
	if err != nil {
		return "", err
	}
	switch {
	case status == http.StatusUnauthorized:
		return "", ErrTokenExpired
	case status < 200 || status >= 300:
		var resp sendResponse
		if json.Unmarshal(body, &resp) == nil && resp.Message != "" {
			return "", fmt.Errorf("eskiz api error %d: %s", status, resp.Message)
		}
		return "", fmt.Errorf("eskiz api error %d: %s", status, string(body))
	}
	var resp sendResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse send response: %w", err)
	}
	return channel.ReadString(map[string]any{"id": resp.ID}, "id"), nil
}

func (a *EskizAdapter) post(ctx context.Context, url, token string, payload []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("eskiz request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}
