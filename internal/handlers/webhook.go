package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/acoustichub/crm/internal/channel"
	"github.com/acoustichub/crm/internal/channel/inbound"
)

const maxWebhookBody = 1 << 20

const telegramSecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// TelegramWebhook is the adapter side of the Telegram push endpoint.
type TelegramWebhook interface {
	channel.WebhookParser
	ValidSecret(header string) bool
}

// BatchProcessor ingests the events of one delivery.
type BatchProcessor interface {
	ProcessBatch(ctx context.Context, events []channel.InboundEvent) inbound.Summary
}

// WebhookHandler receives platform pushes. It sits outside JWT auth and
// acknowledges every authentic delivery so the platform does not retry
// events that can never succeed.
type WebhookHandler struct {
	telegram  TelegramWebhook
	configs   channel.ConfigProvider
	processor BatchProcessor
	logger    *slog.Logger
}

func NewWebhookHandler(log *slog.Logger, telegram TelegramWebhook, configs channel.ConfigProvider, processor BatchProcessor) *WebhookHandler {
	if log == nil {
		log = slog.Default()
	}
	return &WebhookHandler{
		telegram:  telegram,
		configs:   configs,
		processor: processor,
		logger:    log.With(slog.String("handler", "webhook")),
	}
}

func (h *WebhookHandler) Register(e *echo.Echo) {
	e.POST(APIPrefix+"/webhook/telegram", h.Telegram)
}

func (h *WebhookHandler) Telegram(c echo.Context) error {
	if !h.telegram.ValidSecret(c.Request().Header.Get(telegramSecretHeader)) {
		h.logger.Warn("telegram webhook rejected: bad secret token", slog.String("remote_ip", c.RealIP()))
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid secret token")
	}
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()

	cfg, err := h.configs.ActiveConfig(ctx, channel.ChannelTelegram)
	if err != nil {
		if errors.Is(err, channel.ErrConfigNotFound) {
			h.logger.Warn("telegram update dropped: integration not configured")
		} else {
			h.logger.Error("telegram config lookup failed", slog.Any("error", err))
		}
		return ack(c)
	}
	events, err := h.telegram.ParseWebhook(ctx, cfg, body)
	if err != nil {
		h.logger.Warn("telegram update not parsed", slog.Any("error", err))
		return ack(c)
	}
	if len(events) == 0 {
		return ack(c)
	}
	summary := h.processor.ProcessBatch(ctx, events)
	h.logger.Debug("telegram update ingested",
		slog.Int("processed", summary.Processed),
		slog.Int("duplicates", summary.Duplicates),
		slog.Int("failed", summary.Failed),
	)
	return ack(c)
}

func ack(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}
