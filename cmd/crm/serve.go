package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/acoustichub/crm/internal/accounts"
	"github.com/acoustichub/crm/internal/branches"
	"github.com/acoustichub/crm/internal/channel"
	"github.com/acoustichub/crm/internal/channel/adapters/eskiz"
	"github.com/acoustichub/crm/internal/channel/adapters/manual"
	"github.com/acoustichub/crm/internal/channel/adapters/telegram"
	"github.com/acoustichub/crm/internal/channel/adapters/youtube"
	"github.com/acoustichub/crm/internal/channel/inbound"
	"github.com/acoustichub/crm/internal/clients"
	"github.com/acoustichub/crm/internal/comments"
	"github.com/acoustichub/crm/internal/config"
	"github.com/acoustichub/crm/internal/conversation"
	"github.com/acoustichub/crm/internal/db"
	dbsqlc "github.com/acoustichub/crm/internal/db/sqlc"
	"github.com/acoustichub/crm/internal/dedup"
	"github.com/acoustichub/crm/internal/handlers"
	"github.com/acoustichub/crm/internal/healthcheck"
	channelchecker "github.com/acoustichub/crm/internal/healthcheck/checkers/channel"
	pingchecker "github.com/acoustichub/crm/internal/healthcheck/checkers/ping"
	"github.com/acoustichub/crm/internal/identity"
	"github.com/acoustichub/crm/internal/integrations"
	"github.com/acoustichub/crm/internal/kanban"
	"github.com/acoustichub/crm/internal/logger"
	messagepkg "github.com/acoustichub/crm/internal/message"
	"github.com/acoustichub/crm/internal/outbound"
	"github.com/acoustichub/crm/internal/schedule"
	"github.com/acoustichub/crm/internal/server"
	"github.com/acoustichub/crm/internal/sms"
)

func runServe() {
	fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,
			provideDB,
			provideDBQueries,
			provideRedisGuard,
			provideDedupGuard,
			provideTelegramAdapter,
			youtube.NewYouTubeAdapter,
			provideEskizAdapter,
			provideChannelRegistry,
			provideIntegrations,
			provideConfigProvider,
			provideAccounts,
			provideBranches,
			provideClients,
			provideIdentityResolver,
			provideConversationTracker,
			provideMessageService,
			provideComments,
			provideInboundProcessor,
			providePipeline,
			provideDispatcher,
			provideSMS,
			schedule.NewScheduler,
			provideYouTubeSync,
			provideHealth,
			provideServerHandler(handlers.NewPingHandler),
			provideServerHandler(provideAuthHandler),
			provideServerHandler(handlers.NewUsersHandler),
			provideServerHandler(handlers.NewClientsHandler),
			provideServerHandler(handlers.NewMessageHandler),
			provideServerHandler(handlers.NewCommentsHandler),
			provideServerHandler(handlers.NewKanbanHandler),
			provideServerHandler(handlers.NewIntegrationsHandler),
			provideServerHandler(provideWebhookHandler),
			provideServerHandler(handlers.NewBranchesHandler),
			provideServerHandler(handlers.NewSMSHandler),
			provideServer,
		),
		fx.Invoke(
			startScheduler,
			startServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func provideConfig() (config.Config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideDB(lc fx.Lifecycle, cfg config.Config) (*db.DB, error) {
	conn, err := db.Open(context.Background(), cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	lc.Append(fx.Hook{OnStop: func(ctx context.Context) error { conn.Close(); return nil }})
	return conn, nil
}

func provideDBQueries(conn *db.DB) *dbsqlc.Queries { return conn.Queries() }

// provideRedisGuard returns nil when redis is not configured.
func provideRedisGuard(lc fx.Lifecycle, log *slog.Logger, cfg config.Config) (*dedup.RedisGuard, error) {
	guard, err := dedup.Open(context.Background(), log, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if guard != nil {
		lc.Append(fx.Hook{OnStop: func(ctx context.Context) error { return guard.Close() }})
	}
	return guard, nil
}

func provideDedupGuard(log *slog.Logger, guard *dedup.RedisGuard) dedup.Guard {
	if guard == nil {
		log.Info("redis not configured, inbound dedup uses the database only")
		return dedup.Noop{}
	}
	return guard
}

func provideTelegramAdapter(log *slog.Logger, cfg config.Config) *telegram.TelegramAdapter {
	return telegram.NewTelegramAdapter(log, telegram.Options{
		WebhookBaseURL: cfg.Webhook.BaseURL,
		SecretToken:    cfg.Webhook.SecretToken,
	})
}

func provideEskizAdapter(log *slog.Logger, cfg config.Config) *eskiz.EskizAdapter {
	return eskiz.NewEskizAdapter(log, cfg.Eskiz.BaseURL, cfg.Eskiz.From)
}

func provideChannelRegistry(tg *telegram.TelegramAdapter, yt *youtube.YouTubeAdapter, sm *eskiz.EskizAdapter) *channel.Registry {
	registry := channel.NewRegistry()
	registry.MustRegister(tg)
	registry.MustRegister(yt)
	registry.MustRegister(sm)
	registry.MustRegister(manual.NewAdapter())
	return registry
}

func provideIntegrations(log *slog.Logger, queries *dbsqlc.Queries, registry *channel.Registry, cfg config.Config) *integrations.Service {
	return integrations.NewService(log, queries, registry, integrations.FallbacksFromConfig(cfg))
}

func provideConfigProvider(service *integrations.Service) channel.ConfigProvider { return service }

func provideAccounts(log *slog.Logger, conn *db.DB, queries *dbsqlc.Queries, cfg config.Config) *accounts.Service {
	return accounts.NewService(log, queries, db.NewTxRunner(conn, func(q *dbsqlc.Queries) accounts.PermissionTx { return q }), cfg.Auth)
}

func provideBranches(log *slog.Logger, queries *dbsqlc.Queries) *branches.Service {
	return branches.NewService(log, queries)
}

func provideClients(log *slog.Logger, conn *db.DB, queries *dbsqlc.Queries) *clients.Service {
	return clients.NewService(log, queries, db.NewTxRunner(conn, func(q *dbsqlc.Queries) clients.MergeStore { return q }))
}

func provideIdentityResolver(log *slog.Logger, conn *db.DB, queries *dbsqlc.Queries) *identity.Resolver {
	return identity.NewResolver(log, queries, db.NewTxRunner(conn, func(q *dbsqlc.Queries) identity.TxStore { return q }))
}

func provideConversationTracker(log *slog.Logger, queries *dbsqlc.Queries) *conversation.Tracker {
	return conversation.NewTracker(log, queries)
}

func provideMessageService(log *slog.Logger, queries *dbsqlc.Queries) *messagepkg.DBService {
	return messagepkg.NewService(log, queries)
}

func provideComments(log *slog.Logger, queries *dbsqlc.Queries, registry *channel.Registry, configs channel.ConfigProvider) *comments.Service {
	return comments.NewService(log, queries, registry, configs)
}

func provideInboundProcessor(log *slog.Logger, resolver *identity.Resolver, tracker *conversation.Tracker, messages *messagepkg.DBService, commentService *comments.Service, guard dedup.Guard) *inbound.Processor {
	return inbound.NewProcessor(log, resolver, tracker, messages, commentService, guard)
}

func providePipeline(log *slog.Logger, conn *db.DB, queries *dbsqlc.Queries) *kanban.Service {
	return kanban.NewService(log, queries, db.NewTxRunner(conn, func(q *dbsqlc.Queries) kanban.TxStore { return q }))
}

func provideDispatcher(log *slog.Logger, queries *dbsqlc.Queries, registry *channel.Registry, configs channel.ConfigProvider, messages *messagepkg.DBService, tracker *conversation.Tracker) *outbound.Dispatcher {
	return outbound.NewDispatcher(log, queries, registry, manual.NewAdapter(), configs, messages, tracker)
}

func provideSMS(log *slog.Logger, queries *dbsqlc.Queries, sender *eskiz.EskizAdapter, configs channel.ConfigProvider) *sms.Service {
	return sms.NewService(log, queries, sender, configs)
}

func provideYouTubeSync(log *slog.Logger, configs channel.ConfigProvider, yt *youtube.YouTubeAdapter, processor *inbound.Processor, integrationService *integrations.Service) *schedule.YouTubeSync {
	return schedule.NewYouTubeSync(log, configs, yt, processor, integrationService)
}

func provideHealth(log *slog.Logger, conn *db.DB, guard *dedup.RedisGuard, configs channel.ConfigProvider) *healthcheck.Aggregator {
	var redisPinger pingchecker.Pinger
	if guard != nil {
		redisPinger = guard
	}
	return healthcheck.NewAggregator(
		pingchecker.NewChecker(log, "postgres", conn, false),
		pingchecker.NewChecker(log, "redis", redisPinger, true),
		channelchecker.NewChecker(log, configs, channel.ChannelTelegram, channel.ChannelYouTube, channel.ChannelEskizSMS),
	)
}

func provideAuthHandler(log *slog.Logger, service *accounts.Service, cfg config.Config) *handlers.AuthHandler {
	return handlers.NewAuthHandler(log, service, cfg.Auth)
}

func provideWebhookHandler(log *slog.Logger, tg *telegram.TelegramAdapter, configs channel.ConfigProvider, processor *inbound.Processor) *handlers.WebhookHandler {
	return handlers.NewWebhookHandler(log, tg, configs, processor)
}

type serverParams struct {
	fx.In
	Logger         *slog.Logger
	Config         config.Config
	ServerHandlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.NewServer(params.Logger, params.Config.Server.Addr, params.Config.Auth.JWTSecret, params.ServerHandlers...)
}

func startScheduler(lc fx.Lifecycle, logger *slog.Logger, cfg config.Config, scheduler *schedule.Scheduler, youtubeSync *schedule.YouTubeSync) error {
	if !cfg.Scheduler.Enabled {
		logger.Info("scheduler disabled")
		return nil
	}
	if err := scheduler.Register(cfg.Scheduler.CommentSyncSpec, youtubeSync); err != nil {
		return fmt.Errorf("register youtube sync: %w", err)
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error { scheduler.Start(); return nil },
		OnStop:  func(ctx context.Context) error { return scheduler.Stop(ctx) },
	})
	return nil
}

func startServer(lc fx.Lifecycle, logger *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner, cfg config.Config, accountService *accounts.Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := accountService.EnsureAdmin(ctx, cfg.Admin); err != nil {
				return fmt.Errorf("ensure admin: %w", err)
			}
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			logger.Info("server started", slog.String("addr", cfg.Server.Addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}
