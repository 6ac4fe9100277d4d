package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-engine/internal/api/http"
	"github.com/spec-kit/helpdesk-engine/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-engine/internal/auth"
	"github.com/spec-kit/helpdesk-engine/internal/clients"
	"github.com/spec-kit/helpdesk-engine/internal/config"
	"github.com/spec-kit/helpdesk-engine/internal/events"
	"github.com/spec-kit/helpdesk-engine/internal/observability"
	"github.com/spec-kit/helpdesk-engine/internal/persistence"
	"github.com/spec-kit/helpdesk-engine/internal/repository"
	"github.com/spec-kit/helpdesk-engine/internal/service"
	"github.com/spec-kit/helpdesk-engine/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)
	kbRepo := repository.NewKnowledgebaseRepository(pool)
	actionRepo := repository.NewActionRepository(pool)
	deviceRepo := repository.NewDeviceTokenRepository(pool)
	visitCounter := repository.NewVisitCounter(redis.Client)

	aiClient := clients.NewAIClient(cfg.Collaborators.AIResponderURL, cfg.Collaborators.AITimeout())
	mailerClient := clients.NewMailerClient(cfg.Collaborators.MailerURL, cfg.Collaborators.MailerTimeout())
	actionClient := clients.NewActionClient(cfg.Collaborators.ActionsURL)

	var pushClient clients.PushClient = clients.NoopPushClient{}
	if cfg.Push.CredentialsFile != "" {
		pushClient, err = clients.NewFCMClient(ctx, cfg.Push.CredentialsFile, logger)
		if err != nil {
			logger.Fatal("failed to init fcm", zap.Error(err))
		}
	} else {
		logger.Warn("FCM_CREDENTIALS_FILE not provided; push notifications disabled")
	}

	resolver := service.NewTicketResolver(ticketRepo, mailerClient, logger)
	assembler := service.NewConversationAssembler(messageRepo)
	sequencer := service.NewEffectSequencer(service.EffectDependencies{
		TicketRepo: ticketRepo,
		DeviceRepo: deviceRepo,
		Push:       pushClient,
		AI:         aiClient,
		Mailer:     mailerClient,
		Metrics:    metrics,
	}, cfg.Automation, logger)
	actionDispatcher := service.NewActionDispatcher(
		actionRepo,
		actionClient,
		cfg.Collaborators.ActionTimeout(),
		cfg.Automation.PersonalityLevel,
		logger,
		metrics,
	)
	automation := service.NewAutomationService(service.AutomationDependencies{
		KnowledgebaseRepo: kbRepo,
		TicketRepo:        ticketRepo,
		Assembler:         assembler,
		Sequencer:         sequencer,
		Dispatcher:        actionDispatcher,
	}, logger)

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAutomationWorker(dispatcher, automation)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTLMinutes)
	authMiddleware := auth.NewMiddleware(tokenManager)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(pg, redis),
		Intake:         handlers.NewIntakeHandler(resolver, dispatcher, logger),
		Hooks:          handlers.NewHooksHandler(dispatcher, actionRepo, logger),
		Track:          handlers.NewTrackHandler(visitCounter, logger),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
