package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"task_reminder_bot/internal/app"
	"task_reminder_bot/internal/domain/messaging"
	"task_reminder_bot/internal/infra/cache"
	"task_reminder_bot/internal/infra/config"
	idb "task_reminder_bot/internal/infra/database"
	"task_reminder_bot/internal/infra/greenapi"
	"task_reminder_bot/internal/infra/httpapi"
	"task_reminder_bot/internal/infra/logger"
	"task_reminder_bot/internal/infra/scheduler"
	"task_reminder_bot/internal/infra/session"
	"task_reminder_bot/internal/infra/telegram"
)

// CLI is the command tree.
type CLI struct {
	Serve   ServeCmd   `cmd:"" default:"1" help:"Run the bot, the reminder dispatcher and the HTTP server"`
	Migrate MigrateCmd `cmd:"" help:"Apply the database schema"`
}

type MigrateCmd struct {
	DatabaseURL string        `env:"DATABASE_URL" required:"" help:"PostgreSQL connection string"`
	Timeout     time.Duration `default:"30s" help:"Give up connecting after this long"`
}

func (c *MigrateCmd) Run() error {
	log := logger.Component("migrate")

	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	db, err := idb.ConnectWithRetry(ctx, c.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := idb.Migrate(ctx, db); err != nil {
		return err
	}
	log.Info("Schema applied")
	return nil
}

type ServeCmd struct{}

func (c *ServeCmd) Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"channel":     cfg.Channel,
		"environment": cfg.Environment,
		"timezone":    cfg.Timezone,
		"admins":      len(cfg.AdminPhones),
	}).Info("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := idb.ConnectWithRetry(ctx, cfg.DatabaseURL, logger.Component("database"))
	if err != nil {
		return err
	}
	defer db.Close()
	mainLogger.Info("Database connection established")

	rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	defer rdb.Close()
	mainLogger.Info("Redis connection established")

	loc := cfg.Location()

	taskRepo := idb.NewPostgresTaskRepository(db)
	reminderRepo := idb.NewPostgresReminderRepository(db)
	userRepo := idb.NewPostgresUserRepository(db)
	refCache := app.NewReferenceCache(idb.NewPostgresReferenceRepository(db), logger.Component("reference_cache"))
	if err := refCache.Refresh(ctx); err != nil {
		// The cache loads lazily on first use; a cold start is not fatal.
		mainLogger.WithError(err).Warn("Initial reference load failed")
	}

	dialogService := app.NewDialogService(
		session.NewRedisStore(rdb, cfg.SessionTTL()),
		refCache,
		taskRepo,
		reminderRepo,
		userRepo,
		app.NewAdminAllowList(cfg.AdminPhones),
		loc,
		logger.Component("dialog"),
	)

	g, gctx := errgroup.WithContext(ctx)

	var sender messaging.Sender
	var webhook http.Handler
	switch cfg.Channel {
	case config.ChannelTelegram:
		bot, err := telegram.NewBot(cfg.TelegramToken, logger.Component("telegram"))
		if err != nil {
			return fmt.Errorf("create telegram bot: %w", err)
		}
		telegram.RegisterBotCommands(gctx, bot, dialogService, logger.Component("telegram"))
		sender = telegram.NewTelebotAdapter(bot)
		g.Go(func() error {
			return telegram.Run(gctx, bot, logger.Component("telegram"))
		})
	case config.ChannelGreenAPI:
		client := greenapi.NewClient(cfg.GreenAPIURL, cfg.GreenAPIID, cfg.GreenAPIToken)
		sender = client
		webhook = greenapi.NewWebhookHandler(dialogService, client, cfg.WebhookToken, logger.Component("greenapi"))
	}

	dispatcher, err := app.NewReminderDispatcher(
		reminderRepo,
		sender,
		cache.NewDeliveryLedger(rdb, cfg.LedgerTTL()),
		loc,
		logger.Component("dispatcher"),
		cfg.DispatchInterval(),
		cfg.DispatchBackoff(),
		cfg.DispatchCycleTimeout(),
	)
	if err != nil {
		return err
	}

	maintenance := scheduler.NewMaintenanceScheduler(refCache, logger.Component("scheduler"), loc, cfg.CronSpecReferenceRefresh)
	if err := maintenance.Start(); err != nil {
		return err
	}

	g.Go(func() error {
		return httpapi.Serve(gctx, cfg.HTTPAddr, httpapi.NewRouter(webhook, logger.Component("http")), logger.Component("http"))
	})
	dispatcher.Start(gctx)
	g.Go(func() error {
		<-gctx.Done()
		dispatcher.Stop()
		maintenance.Stop()
		return nil
	})

	mainLogger.Info("Application setup complete")
	if err := g.Wait(); err != nil {
		mainLogger.WithError(err).Error("Application stopped with error")
		return err
	}
	mainLogger.Info("Application shut down gracefully")
	return nil
}
