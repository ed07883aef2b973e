package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fieldserve/fieldserve-be/internal/config"
	"github.com/fieldserve/fieldserve-be/internal/dispatch"
	dispatchstorage "github.com/fieldserve/fieldserve-be/internal/dispatch/storage"
	"github.com/fieldserve/fieldserve-be/shared/logger"
	"github.com/fieldserve/fieldserve-be/shared/postgresql"
	"github.com/fieldserve/fieldserve-be/shared/rabbitmq"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	defaultConfigPath := os.Getenv("DISPATCHER_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/dispatcher-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateDispatcherConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := logger.New(&logger.Config{
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		Output:       cfg.Logging.Output,
		EnableSource: cfg.Logging.EnableCaller,
		TimeFormat:   time.RFC3339,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	appLogger.Info("Starting dispatcher service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("schedule", cfg.Dispatcher.Schedule),
		slog.Duration("window", cfg.Dispatcher.Window),
	)

	dbClient, err := postgresql.NewClient(&postgresql.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	}, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbClient.Close()

	appLogger.Info("Database connection established")

	rabbitClient, err := rabbitmq.NewClient(&rabbitmq.Config{
		Host:               cfg.RabbitMQ.Host,
		Port:               cfg.RabbitMQ.Port,
		User:               cfg.RabbitMQ.User,
		Password:           cfg.RabbitMQ.Password,
		VHost:              cfg.RabbitMQ.VHost,
		ExchangeName:       cfg.RabbitMQ.Exchange.Name,
		ExchangeType:       cfg.RabbitMQ.Exchange.Type,
		ExchangeDurable:    cfg.RabbitMQ.Exchange.Durable,
		ExchangeAutoDelete: cfg.RabbitMQ.Exchange.AutoDelete,
		QueueName:          cfg.RabbitMQ.Queue.Name,
		QueueDurable:       cfg.RabbitMQ.Queue.Durable,
		QueueAutoDelete:    cfg.RabbitMQ.Queue.AutoDelete,
		QueueExclusive:     cfg.RabbitMQ.Queue.Exclusive,
		RoutingKey:         cfg.RabbitMQ.RoutingKey,
		RetryAttempts:      cfg.RabbitMQ.Connection.RetryAttempts,
		RetryInterval:      cfg.RabbitMQ.Connection.RetryInterval,
		Heartbeat:          cfg.RabbitMQ.Connection.Heartbeat,
		ConnectionTimeout:  cfg.RabbitMQ.Connection.ConnectionTimeout,
	}, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
	}
	defer rabbitClient.Close()

	appLogger.Info("RabbitMQ connection established")

	jobStore := dispatchstorage.NewStorage(dbClient.GetDB(), appLogger.Logger)
	sender := dispatch.NewWebhookClient(cfg.Webhook.ReminderURL, cfg.Webhook.Timeout, appLogger.Logger)
	dispatcher := dispatch.NewDispatcher(jobStore, sender, appLogger.Logger, cfg.Dispatcher.Window)
	notifier := dispatch.NewNotifier(jobStore, sender, appLogger.Logger, cfg.Dispatcher.Window)
	consumer := dispatch.NewConsumer(rabbitClient, notifier, appLogger.Logger, cfg.RabbitMQ.Consumer.PrefetchCount)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Periodic reminder dispatch
	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.Dispatcher.Schedule, func() {
		runCtx, cancel := context.WithTimeout(ctx, cfg.Dispatcher.RunTimeout)
		defer cancel()

		if _, err := dispatcher.Run(runCtx); err != nil {
			appLogger.Error("Scheduled dispatch run failed",
				slog.Any("error", err),
			)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid dispatcher schedule %q: %w", cfg.Dispatcher.Schedule, err)
	}
	scheduler.Start()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return consumer.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		cronCtx := scheduler.Stop()
		// Let an in-flight dispatch pass finish before exiting
		<-cronCtx.Done()
		return nil
	})

	appLogger.Info("Dispatcher service is running")

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		appLogger.Error("Dispatcher service failed",
			slog.Any("error", err),
		)
		return err
	}

	appLogger.Info("Dispatcher service shutdown complete")
	return nil
}
