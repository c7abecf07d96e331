package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/register-pos/internal/api_gateway"
	"github.com/register-pos/internal/cache"
	"github.com/register-pos/internal/config"
	"github.com/register-pos/internal/data/mongo"
	"github.com/register-pos/internal/data/postgres"
	"github.com/register-pos/internal/domain/catalog"
	"github.com/register-pos/internal/domain/sale"
	"github.com/register-pos/internal/logger"
	"github.com/register-pos/internal/platform/messaging/consumers"
	"github.com/register-pos/internal/platform/messaging/producers"
	"github.com/register-pos/internal/platform/persistence"
	"github.com/register-pos/internal/register/change_feed"
	"github.com/register-pos/internal/register/outbox_poller"
	"github.com/register-pos/internal/register/service"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("register_api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg).With("instance_id", cfg.Register.InstanceID)

	log.Info("Starting register API",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
		"timezone", cfg.Register.Timezone,
	)

	// Migrations run before the pool is opened
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB, cfg.Application.Name)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	if err := mongoDB.EnsureIndexes(appCtx, mongo.MovementCollectionName, mongo.MovementIndexes()); err != nil {
		log.Warn("Movement journal indexes not ready", "error", err)
	}

	var salesCache cache.SalesCache
	var redisCache *cache.RedisSalesCache
	if cfg.Redis.Addr != "" {
		redisCache = cache.NewRedisSalesCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := redisCache.Ping(appCtx); err != nil {
			log.Warn("Redis unreachable, daily sales will be rebuilt until it recovers", "addr", cfg.Redis.Addr, "error", err)
		}
		salesCache = redisCache
	}

	changeProducer, err := producers.NewChangeEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize change event producer", "error", err)
		os.Exit(1)
	}

	// dlqProducer is nil when no DLQ topic is configured; the event handler copes with that
	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}

	// Repositories
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	transactionRepo := postgres.NewTransactionRepository(log, postgresDB, outboxRepo, cfg.Register.InstanceID)
	balanceRepo := postgres.NewBalanceRepository(log, postgresDB)
	movementJournal := mongo.NewMovementRepository(log, mongoDB.Database())

	// Services
	cat := catalog.Default()
	policy := sale.NewDayPolicy(cfg.Register.Location, cfg.Register.DateLayout)
	ledger := service.NewLedgerService(balanceRepo, movementJournal, log)
	history := service.NewHistoryService(transactionRepo, salesCache, policy, cfg.Redis.SalesTTL, log)
	accumulator := service.NewAccumulatorService(cat, transactionRepo, ledger, history, log, cfg.Register.InstanceID)
	editor := service.NewEditorService(transactionRepo, history, accumulator, log)

	warmup, err := service.NewWarmupService(accumulator, ledger, history, service.WorkerPoolConfig{Size: cfg.WorkerPool.Size}, log)
	if err != nil {
		log.Error("Failed to initialize warm-up worker pool", "error", err)
		os.Exit(1)
	}
	if _, err := warmup.Run(appCtx); err != nil {
		// Each part is retried lazily on first use
		log.Warn("Warm-up finished with errors", "error", err)
	}
	warmup.Shutdown()

	// Change feed
	changePublisher := outbox_poller.NewChangePublisher(outboxRepo, changeProducer, log)
	poller := outbox_poller.NewPoller(&cfg.Outbox, outboxRepo, changePublisher, log)

	changeConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka,
		consumers.GroupID(cfg.Kafka.ConsumerGroup, cfg.Register.InstanceID))
	eventHandler := change_feed.NewEventHandler(log, accumulator, dlqProducer)

	server := api_gateway.NewServer(log, cfg, api_gateway.Services{
		Accumulator: accumulator,
		Ledger:      ledger,
		History:     history,
		Editor:      editor,
		Catalog:     cat,
	})

	errChan := make(chan error, 2)
	var wg sync.WaitGroup

	if err := changeConsumer.Subscribe(appCtx, eventHandler.HandleMessage); err != nil {
		log.Error("Failed to subscribe to the change feed", "error", err)
		os.Exit(1)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Outbox Poller",
			"interval", cfg.Outbox.PollingInterval.String(),
			"batch_size", cfg.Outbox.BatchSize,
		)
		poller.Start(appCtx)
	}()

	go func() {
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	if err = server.Stop(shutdownCtx, cfg.Server.WriteTimeout); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("Outbox poller stopped")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	if err = changeConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}
	if err = changeProducer.Close(); err != nil {
		log.Error("Error closing change event producer", "error", err)
	}
	if err = dlqProducer.Close(); err != nil {
		log.Error("Error closing DLQ Kafka producer", "error", err)
	}
	if redisCache != nil {
		if err = redisCache.Close(); err != nil {
			log.Error("Error closing Redis client", "error", err)
		}
	}

	postgresDB.Close()

	mongoCtx, cancelMongo := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelMongo()
	if err = mongoDB.Close(mongoCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	if serviceErr != nil {
		log.Error("Register API shutdown with errors", "error", serviceErr)
		os.Exit(1)
	}
	log.Info("Register API shutdown completed")
}
