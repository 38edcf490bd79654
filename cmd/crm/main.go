package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gartstein/crm/internal/crm/config"
	"github.com/gartstein/crm/internal/crm/controller"
	"github.com/gartstein/crm/internal/crm/db"
	"github.com/gartstein/crm/internal/crm/events"
	"github.com/gartstein/crm/internal/crm/handlers"
	"github.com/gartstein/crm/internal/crm/metrics"
	"go.uber.org/zap"
)

const healthCheckInterval = 10 * time.Second

// eventSink is the producer side the process owns and must close.
type eventSink interface {
	controller.EventProducer
	Close()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		// No logger yet: fall back to a production one to report the failure.
		zap.Must(zap.NewProduction()).Fatal("failed to load config", zap.Error(err))
	}

	logger := initLogger(cfg)
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	repo, err := db.NewRepository(initDatabase(cfg), logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Error("failed to close database", zap.Error(err))
		}
	}()

	producer := initProducer(cfg, logger)
	defer producer.Close()

	m := metrics.New()
	crmSvc := controller.NewCRMService(repo, producer, logger).WithRecorder(m)

	routes, err := handlers.NewCRMHandler(crmSvc, logger).Routes(m)
	if err != nil {
		logger.Fatal("failed to register HTTP routes", zap.Error(err))
	}

	server := handlers.NewServer(cfg.GRPCPort, cfg.HTTPPort, logger)
	server.RegisterHTTPHandler(routes)
	server.SetReadinessCheck(repo.Ping, healthCheckInterval)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start servers", zap.Error(err))
		}
	}()

	waitForShutdown(server, logger)
}

// initLogger builds a production logger, or a development one when configured.
func initLogger(cfg *config.Config) *zap.Logger {
	if cfg.LogDevelopment {
		return zap.Must(zap.NewDevelopment())
	}
	return zap.Must(zap.NewProduction())
}

// initDatabase maps the configuration onto the storage settings.
func initDatabase(cfg *config.Config) *db.Config {
	return &db.Config{
		Driver:         cfg.DBDriver,
		Host:           cfg.DBHost,
		Port:           cfg.DBPort,
		User:           cfg.DBUser,
		Password:       cfg.DBPassword,
		DBName:         cfg.DBName,
		SSLMode:        cfg.DBSSLMode,
		Path:           cfg.DBPath,
		ConnectTimeout: cfg.DBConnectTimeout,
	}
}

// initProducer connects to Kafka when brokers are configured; otherwise
// change events are discarded.
func initProducer(cfg *config.Config, logger *zap.Logger) eventSink {
	if !cfg.EventsEnabled() {
		logger.Info("no Kafka brokers configured, change events disabled")
		return events.NopProducer{}
	}
	producer, err := events.NewProducer(cfg.KafkaBrokers, logger, cfg.Topic)
	if err != nil {
		logger.Fatal("failed to initialize Kafka producer", zap.Error(err))
	}
	return producer
}

// waitForShutdown blocks until an interrupt or SIGTERM is received, then shuts down servers.
func waitForShutdown(server *handlers.Server, logger *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	server.Stop()
	logger.Info("Servers stopped properly")
}
