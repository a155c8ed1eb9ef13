package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/draftforge/cubeleague/go/internal/draft/gateway"
	"github.com/draftforge/cubeleague/go/internal/draft/outbox"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}
	setupLogging()

	config, err := loadConfig(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	database, dsn, err := setupDatabase()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close()

	services := setupServices(database)
	server := setupServer(config, services)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Outbox relay: LISTEN/NOTIFY with a fallback sweep, publishing to
	// JetStream (or logging locally when no NATS is configured).
	publisher, closePublisher, err := setupPublisher(config)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up event publisher")
	}
	defer closePublisher()

	listenerCfg := outbox.DefaultListenerConfig()
	listenerCfg.DatabaseURL = dsn
	listener, err := outbox.NewListener(services.OutboxRepo, publisher, listenerCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start outbox listener")
	}
	go func() {
		if err := listener.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("outbox listener stopped")
		}
	}()

	// Gateway consumer: fans JetStream events out to connected SSE clients.
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		consumerCfg := gateway.DefaultJetStreamConsumerConfig()
		consumerCfg.URL = natsURL
		consumerCfg.StreamName = config.Events.StreamName
		consumerCfg.ConsumerName = config.Events.ConsumerName
		consumerCfg.SubjectFilter = config.Events.SubjectPrefix + ".>"
		consumer, err := gateway.NewEventConsumer(services.Hub, consumerCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to start event consumer")
		}
		defer consumer.Close()
		go func() {
			if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("event consumer stopped")
			}
		}()
	}

	// Draft timer scheduler: activates due sessions and resolves lapsed turns.
	go func() {
		if err := services.Orchestrator.RunScheduler(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("draft scheduler stopped")
		}
	}()

	go func() {
		log.Info().Str("addr", server.Addr).Msg("starting http server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}
}

func setupLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	level, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if getEnv("LOG_PRETTY", "") == "true" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func setupPublisher(config *Config) (outbox.EventPublisher, func(), error) {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		log.Warn().Msg("NATS_URL not set; outbox events will be logged, not published")
		return outbox.NewMockPublisher(slog.Default()), func() {}, nil
	}

	jsCfg := outbox.DefaultJetStreamConfig()
	jsCfg.URL = natsURL
	jsCfg.StreamName = config.Events.StreamName
	jsCfg.SubjectPrefix = config.Events.SubjectPrefix
	publisher, err := outbox.NewJetStreamPublisher(jsCfg)
	if err != nil {
		return nil, nil, err
	}
	return publisher, func() { _ = publisher.Close() }, nil
}
