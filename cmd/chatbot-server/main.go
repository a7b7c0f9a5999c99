// cmd/chatbot-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"acadezone-chatbot/internal/analytics"
	"acadezone-chatbot/internal/catalog"
	"acadezone-chatbot/internal/common/config"
	"acadezone-chatbot/internal/common/database"
	"acadezone-chatbot/internal/common/logger"
	"acadezone-chatbot/internal/common/observability"
	"acadezone-chatbot/internal/common/zoho"
	"acadezone-chatbot/internal/crm"
	"acadezone-chatbot/internal/flow"
	"acadezone-chatbot/internal/identity"
	"acadezone-chatbot/internal/matcher"
	"acadezone-chatbot/internal/notify"
	"acadezone-chatbot/internal/server"
	"acadezone-chatbot/internal/session"
	"acadezone-chatbot/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting chatbot server...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("chatbot-server")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init analytics sink ---
	events := analytics.Sink(analytics.NopSink{})
	var dispatcher *analytics.Dispatcher
	if cfg.Analytics.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")

		sink := analytics.NewElasticSink(esClient.Client, cfg.Analytics.Index)
		dispatcher = analytics.NewDispatcher(sink, cfg.Analytics.BufferSize, log)
		defer dispatcher.Close()
		events = dispatcher
	}

	// --- Chatbot settings ---
	settings, err := registry.LoadSettings(cfg.Chatbot.SettingsPath)
	if err != nil {
		zapLog.Fatal("chatbot settings load failed", zap.Error(err))
	}

	// --- Domain wiring ---
	sessions := session.NewRedisStore(redisClient.Client, time.Duration(cfg.Session.TTL)*time.Second)
	courses := catalog.NewPostgresStore(pg.DB, log)
	identities := identity.NewPostgresRepository(pg.DB, log)
	recommender := matcher.New(courses, log)

	var notifier flow.ContactNotifier
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		salesNotifier, err := notify.NewSalesNotifier(cfg.Notifications, log)
		if err != nil {
			zapLog.Fatal("sales notifier init failed", zap.Error(err))
		}
		notifier = salesNotifier
	}

	var leadPusher flow.LeadPusher
	if cfg.Integrations.Zoho.Enabled {
		zohoClient := zoho.NewCRMClient(cfg.Integrations.Zoho.APIKey, cfg.Integrations.Zoho.AuthToken)
		leadPusher = crm.NewPusher(zohoClient, log)
	}

	engine := flow.NewEngine(flow.Options{
		Recommender:        recommender,
		Identities:         identities,
		Events:             events,
		Notifier:           notifier,
		CRM:                leadPusher,
		ApplicationBaseURL: cfg.Chatbot.ApplicationBaseURL,
		Logger:             log,
	})

	srv := server.New(engine, sessions, events, settings, log).WithObservability(obs)

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      srv.Router(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Millisecond,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Wait for shutdown signal ---
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	zapLog.Info("shutdown signal received", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Millisecond)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http server shutdown failed", zap.Error(err))
	}

	zapLog.Info("chatbot server stopped")
}
