package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kyc-ledger/internal/audit"
	jwttoken "kyc-ledger/internal/jwt_token"
	"kyc-ledger/internal/platform/config"
	"kyc-ledger/internal/platform/database"
	"kyc-ledger/internal/platform/health"
	"kyc-ledger/internal/platform/httpserver"
	"kyc-ledger/internal/platform/kafka/producer"
	"kyc-ledger/internal/platform/logger"
	"kyc-ledger/internal/platform/metrics"
	"kyc-ledger/internal/registry/handler"
	"kyc-ledger/internal/registry/service"
	"kyc-ledger/internal/registry/store"
	"kyc-ledger/internal/seeder"
	httptransport "kyc-ledger/internal/transport/http"
)

var errKafkaUnreachable = errors.New("kafka brokers unreachable")

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Ledger logic lives in internal/registry.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing kyc-ledger",
		"addr", cfg.Addr,
		"admin_address", cfg.AdminAddress,
		"environment", cfg.Environment,
	)

	healthHandler := health.New(cfg.Environment)

	// Postgres when configured, in-memory otherwise. The in-memory store is
	// a full implementation, not a stub; single-node deployments run on it.
	var st store.Store
	pool, err := database.New(database.Config{
		URL:             cfg.DatabaseURL,
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	})
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close() //nolint:errcheck
		st = store.NewPostgres(pool.DB())
		healthHandler.RegisterCheck("database", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Health(ctx)
		})
		log.Info("using postgres store")
	} else {
		st = store.New()
		log.Info("using in-memory store")
	}

	m := metrics.New()

	auditOpts := []audit.PublisherOption{
		audit.WithAsyncBuffer(1024),
		audit.WithPublisherLogger(log),
		audit.WithDropCounter(m.AuditEventsDropped),
	}

	var kafkaProducer *producer.Producer
	if cfg.KafkaBrokers != "" {
		kafkaProducer, err = producer.New(producer.Config{
			Brokers:         cfg.KafkaBrokers,
			Retries:         5,
			DeliveryTimeout: 10 * time.Second,
		}, log)
		if err != nil {
			log.Error("kafka producer init failed", "error", err)
			os.Exit(1)
		}
		defer kafkaProducer.Close() //nolint:errcheck
		auditOpts = append(auditOpts, audit.WithSink(audit.NewKafkaSink(kafkaProducer, cfg.AuditTopic)))
		healthHandler.RegisterCheck("kafka", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if !kafkaProducer.Healthy(ctx) {
				return errKafkaUnreachable
			}
			return nil
		})
		log.Info("audit events mirrored to kafka", "topic", cfg.AuditTopic)
	}

	var auditStore audit.Store = audit.NewInMemoryStore()
	if pool != nil {
		auditStore = audit.NewPostgresStore(pool.DB())
	}
	auditor := audit.NewPublisher(auditStore, auditOpts...)
	defer auditor.Close()

	svc := service.NewService(
		st,
		service.NewSingleWriterTx(st),
		auditor,
		cfg.AdminAddress,
		log,
		service.WithMetrics(m),
	)

	if cfg.SeedDemo {
		if err := seeder.New(svc, cfg.AdminAddress, log).SeedAll(context.Background()); err != nil {
			log.Error("demo seeding failed", "error", err)
			os.Exit(1)
		}
	}

	tokens := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.TokenTTL)
	registryHandler := handler.New(svc, log, m)
	router := httptransport.NewRouter(registryHandler, healthHandler, tokens, log)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
