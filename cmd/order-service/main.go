package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecomkit/order-service/internal/config"
	"github.com/ecomkit/order-service/internal/order/app"
	"github.com/ecomkit/order-service/internal/order/infra/httpx"
	"github.com/ecomkit/order-service/internal/order/infra/inventory"
	"github.com/ecomkit/order-service/internal/order/infra/natsstan"
	"github.com/ecomkit/order-service/internal/order/infra/postgres"
	"github.com/ecomkit/order-service/internal/order/steplog"
	steplogsqlite "github.com/ecomkit/order-service/internal/order/steplog/sqlite"
	"github.com/ecomkit/order-service/internal/pkg/cache"
	"github.com/ecomkit/order-service/internal/pkg/telemetry"
)

func main() {
	telemetry.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.SetupTracer(ctx, getEnv("OTEL_SERVICE_NAME", "order-service"))
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	cfg := config.New()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURI)
	if err != nil {
		slog.Error("database connect failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		slog.Error("schema init failed", "error", err)
		os.Exit(1)
	}

	// The audit log is best-effort infrastructure: the service runs without
	// it if the file cannot be opened.
	var audit steplog.Repository
	auditRepo, err := steplogsqlite.Open(cfg.StepLogPath)
	if err != nil {
		slog.Warn("step audit log disabled", "path", cfg.StepLogPath, "error", err)
	} else {
		defer auditRepo.Close()
		audit = auditRepo
	}

	eventConn := natsstan.NewConn(natsstan.Config{
		ClusterID: cfg.StanClusterID,
		ClientID:  cfg.StanClientID,
		URL:       cfg.NatsURL,
		Subject:   cfg.EventSubject,
	})
	go eventConn.Run(ctx)

	workflow := app.NewWorkflow(
		postgres.NewOrderRepository(pool),
		inventory.NewClient(cfg.InventoryAddress),
		natsstan.NewPublisher(eventConn),
		audit,
	)

	handler := httpx.NewHandler(
		workflow,
		cache.NewRedisCache(cfg.RedisAddress, "order"),
		httpx.HealthFuncs{
			DBConnected:     func() bool { return pool.Ping(context.Background()) == nil },
			BrokerConnected: func() bool { return eventConn.State() == natsstan.StateConnected },
		},
	)

	server := &http.Server{Addr: cfg.RunAddress, Handler: httpx.NewRouter(handler)}
	go func() {
		slog.Info("order service running", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
