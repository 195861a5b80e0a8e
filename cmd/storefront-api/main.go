// Command storefront-api is a development backend serving the product and
// order endpoints the shop client talks to, from an in-memory catalog.
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

	"github.com/jcmexdev/storefront-cart/internal/pkg/config"
	"github.com/jcmexdev/storefront-cart/internal/pkg/telemetry"
	"github.com/jcmexdev/storefront-cart/internal/storefront-api/catalog"
	"github.com/jcmexdev/storefront-cart/internal/storefront-api/httpx"
	"github.com/jcmexdev/storefront-cart/internal/storefront-api/orders"
	"github.com/jcmexdev/storefront-cart/internal/storefront-api/payments"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	telemetry.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupTracer(ctx, "storefront-api", cfg.OTLPEndpoint)
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	cat := catalog.New(catalog.Seed()...)
	svc := orders.NewService(cat, payments.NewProcessor(payments.DefaultLimit))
	router := httpx.NewRouter(httpx.NewHandler(cat, svc), cfg.APIToken)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("storefront api running", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("http server failed", "error", err)
		os.Exit(1)
	}
}
