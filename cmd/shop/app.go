package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jcmexdev/storefront-cart/internal/pkg/cache"
	"github.com/jcmexdev/storefront-cart/internal/pkg/config"
	"github.com/jcmexdev/storefront-cart/internal/pkg/sqlitedb"
	"github.com/jcmexdev/storefront-cart/internal/pkg/telemetry"
	"github.com/jcmexdev/storefront-cart/internal/shop/core/cart"
	journalsqlite "github.com/jcmexdev/storefront-cart/internal/shop/core/checkout/journal/sqlite"
	"github.com/jcmexdev/storefront-cart/internal/shop/core/ports"
	"github.com/jcmexdev/storefront-cart/internal/shop/infra/adapters/service"
	storagesqlite "github.com/jcmexdev/storefront-cart/internal/shop/infra/adapters/storage/sqlite"
)

// app is everything a command needs, wired from the configuration.
type app struct {
	cfg       *config.Config
	store     *cart.Store
	submitter ports.OrderSubmitter
	journal   *journalsqlite.Repository

	closers []func(context.Context) error
}

func newApp(ctx context.Context, envFile string) (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	telemetry.InitLogger(cfg.LogLevel)

	a := &app{cfg: cfg}

	shutdown, err := telemetry.SetupTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, shutdown)

	policy, err := cart.ParseStockPolicy(cfg.StockPolicy)
	if err != nil {
		return nil, a.fail(err)
	}

	db, err := sqlitedb.Open(cfg.CartDBPath)
	if err != nil {
		return nil, a.fail(err)
	}
	a.closers = append(a.closers, closeDB(db))

	storage, err := storagesqlite.New(db, cart.RecordName)
	if err != nil {
		return nil, a.fail(err)
	}
	if a.journal, err = journalsqlite.New(db); err != nil {
		return nil, a.fail(err)
	}

	client := service.NewHTTPClient(cfg.HTTPTimeout, cfg.APIToken)
	var lookup ports.ProductLookup = service.NewHTTPProductLookup(cfg.APIBaseURL, client)
	if cfg.RedisAddr != "" {
		c := cache.NewRedisCache(cfg.RedisAddr, "shop")
		a.closers = append(a.closers, func(context.Context) error { return c.Close() })
		lookup = service.NewCachedProductLookup(lookup, c, cfg.ProductCacheTTL)
		slog.DebugContext(ctx, "product lookup cache enabled", "redis_addr", cfg.RedisAddr, "ttl", cfg.ProductCacheTTL)
	}

	a.store = cart.Open(ctx, storage, lookup, cart.WithStockPolicy(policy))
	a.submitter = service.NewHTTPOrderSubmitter(cfg.APIBaseURL, client)
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *app) fail(err error) error {
	if cerr := a.Close(); cerr != nil {
		return fmt.Errorf("%w (cleanup: %v)", err, cerr)
	}
	return err
}

func closeDB(db *sql.DB) func(context.Context) error {
	return func(context.Context) error { return db.Close() }
}
