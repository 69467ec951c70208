// Command sync pulls recent subscriptions from Razorpay and upserts them into
// the local subscriptions table. Run it on a schedule to repair drift from
// missed webhooks.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/frostify/frostify/internal"
	"github.com/frostify/frostify/internal/billing"
	"github.com/frostify/frostify/internal/catalog"
	"github.com/frostify/frostify/internal/postgres"
	"github.com/frostify/frostify/internal/service"
)

func run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)
	logger.Info("Starting subscription sync", "mode", cfg.Mode.String())

	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	store := postgres.NewSubscriptionStore(pool)

	catalogCfg := catalog.DefaultConfig(cfg.Mode)
	catalogCfg.DefaultMaxProducts = cfg.DefaultMaxProducts
	planCatalog, err := catalog.New(catalogCfg, logger)
	if err != nil {
		return fmt.Errorf("failed to build plan catalog: %w", err)
	}

	providerCfg := billing.RazorpayConfig{
		KeyID:     cfg.Razorpay.KeyID(cfg.Mode),
		KeySecret: cfg.Razorpay.KeySecret(cfg.Mode),
		Timeout:   cfg.Razorpay.Timeout,
	}
	provider, err := billing.NewRazorpayProvider(providerCfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize Razorpay provider: %w", err)
	}

	entitlements, err := service.NewEntitlementService(service.EntitlementConfig{
		Store:     store,
		Provider:  provider,
		Catalog:   planCatalog,
		Coupons:   catalog.NewRegistry(catalog.DefaultCoupons()),
		KeyID:     providerCfg.KeyID,
		KeySecret: providerCfg.KeySecret,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize entitlement service: %w", err)
	}

	report, err := entitlements.SyncSubscriptions(ctx)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	logger.Info("Sync complete",
		"fetched", report.Fetched,
		"upserted", report.Upserted,
		"skipped", report.Skipped)
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
