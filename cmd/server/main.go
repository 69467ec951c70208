package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/frostify/frostify/internal"
	"github.com/frostify/frostify/internal/billing"
	"github.com/frostify/frostify/internal/catalog"
	"github.com/frostify/frostify/internal/domain"
	"github.com/frostify/frostify/internal/handler/api"
	"github.com/frostify/frostify/internal/middleware"
	"github.com/frostify/frostify/internal/postgres"
	"github.com/frostify/frostify/internal/router"
	"github.com/frostify/frostify/internal/service"
	"github.com/frostify/frostify/internal/telemetry"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)
	logger.Info("Starting entitlement server", "mode", cfg.Mode.String())

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	store := postgres.NewSubscriptionStore(pool)

	// Build the plan catalog for the active mode and seed the plans table
	// so subscription rows can reference plan ids.
	catalogCfg := catalog.DefaultConfig(cfg.Mode)
	catalogCfg.DefaultMaxProducts = cfg.DefaultMaxProducts
	planCatalog, err := catalog.New(catalogCfg, logger)
	if err != nil {
		return fmt.Errorf("failed to build plan catalog: %w", err)
	}

	if err := store.EnsurePlans(ctx, seedPlans(planCatalog)); err != nil {
		return fmt.Errorf("failed to seed plans table: %w", err)
	}
	logger.Info("Plan catalog loaded", "plans", len(planCatalog.Plans()))

	coupons := catalog.NewRegistry(catalog.DefaultCoupons())

	// Initialize Razorpay billing provider for the active mode
	logger.Info("Initializing Razorpay billing provider...")
	providerCfg := billing.RazorpayConfig{
		KeyID:     cfg.Razorpay.KeyID(cfg.Mode),
		KeySecret: cfg.Razorpay.KeySecret(cfg.Mode),
		Timeout:   cfg.Razorpay.Timeout,
	}
	provider, err := billing.NewRazorpayProvider(providerCfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize Razorpay provider: %w", err)
	}
	logger.Info("Razorpay billing provider initialized", "test_mode", providerCfg.IsTestMode())

	// Business metrics
	businessMetrics := telemetry.NewBusinessMetrics("frostify")

	// Initialize entitlement service
	entitlements, err := service.NewEntitlementService(service.EntitlementConfig{
		Store:     store,
		Provider:  provider,
		Catalog:   planCatalog,
		Coupons:   coupons,
		KeyID:     providerCfg.KeyID,
		KeySecret: providerCfg.KeySecret,
		Metrics:   businessMetrics,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize entitlement service: %w", err)
	}
	logger.Info("Entitlement service initialized")

	// HTTP metrics
	metrics := middleware.NewMetrics("frostify")

	// Router and middleware chain
	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		metrics.Middleware,
		router.CORS(cfg.CORSOrigins),
		middleware.WithRequestLogger(logger),
		router.Logger(logger),
	)

	// Metrics endpoint (protect via firewall in production)
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		metrics.Handler().ServeHTTP(w, req)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	api.NewEntitlementHandler(entitlements, cfg.Mode, logger).RegisterRoutes(r)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("Starting server", "address", addr)

	if err := http.ListenAndServe(addr, r); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// seedPlans flattens the catalog into plans-table rows, one per provider plan
// id, founder variants included.
func seedPlans(c *catalog.Catalog) []domain.PlanRecord {
	var records []domain.PlanRecord
	for _, p := range c.Plans() {
		records = append(records, domain.PlanRecord{
			ProviderPlanID: p.ProviderPlanID,
			Name:           p.Name,
			ProductLimit:   p.MaxProducts,
			WebsiteLimit:   1,
		})
		if p.FounderProviderPlanID != "" {
			records = append(records, domain.PlanRecord{
				ProviderPlanID: p.FounderProviderPlanID,
				Name:           p.Name,
				ProductLimit:   p.MaxProducts,
				WebsiteLimit:   1,
			})
		}
	}
	return records
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
