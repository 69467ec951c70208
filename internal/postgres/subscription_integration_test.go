//go:build integration
// +build integration

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frostify/frostify/internal"
	"github.com/frostify/frostify/internal/domain"
)

// setupStore connects to the database named by DATABASE_URL, runs migrations
// and returns a ready store. Skips when no database is configured.
func setupStore(t *testing.T) *SubscriptionStore {
	t.Helper()

	// Local runs keep credentials in .env.test; CI sets the variable directly.
	_ = godotenv.Load("../../.env.test")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("Skipping integration test: DATABASE_URL not set")
	}

	sqlDB, err := sql.Open("pgx", dbURL)
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	if err := sqlDB.Ping(); err != nil {
		t.Skipf("Skipping integration test: database not reachable (%v)", err)
	}
	require.NoError(t, internal.RunMigrations(sqlDB))

	pool, err := pgxpool.New(context.Background(), dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return NewSubscriptionStore(pool)
}

// seedTestPlan upserts a plan row and returns its generated id.
func seedTestPlan(t *testing.T, ctx context.Context, store *SubscriptionStore, providerPlanID, name string) uuid.UUID {
	t.Helper()

	require.NoError(t, store.EnsurePlans(ctx, []domain.PlanRecord{
		{ProviderPlanID: providerPlanID, Name: name, ProductLimit: 25, WebsiteLimit: 1},
	}))

	plan, err := store.PlanByProviderPlanID(ctx, providerPlanID)
	require.NoError(t, err)
	require.NotNil(t, plan)
	return plan.ID
}

func TestSubscriptionStoreIntegration_UpsertIdempotence(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	// Unique per run so reruns never collide on the unique constraint.
	runID := time.Now().UnixNano()
	subID := fmt.Sprintf("sub_itest_%d", runID)
	planAID := seedTestPlan(t, ctx, store, fmt.Sprintf("plan_itest_a_%d", runID), "Starter")
	planBID := seedTestPlan(t, ctx, store, fmt.Sprintf("plan_itest_b_%d", runID), "Pro")
	userID := uuid.New()

	firstStart := time.Now().UTC().Truncate(time.Second).AddDate(0, -1, 0)
	firstEnd := firstStart.AddDate(0, 1, 0)

	require.NoError(t, store.Upsert(ctx, domain.UpsertSubscriptionParams{
		UserID:                 userID,
		ProviderSubscriptionID: subID,
		Status:                 domain.StatusActive,
		PlanID:                 &planAID,
		CurrentPeriodStart:     firstStart,
		CurrentPeriodEnd:       firstEnd,
		Metadata:               map[string]string{"synced_from": "webhook"},
	}))

	// Same provider subscription id, newer period, no plan id. Must update the
	// existing row in place and keep the previously stored plan.
	secondStart := firstEnd
	secondEnd := secondStart.AddDate(0, 1, 0)

	require.NoError(t, store.Upsert(ctx, domain.UpsertSubscriptionParams{
		UserID:                 userID,
		ProviderSubscriptionID: subID,
		Status:                 domain.StatusActive,
		PlanID:                 nil,
		CurrentPeriodStart:     secondStart,
		CurrentPeriodEnd:       secondEnd,
		Metadata:               map[string]string{"synced_from": "reconcile"},
	}))

	var rows int
	require.NoError(t, store.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM subscriptions WHERE provider_subscription_id = $1", subID).Scan(&rows))
	assert.Equal(t, 1, rows, "repeated upserts of one provider subscription id must keep a single row")

	sub, err := store.LatestEntitled(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, subID, sub.ProviderSubscriptionID)
	assert.Equal(t, domain.StatusActive, sub.Status)
	assert.WithinDuration(t, secondStart, sub.CurrentPeriodStart, time.Second)
	assert.WithinDuration(t, secondEnd, sub.CurrentPeriodEnd, time.Second)
	assert.Equal(t, planAID, sub.PlanID, "an absent plan id keeps the stored plan")
	assert.Equal(t, "Starter", sub.PlanName)
	assert.Equal(t, "reconcile", sub.Metadata["synced_from"])

	// A present plan id replaces the stored one.
	require.NoError(t, store.Upsert(ctx, domain.UpsertSubscriptionParams{
		UserID:                 userID,
		ProviderSubscriptionID: subID,
		Status:                 domain.StatusActive,
		PlanID:                 &planBID,
		CurrentPeriodStart:     secondStart,
		CurrentPeriodEnd:       secondEnd,
	}))

	sub, err = store.LatestEntitled(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, planBID, sub.PlanID)
	assert.Equal(t, "Pro", sub.PlanName)
}

func TestSubscriptionStoreIntegration_LatestEntitledFilters(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	runID := time.Now().UnixNano()
	planID := seedTestPlan(t, ctx, store, fmt.Sprintf("plan_itest_f_%d", runID), "Starter")
	userID := uuid.New()

	start := time.Now().UTC().Truncate(time.Second).AddDate(0, -1, 0)

	// A canceled row alone does not entitle.
	require.NoError(t, store.Upsert(ctx, domain.UpsertSubscriptionParams{
		UserID:                 userID,
		ProviderSubscriptionID: fmt.Sprintf("sub_itest_c_%d", runID),
		Status:                 domain.StatusCanceled,
		PlanID:                 &planID,
		CurrentPeriodStart:     start,
		CurrentPeriodEnd:       start.AddDate(0, 1, 0),
	}))

	sub, err := store.LatestEntitled(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, sub)

	// An active row is returned, preferring the latest period end.
	require.NoError(t, store.Upsert(ctx, domain.UpsertSubscriptionParams{
		UserID:                 userID,
		ProviderSubscriptionID: fmt.Sprintf("sub_itest_g_%d", runID),
		Status:                 domain.StatusActive,
		PlanID:                 &planID,
		CurrentPeriodStart:     start,
		CurrentPeriodEnd:       start.AddDate(0, 2, 0),
	}))

	sub, err = store.LatestEntitled(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, fmt.Sprintf("sub_itest_g_%d", runID), sub.ProviderSubscriptionID)
}
