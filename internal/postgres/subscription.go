package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/frostify/frostify/internal/domain"
)

// SubscriptionStore implements domain.SubscriptionStore using PostgreSQL.
type SubscriptionStore struct {
	pool *pgxpool.Pool
}

// Compile-time check to ensure SubscriptionStore implements domain.SubscriptionStore.
var _ domain.SubscriptionStore = (*SubscriptionStore)(nil)

// NewSubscriptionStore creates a new SubscriptionStore instance.
func NewSubscriptionStore(pool *pgxpool.Pool) *SubscriptionStore {
	return &SubscriptionStore{pool: pool}
}

// LatestEntitled returns the user's most recent active or trialing
// subscription by current_period_end, joined with its plan.
// Returns (nil, nil) when the user has no such row.
func (s *SubscriptionStore) LatestEntitled(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error) {
	const q = `
		SELECT s.id, s.user_id, s.provider_subscription_id, s.status, s.plan_id,
		       COALESCE(p.name, ''), COALESCE(p.provider_plan_id, ''),
		       s.current_period_start, s.current_period_end, s.metadata,
		       s.created_at, s.updated_at
		FROM subscriptions s
		LEFT JOIN plans p ON p.id = s.plan_id
		WHERE s.user_id = $1 AND s.status IN ('active', 'trialing')
		ORDER BY s.current_period_end DESC
		LIMIT 1`

	sub, err := scanSubscription(s.pool.QueryRow(ctx, q, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.WrapError(err, domain.EINTERNAL, domain.KindPersistenceFailure,
			"store.latest_entitled", "failed to query subscription")
	}
	return sub, nil
}

// CountByProviderPlanIDs counts subscriptions on the given provider plan ids
// in the given statuses. Used for coupon redemption caps.
func (s *SubscriptionStore) CountByProviderPlanIDs(ctx context.Context, providerPlanIDs []string, statuses []domain.SubscriptionStatus) (int, error) {
	if len(providerPlanIDs) == 0 || len(statuses) == 0 {
		return 0, nil
	}

	const q = `
		SELECT COUNT(*)
		FROM subscriptions s
		JOIN plans p ON p.id = s.plan_id
		WHERE p.provider_plan_id = ANY($1) AND s.status = ANY($2)`

	states := make([]string, len(statuses))
	for i, st := range statuses {
		states[i] = string(st)
	}

	var count int
	if err := s.pool.QueryRow(ctx, q, providerPlanIDs, states).Scan(&count); err != nil {
		return 0, domain.WrapError(err, domain.EINTERNAL, domain.KindPersistenceFailure,
			"store.count_by_plan", "failed to count subscriptions")
	}
	return count, nil
}

// Upsert inserts or updates a subscription keyed by provider subscription id.
// Last write wins; an unknown plan id keeps the previously stored one.
func (s *SubscriptionStore) Upsert(ctx context.Context, params domain.UpsertSubscriptionParams) error {
	const q = `
		INSERT INTO subscriptions
			(user_id, provider_subscription_id, status, plan_id,
			 current_period_start, current_period_end, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (provider_subscription_id) DO UPDATE SET
			user_id              = EXCLUDED.user_id,
			status               = EXCLUDED.status,
			plan_id              = COALESCE(EXCLUDED.plan_id, subscriptions.plan_id),
			current_period_start = EXCLUDED.current_period_start,
			current_period_end   = EXCLUDED.current_period_end,
			metadata             = EXCLUDED.metadata,
			updated_at           = now()`

	var planID pgtype.UUID
	if params.PlanID != nil {
		planID = pgtype.UUID{Bytes: *params.PlanID, Valid: true}
	}

	metadata, err := json.Marshal(orEmpty(params.Metadata))
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	_, err = s.pool.Exec(ctx, q,
		params.UserID,
		params.ProviderSubscriptionID,
		string(params.Status),
		planID,
		params.CurrentPeriodStart,
		params.CurrentPeriodEnd,
		metadata,
	)
	if err != nil {
		return domain.WrapError(err, domain.EINTERNAL, domain.KindPersistenceFailure,
			"store.upsert", "failed to upsert subscription")
	}
	return nil
}

// PlanByProviderPlanID resolves the internal plan row for a provider plan id.
// Returns (nil, nil) when the id is unknown.
func (s *SubscriptionStore) PlanByProviderPlanID(ctx context.Context, providerPlanID string) (*domain.PlanRecord, error) {
	const q = `
		SELECT id, provider_plan_id, name, product_limit, website_limit
		FROM plans
		WHERE provider_plan_id = $1`

	var p domain.PlanRecord
	err := s.pool.QueryRow(ctx, q, providerPlanID).Scan(
		&p.ID, &p.ProviderPlanID, &p.Name, &p.ProductLimit, &p.WebsiteLimit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.WrapError(err, domain.EINTERNAL, domain.KindPersistenceFailure,
			"store.plan_by_provider_id", "failed to query plan")
	}
	return &p, nil
}

// EnsurePlans idempotently seeds the plans table from catalog entries.
// Called once at startup so webhook and sync writes can resolve plan ids.
func (s *SubscriptionStore) EnsurePlans(ctx context.Context, plans []domain.PlanRecord) error {
	const q = `
		INSERT INTO plans (provider_plan_id, name, product_limit, website_limit)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (provider_plan_id) DO UPDATE SET
			name          = EXCLUDED.name,
			product_limit = EXCLUDED.product_limit,
			website_limit = EXCLUDED.website_limit`

	for _, p := range plans {
		if _, err := s.pool.Exec(ctx, q, p.ProviderPlanID, p.Name, p.ProductLimit, p.WebsiteLimit); err != nil {
			return domain.WrapError(err, domain.EINTERNAL, domain.KindPersistenceFailure,
				"store.ensure_plans", fmt.Sprintf("failed to seed plan %s", p.ProviderPlanID))
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner) (*domain.Subscription, error) {
	var (
		sub      domain.Subscription
		planID   pgtype.UUID
		metadata []byte
	)

	err := row.Scan(
		&sub.ID, &sub.UserID, &sub.ProviderSubscriptionID, &sub.Status, &planID,
		&sub.PlanName, &sub.ProviderPlanID,
		&sub.CurrentPeriodStart, &sub.CurrentPeriodEnd, &metadata,
		&sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if planID.Valid {
		sub.PlanID = planID.Bytes
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &sub.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata: %w", err)
		}
	}
	return &sub, nil
}

func orEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
