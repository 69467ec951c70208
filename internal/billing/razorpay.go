package billing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/frostify/frostify/internal/domain"
)

const defaultTimeout = 5 * time.Second

// RazorpayProvider implements Provider using the Razorpay Go SDK.
type RazorpayProvider struct {
	client  *razorpay.Client
	timeout time.Duration
	logger  *slog.Logger
}

// NewRazorpayProvider creates a Razorpay billing provider.
func NewRazorpayProvider(cfg RazorpayConfig, logger *slog.Logger) (*RazorpayProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &RazorpayProvider{
		client:  razorpay.NewClient(cfg.KeyID, cfg.KeySecret),
		timeout: timeout,
		logger:  logger,
	}, nil
}

// CreateSubscription creates a subscription on Razorpay.
func (p *RazorpayProvider) CreateSubscription(ctx context.Context, params CreateSubscriptionParams) (*Subscription, error) {
	data := map[string]interface{}{
		"plan_id":         params.PlanID,
		"total_count":     params.TotalCount,
		"customer_notify": boolToInt(params.CustomerNotify),
	}
	if params.OfferID != "" {
		data["offer_id"] = params.OfferID
	}
	if !params.StartAt.IsZero() {
		data["start_at"] = params.StartAt.Unix()
	}
	if len(params.Notes) > 0 {
		notes := make(map[string]interface{}, len(params.Notes))
		for k, v := range params.Notes {
			notes[k] = v
		}
		data["notes"] = notes
	}

	body, err := p.call(ctx, "provider.create_subscription", func() (map[string]interface{}, error) {
		return p.client.Subscription.Create(data, nil)
	})
	if err != nil {
		return nil, err
	}

	return subscriptionFromBody(body), nil
}

// FetchSubscription retrieves a subscription by id.
func (p *RazorpayProvider) FetchSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	body, err := p.call(ctx, "provider.fetch_subscription", func() (map[string]interface{}, error) {
		return p.client.Subscription.Fetch(subscriptionID, nil, nil)
	})
	if err != nil {
		return nil, err
	}

	return subscriptionFromBody(body), nil
}

// ListSubscriptions retrieves the most recent subscriptions.
func (p *RazorpayProvider) ListSubscriptions(ctx context.Context, count int) ([]Subscription, error) {
	body, err := p.call(ctx, "provider.list_subscriptions", func() (map[string]interface{}, error) {
		return p.client.Subscription.All(map[string]interface{}{"count": count}, nil)
	})
	if err != nil {
		return nil, err
	}

	items, _ := body["items"].([]interface{})
	subs := make([]Subscription, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		subs = append(subs, *subscriptionFromBody(m))
	}
	return subs, nil
}

// call runs a provider request with the configured timeout. The SDK has no
// context support, so the request runs in a goroutine and a timed-out call is
// abandoned. All transport failures classify as ProviderUnavailable; a
// definitive negative answer is a successful response with a non-active
// status, decided by the caller.
func (p *RazorpayProvider) call(ctx context.Context, op string, fn func() (map[string]interface{}, error)) (map[string]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	type result struct {
		body map[string]interface{}
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		body, err := fn()
		ch <- result{body, err}
	}()

	select {
	case <-ctx.Done():
		p.logger.Error("provider request timed out", slog.String("op", op), slog.Duration("timeout", p.timeout))
		return nil, domain.WrapError(ctx.Err(), domain.EUNAVAILABLE, domain.KindProviderUnavailable, op, "Payment provider is unreachable. Please try again.")
	case res := <-ch:
		if res.err != nil {
			p.logger.Error("provider request failed", slog.String("op", op), slog.String("error", res.err.Error()))
			return nil, domain.WrapError(res.err, domain.EUNAVAILABLE, domain.KindProviderUnavailable, op, "Payment provider is unreachable. Please try again.")
		}
		return res.body, nil
	}
}

// subscriptionFromBody maps a Razorpay subscription entity to the provider
// type. Razorpay serializes numbers as float64.
func subscriptionFromBody(body map[string]interface{}) *Subscription {
	return &Subscription{
		ID:                      stringField(body, "id"),
		PlanID:                  stringField(body, "plan_id"),
		Status:                  stringField(body, "status"),
		CurrentPeriodStartEpoch: epochField(body, "current_start"),
		CurrentPeriodEndEpoch:   epochField(body, "current_end"),
		Notes:                   notesField(body),
	}
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

func epochField(m map[string]interface{}, key string) int64 {
	switch v := m[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}

func notesField(m map[string]interface{}) map[string]string {
	raw, ok := m["notes"].(map[string]interface{})
	if !ok {
		return nil
	}
	notes := make(map[string]string, len(raw))
	for k, v := range raw {
		notes[k] = fmt.Sprintf("%v", v)
	}
	return notes
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
