package billing

import (
	"context"
	"fmt"
)

// MockProvider is a mock billing provider for testing.
// Simulates provider responses without calling the Razorpay API.
type MockProvider struct {
	// CreateSubscriptionFunc allows customizing subscription creation behavior
	CreateSubscriptionFunc func(ctx context.Context, params CreateSubscriptionParams) (*Subscription, error)

	// FetchSubscriptionFunc allows customizing subscription retrieval behavior
	FetchSubscriptionFunc func(ctx context.Context, subscriptionID string) (*Subscription, error)

	// ListSubscriptionsFunc allows customizing subscription listing behavior
	ListSubscriptionsFunc func(ctx context.Context, count int) ([]Subscription, error)

	// Subscriptions stores created subscriptions for retrieval
	Subscriptions map[string]*Subscription

	// CallLog tracks method calls for test assertions
	CallLog []string
}

// NewMockProvider creates a new mock billing provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Subscriptions: make(map[string]*Subscription),
		CallLog:       []string{},
	}
}

// CreateSubscription creates a mock subscription.
func (m *MockProvider) CreateSubscription(ctx context.Context, params CreateSubscriptionParams) (*Subscription, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("CreateSubscription(%s, %d)", params.PlanID, params.TotalCount))

	if m.CreateSubscriptionFunc != nil {
		return m.CreateSubscriptionFunc(ctx, params)
	}

	sub := &Subscription{
		ID:     fmt.Sprintf("sub_mock%04d", len(m.Subscriptions)+1),
		PlanID: params.PlanID,
		Status: "created",
		Notes:  params.Notes,
	}
	m.Subscriptions[sub.ID] = sub
	return sub, nil
}

// FetchSubscription retrieves a mock subscription.
func (m *MockProvider) FetchSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("FetchSubscription(%s)", subscriptionID))

	if m.FetchSubscriptionFunc != nil {
		return m.FetchSubscriptionFunc(ctx, subscriptionID)
	}

	sub, exists := m.Subscriptions[subscriptionID]
	if !exists {
		return nil, fmt.Errorf("mock: subscription %s not found", subscriptionID)
	}
	return sub, nil
}

// ListSubscriptions lists mock subscriptions.
func (m *MockProvider) ListSubscriptions(ctx context.Context, count int) ([]Subscription, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("ListSubscriptions(%d)", count))

	if m.ListSubscriptionsFunc != nil {
		return m.ListSubscriptionsFunc(ctx, count)
	}

	subs := make([]Subscription, 0, len(m.Subscriptions))
	for _, s := range m.Subscriptions {
		subs = append(subs, *s)
		if len(subs) == count {
			break
		}
	}
	return subs, nil
}
