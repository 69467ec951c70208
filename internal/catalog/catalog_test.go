package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frostify/frostify/internal/domain"
)

func testConfig() Config {
	return Config{
		Mode: domain.ModeTest,
		Plans: []Plan{
			{Name: "Starter", Cycle: CycleMonthly, ProviderPlanID: "plan_std_m", FounderProviderPlanID: "plan_fnd_m", MaxProducts: 25},
			{Name: "Starter", Cycle: CycleYearly, ProviderPlanID: "plan_std_y", FounderProviderPlanID: "plan_fnd_y", MaxProducts: 25},
			{Name: "Pro", Cycle: CycleMonthly, ProviderPlanID: "plan_pro_m", MaxProducts: -1},
		},
		DefaultMaxProducts: 25,
	}
}

func TestNew_Invariants(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name: "missing provider plan id",
			mutate: func(c *Config) {
				c.Plans[0].ProviderPlanID = ""
			},
			wantErr: "missing name or provider plan id",
		},
		{
			name: "invalid cycle",
			mutate: func(c *Config) {
				c.Plans[0].Cycle = "weekly"
			},
			wantErr: "invalid cycle",
		},
		{
			name: "duplicate name and cycle",
			mutate: func(c *Config) {
				c.Plans[1] = c.Plans[0]
			},
			wantErr: "duplicate plan entry",
		},
		{
			name: "duplicate provider plan id",
			mutate: func(c *Config) {
				c.Plans[1].ProviderPlanID = c.Plans[0].ProviderPlanID
			},
			wantErr: "duplicate provider plan id",
		},
		{
			name: "founder id shadows standard id",
			mutate: func(c *Config) {
				c.Plans[0].FounderProviderPlanID = c.Plans[2].ProviderPlanID
			},
			wantErr: "both standard and founder",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)

			c, err := New(cfg, nil)
			if tt.wantErr == "" {
				require.NoError(t, err)
				require.NotNil(t, c)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestResolveProviderPlanID(t *testing.T) {
	c, err := New(testConfig(), nil)
	require.NoError(t, err)

	tests := []struct {
		name  string
		plan  string
		cycle string
		want  string
		fails bool
	}{
		{name: "exact match", plan: "Starter", cycle: "monthly", want: "plan_std_m"},
		{name: "case insensitive", plan: "sTaRtEr", cycle: "MONTHLY", want: "plan_std_m"},
		{name: "trims whitespace", plan: " Pro ", cycle: " monthly ", want: "plan_pro_m"},
		{name: "yearly variant", plan: "Starter", cycle: "yearly", want: "plan_std_y"},
		{name: "unknown plan", plan: "Enterprise", cycle: "monthly", fails: true},
		{name: "unknown cycle", plan: "Starter", cycle: "weekly", fails: true},
		{name: "empty input", plan: "", cycle: "", fails: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.ResolveProviderPlanID(tt.plan, tt.cycle)
			if tt.fails {
				require.Error(t, err)
				assert.True(t, domain.IsKind(err, domain.KindPlanNotFound))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplySwap(t *testing.T) {
	c, err := New(testConfig(), nil)
	require.NoError(t, err)

	swap := &Coupon{Code: "FOUNDER", Kind: PlanSwap}
	offer := &Coupon{Code: "SAVE70", Kind: OfferApply}

	tests := []struct {
		name   string
		planID string
		coupon *Coupon
		want   string
	}{
		{name: "swaps to founder id", planID: "plan_std_m", coupon: swap, want: "plan_fnd_m"},
		{name: "plan without founder variant unchanged", planID: "plan_pro_m", coupon: swap, want: "plan_pro_m"},
		{name: "non swap coupon unchanged", planID: "plan_std_m", coupon: offer, want: "plan_std_m"},
		{name: "nil coupon unchanged", planID: "plan_std_m", coupon: nil, want: "plan_std_m"},
		{name: "unknown plan id unchanged", planID: "plan_other", coupon: swap, want: "plan_other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.ApplySwap(tt.planID, tt.coupon))
		})
	}
}

func TestSwapTargets(t *testing.T) {
	c, err := New(testConfig(), nil)
	require.NoError(t, err)

	targets := c.SwapTargets(&Coupon{Code: "FOUNDER", Kind: PlanSwap})
	assert.ElementsMatch(t, []string{"plan_fnd_m", "plan_fnd_y"}, targets)

	assert.Nil(t, c.SwapTargets(&Coupon{Code: "SAVE70", Kind: OfferApply}))
	assert.Nil(t, c.SwapTargets(nil))
}

func TestPlanLimits(t *testing.T) {
	c, err := New(testConfig(), nil)
	require.NoError(t, err)

	tests := []struct {
		name   string
		planID string
		want   int
	}{
		{name: "standard id", planID: "plan_std_m", want: 25},
		{name: "founder id inherits plan limits", planID: "plan_fnd_m", want: 25},
		{name: "unlimited plan", planID: "plan_pro_m", want: -1},
		{name: "unknown id falls back to default", planID: "plan_gone", want: 25},
		{name: "empty id falls back to default", planID: "", want: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.PlanLimits(tt.planID).MaxProducts)
		})
	}
}

func TestDefaultConfig_ModeSeparation(t *testing.T) {
	testCfg := DefaultConfig(domain.ModeTest)
	liveCfg := DefaultConfig(domain.ModeLive)

	testIDs := make(map[string]bool)
	for _, p := range testCfg.Plans {
		testIDs[p.ProviderPlanID] = true
		testIDs[p.FounderProviderPlanID] = true
	}
	for _, p := range liveCfg.Plans {
		assert.False(t, testIDs[p.ProviderPlanID], "live plan id %s present in test table", p.ProviderPlanID)
		assert.False(t, testIDs[p.FounderProviderPlanID], "live founder id %s present in test table", p.FounderProviderPlanID)
	}

	// Both tables must build valid catalogs.
	_, err := New(testCfg, nil)
	require.NoError(t, err)
	_, err = New(liveCfg, nil)
	require.NoError(t, err)
}
