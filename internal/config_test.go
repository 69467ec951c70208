package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvSignedInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{name: "unset uses default", value: "", want: 25},
		{name: "positive", value: "40", want: 40},
		{name: "negative unlimited sentinel", value: "-1", want: -1},
		{name: "above uint16 range", value: "100000", want: 100000},
		{name: "garbage uses default", value: "lots", want: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv("TEST_SIGNED_INT", tt.value)
			}
			assert.Equal(t, tt.want, getEnvSignedInt("TEST_SIGNED_INT", 25))
		})
	}
}

func TestNewConfig_DefaultMaxProducts(t *testing.T) {
	t.Setenv("ENV", "dev")
	t.Setenv("DEFAULT_MAX_PRODUCTS", "-1")

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, -1, cfg.DefaultMaxProducts)
}
