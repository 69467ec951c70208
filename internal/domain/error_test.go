package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorExtractors(t *testing.T) {
	err := Errorf(EINVALID, KindPlanNotFound, "catalog.resolve", "no plan for %s", "Starter")

	assert.Equal(t, EINVALID, ErrorCode(err))
	assert.Equal(t, KindPlanNotFound, ErrorKind(err))
	assert.Equal(t, "catalog.resolve", ErrorOp(err))
	assert.Equal(t, "no plan for Starter", ErrorMessage(err))
	assert.True(t, IsKind(err, KindPlanNotFound))
	assert.False(t, IsKind(err, KindCouponInvalid))
}

func TestErrorExtractors_PlainError(t *testing.T) {
	err := errors.New("connection refused")

	assert.Equal(t, EINTERNAL, ErrorCode(err))
	assert.Empty(t, ErrorKind(err))
	assert.Equal(t, "An internal error occurred. Please try again later.", ErrorMessage(err))
}

func TestWrapError(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapError(cause, EINTERNAL, KindPersistenceFailure, "postgres.upsert", "write failed")

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, KindPersistenceFailure, ErrorKind(err))
	assert.Nil(t, WrapError(nil, EINTERNAL, "", "op", "msg"))
}

func TestErrorExtractors_Wrapped(t *testing.T) {
	// Kind and code survive fmt wrapping via errors.As.
	err := fmt.Errorf("check entitlement: %w", ErrSubscriptionExpired)

	assert.Equal(t, EPAYMENT, ErrorCode(err))
	assert.True(t, IsKind(err, KindSubscriptionExpired))
}

func TestInternalHidesMessage(t *testing.T) {
	err := Internal(errors.New("pq: duplicate key"), "postgres.upsert", "upsert failed")
	assert.Equal(t, "An internal error occurred. Please try again later.", ErrorMessage(err))
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input string
		want  Mode
		fails bool
	}{
		{input: "test", want: ModeTest},
		{input: "live", want: ModeLive},
		{input: "", fails: true},
		{input: "Test", fails: true},
		{input: "production", fails: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			mode, err := ParseMode(tt.input)
			if tt.fails {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, mode)
		})
	}

	assert.Equal(t, "test", ModeTest.String())
	assert.Equal(t, "live", ModeLive.String())
}
