package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	err := New(ErrCodePatentNotFound, "patent not found")
	assert.Equal(t, "[PAT_001] patent not found", err.Error())

	withDetail := err.WithDetail("number=US6823036")
	assert.Equal(t, "[PAT_001] patent not found: number=US6823036", withDetail.Error())
	// WithDetail must not mutate the receiver.
	assert.Empty(t, err.Detail)
}

func TestWrap(t *testing.T) {
	t.Run("nil_error_returns_nil", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, ErrCodeDatabaseError, "query failed"))
	})

	t.Run("preserves_cause_chain", func(t *testing.T) {
		cause := stderrors.New("connection refused")
		wrapped := Wrap(cause, ErrCodeDatabaseError, "failed to load run")
		assert.True(t, stderrors.Is(wrapped, cause))
	})

	t.Run("unknown_code_preserves_original", func(t *testing.T) {
		inner := New(ErrCodeDiscoveryZeroResults, "no patents found")
		outer := Wrap(fmt.Errorf("pipeline: %w", inner), CodeUnknown, "discovery failed")
		assert.Equal(t, ErrCodeDiscoveryZeroResults, outer.Code)
	})
}

func TestIsCode(t *testing.T) {
	inner := New(ErrCodeSourceRateLimited, "429 from upstream")
	outer := Wrap(inner, ErrCodeDiscoveryTransport, "pass failed")

	assert.True(t, IsCode(outer, ErrCodeDiscoveryTransport))
	assert.True(t, IsCode(outer, ErrCodeSourceRateLimited))
	assert.False(t, IsCode(outer, ErrCodeDatabaseError))
	assert.False(t, IsCode(nil, ErrCodeDatabaseError))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(New(ErrCodePatentNotFound, "x")))
	assert.True(t, IsNotFound(New(ErrCodeDiscoveryRunNotFound, "x")))
	assert.True(t, IsNotFound(NotFound("x")))
	assert.False(t, IsNotFound(Internal("x")))
	assert.False(t, IsNotFound(nil))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeOK, GetCode(nil))
	assert.Equal(t, CodeUnknown, GetCode(stderrors.New("plain")))
	assert.Equal(t, ErrCodeScoringWeightsInvalid, GetCode(New(ErrCodeScoringWeightsInvalid, "weights must sum to 1.0")))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, 404, HTTPStatus(ErrCodePatentNotFound))
	assert.Equal(t, 400, HTTPStatus(ErrCodeScoringWeightsInvalid))
	assert.Equal(t, 502, HTTPStatus(ErrCodeDiscoveryTransport))
	assert.Equal(t, 500, HTTPStatus(ErrorCode("NOPE_999")))
}

func TestStackCaptured(t *testing.T) {
	err := New(ErrCodeInternal, "boom")
	require.NotEmpty(t, err.Stack)
	assert.Contains(t, err.Stack, "errors_test.go")
}
