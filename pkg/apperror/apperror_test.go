package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_WrappedCodeSurvives(t *testing.T) {
	base := Conflict("approval %s already decided", "abc")
	wrapped := fmt.Errorf("submit decision: %w", base)

	assert.True(t, Is(wrapped, CodeConflict))
	assert.False(t, Is(wrapped, CodeNotFound))

	got, ok := From(wrapped)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, got.HTTPStatus())
	assert.False(t, got.Retryable())
}

func TestError_ValidationMessageListsFieldsInOrder(t *testing.T) {
	err := Validation(map[string]string{
		"policy_id":   "is required",
		"criticality": "must be one of High Medium Low",
	})

	assert.Equal(t, "validation failed (criticality: must be one of High Medium Low; policy_id: is required)", err.Error())
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus())
}

func TestError_StorageIsRetryableAndUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := Storage(cause, "load compliance")

	assert.True(t, err.Retryable())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "load compliance: connection reset", err.Error())
	assert.Equal(t, http.StatusServiceUnavailable, err.HTTPStatus())
}
