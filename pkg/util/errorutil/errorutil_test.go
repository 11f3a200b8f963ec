package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError_PassesThroughWrapped(t *testing.T) {
	base := NewDuplicateEmail("This email address is already registered")
	wrapped := fmt.Errorf("create: %w", base)

	de := ToDomainError(wrapped)
	require.NotNil(t, de)
	assert.Equal(t, CodeDuplicateEmail, de.Code)
	assert.Equal(t, http.StatusConflict, de.HTTPStatus)
}

func TestToDomainError_HidesUnknownErrors(t *testing.T) {
	de := ToDomainError(errors.New("pq: connection refused on 10.0.0.4"))
	require.NotNil(t, de)
	assert.Equal(t, CodeInternal, de.Code)
	assert.Equal(t, "internal server error", de.Message)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
}

func TestToDomainError_Nil(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
}

func TestHasCode(t *testing.T) {
	assert.True(t, HasCode(NewNotFound("Registration", nil), CodeNotFound))
	assert.False(t, HasCode(NewNotFound("Registration", nil), CodeInvalidInput))
	assert.False(t, HasCode(errors.New("plain"), CodeNotFound))
}
