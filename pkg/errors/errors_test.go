package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, StatusFor("CONFLICT_TERMINAL"))
	assert.Equal(t, http.StatusServiceUnavailable, StatusFor(ErrPersistenceDisabled.Code))
	assert.Equal(t, http.StatusNotFound, StatusFor("TARGET_NOT_FOUND"))
	assert.Equal(t, http.StatusInternalServerError, StatusFor("NO_SUCH_CODE"))
}

func TestCloneMatchesTemplate(t *testing.T) {
	clone := Clone(ErrValidation, "bad page")
	wrapped := fmt.Errorf("handler: %w", clone)

	assert.True(t, errors.Is(wrapped, ErrValidation))
	assert.False(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, "bad page", FromError(wrapped).Message)
	assert.Equal(t, "validation failed", ErrValidation.Message)
}

func TestFromErrorWrapsPlainErrors(t *testing.T) {
	assert.Nil(t, FromError(nil))
	err := FromError(errors.New("disk full"))
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, "internal server error: disk full", err.Error())
	assert.True(t, errors.Is(err, ErrInternal))
}
