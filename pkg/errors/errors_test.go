package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorPassesTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("dispatch: %w", Clone(ErrSessionBusy, "desk is verifying a participant"))

	appErr := FromError(wrapped)
	require.NotNil(t, appErr)
	assert.Equal(t, ErrSessionBusy.Code, appErr.Code)
	assert.Equal(t, http.StatusConflict, appErr.Status)
	assert.Equal(t, "desk is verifying a participant", appErr.Message)
}

func TestFromErrorWrapsUnknownAsInternal(t *testing.T) {
	appErr := FromError(errors.New("connection refused"))
	require.NotNil(t, appErr)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.EqualError(t, appErr, "internal server error: connection refused")
	assert.Nil(t, FromError(nil))
}

func TestClonedSentinelMatchesWithErrorsIs(t *testing.T) {
	err := fmt.Errorf("verify: %w", Clone(ErrAlreadyVerified, "participant 1001 already verified"))

	assert.True(t, errors.Is(err, ErrAlreadyVerified))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal(cause, "failed to add college")

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, "failed to add college: disk full", err.Error())
}
