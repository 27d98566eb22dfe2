package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindMatching(t *testing.T) {
	wrapped := fmt.Errorf("send invitation: %w", ErrAlreadyInvited)

	assert.True(t, errors.Is(wrapped, ErrAlreadyInvited))
	assert.True(t, errors.Is(wrapped, Conflict))
	assert.False(t, errors.Is(wrapped, NotFound))
	assert.Equal(t, KindConflict, KindOf(wrapped))
}

func TestRemote(t *testing.T) {
	t.Run("wraps untyped errors", func(t *testing.T) {
		err := Remote("list leagues", errors.New("connection reset"))
		assert.True(t, errors.Is(err, RemoteUnavailable))
		assert.Equal(t, "list leagues: connection reset", err.Error())
	})

	t.Run("keeps typed errors", func(t *testing.T) {
		err := Remote("accept invitation", ErrInvitationNotFound)
		assert.Same(t, ErrInvitationNotFound, err)
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Remote("noop", nil))
	})
}

func TestKindOfUntyped(t *testing.T) {
	assert.Equal(t, KindRemoteUnavailable, KindOf(errors.New("boom")))
	assert.False(t, IsKind(nil, KindConflict))
}

func TestFieldError(t *testing.T) {
	err := Field("email", "email is required")
	assert.Equal(t, "email: email is required", err.Error())
	assert.True(t, errors.Is(err, Validation))
}
