package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOwner_UserOwner(t *testing.T) {
	owner := UserOwner(42)

	assert.Equal(t, OwnerUser, owner.Kind())

	id, ok := owner.UserID()
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	_, ok = owner.SessionID()
	assert.False(t, ok)

	assert.Equal(t, "user:42", owner.String())
}

func TestOwner_SessionOwner(t *testing.T) {
	owner := SessionOwner("sess-1")

	assert.Equal(t, OwnerSession, owner.Kind())

	sid, ok := owner.SessionID()
	assert.True(t, ok)
	assert.Equal(t, "sess-1", sid)

	_, ok = owner.UserID()
	assert.False(t, ok)

	assert.Equal(t, "session:sess-1", owner.String())
}

func TestOwner_Columns(t *testing.T) {
	t.Run("User", func(t *testing.T) {
		userID, sessionID := UserOwner(42).Columns()
		require.NotNil(t, userID)
		assert.Equal(t, int64(42), *userID)
		assert.Nil(t, sessionID)
	})

	t.Run("Session", func(t *testing.T) {
		userID, sessionID := SessionOwner("sess-1").Columns()
		assert.Nil(t, userID)
		require.NotNil(t, sessionID)
		assert.Equal(t, "sess-1", *sessionID)
	})
}

func TestOwnerFromColumns(t *testing.T) {
	userID := int64(42)
	sessionID := "sess-1"

	tests := []struct {
		name      string
		userID    *int64
		sessionID *string
		expected  Owner
		expectErr bool
	}{
		{
			name:     "User only",
			userID:   &userID,
			expected: UserOwner(42),
		},
		{
			name:      "Session only",
			sessionID: &sessionID,
			expected:  SessionOwner("sess-1"),
		},
		{
			name:      "Both set",
			userID:    &userID,
			sessionID: &sessionID,
			expectErr: true,
		},
		{
			name:      "Neither set",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, err := OwnerFromColumns(tt.userID, tt.sessionID)

			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, owner)
		})
	}
}
