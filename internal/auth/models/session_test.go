package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionExpiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := NewSession(now, time.Hour)

	assert.False(t, s.IsAdmin)
	assert.False(t, s.Expired(now))
	assert.False(t, s.Expired(now.Add(59*time.Minute)))
	assert.True(t, s.Expired(now.Add(time.Hour)))
	assert.NotEqual(t, NewSession(now, time.Hour).ID, s.ID)
}

func TestStatusUsesClientFieldName(t *testing.T) {
	out, err := json.Marshal(Status{IsAdmin: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"isAdmin":true}`, string(out))
}
