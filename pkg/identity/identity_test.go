package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionInfo_GeneratesUUID(t *testing.T) {
	info := NewSessionInfo(Identity{UserID: "user-1"})

	_, err := uuid.Parse(info.GetSessionID())
	require.NoError(t, err)
	assert.Equal(t, "user-1", info.GetIdentity().UserID)
}

func TestNewSessionInfo_OverridesPresetSessionID(t *testing.T) {
	info := NewSessionInfo(Identity{SessionID: "preset"})

	assert.NotEqual(t, "preset", info.GetSessionID())
}

func TestSessionInfo_StableAcrossCalls(t *testing.T) {
	info := NewSessionInfo(Identity{})

	first := info.GetSessionID()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, info.GetSessionID())
		assert.Equal(t, first, info.GetIdentity().SessionID)
	}
}

func TestSessionInfo_GetIdentityReturnsCopy(t *testing.T) {
	info := NewSessionInfo(Identity{UserID: "user-1"})

	id := info.GetIdentity()
	id.UserID = "changed"
	id.SessionID = "changed"

	assert.Equal(t, "user-1", info.GetIdentity().UserID)
	assert.NotEqual(t, "changed", info.GetSessionID())
}

func TestNewSessionInfo_DistinctPerInstance(t *testing.T) {
	a := NewSessionInfo(Identity{})
	b := NewSessionInfo(Identity{})

	assert.NotEqual(t, a.GetSessionID(), b.GetSessionID())
}
