package identity

import (
	"github.com/google/uuid"
)

// Identity holds the per-process session identifier and the static client facts
// reported to the remote service during the AUTH handshake.
type Identity struct {
	SessionID        string
	UserID           string
	UserAgent        string
	DeviceType       string
	ExtensionVersion string
	ExtensionID      string
}

// SessionInfoInterface defines methods for reading the client identity.
type SessionInfoInterface interface {
	GetSessionID() string
	GetIdentity() Identity
}

// SessionInfo owns the identity of one client process.
type SessionInfo struct {
	identity Identity
}

// NewSessionInfo generates a fresh session identifier and binds it to the given
// static identity fields. Any SessionID already set on static is replaced.
func NewSessionInfo(static Identity) SessionInfoInterface {
	static.SessionID = uuid.New().String()
	return &SessionInfo{identity: static}
}

// GetSessionID returns the session identifier generated at construction.
func (s *SessionInfo) GetSessionID() string {
	return s.identity.SessionID
}

// GetIdentity returns a copy of the identity, so callers cannot mutate it.
func (s *SessionInfo) GetIdentity() Identity {
	return s.identity
}
