package models

import "github.com/benmeehan/pulse-agent/internal/constants"

// Heartbeat represents the liveness message the client sends every interval.
type Heartbeat struct {
	ID      string           `json:"id"`      // Session identifier of this client.
	Version string           `json:"version"` // Heartbeat protocol version.
	Action  constants.Action `json:"action"`  // Always PING.
	Data    struct{}         `json:"data"`    // Always an empty object.
}

// NewHeartbeat builds a PING heartbeat for the given session.
func NewHeartbeat(sessionID, version string) Heartbeat {
	return Heartbeat{
		ID:      sessionID,
		Version: version,
		Action:  constants.ActionPing,
	}
}
