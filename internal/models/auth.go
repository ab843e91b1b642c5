package models

import "github.com/benmeehan/pulse-agent/internal/constants"

// AuthResult holds the identity facts reported in an AUTH reply.
type AuthResult struct {
	BrowserID   string `json:"browser_id"`
	UserID      string `json:"user_id"`
	UserAgent   string `json:"user_agent"`
	Timestamp   int64  `json:"timestamp"` // Unix seconds at reply time.
	DeviceType  string `json:"device_type"`
	Version     string `json:"version"`
	ExtensionID string `json:"extension_id"`
}

// AuthReply answers an AUTH request from the server.
type AuthReply struct {
	ID           string           `json:"id"`
	OriginAction constants.Action `json:"origin_action"`
	Result       AuthResult       `json:"result"`
}
