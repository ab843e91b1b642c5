package constants

import "time"

// ConnectionState is the lifecycle state of the client connection.
type ConnectionState string

const (
	StateConnecting ConnectionState = "connecting"
	StateOpen       ConnectionState = "open"
	StateClosed     ConnectionState = "closed"
)

const (
	DefaultURL              = "wss://proxy2.wynd.network:4444/"
	DefaultUserAgent        = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
	DefaultExtensionID      = "ilehaonighjijnmpnagapkhpcdbhclfg"
	DefaultOrigin           = "chrome-extension://" + DefaultExtensionID
	DefaultExtensionVersion = "4.64.2"
	DefaultDeviceType       = "extension"
	DefaultProtocolVersion  = "1.0.0"

	DefaultHeartbeatInterval = 60 * time.Second
	DefaultHandshakeTimeout  = 30 * time.Second
	DefaultWriteTimeout      = 10 * time.Second
	DefaultReadLimit         = 1024 * 1024 // 1MB
)
