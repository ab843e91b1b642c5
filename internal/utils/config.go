package utils

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/benmeehan/pulse-agent/internal/constants"
	"github.com/benmeehan/pulse-agent/pkg/file"
	"github.com/benmeehan/pulse-agent/pkg/identity"
	"github.com/rs/zerolog"
)

var (
	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("config file not found")
	// ErrMissingUserID is returned when the configuration does not name a user.
	ErrMissingUserID = errors.New("identity.user_id is required")
)

// Config represents the structure of the configuration file.
type Config struct {
	Connection struct {
		URL              string        `yaml:"url"`               // WebSocket endpoint (ws:// or wss://)
		UserAgent        string        `yaml:"user_agent"`        // User-Agent header sent on dial and reported in AUTH
		Origin           string        `yaml:"origin"`            // Origin header sent on dial
		HandshakeTimeout time.Duration `yaml:"handshake_timeout"` // Max time for the opening handshake
		WriteTimeout     time.Duration `yaml:"write_timeout"`     // Deadline for each frame write
		ReadLimit        int64         `yaml:"read_limit"`        // Max inbound frame size in bytes
		TLSSkipVerify    bool          `yaml:"tls_skip_verify"`   // Skip server certificate verification
	} `yaml:"connection"`

	Identity struct {
		UserID           string `yaml:"user_id"`           // Account identifier reported in AUTH
		ExtensionID      string `yaml:"extension_id"`      // Extension identifier reported in AUTH
		ExtensionVersion string `yaml:"extension_version"` // Extension version reported in AUTH
	} `yaml:"identity"`

	Services struct {
		Heartbeat struct {
			Interval        time.Duration `yaml:"interval"`         // Interval between heartbeats
			ProtocolVersion string        `yaml:"protocol_version"` // Version field of every heartbeat
		} `yaml:"heartbeat"`
	} `yaml:"services"`

	Logging struct {
		Level string `yaml:"level"` // zerolog level name
	} `yaml:"logging"`
}

// DefaultConfig returns a Config populated with the built-in defaults.
// Only identity.user_id is left empty.
func DefaultConfig() *Config {
	var config Config

	config.Connection.URL = constants.DefaultURL
	config.Connection.UserAgent = constants.DefaultUserAgent
	config.Connection.Origin = constants.DefaultOrigin
	config.Connection.HandshakeTimeout = constants.DefaultHandshakeTimeout
	config.Connection.WriteTimeout = constants.DefaultWriteTimeout
	config.Connection.ReadLimit = constants.DefaultReadLimit

	config.Identity.ExtensionID = constants.DefaultExtensionID
	config.Identity.ExtensionVersion = constants.DefaultExtensionVersion

	config.Services.Heartbeat.Interval = constants.DefaultHeartbeatInterval
	config.Services.Heartbeat.ProtocolVersion = constants.DefaultProtocolVersion

	config.Logging.Level = zerolog.LevelInfoValue

	return &config
}

// LoadConfig loads the YAML configuration from the specified file on top of the defaults.
// It returns a pointer to the Config struct and an error if loading or validation fails.
func LoadConfig(filename string, fileClient file.FileOperations) (*Config, error) {
	exists, err := fileClient.IsFileExists(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config %s: %w", filename, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, filename)
	}

	config := DefaultConfig()
	if err := fileClient.ReadYamlFile(filename, config); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks that the configuration can drive a connection.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Connection.URL)
	if err != nil {
		return fmt.Errorf("invalid connection.url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("connection.url must use ws or wss, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("connection.url has no host: %q", c.Connection.URL)
	}

	if c.Identity.UserID == "" {
		return ErrMissingUserID
	}
	if _, err := semver.StrictNewVersion(c.Identity.ExtensionVersion); err != nil {
		return fmt.Errorf("invalid identity.extension_version %q: %w", c.Identity.ExtensionVersion, err)
	}
	if _, err := semver.StrictNewVersion(c.Services.Heartbeat.ProtocolVersion); err != nil {
		return fmt.Errorf("invalid services.heartbeat.protocol_version %q: %w", c.Services.Heartbeat.ProtocolVersion, err)
	}

	if c.Services.Heartbeat.Interval <= 0 {
		return fmt.Errorf("services.heartbeat.interval must be positive, got %s", c.Services.Heartbeat.Interval)
	}
	if c.Connection.WriteTimeout < 0 || c.Connection.HandshakeTimeout < 0 {
		return errors.New("connection timeouts must not be negative")
	}

	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging.level: %w", err)
	}
	return nil
}

// LogLevel returns the configured zerolog level, falling back to info.
func (c *Config) LogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(c.Logging.Level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// SessionIdentity returns the static identity facts reported in AUTH replies.
// The device type is fixed by the protocol and not configurable.
func (c *Config) SessionIdentity() identity.Identity {
	return identity.Identity{
		UserID:           c.Identity.UserID,
		UserAgent:        c.Connection.UserAgent,
		DeviceType:       constants.DefaultDeviceType,
		ExtensionVersion: c.Identity.ExtensionVersion,
		ExtensionID:      c.Identity.ExtensionID,
	}
}
