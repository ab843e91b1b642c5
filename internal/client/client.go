package client

import (
	"context"
	"errors"
	"sync"

	"github.com/benmeehan/pulse-agent/internal/constants"
	"github.com/benmeehan/pulse-agent/internal/service_registry"
	"github.com/benmeehan/pulse-agent/internal/utils"
	"github.com/benmeehan/pulse-agent/pkg/identity"
	"github.com/benmeehan/pulse-agent/pkg/ws"
	"github.com/rs/zerolog"
)

// HeartbeatClient owns one connection and the services speaking over it.
// It connects once; a lost connection ends Run and is never re-dialed.
type HeartbeatClient struct {
	config      *utils.Config
	sessionInfo identity.SessionInfoInterface
	conn        ws.Connection
	logger      zerolog.Logger

	mu      sync.Mutex
	state   constants.ConnectionState
	started bool
}

// NewHeartbeatClient creates a client in the Connecting state.
func NewHeartbeatClient(config *utils.Config, sessionInfo identity.SessionInfoInterface, conn ws.Connection, logger zerolog.Logger) *HeartbeatClient {
	return &HeartbeatClient{
		config:      config,
		sessionInfo: sessionInfo,
		conn:        conn,
		logger:      logger,
		state:       constants.StateConnecting,
	}
}

// State returns the current connection state.
func (c *HeartbeatClient) State() constants.ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *HeartbeatClient) setState(state constants.ConnectionState) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}

// Run dials the endpoint, starts the heartbeat and message services and blocks
// until ctx is cancelled or the connection is lost. It returns nil on
// cancellation and the connection error otherwise. Run may be called once.
func (c *HeartbeatClient) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return errors.New("heartbeat client already started")
	}
	c.started = true
	c.mu.Unlock()

	c.logger.Info().
		Str("url", c.config.Connection.URL).
		Str("session_id", c.sessionInfo.GetSessionID()).
		Msg("Connecting")

	if err := c.conn.Dial(ctx); err != nil {
		c.setState(constants.StateClosed)
		c.logger.Error().Err(err).Msg("Failed to open connection")
		return err
	}
	c.setState(constants.StateOpen)
	c.logger.Info().Str("url", c.config.Connection.URL).Msg("Connection open")

	serviceRegistry := service_registry.NewServiceRegistry(c.conn, c.sessionInfo, c.logger)
	if err := serviceRegistry.RegisterServices(c.config); err != nil {
		c.teardown(nil)
		return err
	}
	if err := serviceRegistry.StartServices(); err != nil {
		c.teardown(nil)
		return err
	}

	var runErr error
	select {
	case <-ctx.Done():
		c.logger.Info().Msg("Shutting down connection")
	case <-serviceRegistry.Done():
		runErr = serviceRegistry.Err()
		if runErr == nil {
			runErr = errors.New("connection services exited")
		}
	}

	c.teardown(serviceRegistry)
	return runErr
}

// teardown closes the connection first so the blocked read returns, then stops services.
func (c *HeartbeatClient) teardown(serviceRegistry *service_registry.ServiceRegistry) {
	c.setState(constants.StateClosed)

	if err := c.conn.Close(); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to close connection cleanly")
	}
	if serviceRegistry != nil {
		_ = serviceRegistry.StopServices()
	}
	c.logger.Info().Msg("Connection closed")
}
