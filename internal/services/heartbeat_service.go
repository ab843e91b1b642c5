package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benmeehan/pulse-agent/internal/models"
	"github.com/benmeehan/pulse-agent/pkg/identity"
	"github.com/benmeehan/pulse-agent/pkg/ws"
	"github.com/rs/zerolog"
)

// HeartbeatService sends a PING heartbeat over the connection at a fixed interval.
type HeartbeatService struct {
	Interval        time.Duration
	ProtocolVersion string
	SessionInfo     identity.SessionInfoInterface
	Conn            ws.Connection
	Logger          zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewHeartbeatService initializes a new HeartbeatService.
func NewHeartbeatService(interval time.Duration, protocolVersion string, sessionInfo identity.SessionInfoInterface,
	conn ws.Connection, logger zerolog.Logger) *HeartbeatService {

	return &HeartbeatService{
		Interval:        interval,
		ProtocolVersion: protocolVersion,
		SessionInfo:     sessionInfo,
		Conn:            conn,
		Logger:          logger,
	}
}

// Start launches the heartbeat loop in a separate goroutine.
// The first heartbeat is sent right away, the rest once per Interval.
func (h *HeartbeatService) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ctx != nil {
		h.Logger.Warn().Msg("HeartbeatService is already running")
		return errors.New("heartbeat service is already running")
	}
	if h.Interval <= 0 {
		return errors.New("heartbeat interval must be positive")
	}

	h.ctx, h.cancel = context.WithCancel(context.Background())

	h.wg.Add(1)
	go func(ctx context.Context) {
		defer h.wg.Done()
		h.runHeartbeatLoop(ctx)
	}(h.ctx)

	h.Logger.Info().Dur("interval", h.Interval).Msg("HeartbeatService started successfully")
	return nil
}

// Stop gracefully stops the heartbeat service.
func (h *HeartbeatService) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ctx == nil {
		h.Logger.Warn().Msg("HeartbeatService is not running")
		return errors.New("heartbeat service is not running")
	}

	h.cancel()
	h.wg.Wait()

	h.ctx = nil
	h.cancel = nil

	h.Logger.Info().Msg("HeartbeatService stopped successfully")
	return nil
}

// runHeartbeatLoop sends one heartbeat immediately and then one per tick until ctx is done.
func (h *HeartbeatService) runHeartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(h.Interval)
	defer ticker.Stop()

	h.sendHeartbeat()

	for {
		select {
		case <-ticker.C:
			h.sendHeartbeat()

		case <-ctx.Done():
			h.Logger.Info().Msg("HeartbeatService stopping gracefully")
			return
		}
	}
}

func (h *HeartbeatService) sendHeartbeat() {
	heartbeatMessage := models.NewHeartbeat(h.SessionInfo.GetSessionID(), h.ProtocolVersion)

	if err := h.Conn.WriteJSON(heartbeatMessage); err != nil {
		h.Logger.Error().Err(err).Msg("Failed to send heartbeat message")
		return
	}
	h.Logger.Debug().Str("id", heartbeatMessage.ID).Msg("Heartbeat sent successfully")
}
