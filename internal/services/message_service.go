package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/benmeehan/pulse-agent/internal/constants"
	"github.com/benmeehan/pulse-agent/internal/models"
	"github.com/benmeehan/pulse-agent/pkg/ws"
	"github.com/rs/zerolog"
)

// ErrUnhandledAction is returned by HandleMessage for actions with no handler.
// Such messages are ignored and never answered.
var ErrUnhandledAction = errors.New("unhandled action")

// MessageService reads frames from the connection and dispatches them by action.
type MessageService struct {
	conn     ws.Connection
	handlers map[constants.Action]MessageHandler
	logger   zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex

	done chan struct{}
	err  error
}

// NewMessageService creates a MessageService. When two handlers claim the same
// action the first one wins.
func NewMessageService(conn ws.Connection, logger zerolog.Logger, handlers ...MessageHandler) *MessageService {
	ms := &MessageService{
		conn:     conn,
		handlers: make(map[constants.Action]MessageHandler, len(handlers)),
		logger:   logger,
		done:     make(chan struct{}),
	}
	for _, h := range handlers {
		if _, exists := ms.handlers[h.Action()]; exists {
			logger.Warn().Str("action", h.Action().String()).Msg("Handler for action is already registered")
			continue
		}
		ms.handlers[h.Action()] = h
	}
	return ms
}

// Start launches the read loop. A MessageService runs at most once.
func (ms *MessageService) Start() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.ctx != nil {
		ms.logger.Warn().Msg("MessageService is already running")
		return errors.New("message service is already running")
	}

	ms.ctx, ms.cancel = context.WithCancel(context.Background())

	ms.wg.Add(1)
	go func() {
		defer ms.wg.Done()
		defer close(ms.done)
		ms.err = ms.readLoop(ms.ctx)
	}()

	ms.logger.Info().Int("handlers", len(ms.handlers)).Msg("MessageService started successfully")
	return nil
}

// Stop signals the read loop to exit and waits for it. The pending read only
// returns once the connection is closed, so close it before calling Stop.
func (ms *MessageService) Stop() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.ctx == nil {
		ms.logger.Warn().Msg("MessageService is not running")
		return errors.New("message service is not running")
	}

	ms.cancel()
	ms.wg.Wait()

	ms.logger.Info().Msg("MessageService stopped successfully")
	return nil
}

// Done is closed when the read loop exits.
func (ms *MessageService) Done() <-chan struct{} {
	return ms.done
}

// Err returns the error that ended the read loop, or nil if it was stopped
// or the connection was closed locally.
// Only valid after Done is closed.
func (ms *MessageService) Err() error {
	return ms.err
}

func (ms *MessageService) readLoop(ctx context.Context) error {
	for {
		messageType, payload, err := ms.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || !ms.conn.IsConnected() {
				// closed locally
				return nil
			}
			if ws.IsNormalClose(err) {
				ms.logger.Info().Msg("Connection closed by server")
			} else {
				ms.logger.Error().Err(err).Msg("Failed to read from connection")
			}
			return fmt.Errorf("connection lost: %w", err)
		}

		if messageType != ws.TextMessage {
			ms.logger.Debug().Int("type", messageType).Msg("Ignoring non-text frame")
			continue
		}

		if err := ms.HandleMessage(payload); err != nil {
			if errors.Is(err, ErrUnhandledAction) {
				ms.logger.Debug().Err(err).Msg("Ignoring message")
				continue
			}
			ms.logger.Warn().Err(err).Msg("Failed to handle message")
		}
	}
}

// HandleMessage decodes one frame and runs the handler for its action.
// Malformed payloads and unknown actions produce no reply.
func (ms *MessageService) HandleMessage(payload []byte) error {
	msg, err := models.DecodeInboundMessage(payload)
	if err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}

	handler, ok := ms.handlers[msg.Action]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnhandledAction, msg.Action)
	}

	ms.logger.Debug().Str("action", msg.Action.String()).Str("id", msg.ID).Msg("Handling message")
	if err := handler.Handle(msg); err != nil {
		return fmt.Errorf("failed to reply to %s: %w", msg.Action, err)
	}
	return nil
}
