package ws

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Frame types returned by ReadMessage.
const (
	TextMessage   = websocket.TextMessage
	BinaryMessage = websocket.BinaryMessage
)

var (
	// ErrNotConnected is returned when the connection is used before Dial or after Close.
	ErrNotConnected = errors.New("websocket connection is not open")
	// ErrAlreadyConnected is returned when Dial is called on an open connection.
	ErrAlreadyConnected = errors.New("websocket connection is already open")
)

// Connection defines the interface for a single client WebSocket connection.
type Connection interface {
	Dial(ctx context.Context) error
	WriteText(payload []byte) error
	WriteJSON(v any) error
	ReadMessage() (messageType int, payload []byte, err error)
	Close() error
	IsConnected() bool
}

// Options configures the outbound connection.
type Options struct {
	URL              string
	UserAgent        string
	Origin           string
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	ReadLimit        int64
	TLSSkipVerify    bool
}

// WebSocketService is a Connection backed by gorilla/websocket.
// Writes are serialized because gorilla supports a single concurrent writer.
type WebSocketService struct {
	opts Options

	mu      sync.Mutex // guards conn
	writeMu sync.Mutex
	conn    *websocket.Conn
}

// NewWebSocketService creates a new, not yet connected WebSocketService.
func NewWebSocketService(opts Options) *WebSocketService {
	return &WebSocketService{opts: opts}
}

// Dial opens the connection, sending the configured User-Agent and Origin headers.
func (s *WebSocketService) Dial(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return ErrAlreadyConnected
	}

	header := http.Header{}
	if s.opts.UserAgent != "" {
		header.Set("User-Agent", s.opts.UserAgent)
	}
	if s.opts.Origin != "" {
		header.Set("Origin", s.opts.Origin)
	}

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: s.opts.HandshakeTimeout,
	}
	if s.opts.TLSSkipVerify {
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402 -- opt-in via config
	}

	conn, resp, err := dialer.DialContext(ctx, s.opts.URL, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("failed to dial %s (status %d): %w", s.opts.URL, resp.StatusCode, err)
		}
		return fmt.Errorf("failed to dial %s: %w", s.opts.URL, err)
	}
	if s.opts.ReadLimit > 0 {
		conn.SetReadLimit(s.opts.ReadLimit)
	}

	s.conn = conn
	return nil
}

// WriteText sends one text frame.
func (s *WebSocketService) WriteText(payload []byte) error {
	conn := s.current()
	if conn == nil {
		return ErrNotConnected
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.opts.WriteTimeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout)); err != nil {
			return err
		}
	}
	return conn.WriteMessage(websocket.TextMessage, payload)
}

// WriteJSON marshals v and sends it as one text frame.
func (s *WebSocketService) WriteJSON(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to serialize message: %w", err)
	}
	return s.WriteText(payload)
}

// ReadMessage blocks until the next data frame arrives or the connection fails.
// Only one goroutine may read at a time.
func (s *WebSocketService) ReadMessage() (int, []byte, error) {
	conn := s.current()
	if conn == nil {
		return 0, nil, ErrNotConnected
	}
	return conn.ReadMessage()
}

// Close sends a normal close frame and releases the underlying connection.
// Calling Close on a closed connection is a no-op.
func (s *WebSocketService) Close() error {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn == nil {
		return nil
	}

	s.writeMu.Lock()
	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	s.writeMu.Unlock()

	return conn.Close()
}

// IsConnected reports whether Dial succeeded and Close has not been called.
func (s *WebSocketService) IsConnected() bool {
	return s.current() != nil
}

func (s *WebSocketService) current() *websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// IsNormalClose reports whether err is a clean close initiated by either side.
func IsNormalClose(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
