package services

import (
	"errors"
	"testing"
	"time"

	"github.com/benmeehan/pulse-agent/internal/constants"
	"github.com/benmeehan/pulse-agent/internal/mocks"
	"github.com/benmeehan/pulse-agent/internal/models"
	"github.com/benmeehan/pulse-agent/pkg/ws"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestMessageService(mockConn *mocks.MockConnection) *MessageService {
	mockSessionInfo := new(mocks.MockSessionInfo)
	mockSessionInfo.On("GetIdentity").Return(testIdentity())

	return NewMessageService(
		mockConn,
		zerolog.Nop(),
		NewAuthHandler(mockSessionInfo, mockConn, nil),
		NewPongHandler(mockConn),
	)
}

// TestMessageService_HandleMessage_Auth tests the AUTH scenario.
func TestMessageService_HandleMessage_Auth(t *testing.T) {
	mockConn := new(mocks.MockConnection)

	var reply models.AuthReply
	mockConn.On("WriteJSON", mock.AnythingOfType("models.AuthReply")).Run(func(args mock.Arguments) {
		reply = args.Get(0).(models.AuthReply)
	}).Return(nil).Once()

	ms := newTestMessageService(mockConn)
	err := ms.HandleMessage([]byte(`{"id":"abc123","action":"AUTH"}`))

	require.NoError(t, err)
	assert.Equal(t, "abc123", reply.ID)
	assert.Equal(t, constants.ActionAuth, reply.OriginAction)
	assert.Equal(t, "test-session-id", reply.Result.BrowserID)
	assert.InDelta(t, time.Now().Unix(), reply.Result.Timestamp, 2)
	mockConn.AssertExpectations(t)
}

// TestMessageService_HandleMessage_Pong tests the PONG scenario.
func TestMessageService_HandleMessage_Pong(t *testing.T) {
	mockConn := new(mocks.MockConnection)
	mockConn.On("WriteJSON", models.PongReply{ID: "xyz", OriginAction: constants.ActionPong}).Return(nil).Once()

	ms := newTestMessageService(mockConn)
	err := ms.HandleMessage([]byte(`{"id":"xyz","action":"PONG"}`))

	require.NoError(t, err)
	mockConn.AssertExpectations(t)
}

// TestMessageService_HandleMessage_NoReply tests that unknown actions and bad payloads send nothing.
func TestMessageService_HandleMessage_NoReply(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		unhandled bool
	}{
		{"unknown action", `{"id":"q","action":"UNKNOWN"}`, true},
		{"null action", `{"id":"q","action":null}`, true},
		{"missing action", `{"id":"q"}`, true},
		{"ping from server", `{"id":"q","action":"PING"}`, true},
		{"lowercase action", `{"id":"q","action":"auth"}`, true},
		{"case-folded keys", `{"ID":"xyz","ACTION":"PONG"}`, true},
		{"capitalized action key", `{"id":"xyz","Action":"AUTH"}`, true},
		{"numeric action", `{"id":"q","action":1}`, false},
		{"null payload", `null`, true},
		{"malformed json", `{"id":`, false},
		{"not an object", `"AUTH"`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockConn := new(mocks.MockConnection)
			ms := newTestMessageService(mockConn)

			err := ms.HandleMessage([]byte(tt.payload))

			assert.Error(t, err)
			assert.Equal(t, tt.unhandled, errors.Is(err, ErrUnhandledAction))
			mockConn.AssertNotCalled(t, "WriteJSON", mock.Anything)
		})
	}
}

// TestMessageService_DuplicateHandler tests that the first handler for an action wins.
func TestMessageService_DuplicateHandler(t *testing.T) {
	first := new(mocks.MockConnection)
	second := new(mocks.MockConnection)
	first.On("WriteJSON", mock.Anything).Return(nil).Once()

	ms := NewMessageService(first, zerolog.Nop(), NewPongHandler(first), NewPongHandler(second))
	require.NoError(t, ms.HandleMessage([]byte(`{"id":"xyz","action":"PONG"}`)))

	first.AssertExpectations(t)
	second.AssertNotCalled(t, "WriteJSON", mock.Anything)
}

// TestMessageService_ReadLoop_DispatchesUntilConnectionLost tests the read loop end to end.
func TestMessageService_ReadLoop_DispatchesUntilConnectionLost(t *testing.T) {
	mockConn := new(mocks.MockConnection)

	mockConn.On("ReadMessage").Return(ws.TextMessage, []byte(`{"id":"xyz","action":"PONG"}`), nil).Once()
	mockConn.On("ReadMessage").Return(ws.BinaryMessage, []byte(`{"id":"bin","action":"PONG"}`), nil).Once()
	mockConn.On("ReadMessage").Return(ws.TextMessage, []byte(`not json`), nil).Once()
	mockConn.On("ReadMessage").Return(ws.TextMessage, []byte(`{"id":"q","action":"UNKNOWN"}`), nil).Once()
	mockConn.On("ReadMessage").Return(0, nil, errors.New("connection reset")).Once()
	mockConn.On("IsConnected").Return(true)
	mockConn.On("WriteJSON", models.PongReply{ID: "xyz", OriginAction: constants.ActionPong}).Return(nil).Once()

	ms := newTestMessageService(mockConn)
	require.NoError(t, ms.Start())

	select {
	case <-ms.Done():
	case <-time.After(time.Second):
		t.Fatal("read loop did not exit")
	}

	assert.ErrorContains(t, ms.Err(), "connection reset")
	assert.NoError(t, ms.Stop())
	mockConn.AssertExpectations(t)
}

// TestMessageService_ReadLoop_LocalClose tests that a locally closed connection ends the loop without error.
func TestMessageService_ReadLoop_LocalClose(t *testing.T) {
	mockConn := new(mocks.MockConnection)
	mockConn.On("ReadMessage").Return(0, nil, ws.ErrNotConnected)
	mockConn.On("IsConnected").Return(false)

	ms := newTestMessageService(mockConn)
	require.NoError(t, ms.Start())

	select {
	case <-ms.Done():
	case <-time.After(time.Second):
		t.Fatal("read loop did not exit")
	}

	assert.NoError(t, ms.Err())
	assert.NoError(t, ms.Stop())
}

// TestMessageService_StartStop tests the lifecycle guards.
func TestMessageService_StartStop(t *testing.T) {
	mockConn := new(mocks.MockConnection)
	mockConn.On("ReadMessage").Return(0, nil, ws.ErrNotConnected)
	mockConn.On("IsConnected").Return(false)

	ms := newTestMessageService(mockConn)

	err := ms.Stop()
	assert.EqualError(t, err, "message service is not running")

	require.NoError(t, ms.Start())
	err = ms.Start()
	assert.EqualError(t, err, "message service is already running")

	assert.NoError(t, ms.Stop())
}
