package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockConnection is a mock implementation of the ws.Connection interface
type MockConnection struct {
	mock.Mock
}

func (m *MockConnection) Dial(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockConnection) WriteText(payload []byte) error {
	args := m.Called(payload)
	return args.Error(0)
}

func (m *MockConnection) WriteJSON(v any) error {
	args := m.Called(v)
	return args.Error(0)
}

func (m *MockConnection) ReadMessage() (int, []byte, error) {
	args := m.Called()
	payload, _ := args.Get(1).([]byte)
	return args.Int(0), payload, args.Error(2)
}

func (m *MockConnection) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockConnection) IsConnected() bool {
	args := m.Called()
	return args.Bool(0)
}
