package mocks

import (
	"github.com/benmeehan/pulse-agent/pkg/identity"
	"github.com/stretchr/testify/mock"
)

// MockSessionInfo is a mock implementation of the SessionInfoInterface
type MockSessionInfo struct {
	mock.Mock
}

func (m *MockSessionInfo) GetSessionID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockSessionInfo) GetIdentity() identity.Identity {
	args := m.Called()
	return args.Get(0).(identity.Identity)
}
