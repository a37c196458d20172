package notify

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockNotifier is a testify mock of Notifier.
type MockNotifier struct {
	mock.Mock
}

// NewMockNotifier creates a mock that reports name as its channel.
func NewMockNotifier(name string) *MockNotifier {
	m := &MockNotifier{}
	m.On("Name").Return(name).Maybe()
	return m
}

// Name implements Notifier.
func (m *MockNotifier) Name() string {
	args := m.Called()
	return args.String(0)
}

// Notify implements Notifier.
func (m *MockNotifier) Notify(ctx context.Context, n Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}
