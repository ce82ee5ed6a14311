package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tradeflow/internal/port"
)

// MockFieldMatcher is a mock implementation of port.FieldMatcher.
type MockFieldMatcher struct {
	mock.Mock
}

func (m *MockFieldMatcher) Suggest(ctx context.Context, fieldNames, knownKeys []string) port.Suggestion {
	args := m.Called(ctx, fieldNames, knownKeys)
	return args.Get(0).(port.Suggestion)
}
