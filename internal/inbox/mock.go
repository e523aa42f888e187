package inbox

import (
	"context"

	"github.com/Veraticus/due-process/internal/model"
)

// MockInbox is a test double for the service.Inbox interface.
type MockInbox struct {
	ReadErr    error
	Messages   []model.RawMessage
	Granted    bool
	ReadCalls  int
	CheckCalls int
}

// CheckPermission returns the configured grant state.
func (m *MockInbox) CheckPermission(_ context.Context) (bool, error) {
	m.CheckCalls++
	return m.Granted, nil
}

// RequestPermission returns the configured grant state.
func (m *MockInbox) RequestPermission(_ context.Context) (bool, error) {
	return m.Granted, nil
}

// Read returns the configured messages or error.
func (m *MockInbox) Read(_ context.Context, _ int) ([]model.RawMessage, error) {
	m.ReadCalls++
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	return m.Messages, nil
}
