package prim

import "context"

// MockBackend simulates a chat backend for tests and offline runs. It
// returns a fixed reply content, honoring the structured-output contract:
// when ForceJSON is set the content must parse as a JSON object or the call
// fails the same way a real backend would.
type MockBackend struct {
	name     string
	response string
	err      error
}

// NewMockBackend creates a mock that always replies with response.
func NewMockBackend(response string) *MockBackend {
	return &MockBackend{name: "mock", response: response}
}

// NewMockBackendWithError creates a mock whose calls always fail with err.
func NewMockBackendWithError(err error) *MockBackend {
	return &MockBackend{name: "mock", err: err}
}

// SetResponse changes the reply content for subsequent calls.
func (m *MockBackend) SetResponse(response string) {
	m.response = response
	m.err = nil
}

// SetError makes subsequent calls fail with err.
func (m *MockBackend) SetError(err error) {
	m.err = err
}

// Name returns the backend identifier.
func (m *MockBackend) Name() string {
	return m.name
}

// Complete returns the configured reply or error.
func (m *MockBackend) Complete(_ context.Context, _ []Message, opts GenerationOptions) (Message, error) {
	if m.err != nil {
		return Message{}, m.err
	}
	return NewReply(RoleAssistant, m.response, opts.ForceJSON)
}

// NewMockBackendWithCallback creates a mock that derives each reply from the
// message sequence it receives.
func NewMockBackendWithCallback(callback func(messages []Message, opts GenerationOptions) (string, error)) ChatBackend {
	return &mockBackendCallback{callback: callback}
}

type mockBackendCallback struct {
	callback func([]Message, GenerationOptions) (string, error)
}

func (m *mockBackendCallback) Name() string {
	return "mock"
}

func (m *mockBackendCallback) Complete(_ context.Context, messages []Message, opts GenerationOptions) (Message, error) {
	content, err := m.callback(messages, opts)
	if err != nil {
		return Message{}, err
	}
	return NewReply(RoleAssistant, content, opts.ForceJSON)
}
