package client

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockClient is an offline Completer. With no Reply set it echoes the user
// prompt so the draft flow can be exercised without a provider key.
type MockClient struct {
	Reply string
	Err   error

	mu    sync.Mutex
	calls []MockCall
}

type MockCall struct {
	SystemPrompt string
	UserPrompt   string
}

var _ Completer = (*MockClient)(nil)

func (m *MockClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{SystemPrompt: systemPrompt, UserPrompt: userPrompt})
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Err != nil {
		return "", m.Err
	}
	if m.Reply != "" {
		return m.Reply, nil
	}
	return fmt.Sprintf("[mock draft]\n\n%s", strings.TrimSpace(userPrompt)), nil
}

// Calls returns the prompts received so far.
func (m *MockClient) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}
