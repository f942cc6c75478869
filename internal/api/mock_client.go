package api

import (
	"context"
	"sync"

	"github.com/diogo/adsagent/internal/models"
)

// MockClient is a mock implementation of ClientInterface for testing
type MockClient struct {
	// Mock return values
	ChatVal    *models.ChatResponse
	ChatErr    error
	ChatFunc   func(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)
	HealthVal  *models.HealthStatus
	HealthErr  error
	BaseURLVal string

	// Call recorders
	mu          sync.Mutex
	Requests    []models.ChatRequest
	HealthCalls int
	CloseCalled bool
}

// Ensure MockClient implements ClientInterface
var _ ClientInterface = (*MockClient)(nil)

func (m *MockClient) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	fn := m.ChatFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return m.ChatVal, m.ChatErr
}

func (m *MockClient) Health(ctx context.Context) (*models.HealthStatus, error) {
	m.mu.Lock()
	m.HealthCalls++
	m.mu.Unlock()
	return m.HealthVal, m.HealthErr
}

func (m *MockClient) BaseURL() string {
	if m.BaseURLVal == "" {
		return models.DefaultBackendURL
	}
	return m.BaseURLVal
}

func (m *MockClient) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalled = true
}

// RequestCount returns the number of Chat calls so far
func (m *MockClient) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

// LastRequest returns the most recent Chat request
func (m *MockClient) LastRequest() (models.ChatRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Requests) == 0 {
		return models.ChatRequest{}, false
	}
	return m.Requests[len(m.Requests)-1], true
}
