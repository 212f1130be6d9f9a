package dispatch

import (
	"context"
	"errors"
	"sync"
)

// MockClient 可配置的升级网关 mock，实现 Client 接口
type MockClient struct {
	mu    sync.Mutex
	Calls []Request

	// FailNext 置为 true 时，下一次调用返回 mock 错误并自动复位
	FailNext bool
}

func NewMockClient() *MockClient {
	return &MockClient{
		Calls: make([]Request, 0),
	}
}

func (m *MockClient) Dispatch(ctx context.Context, req *Request) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, *req)

	if m.FailNext {
		m.FailNext = false
		return nil, errors.New("mock dispatch failure")
	}

	return &Result{
		RequestID:  "mock-request-id",
		StatusCode: 200,
		Accepted:   true,
		Message:    "mock dispatch accepted",
		Provider:   "mock",
	}, nil
}

// CallCount 返回累计调用次数
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
