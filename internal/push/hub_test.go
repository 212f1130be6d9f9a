package push

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"StudyGate/internal/model"
	"StudyGate/pkg/logger"
)

func init() {
	logger.Logger = zap.NewNop()
}

// fakeSession 测试用会话，记录收到的事件
type fakeSession struct {
	mu     sync.Mutex
	events []*model.PushEvent
	closed bool
	full   bool // 置为 true 模拟缓冲已满
}

func (f *fakeSession) Send(event *model.PushEvent) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.full || f.closed {
		return false
	}
	f.events = append(f.events, event)
	return true
}

func (f *fakeSession) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeSession) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeSession) received() []*model.PushEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*model.PushEvent(nil), f.events...)
}

func TestHubPublishToRegisteredSession(t *testing.T) {
	hub := NewHub()
	session := &fakeSession{}

	hub.Register(42, session)
	hub.Publish(context.Background(), 42, "s-42", model.EventTypeStatusChanged, model.StatusChangedPayload{Status: "on_track"})

	events := session.received()
	require.Len(t, events, 1)
	assert.Equal(t, model.EventTypeStatusChanged, events[0].EventType)
	assert.Equal(t, "s-42", events[0].StudentID)
	assert.NotEmpty(t, events[0].EventID)
}

func TestHubPublishWithoutSessionDropsSilently(t *testing.T) {
	hub := NewHub()

	// 没有会话时不 panic，事件直接丢弃
	hub.Publish(context.Background(), 1, "s-1", model.EventTypeStatusChanged, nil)
	assert.Equal(t, 0, hub.ActiveSessions())
}

func TestHubRegisterReplacesOldSession(t *testing.T) {
	hub := NewHub()
	first := &fakeSession{}
	second := &fakeSession{}

	hub.Register(7, first)
	hub.Register(7, second)

	assert.True(t, first.isClosed())
	assert.Equal(t, 1, hub.ActiveSessions())

	hub.Publish(context.Background(), 7, "s-7", model.EventTypeInterventionAssigned, nil)
	assert.Len(t, first.received(), 0)
	assert.Len(t, second.received(), 1)
}

func TestHubUnregisterOnlyRemovesOwnSession(t *testing.T) {
	hub := NewHub()
	old := &fakeSession{}
	current := &fakeSession{}

	hub.Register(9, old)
	hub.Register(9, current)

	// 旧会话退出时不应把新会话摘掉
	hub.Unregister(9, old)
	assert.Equal(t, 1, hub.ActiveSessions())

	hub.Unregister(9, current)
	assert.Equal(t, 0, hub.ActiveSessions())
}

func TestHubPublishFullBufferDoesNotBlock(t *testing.T) {
	hub := NewHub()
	session := &fakeSession{full: true}

	hub.Register(3, session)
	hub.Publish(context.Background(), 3, "s-3", model.EventTypeStatusChanged, nil)

	assert.Len(t, session.received(), 0)
}

func TestHubConcurrentAccess(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			s := &fakeSession{}
			hub.Register(id, s)
			hub.Publish(context.Background(), id, "s", model.EventTypeStatusChanged, nil)
			hub.Unregister(id, s)
		}(int64(i % 4))
	}
	wg.Wait()

	assert.Equal(t, 0, hub.ActiveSessions())
}
