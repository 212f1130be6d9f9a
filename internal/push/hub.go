package push

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"StudyGate/internal/model"
	"StudyGate/pkg/logger"
	"StudyGate/pkg/metrics"
)

// Session 一条活跃的推送会话，由 SSE handler 提供具体实现
type Session interface {
	// Send 非阻塞投递，缓冲满或会话已关闭返回 false
	Send(event *model.PushEvent) bool
	// Close 终止会话
	Close()
}

// Hub 按学生维度管理推送会话
// 每个学生最多一条会话，新连接顶掉旧连接
type Hub struct {
	mu       sync.Mutex
	sessions map[int64]Session
}

var (
	defaultHub *Hub
	hubOnce    sync.Once
)

// GetHub 获取全局 Hub 单例
func GetHub() *Hub {
	hubOnce.Do(func() {
		defaultHub = NewHub()
	})
	return defaultHub
}

func NewHub() *Hub {
	return &Hub{
		sessions: make(map[int64]Session),
	}
}

// Register 注册会话，同一学生的旧会话被关闭替换
func (h *Hub) Register(studentID int64, s Session) {
	h.mu.Lock()
	old, exists := h.sessions[studentID]
	h.sessions[studentID] = s
	h.mu.Unlock()

	if exists {
		old.Close()
		logger.Logger.Info("Replaced existing push session",
			zap.Int64("student_id", studentID),
		)
	}
}

// Unregister 按会话身份注销，防止新连接被旧连接的退出流程误删
func (h *Hub) Unregister(studentID int64, s Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.sessions[studentID]; ok && current == s {
		delete(h.sessions, studentID)
	}
}

// Publish 向指定学生推送事件，无在线会话直接丢弃
// 推送不保证送达，客户端重连后应主动拉取状态
func (h *Hub) Publish(ctx context.Context, studentID int64, studentPublicID string, eventType string, payload interface{}) {
	event := &model.PushEvent{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		StudentID:  studentPublicID,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
		Payload:    payload,
	}

	h.mu.Lock()
	s, ok := h.sessions[studentID]
	h.mu.Unlock()

	if !ok {
		if m := metrics.GetMetrics(); m != nil {
			m.RecordPushDropped(ctx, eventType)
		}
		return
	}

	if !s.Send(event) {
		logger.Logger.Warn("Push session buffer full, event dropped",
			zap.Int64("student_id", studentID),
			zap.String("event_type", eventType),
		)
		if m := metrics.GetMetrics(); m != nil {
			m.RecordPushDropped(ctx, eventType)
		}
		return
	}

	if m := metrics.GetMetrics(); m != nil {
		m.RecordPushDelivered(ctx, eventType)
	}
}

// ActiveSessions 当前在线会话数
func (h *Hub) ActiveSessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}
