package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hertz-contrib/sse"
	"go.uber.org/zap"

	"StudyGate/config"
	"StudyGate/internal/model"
	"StudyGate/internal/push"
	"StudyGate/pkg/logger"
	"StudyGate/pkg/metrics"
)

const heartbeatInterval = 30 * time.Second

// sseSession 实现 push.Session，事件经缓冲通道流向 SSE 连接
type sseSession struct {
	events chan *model.PushEvent
	done   chan struct{}
	once   sync.Once
}

func newSSESession() *sseSession {
	return &sseSession{
		events: make(chan *model.PushEvent, config.Cfg.PushSessionBuffer),
		done:   make(chan struct{}),
	}
}

// Send 非阻塞投递，缓冲满或会话关闭时丢弃
func (s *sseSession) Send(event *model.PushEvent) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.events <- event:
		return true
	default:
		return false
	}
}

func (s *sseSession) Close() {
	s.once.Do(func() {
		close(s.done)
	})
}

// StreamEvents 学生事件推送流
// GET /v1/me/events
//
// 每个学生只保留一条连接，新连接顶掉旧连接
// 推送尽力而为，客户端重连后应先拉取 /v1/me/status 兜底
func StreamEvents(ctx context.Context, c *app.RequestContext) {
	studentID, ok := currentStudentID(ctx, c)
	if !ok {
		return
	}

	c.SetStatusCode(http.StatusOK)
	stream := sse.NewStream(c)

	session := newSSESession()
	hub := push.GetHub()
	hub.Register(studentID, session)
	if m := metrics.GetMetrics(); m != nil {
		m.AddPushSession(ctx)
	}

	defer func() {
		session.Close()
		hub.Unregister(studentID, session)
		if m := metrics.GetMetrics(); m != nil {
			m.RemovePushSession(ctx)
		}
	}()

	logger.Logger.Info("Push session opened",
		zap.Int64("student_id", studentID),
		zap.String("last_event_id", sse.GetLastEventID(c)),
	)

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-session.done:
			// 被新连接顶掉
			return

		case event := <-session.events:
			data, err := json.Marshal(event)
			if err != nil {
				logger.Logger.Error("Failed to marshal push event",
					zap.String("event_id", event.EventID),
					zap.Error(err),
				)
				continue
			}

			if err := stream.Publish(&sse.Event{
				ID:    event.EventID,
				Event: event.EventType,
				Data:  data,
			}); err != nil {
				return
			}

		case <-heartbeat.C:
			// 保活，同时探测客户端断开
			if err := stream.Publish(&sse.Event{
				Event: "heartbeat",
				Data:  []byte("{}"),
			}); err != nil {
				return
			}
		}
	}
}
