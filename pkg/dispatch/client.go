package dispatch

import (
	"context"
	"fmt"
	"sync"

	"StudyGate/config"
	"StudyGate/pkg/logger"

	"go.uber.org/zap"
)

// Request 升级通知载荷，发给外部导师调度工作流
type Request struct {
	TicketID       string `json:"ticket_id"`
	StudentID      string `json:"student_id"`
	ExternalRef    string `json:"external_ref"`
	Reason         string `json:"reason"`
	FailedStreak   int    `json:"failed_streak"`
	LastQuizScore  int    `json:"last_quiz_score"`
	LastFocusMins  int    `json:"last_focus_minutes"`
	LastDistracted int    `json:"last_distraction_count"`
	Reminder       bool   `json:"reminder"`
}

// Result 工作流端的受理回执
type Result struct {
	RequestID  string `json:"request_id"`
	StatusCode int    `json:"-"`
	Accepted   bool   `json:"accepted"`
	Message    string `json:"message"`
	Provider   string `json:"-"`
}

// Client 升级网关客户端接口
type Client interface {
	// Dispatch 把升级工单推送给外部工作流，失败不阻塞状态机，
	// 由调用方记录 dispatch_failed_at 并交给重试链路
	Dispatch(ctx context.Context, req *Request) (*Result, error)
}

var (
	dispatchClient Client
	dispatchOnce   sync.Once
	dispatchErr    error
)

// Init 初始化升级网关客户端
func Init() error {
	dispatchOnce.Do(func() {
		cfg := config.Cfg

		switch cfg.EscalationProvider {
		case "http":
			dispatchClient, dispatchErr = NewHTTPClient()
		case "mock":
			dispatchClient = NewMockClient()
		default:
			dispatchErr = fmt.Errorf("unsupported escalation provider: %s", cfg.EscalationProvider)
		}

		if dispatchErr != nil {
			logger.Logger.Error("Failed to initialize dispatch client", zap.Error(dispatchErr))
			return
		}

		logger.Logger.Info("Dispatch client initialized successfully",
			zap.String("provider", cfg.EscalationProvider),
		)
	})

	return dispatchErr
}

func GetClient() Client {
	if dispatchClient == nil {
		panic("dispatch client not initialized, call dispatch.Init() first")
	}
	return dispatchClient
}

func Dispatch(ctx context.Context, req *Request) (*Result, error) {
	return GetClient().Dispatch(ctx, req)
}
