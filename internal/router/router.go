package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"StudyGate/config"
	"StudyGate/internal/handler"
	"StudyGate/internal/middleware"
)

func Register(h *server.Hertz) {

	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.CORSMiddleware())
	if config.Cfg.TracingEnabled {
		h.Use(middleware.OpenTelemetryMiddleware())
	}
	v1 := h.Group("/v1")

	// 认证相关路由
	auth := v1.Group("/auth")
	auth.Use(middleware.AuthRateLimitMiddleware()) // 认证接口限流
	{
		auth.POST("/token", handler.IssueToken)
	}

	// 外部系统路由，workflow secret 鉴权
	v1.POST("/students", middleware.WorkflowSecretMiddleware(), handler.ProvisionStudent)

	workflow := v1.Group("/workflow")
	workflow.Use(middleware.WorkflowSecretMiddleware())
	{
		workflow.POST("/tickets/:ticket_id/assign", handler.AssignTicket)
	}

	// 学生自查路由
	me := v1.Group("/me")
	me.Use(middleware.AuthMiddleware())
	me.Use(middleware.GeneralRateLimitMiddleware())
	{
		me.GET("/status", handler.GetMyStatus)
		me.GET("/history", handler.GetMyHistory)
		me.GET("/events", handler.StreamEvents) // SSE 推送流
	}

	// 每日打卡路由
	checkIns := v1.Group("/check-ins")
	checkIns.Use(middleware.AuthMiddleware())
	checkIns.Use(middleware.GeneralRateLimitMiddleware())
	{
		checkIns.POST("", handler.SubmitCheckIn)
	}

	// 干预工单路由
	tickets := v1.Group("/tickets")
	tickets.Use(middleware.AuthMiddleware())
	tickets.Use(middleware.GeneralRateLimitMiddleware())
	{
		tickets.POST("/:ticket_id/complete", handler.CompleteTicket)
	}
}
