package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"StudyGate/internal/middleware"
	"StudyGate/pkg/errors"
	"StudyGate/pkg/response"
)

// currentStudentID 从认证上下文取学生 public_id 并转为 int64
// 失败时已写入错误响应，调用方直接 return
func currentStudentID(ctx context.Context, c *app.RequestContext) (int64, bool) {
	sid, ok := middleware.GetStudentID(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthorized)
		return 0, false
	}

	id, err := strconv.ParseInt(sid, 10, 64)
	if err != nil {
		response.Error(ctx, c, errors.InvalidStudentID)
		return 0, false
	}

	return id, true
}

// ticketIDParam 解析路径参数 :ticket_id
func ticketIDParam(ctx context.Context, c *app.RequestContext) (int64, bool) {
	raw := c.Param("ticket_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		response.Error(ctx, c, errors.TicketNotFound)
		return 0, false
	}
	return id, true
}
