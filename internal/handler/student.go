package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"StudyGate/internal/model/dto"
	"StudyGate/internal/service"
	"StudyGate/pkg/response"
)

// ProvisionStudent 开通学生，由外部系统带 workflow secret 调用
// POST /v1/students
func ProvisionStudent(ctx context.Context, c *app.RequestContext) {
	var req dto.ProvisionStudentRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Student().ProvisionStudent(ctx, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// GetMyStatus 查询当前学生状态, 客户端每次加载时调用
// GET /v1/me/status
func GetMyStatus(ctx context.Context, c *app.RequestContext) {
	studentID, ok := currentStudentID(ctx, c)
	if !ok {
		return
	}

	result, err := service.Student().GetStatus(ctx, studentID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// GetMyHistory 分页查询历史打卡与工单记录
// GET /v1/me/history?cursor=&limit=
func GetMyHistory(ctx context.Context, c *app.RequestContext) {
	studentID, ok := currentStudentID(ctx, c)
	if !ok {
		return
	}

	var query dto.HistoryQuery
	if err := c.Bind(&query); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	var cursorID int64
	if query.Cursor != "" {
		id, err := strconv.ParseInt(query.Cursor, 10, 64)
		if err != nil {
			response.BindError(ctx, c, err)
			return
		}
		cursorID = id
	}

	result, err := service.Student().GetHistory(ctx, studentID, cursorID, query.Limit)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}
