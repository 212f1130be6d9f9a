package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"StudyGate/internal/model/dto"
	"StudyGate/internal/service"
	"StudyGate/pkg/response"
)

// SubmitCheckIn 提交当日学习打卡
// POST /v1/check-ins
//
// 门禁未通过时响应中带新建工单 ID；存在未关闭工单时返回 409
func SubmitCheckIn(ctx context.Context, c *app.RequestContext) {
	studentID, ok := currentStudentID(ctx, c)
	if !ok {
		return
	}

	var req dto.SubmitCheckInRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.CheckIn().SubmitCheckIn(ctx, studentID, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}
