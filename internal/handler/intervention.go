package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"StudyGate/internal/model/dto"
	"StudyGate/internal/service"
	"StudyGate/pkg/response"
)

// AssignTicket 调度工作流回调，为 pending 工单指派补救任务
// POST /v1/workflow/tickets/:ticket_id/assign
func AssignTicket(ctx context.Context, c *app.RequestContext) {
	ticketID, ok := ticketIDParam(ctx, c)
	if !ok {
		return
	}

	var req dto.AssignTicketRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Intervention().AssignIntervention(ctx, ticketID, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// CompleteTicket 学生完成补救任务
// POST /v1/tickets/:ticket_id/complete
func CompleteTicket(ctx context.Context, c *app.RequestContext) {
	studentID, ok := currentStudentID(ctx, c)
	if !ok {
		return
	}

	ticketID, ok := ticketIDParam(ctx, c)
	if !ok {
		return
	}

	result, err := service.Intervention().CompleteRemedial(ctx, studentID, ticketID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}
