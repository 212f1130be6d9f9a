package service

import (
	"strconv"

	"StudyGate/internal/model"
	pkgerrors "StudyGate/pkg/errors"
)

// 状态机的前置守卫，全部在学生行锁内调用

// submitGuard 有未关闭工单时学生被门禁锁定，拒绝新的打卡
func submitGuard(openTickets int64) error {
	if openTickets > 0 {
		return pkgerrors.OpenTicketExists
	}
	return nil
}

// assignGuard 只有 pending 工单可以被指派
// 回调带 student_id 时先校验工单归属，防止工作流拿错单子
func assignGuard(ticket *model.InterventionTicket, student *model.Student, claimedStudentID string) error {
	if claimedStudentID != "" {
		sid, err := strconv.ParseInt(claimedStudentID, 10, 64)
		if err != nil {
			return pkgerrors.InvalidStudentID
		}
		if sid != student.PublicID {
			return pkgerrors.TicketNotOwned
		}
	}

	if ticket.Status != model.TicketStatusPending {
		return pkgerrors.TicketNotPending
	}
	return nil
}

// completeGuard 只有归属学生才能完成 assigned 状态的工单
func completeGuard(ticket *model.InterventionTicket, student *model.Student, studentPublicID int64) error {
	if student.PublicID != studentPublicID {
		return pkgerrors.TicketNotOwned
	}
	if ticket.Status != model.TicketStatusAssigned {
		return pkgerrors.TicketNotAssigned
	}
	return nil
}

// countFailedStreak 统计最近连续未通过的打卡次数
// logs 按提交时间倒序，遇到第一条通过记录即停
func countFailedStreak(logs []model.CheckInLog) int {
	streak := 0
	for _, l := range logs {
		if l.Passed {
			break
		}
		streak++
	}
	return streak
}
