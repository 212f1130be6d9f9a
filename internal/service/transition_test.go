package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"StudyGate/internal/model"
	pkgerrors "StudyGate/pkg/errors"
)

func pendingTicket() *model.InterventionTicket {
	return &model.InterventionTicket{
		PublicID: 7001,
		Status:   model.TicketStatusPending,
	}
}

func testStudent() *model.Student {
	return &model.Student{PublicID: 2002}
}

func TestSubmitGuardLockedStudent(t *testing.T) {
	assert.NoError(t, submitGuard(0))

	// 有未关闭工单时门禁锁定，重复提交被拒
	err := submitGuard(1)
	assert.Equal(t, pkgerrors.OpenTicketExists, err)
}

func TestAssignGuardPendingOnly(t *testing.T) {
	ticket := pendingTicket()
	student := testStudent()

	// 第一次指派通过
	assert.NoError(t, assignGuard(ticket, student, ""))

	// 指派后重复回调命中冲突
	ticket.Status = model.TicketStatusAssigned
	assert.Equal(t, pkgerrors.TicketNotPending, assignGuard(ticket, student, ""))

	ticket.Status = model.TicketStatusCompleted
	assert.Equal(t, pkgerrors.TicketNotPending, assignGuard(ticket, student, ""))

	ticket.Status = model.TicketStatusExpired
	assert.Equal(t, pkgerrors.TicketNotPending, assignGuard(ticket, student, ""))
}

func TestAssignGuardStudentOwnership(t *testing.T) {
	ticket := pendingTicket()
	student := testStudent()

	// 回调声明的 student_id 与工单归属一致
	assert.NoError(t, assignGuard(ticket, student, "2002"))

	// 归属不一致按冲突拒绝
	assert.Equal(t, pkgerrors.TicketNotOwned, assignGuard(ticket, student, "9999"))

	// 非法格式在归属校验前就被拒绝
	assert.Equal(t, pkgerrors.InvalidStudentID, assignGuard(ticket, student, "not-a-number"))
}

func TestCompleteGuard(t *testing.T) {
	ticket := pendingTicket()
	student := testStudent()

	// pending 工单不能直接完成
	assert.Equal(t, pkgerrors.TicketNotAssigned, completeGuard(ticket, student, 2002))

	ticket.Status = model.TicketStatusAssigned
	assert.NoError(t, completeGuard(ticket, student, 2002))

	// 非归属学生不能完成别人的工单
	assert.Equal(t, pkgerrors.TicketNotOwned, completeGuard(ticket, student, 9999))

	ticket.Status = model.TicketStatusCompleted
	assert.Equal(t, pkgerrors.TicketNotAssigned, completeGuard(ticket, student, 2002))
}

func TestCountFailedStreak(t *testing.T) {
	failed := model.CheckInLog{Passed: false}
	passed := model.CheckInLog{Passed: true}

	assert.Equal(t, 0, countFailedStreak(nil))
	assert.Equal(t, 0, countFailedStreak([]model.CheckInLog{passed, failed}))
	assert.Equal(t, 3, countFailedStreak([]model.CheckInLog{failed, failed, failed}))

	// 倒序日志里遇到第一条通过就截断
	assert.Equal(t, 2, countFailedStreak([]model.CheckInLog{failed, failed, passed, failed}))
}
