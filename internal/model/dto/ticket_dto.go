package dto

import "time"

// ========== Ticket 相关 DTO ==========

// AssignTicketRequest 调度工作流回调指派补救任务
// student_id 可选，携带时校验与工单归属一致，不一致按冲突拒绝
type AssignTicketRequest struct {
	StudentID     string `json:"student_id"`
	TaskText      string `json:"task_text"`
	MentorContact string `json:"mentor_contact"`
}

// TicketData 工单信息
type TicketData struct {
	TicketID      string     `json:"ticket_id"`
	Status        string     `json:"status"`
	TaskText      string     `json:"task_text,omitempty"`
	MentorContact string     `json:"mentor_contact,omitempty"`
	ExpiresAt     time.Time  `json:"expires_at"`
	AssignedAt    *time.Time `json:"assigned_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	AutoAssigned  bool       `json:"auto_assigned,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// CompleteTicketResponse 完成补救任务响应
type CompleteTicketResponse struct {
	TicketID    string    `json:"ticket_id"`
	Status      string    `json:"status"`
	CompletedAt time.Time `json:"completed_at"`
	Student     string    `json:"student_status"`
}
