package model

// 推送通道上的事件类型
const (
	EventTypeStatusChanged        = "status_changed"
	EventTypeInterventionAssigned = "intervention_assigned"
)

// PushEvent 推送给客户端的事件外层结构
type PushEvent struct {
	EventID    string      `json:"event_id"`
	EventType  string      `json:"event_type"`
	StudentID  string      `json:"student_id"`
	OccurredAt string      `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// StatusChangedPayload 学生状态变更事件载荷
type StatusChangedPayload struct {
	Status           string `json:"status"`
	FollowUpRequired bool   `json:"follow_up_required,omitempty"`
}

// InterventionAssignedPayload 补救任务下发事件载荷
type InterventionAssignedPayload struct {
	TicketID      string `json:"ticket_id"`
	TaskText      string `json:"task_text"`
	MentorContact string `json:"mentor_contact"`
	ExpiresAt     string `json:"expires_at"`
	AutoAssigned  bool   `json:"auto_assigned,omitempty"`
}
