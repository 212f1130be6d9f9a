package model

// TicketExpiryMessage 工单过期延迟消息
type TicketExpiryMessage struct {
	MessageID    string `json:"message_id"` // 消息唯一ID，用于幂等性检查
	TicketID     int64  `json:"ticket_id"`
	StudentID    int64  `json:"student_id"`
	ScheduledAt  string `json:"scheduled_at"`
	DelaySeconds int    `json:"delay_seconds"`
}

// EscalationRetryMessage 升级分发重试消息
type EscalationRetryMessage struct {
	MessageID   string `json:"message_id"` // 消息唯一ID，用于幂等性检查
	TicketID    int64  `json:"ticket_id"`
	StudentID   int64  `json:"student_id"`
	Attempt     int    `json:"attempt"`
	Reminder    bool   `json:"reminder"` // true 表示 6-12h 档位的提醒性重发
	ScheduledAt string `json:"scheduled_at"`
}
