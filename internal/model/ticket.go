package model

import "time"

// TicketStatus 干预工单状态枚举
type TicketStatus string

const (
	TicketStatusPending   TicketStatus = "pending"   // 已上报，等待导师指派
	TicketStatusAssigned  TicketStatus = "assigned"  // 已指派补救任务
	TicketStatusCompleted TicketStatus = "completed" // 学生完成补救
	TicketStatusExpired   TicketStatus = "expired"   // 超时未处理，被系统强制关闭
)

// InterventionTicket 干预工单模型
// 同一学生最多存在一张 open（pending/assigned）工单，由学生行锁串行化保证
type InterventionTicket struct {
	BaseModel
	StudentID    int64  `gorm:"not null;index:idx_tickets_student_status" json:"student_id"`
	PublicID     int64  `gorm:"uniqueIndex;not null" json:"public_id"`
	CheckInLogID *int64 `gorm:"index" json:"check_in_log_id,omitempty"` // 触发本工单的打卡记录

	Status TicketStatus `gorm:"type:varchar(16);not null;default:'pending';index:idx_tickets_student_status" json:"status"`

	TaskText      string `gorm:"type:text;not null;default:''" json:"task_text"`
	MentorContact string `gorm:"type:varchar(128);not null;default:''" json:"mentor_contact"`

	ExpiresAt        time.Time  `gorm:"type:timestamptz;not null;index" json:"expires_at"`
	AssignedAt       *time.Time `gorm:"type:timestamptz" json:"assigned_at,omitempty"`
	CompletedAt      *time.Time `gorm:"type:timestamptz" json:"completed_at,omitempty"`
	DispatchedAt     *time.Time `gorm:"type:timestamptz" json:"dispatched_at,omitempty"`
	DispatchFailedAt *time.Time `gorm:"type:timestamptz" json:"dispatch_failed_at,omitempty"`

	// 12-24h 档位由系统自动指派默认任务时置位
	AutoAssigned bool `gorm:"not null;default:false" json:"auto_assigned"`
}

// TableName 指定表名
func (InterventionTicket) TableName() string {
	return "intervention_tickets"
}

// IsOpen 工单是否处于未关闭状态
func (t *InterventionTicket) IsOpen() bool {
	return t.Status == TicketStatusPending || t.Status == TicketStatusAssigned
}

// TicketEvent 工单流转审计记录
type TicketEvent struct {
	BaseModel
	TicketID   int64        `gorm:"not null;index" json:"ticket_id"`
	StudentID  int64        `gorm:"not null;index" json:"student_id"`
	FromStatus TicketStatus `gorm:"type:varchar(16);not null" json:"from_status"`
	ToStatus   TicketStatus `gorm:"type:varchar(16);not null" json:"to_status"`
	Actor      string       `gorm:"type:varchar(32);not null;default:''" json:"actor"` // student / workflow / system
	Note       string       `gorm:"type:varchar(255);not null;default:''" json:"note"`
}

// TableName 指定表名
func (TicketEvent) TableName() string {
	return "ticket_events"
}
