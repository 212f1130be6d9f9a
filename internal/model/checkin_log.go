package model

import "time"

// CheckInLog 每日打卡记录，只增不改
type CheckInLog struct {
	BaseModel
	StudentID        int64     `gorm:"not null;index:idx_check_in_logs_student_submitted" json:"student_id"`
	PublicID         int64     `gorm:"uniqueIndex;not null" json:"public_id"`
	QuizScore        int       `gorm:"not null" json:"quiz_score"`         // 0-10
	FocusMinutes     int       `gorm:"not null" json:"focus_minutes"`      // >= 0
	DistractionCount int       `gorm:"not null" json:"distraction_count"` // >= 0
	Passed           bool      `gorm:"not null" json:"passed"`
	SubmittedAt      time.Time `gorm:"type:timestamptz;not null;index:idx_check_in_logs_student_submitted" json:"submitted_at"`
}

// TableName 指定表名
func (CheckInLog) TableName() string {
	return "check_in_logs"
}
