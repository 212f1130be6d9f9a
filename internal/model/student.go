package model

// StudentStatus 学生状态枚举
type StudentStatus string

const (
	StudentStatusActive            StudentStatus = "active"             // 初始状态 / 补救完成后回归
	StudentStatusOnTrack           StudentStatus = "on_track"           // 当日打卡通过
	StudentStatusNeedsIntervention StudentStatus = "needs_intervention" // 打卡未通过，等待导师指派
	StudentStatusRemedial          StudentStatus = "remedial"           // 补救任务进行中
)

// Student 学生模型
type Student struct {
	BaseModel
	PublicID    int64  `gorm:"uniqueIndex;not null" json:"public_id"`
	ExternalRef string `gorm:"uniqueIndex;type:varchar(128);not null" json:"external_ref"` // 外部系统的学生标识，开通时写入
	Name        string `gorm:"type:varchar(64);not null;default:''" json:"name"`
	Contact     string `gorm:"type:varchar(128);not null;default:''" json:"contact"` // 导师可见的联系方式

	Status StudentStatus `gorm:"type:varchar(24);not null;default:'active';index:idx_students_status" json:"status"`

	// 工单 24 小时仍未处理被强制归位时置位，提示人工跟进
	FollowUpRequired bool `gorm:"not null;default:false" json:"follow_up_required"`
}

// TableName 指定表名
func (Student) TableName() string {
	return "students"
}

// IsLocked 学生是否处于打卡门禁锁定状态（未通过或补救中）
func (s *Student) IsLocked() bool {
	return s.Status == StudentStatusNeedsIntervention || s.Status == StudentStatusRemedial
}
