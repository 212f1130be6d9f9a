package dto

// ========== Student 相关 DTO ==========

// ProvisionStudentRequest 开通学生请求（由外部系统调用）
type ProvisionStudentRequest struct {
	ExternalRef string `json:"external_ref"`
	Name        string `json:"name"`
	Contact     string `json:"contact"`
}

// ProvisionStudentResponse 开通学生响应
type ProvisionStudentResponse struct {
	StudentID   string `json:"student_id"`
	ExternalRef string `json:"external_ref"`
	Status      string `json:"status"`
}

// StudentStatusData 学生当前状态
type StudentStatusData struct {
	StudentID        string      `json:"student_id"`
	Status           string      `json:"status"`
	FollowUpRequired bool        `json:"follow_up_required"`
	OpenTicket       *TicketData `json:"open_ticket,omitempty"`
}
