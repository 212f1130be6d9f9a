package dto

import "time"

// ========== CheckIn 相关 DTO ==========

// SubmitCheckInRequest 提交打卡请求
type SubmitCheckInRequest struct {
	QuizScore        int `json:"quiz_score"`
	FocusMinutes     int `json:"focus_minutes"`
	DistractionCount int `json:"distraction_count"`
}

// SubmitCheckInResponse 提交打卡响应
type SubmitCheckInResponse struct {
	SubmittedAt time.Time `json:"submitted_at"`
	CheckInID   string    `json:"check_in_id"`
	Passed      bool      `json:"passed"`
	Status      string    `json:"status"`
	TicketID    string    `json:"ticket_id,omitempty"` // 未通过时新建的工单
}

// CheckInData 单条打卡记录
type CheckInData struct {
	SubmittedAt      time.Time `json:"submitted_at"`
	CheckInID        string    `json:"check_in_id"`
	QuizScore        int       `json:"quiz_score"`
	FocusMinutes     int       `json:"focus_minutes"`
	DistractionCount int       `json:"distraction_count"`
	Passed           bool      `json:"passed"`
}

// HistoryQuery 历史查询参数
type HistoryQuery struct {
	Cursor string `query:"cursor"`
	Limit  int    `query:"limit"`
}

// HistoryPage 历史分页响应，按提交时间倒序
type HistoryPage struct {
	CheckIns   []CheckInData `json:"check_ins"`
	Tickets    []TicketData  `json:"tickets"`
	NextCursor string        `json:"next_cursor,omitempty"`
}
