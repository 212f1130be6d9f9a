package errors

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// 认证相关错误。
var (
	Unauthorized           = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized"}
	WorkflowSecretInvalid  = Definition{Code: "WORKFLOW_SECRET_INVALID", Message: "Workflow secret invalid"}
	InvalidStudentID       = Definition{Code: "INVALID_STUDENT_ID", Message: "Invalid student ID format"}
	ExternalRefUnknown     = Definition{Code: "EXTERNAL_REF_UNKNOWN", Message: "External reference unknown"}
	RateLimited            = Definition{Code: "RATE_LIMITED", Message: "Too many requests"}
)

// 打卡提交校验错误，任何状态写入前就被拒绝。
var (
	QuizScoreOutOfRange    = Definition{Code: "QUIZ_SCORE_OUT_OF_RANGE", Message: "Quiz score must be between 0 and 10"}
	FocusMinutesNegative   = Definition{Code: "FOCUS_MINUTES_NEGATIVE", Message: "Focus minutes must be non-negative"}
	DistractionsNegative   = Definition{Code: "DISTRACTIONS_NEGATIVE", Message: "Distraction count must be non-negative"}
)

// 实体查找错误。
var (
	StudentNotFound = Definition{Code: "STUDENT_NOT_FOUND", Message: "Student not found"}
	TicketNotFound  = Definition{Code: "TICKET_NOT_FOUND", Message: "Ticket not found"}
)

// 状态机冲突错误，目标实体不在操作要求的状态。
var (
	StudentAlreadyExists = Definition{Code: "STUDENT_ALREADY_EXISTS", Message: "Student already provisioned"}
	TicketNotPending     = Definition{Code: "TICKET_NOT_PENDING", Message: "Ticket is not pending"}
	TicketNotAssigned    = Definition{Code: "TICKET_NOT_ASSIGNED", Message: "Ticket is not assigned"}
	TicketNotOwned       = Definition{Code: "TICKET_NOT_OWNED", Message: "Ticket does not belong to this student"}
	OpenTicketExists     = Definition{Code: "OPEN_TICKET_EXISTS", Message: "Student already has an open intervention ticket"}
)

// 存储错误，调用方可退避重试。
var (
	StorageUnavailable = Definition{Code: "STORAGE_UNAVAILABLE", Message: "Storage temporarily unavailable"}
)

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	Unauthorized.Code:          Unauthorized,
	WorkflowSecretInvalid.Code: WorkflowSecretInvalid,
	InvalidStudentID.Code:      InvalidStudentID,
	ExternalRefUnknown.Code:    ExternalRefUnknown,
	RateLimited.Code:           RateLimited,
	QuizScoreOutOfRange.Code:   QuizScoreOutOfRange,
	FocusMinutesNegative.Code:  FocusMinutesNegative,
	DistractionsNegative.Code:  DistractionsNegative,
	StudentNotFound.Code:       StudentNotFound,
	TicketNotFound.Code:        TicketNotFound,
	StudentAlreadyExists.Code:  StudentAlreadyExists,
	TicketNotPending.Code:      TicketNotPending,
	TicketNotAssigned.Code:     TicketNotAssigned,
	TicketNotOwned.Code:        TicketNotOwned,
	OpenTicketExists.Code:      OpenTicketExists,
	StorageUnavailable.Code:    StorageUnavailable,
}

// Get 根据错误码返回 Definition，若不存在则返回空 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}
