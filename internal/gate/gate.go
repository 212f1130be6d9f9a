package gate

import (
	"StudyGate/pkg/errors"
)

// 每日打卡的通过门槛，三项同时满足才算通过
const (
	QuizScoreFloor     = 7  // 需要严格大于
	FocusMinutesFloor  = 60 // 需要严格大于
	DistractionCeiling = 3  // 需要严格小于
	QuizScoreMax       = 10
)

// ValidateSubmission 校验打卡输入，越界立即拒绝，不落任何状态
func ValidateSubmission(quizScore, focusMinutes, distractionCount int) error {
	if quizScore < 0 || quizScore > QuizScoreMax {
		return errors.QuizScoreOutOfRange
	}

	if focusMinutes < 0 {
		return errors.FocusMinutesNegative
	}

	if distractionCount < 0 {
		return errors.DistractionsNegative
	}

	return nil
}

// Evaluate 判定当日打卡是否通过，边界值全部算不通过
func Evaluate(quizScore, focusMinutes, distractionCount int) bool {
	return quizScore > QuizScoreFloor &&
		focusMinutes > FocusMinutesFloor &&
		distractionCount < DistractionCeiling
}
