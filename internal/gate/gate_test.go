package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"StudyGate/pkg/errors"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name             string
		quizScore        int
		focusMinutes     int
		distractionCount int
		want             bool
	}{
		{"all well above thresholds", 10, 120, 0, true},
		{"minimal passing values", 8, 61, 2, true},

		// 边界值全部判不通过
		{"quiz score exactly at floor", 7, 120, 0, false},
		{"focus minutes exactly at floor", 10, 60, 0, false},
		{"distractions exactly at ceiling", 10, 120, 3, false},

		{"quiz score below floor", 5, 120, 0, false},
		{"focus minutes below floor", 10, 30, 0, false},
		{"distractions above ceiling", 10, 120, 5, false},
		{"everything failing", 0, 0, 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.quizScore, tt.focusMinutes, tt.distractionCount)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateSubmission(t *testing.T) {
	tests := []struct {
		name             string
		quizScore        int
		focusMinutes     int
		distractionCount int
		wantErr          error
	}{
		{"valid submission", 8, 61, 2, nil},
		{"valid zeros", 0, 0, 0, nil},
		{"quiz score at max", 10, 90, 1, nil},
		{"quiz score negative", -1, 90, 1, errors.QuizScoreOutOfRange},
		{"quiz score above max", 11, 90, 1, errors.QuizScoreOutOfRange},
		{"focus minutes negative", 8, -5, 1, errors.FocusMinutesNegative},
		{"distraction count negative", 8, 90, -1, errors.DistractionsNegative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSubmission(tt.quizScore, tt.focusMinutes, tt.distractionCount)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, tt.wantErr, err)
			}
		})
	}
}
