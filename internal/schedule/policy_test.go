package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"StudyGate/internal/model"
)

func TestClassify(t *testing.T) {
	const (
		remindAfter     = 6 * time.Hour
		autoAssignAfter = 12 * time.Hour
		forceAfter      = 24 * time.Hour
	)

	tests := []struct {
		name   string
		status model.TicketStatus
		age    time.Duration
		want   ExpiryTier
	}{
		{"fresh pending ticket", model.TicketStatusPending, time.Hour, TierNone},
		{"pending just under remind threshold", model.TicketStatusPending, 6*time.Hour - time.Minute, TierNone},
		{"pending at remind threshold", model.TicketStatusPending, 6 * time.Hour, TierRemind},
		{"pending mid remind window", model.TicketStatusPending, 9 * time.Hour, TierRemind},
		{"pending at auto-assign threshold", model.TicketStatusPending, 12 * time.Hour, TierAutoAssign},
		{"pending mid auto-assign window", model.TicketStatusPending, 18 * time.Hour, TierAutoAssign},
		{"pending at force threshold", model.TicketStatusPending, 24 * time.Hour, TierForce},
		{"pending far past force threshold", model.TicketStatusPending, 72 * time.Hour, TierForce},

		// assigned 工单不提醒不自动指派，只会被强制关闭
		{"assigned inside window", model.TicketStatusAssigned, 9 * time.Hour, TierNone},
		{"assigned past auto-assign threshold", model.TicketStatusAssigned, 18 * time.Hour, TierNone},
		{"assigned at force threshold", model.TicketStatusAssigned, 24 * time.Hour, TierForce},

		// 已关闭工单不参与
		{"completed ticket ignored", model.TicketStatusCompleted, 72 * time.Hour, TierNone},
		{"expired ticket ignored", model.TicketStatusExpired, 72 * time.Hour, TierNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.status, tt.age, remindAfter, autoAssignAfter, forceAfter)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpiryTierString(t *testing.T) {
	assert.Equal(t, "none", TierNone.String())
	assert.Equal(t, "remind", TierRemind.String())
	assert.Equal(t, "auto_assign", TierAutoAssign.String())
	assert.Equal(t, "force", TierForce.String())
}
