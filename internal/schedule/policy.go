package schedule

import (
	"time"

	"StudyGate/internal/model"
)

// ExpiryTier 工单超时处理档位
type ExpiryTier int

const (
	TierNone       ExpiryTier = iota // 未到任何档位
	TierRemind                       // 6-12h：向工作流重发提醒
	TierAutoAssign                   // 12-24h：系统自动指派默认任务
	TierForce                        // 24h+：强制关闭，学生归位并标记人工跟进
)

func (t ExpiryTier) String() string {
	switch t {
	case TierRemind:
		return "remind"
	case TierAutoAssign:
		return "auto_assign"
	case TierForce:
		return "force"
	default:
		return "none"
	}
}

// Classify 根据工单状态和存活时长判定处理档位
// assigned 工单只会被 24h+ 档位强制关闭，提醒和自动指派只作用于 pending
func Classify(status model.TicketStatus, age, remindAfter, autoAssignAfter, forceAfter time.Duration) ExpiryTier {
	switch status {
	case model.TicketStatusPending:
		if age >= forceAfter {
			return TierForce
		}
		if age >= autoAssignAfter {
			return TierAutoAssign
		}
		if age >= remindAfter {
			return TierRemind
		}
		return TierNone

	case model.TicketStatusAssigned:
		if age >= forceAfter {
			return TierForce
		}
		return TierNone

	default:
		// 已关闭的工单不参与任何档位
		return TierNone
	}
}
