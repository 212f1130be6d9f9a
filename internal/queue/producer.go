package queue

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"StudyGate/internal/model"
	"StudyGate/pkg/logger"
	"StudyGate/pkg/snowflake"
	"StudyGate/storage/mq"
)

// PublishTicketExpiry 发布工单过期延迟消息
// 延迟超过 24 小时的不走延迟队列，交给定时扫描兜底
func PublishTicketExpiry(msg model.TicketExpiryMessage) error {
	if msg.MessageID == "" {
		id, err := snowflake.NextID()
		if err != nil {
			logger.Logger.Error("Failed to generate message ID",
				zap.Int64("ticket_id", msg.TicketID),
				zap.Error(err),
			)
			return fmt.Errorf("failed to generate message ID: %w", err)
		}
		msg.MessageID = fmt.Sprintf("ticket_expiry_%d", id)
	}

	delay := time.Duration(msg.DelaySeconds) * time.Second

	if delay > 24*time.Hour {
		return fmt.Errorf("delay %v exceeds 24 hours limit, use scheduled task instead", delay)
	}

	err := mq.PublishDelayedMessage(
		mq.DelayedExchange,
		mq.TicketExpiryRoutingKey,
		delay,
		msg,
	)

	if err != nil {
		logger.Logger.Error("Failed to publish ticket expiry message",
			zap.String("message_id", msg.MessageID),
			zap.Int64("ticket_id", msg.TicketID),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published ticket expiry message",
		zap.String("message_id", msg.MessageID),
		zap.Int64("ticket_id", msg.TicketID),
		zap.Int64("student_id", msg.StudentID),
		zap.Duration("delay", delay),
	)

	return nil
}

// PublishEscalationRetry 发布升级分发重试消息
func PublishEscalationRetry(msg model.EscalationRetryMessage, delay time.Duration) error {
	if msg.MessageID == "" {
		id, err := snowflake.NextID()
		if err != nil {
			logger.Logger.Error("Failed to generate message ID",
				zap.Int64("ticket_id", msg.TicketID),
				zap.Error(err),
			)
			return fmt.Errorf("failed to generate message ID: %w", err)
		}
		msg.MessageID = fmt.Sprintf("escalation_retry_%d", id)
	}

	err := mq.PublishDelayedMessage(
		mq.DelayedExchange,
		mq.EscalationRetryRoutingKey,
		delay,
		msg,
	)

	if err != nil {
		logger.Logger.Error("Failed to publish escalation retry message",
			zap.String("message_id", msg.MessageID),
			zap.Int64("ticket_id", msg.TicketID),
			zap.Int("attempt", msg.Attempt),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published escalation retry message",
		zap.String("message_id", msg.MessageID),
		zap.Int64("ticket_id", msg.TicketID),
		zap.Int("attempt", msg.Attempt),
		zap.Bool("reminder", msg.Reminder),
		zap.Duration("delay", delay),
	)

	return nil
}
