package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"StudyGate/internal/cache"
	"StudyGate/internal/model"
	"StudyGate/pkg/errors"
	"StudyGate/pkg/logger"
	"StudyGate/storage/mq"
)

// InterventionHandler worker 启动时注入的干预服务能力，
// 避免 queue 包直接依赖 service 包造成环
type InterventionHandler interface {
	HandleExpiry(ctx context.Context, ticketID int64) error
	DispatchEscalation(ctx context.Context, ticketID int64, reminder bool, attempt int) error
}

var interventionHandler InterventionHandler

// SetInterventionHandler 设置干预服务（在 worker 启动时调用）
func SetInterventionHandler(h InterventionHandler) {
	interventionHandler = h
}

// StartTicketExpiryConsumer 启动工单过期消费者
func StartTicketExpiryConsumer(ctx context.Context) error {
	handler := func(body []byte) error {
		var msg model.TicketExpiryMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal ticket expiry message: %w", err)
		}

		// 幂等性检查：SETNX 原子标记，重复投递直接跳过
		processed, err := cache.TryMarkMessageProcessing(ctx, msg.MessageID, 24*time.Hour)
		if err != nil {
			logger.Logger.Warn("Failed to check message processed status",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
			// 检查失败时继续处理，工单流转本身有状态守卫兜底
		} else if !processed {
			return &errors.SkipMessageError{Reason: fmt.Sprintf("Message %s already processed", msg.MessageID)}
		}

		logger.Logger.Info("Processing ticket expiry message",
			zap.String("message_id", msg.MessageID),
			zap.Int64("ticket_id", msg.TicketID),
		)

		if interventionHandler == nil {
			return fmt.Errorf("intervention handler not set")
		}

		if err := interventionHandler.HandleExpiry(ctx, msg.TicketID); err != nil {
			// 处理失败，取消标记允许重试
			if unmarkErr := cache.UnmarkMessageProcessing(ctx, msg.MessageID); unmarkErr != nil {
				logger.Logger.Warn("Failed to unmark message processing",
					zap.String("message_id", msg.MessageID),
					zap.Error(unmarkErr),
				)
			}
			return fmt.Errorf("failed to handle ticket expiry: %w", err)
		}

		if err := cache.MarkMessageProcessed(ctx, msg.MessageID, 48*time.Hour); err != nil {
			logger.Logger.Warn("Failed to mark message as processed",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		}

		return nil
	}

	return mq.Consume(ctx, mq.ConsumeOptions{
		Queue:         mq.TicketExpiryQueue,
		ConsumerTag:   "ticket_expiry_consumer",
		PrefetchCount: 10,
		Handler:       handler,
	})
}

// StartEscalationRetryConsumer 启动升级分发重试消费者
func StartEscalationRetryConsumer(ctx context.Context) error {
	handler := func(body []byte) error {
		var msg model.EscalationRetryMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal escalation retry message: %w", err)
		}

		processed, err := cache.TryMarkMessageProcessing(ctx, msg.MessageID, 24*time.Hour)
		if err != nil {
			logger.Logger.Warn("Failed to check message processed status",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		} else if !processed {
			return &errors.SkipMessageError{Reason: fmt.Sprintf("Message %s already processed", msg.MessageID)}
		}

		logger.Logger.Info("Processing escalation retry message",
			zap.String("message_id", msg.MessageID),
			zap.Int64("ticket_id", msg.TicketID),
			zap.Int("attempt", msg.Attempt),
		)

		if interventionHandler == nil {
			return fmt.Errorf("intervention handler not set")
		}

		// 分发失败时 service 内部会按 attempt 继续排队，这里不再回队
		if err := interventionHandler.DispatchEscalation(ctx, msg.TicketID, msg.Reminder, msg.Attempt); err != nil {
			logger.Logger.Warn("Escalation retry attempt failed",
				zap.String("message_id", msg.MessageID),
				zap.Int64("ticket_id", msg.TicketID),
				zap.Int("attempt", msg.Attempt),
				zap.Error(err),
			)
		}

		if err := cache.MarkMessageProcessed(ctx, msg.MessageID, 48*time.Hour); err != nil {
			logger.Logger.Warn("Failed to mark message as processed",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		}

		return nil
	}

	return mq.Consume(ctx, mq.ConsumeOptions{
		Queue:         mq.EscalationRetryQueue,
		ConsumerTag:   "escalation_retry_consumer",
		PrefetchCount: 10,
		Handler:       handler,
	})
}

// StartAllConsumers 启动所有消费者并阻塞，直到 ctx 取消且全部退出
func StartAllConsumers(ctx context.Context) {
	var wg sync.WaitGroup

	consumers := []struct {
		name     string
		consumer func(context.Context) error
	}{
		{"ticket_expiry", StartTicketExpiryConsumer},
		{"escalation_retry", StartEscalationRetryConsumer},
	}

	for _, c := range consumers {
		wg.Add(1)
		go func(name string, consumer func(context.Context) error) {
			defer wg.Done()

			logger.Logger.Info("Starting consumer",
				zap.String("consumer_name", name),
			)

			if err := consumer(ctx); err != nil {
				logger.Logger.Error("Consumer exited with error",
					zap.String("consumer_name", name),
					zap.Error(err),
				)
			}
		}(c.name, c.consumer)
	}

	wg.Wait()
}
