package schedule

// 工单超时扫描：延迟消息的补偿路径，消息丢失或延迟超限时兜底

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"StudyGate/config"
	"StudyGate/internal/cache"
	"StudyGate/internal/model"
	"StudyGate/internal/service"
	"StudyGate/pkg/logger"
	"StudyGate/pkg/metrics"
	"StudyGate/storage/database"
)

const (
	sweepLockKey = "ticket_expiry_sweep"
	sweepLockTTL = 4 * time.Minute

	sweepBatchSize = 200
)

var (
	sweeperOnce sync.Once
	sweeperInst *ExpirySweeper
)

type ExpirySweeper struct {
	logger  *zap.Logger
	running bool
	mu      sync.Mutex
}

func GetSweeper() *ExpirySweeper {
	sweeperOnce.Do(func() {
		sweeperInst = &ExpirySweeper{
			logger: logger.Logger,
		}
	})
	return sweeperInst
}

// Interval 扫描周期，开发环境压短便于观察
func (s *ExpirySweeper) Interval() time.Duration {
	if config.Cfg.IsDevelopment() {
		return time.Minute
	}
	return 5 * time.Minute
}

// Run 周期性执行扫描直到 ctx 结束
func (s *ExpirySweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval())
	defer ticker.Stop()

	s.logger.Info("Expiry sweeper started",
		zap.Duration("interval", s.Interval()),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Expiry sweeper stopped")
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				s.logger.Error("Expiry sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep 执行一轮扫描，多实例部署时通过分布式锁互斥
func (s *ExpirySweeper) Sweep(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Info("Sweep already running, skipping")
		return nil
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	locked, err := cache.TryLock(ctx, sweepLockKey, sweepLockTTL)
	if err != nil {
		return err
	}
	if !locked {
		s.logger.Info("Another instance holds the sweep lock, skipping")
		return nil
	}
	defer func() {
		if err := cache.Unlock(ctx, sweepLockKey); err != nil {
			s.logger.Warn("Failed to release sweep lock", zap.Error(err))
		}
	}()

	startTime := time.Now()
	remindAfter := time.Duration(config.Cfg.TicketReminderHours) * time.Hour
	autoAssignAfter := time.Duration(config.Cfg.TicketAutoAssignHours) * time.Hour
	forceAfter := time.Duration(config.Cfg.TicketForceHours) * time.Hour

	// 只扫已进入提醒窗口的未关闭工单
	cutoff := startTime.Add(-remindAfter)

	db := database.DB().WithContext(ctx)
	var tickets []model.InterventionTicket
	if err := db.Where("status IN ? AND created_at <= ?",
		[]model.TicketStatus{model.TicketStatusPending, model.TicketStatusAssigned},
		cutoff).
		Order("created_at ASC").
		Limit(sweepBatchSize).
		Find(&tickets).Error; err != nil {
		return err
	}

	if len(tickets) == 0 {
		return nil
	}

	s.logger.Info("Sweeping overdue tickets",
		zap.Int("ticket_count", len(tickets)),
	)

	var handled, failed int
	for i := range tickets {
		ticket := &tickets[i]
		tier := Classify(ticket.Status, startTime.Sub(ticket.CreatedAt),
			remindAfter, autoAssignAfter, forceAfter)

		if tier == TierNone {
			continue
		}

		if err := s.applyTier(ctx, ticket, tier); err != nil {
			failed++
			s.logger.Error("Failed to apply expiry tier",
				zap.Int64("ticket_id", ticket.ID),
				zap.String("tier", tier.String()),
				zap.Error(err),
			)
			continue
		}
		handled++

		if tier != TierForce {
			// force 档位在 service 里单独计数
			if m := metrics.GetMetrics(); m != nil && tier == TierAutoAssign {
				m.RecordTicketExpired(ctx, tier.String())
			}
		}
	}

	s.logger.Info("Expiry sweep completed",
		zap.Duration("duration", time.Since(startTime)),
		zap.Int("handled", handled),
		zap.Int("failed", failed),
	)

	return nil
}

func (s *ExpirySweeper) applyTier(ctx context.Context, ticket *model.InterventionTicket, tier ExpiryTier) error {
	svc := service.Intervention()

	switch tier {
	case TierRemind:
		return svc.RemindPending(ctx, ticket.ID)
	case TierAutoAssign:
		return svc.AutoAssign(ctx, ticket.ID)
	case TierForce:
		return svc.ForceResolve(ctx, ticket.ID)
	}
	return nil
}
