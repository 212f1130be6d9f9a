package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"StudyGate/config"
	"StudyGate/internal/cache"
	"StudyGate/internal/model"
	"StudyGate/internal/model/dto"
	"StudyGate/internal/push"
	"StudyGate/internal/queue"
	"StudyGate/pkg/dispatch"
	pkgerrors "StudyGate/pkg/errors"
	"StudyGate/pkg/logger"
	"StudyGate/pkg/metrics"
	"StudyGate/storage/database"
)

const (
	// 升级分发最大重试次数，超过后等待 12-24h 档位的自动指派兜底
	maxEscalationAttempts = 5

	escalationRetryBaseDelay = 5 * time.Minute
	escalationRetryMaxDelay  = time.Hour

	// 连续未通过统计的回看窗口
	failedStreakWindow = 30
)

type InterventionService struct{}

var (
	interventionService *InterventionService
	interventionOnce    sync.Once
)

func Intervention() *InterventionService {
	interventionOnce.Do(func() {
		interventionService = &InterventionService{}
	})
	return interventionService
}

// AssignIntervention 调度工作流回调，为 pending 工单指派补救任务
// 重复回调会命中 TicketNotPending 冲突，调用方按已指派处理
func (s *InterventionService) AssignIntervention(
	ctx context.Context,
	ticketPublicID int64,
	req dto.AssignTicketRequest,
) (*dto.TicketData, error) {
	if req.TaskText == "" {
		req.TaskText = config.Cfg.DefaultTaskText
	}
	if req.MentorContact == "" {
		req.MentorContact = config.Cfg.DefaultMentorContact
	}

	var (
		ticket  model.InterventionTicket
		student model.Student
	)

	err := database.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, st, err := lockTicketByPublicID(tx, ticketPublicID)
		if err != nil {
			return err
		}
		ticket, student = *t, *st

		if err := assignGuard(&ticket, &student, req.StudentID); err != nil {
			return err
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{
			"status":         model.TicketStatusAssigned,
			"task_text":      req.TaskText,
			"mentor_contact": req.MentorContact,
			"assigned_at":    now,
		}
		if err := tx.Model(&model.InterventionTicket{}).
			Where("id = ?", ticket.ID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to assign ticket: %w", err)
		}

		if err := tx.Model(&model.Student{}).
			Where("id = ?", student.ID).
			Update("status", model.StudentStatusRemedial).Error; err != nil {
			return fmt.Errorf("failed to update student status: %w", err)
		}

		event := model.TicketEvent{
			TicketID:   ticket.ID,
			StudentID:  student.ID,
			FromStatus: model.TicketStatusPending,
			ToStatus:   model.TicketStatusAssigned,
			Actor:      "workflow",
		}
		if err := tx.Create(&event).Error; err != nil {
			return fmt.Errorf("failed to record ticket event: %w", err)
		}

		ticket.Status = model.TicketStatusAssigned
		ticket.TaskText = req.TaskText
		ticket.MentorContact = req.MentorContact
		ticket.AssignedAt = &now
		student.Status = model.StudentStatusRemedial
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, &student, &ticket)

	push.GetHub().Publish(ctx, student.PublicID, strconv.FormatInt(student.PublicID, 10),
		model.EventTypeInterventionAssigned,
		model.InterventionAssignedPayload{
			TicketID:      strconv.FormatInt(ticket.PublicID, 10),
			TaskText:      ticket.TaskText,
			MentorContact: ticket.MentorContact,
			ExpiresAt:     ticket.ExpiresAt.Format(time.RFC3339),
		},
	)

	logger.Logger.Info("Intervention assigned",
		zap.Int64("ticket_id", ticket.ID),
		zap.Int64("student_id", student.PublicID),
	)

	return ticketToData(&ticket), nil
}

// CompleteRemedial 学生完成补救任务，工单关闭，学生回到 active
func (s *InterventionService) CompleteRemedial(
	ctx context.Context,
	studentPublicID int64,
	ticketPublicID int64,
) (*dto.CompleteTicketResponse, error) {
	var (
		ticket  model.InterventionTicket
		student model.Student
	)

	err := database.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, st, err := lockTicketByPublicID(tx, ticketPublicID)
		if err != nil {
			return err
		}
		ticket, student = *t, *st

		if err := completeGuard(&ticket, &student, studentPublicID); err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := tx.Model(&model.InterventionTicket{}).
			Where("id = ?", ticket.ID).
			Updates(map[string]interface{}{
				"status":       model.TicketStatusCompleted,
				"completed_at": now,
			}).Error; err != nil {
			return fmt.Errorf("failed to complete ticket: %w", err)
		}

		if err := tx.Model(&model.Student{}).
			Where("id = ?", student.ID).
			Update("status", model.StudentStatusActive).Error; err != nil {
			return fmt.Errorf("failed to update student status: %w", err)
		}

		event := model.TicketEvent{
			TicketID:   ticket.ID,
			StudentID:  student.ID,
			FromStatus: model.TicketStatusAssigned,
			ToStatus:   model.TicketStatusCompleted,
			Actor:      "student",
		}
		if err := tx.Create(&event).Error; err != nil {
			return fmt.Errorf("failed to record ticket event: %w", err)
		}

		ticket.Status = model.TicketStatusCompleted
		ticket.CompletedAt = &now
		student.Status = model.StudentStatusActive
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, &student, &ticket)

	push.GetHub().Publish(ctx, student.PublicID, strconv.FormatInt(student.PublicID, 10),
		model.EventTypeStatusChanged,
		model.StatusChangedPayload{Status: string(model.StudentStatusActive)},
	)

	logger.Logger.Info("Remedial task completed",
		zap.Int64("ticket_id", ticket.ID),
		zap.Int64("student_id", student.PublicID),
	)

	return &dto.CompleteTicketResponse{
		TicketID:    strconv.FormatInt(ticket.PublicID, 10),
		Status:      string(ticket.Status),
		CompletedAt: *ticket.CompletedAt,
		Student:     string(student.Status),
	}, nil
}

// DispatchEscalation 把工单推送给外部导师调度工作流
// 失败记录在工单上并发布延迟重试消息，从不影响已落库的状态
func (s *InterventionService) DispatchEscalation(
	ctx context.Context,
	ticketID int64,
	reminder bool,
	attempt int,
) error {
	db := database.DB().WithContext(ctx)

	var ticket model.InterventionTicket
	if err := db.First(&ticket, ticketID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.TicketNotFound
		}
		return fmt.Errorf("failed to query ticket: %w", err)
	}

	// 只有 pending 工单需要触达工作流
	if ticket.Status != model.TicketStatusPending {
		return nil
	}

	var student model.Student
	if err := db.First(&student, ticket.StudentID).Error; err != nil {
		return fmt.Errorf("failed to query student: %w", err)
	}

	req := &dispatch.Request{
		TicketID:    strconv.FormatInt(ticket.PublicID, 10),
		StudentID:   strconv.FormatInt(student.PublicID, 10),
		ExternalRef: student.ExternalRef,
		Reason:      "daily check-in gate failed",
		Reminder:    reminder,
	}

	// 连续未通过的次数给调度方做严重度参考，查不到就按 0 发
	var recent []model.CheckInLog
	if err := db.Where("student_id = ?", student.ID).
		Order("id DESC").Limit(failedStreakWindow).
		Find(&recent).Error; err == nil {
		req.FailedStreak = countFailedStreak(recent)
	}

	if ticket.CheckInLogID != nil {
		var log model.CheckInLog
		if err := db.First(&log, *ticket.CheckInLogID).Error; err == nil {
			req.LastQuizScore = log.QuizScore
			req.LastFocusMins = log.FocusMinutes
			req.LastDistracted = log.DistractionCount
		}
	}

	start := time.Now()
	_, err := dispatch.Dispatch(ctx, req)
	elapsed := time.Since(start).Seconds()

	now := time.Now().UTC()
	if err != nil {
		if dbErr := db.Model(&model.InterventionTicket{}).
			Where("id = ?", ticket.ID).
			Update("dispatch_failed_at", now).Error; dbErr != nil {
			logger.Logger.Error("Failed to record dispatch failure", zap.Error(dbErr))
		}

		if m := metrics.GetMetrics(); m != nil {
			m.RecordEscalation(ctx, config.Cfg.EscalationProvider, "failed", elapsed)
		}

		s.scheduleEscalationRetry(&ticket, attempt)

		return fmt.Errorf("escalation dispatch failed: %w", err)
	}

	if dbErr := db.Model(&model.InterventionTicket{}).
		Where("id = ?", ticket.ID).
		Update("dispatched_at", now).Error; dbErr != nil {
		logger.Logger.Error("Failed to record dispatch success", zap.Error(dbErr))
	}

	if m := metrics.GetMetrics(); m != nil {
		m.RecordEscalation(ctx, config.Cfg.EscalationProvider, "success", elapsed)
	}

	return nil
}

func (s *InterventionService) scheduleEscalationRetry(ticket *model.InterventionTicket, attempt int) {
	next := attempt + 1
	if next > maxEscalationAttempts {
		logger.Logger.Warn("Escalation retries exhausted, auto-assign tier will take over",
			zap.Int64("ticket_id", ticket.ID),
			zap.Int("attempts", attempt),
		)
		return
	}

	// 指数退避，封顶一小时
	delay := escalationRetryBaseDelay << (next - 1)
	if delay > escalationRetryMaxDelay {
		delay = escalationRetryMaxDelay
	}

	msg := model.EscalationRetryMessage{
		TicketID:    ticket.ID,
		StudentID:   ticket.StudentID,
		Attempt:     next,
		ScheduledAt: time.Now().Format(time.RFC3339),
	}
	if err := queue.PublishEscalationRetry(msg, delay); err != nil {
		logger.Logger.Error("Failed to schedule escalation retry",
			zap.Int64("ticket_id", ticket.ID),
			zap.Error(err),
		)
	}
}

// RemindPending 6-12h 档位：工单仍未被指派，向工作流重发一次提醒
// 每张工单只提醒一次，用 Redis 标记去重
func (s *InterventionService) RemindPending(ctx context.Context, ticketID int64) error {
	marked, err := cache.TryMarkMessageProcessing(ctx,
		fmt.Sprintf("ticket_reminder_%d", ticketID), 48*time.Hour)
	if err != nil {
		return err
	}
	if !marked {
		return nil // 已提醒过
	}

	if m := metrics.GetMetrics(); m != nil {
		m.RecordEscalationRetry(ctx, "reminder")
	}

	return s.DispatchEscalation(ctx, ticketID, true, maxEscalationAttempts)
}

// AutoAssign 12-24h 档位：系统自动指派默认补救任务，过期时间顺延到创建后 24h
func (s *InterventionService) AutoAssign(ctx context.Context, ticketID int64) error {
	var (
		ticket  model.InterventionTicket
		student model.Student
	)

	err := database.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, st, err := lockTicketByID(tx, ticketID)
		if err != nil {
			return err
		}
		ticket, student = *t, *st

		if err := assignGuard(&ticket, &student, ""); err != nil {
			return err
		}

		now := time.Now().UTC()
		forceAt := ticket.CreatedAt.Add(time.Duration(config.Cfg.TicketForceHours) * time.Hour)

		if err := tx.Model(&model.InterventionTicket{}).
			Where("id = ?", ticket.ID).
			Updates(map[string]interface{}{
				"status":         model.TicketStatusAssigned,
				"task_text":      config.Cfg.DefaultTaskText,
				"mentor_contact": config.Cfg.DefaultMentorContact,
				"assigned_at":    now,
				"auto_assigned":  true,
				"expires_at":     forceAt,
			}).Error; err != nil {
			return fmt.Errorf("failed to auto-assign ticket: %w", err)
		}

		if err := tx.Model(&model.Student{}).
			Where("id = ?", student.ID).
			Update("status", model.StudentStatusRemedial).Error; err != nil {
			return fmt.Errorf("failed to update student status: %w", err)
		}

		event := model.TicketEvent{
			TicketID:   ticket.ID,
			StudentID:  student.ID,
			FromStatus: model.TicketStatusPending,
			ToStatus:   model.TicketStatusAssigned,
			Actor:      "system",
			Note:       "auto-assigned default task",
		}
		if err := tx.Create(&event).Error; err != nil {
			return fmt.Errorf("failed to record ticket event: %w", err)
		}

		ticket.Status = model.TicketStatusAssigned
		ticket.TaskText = config.Cfg.DefaultTaskText
		ticket.MentorContact = config.Cfg.DefaultMentorContact
		ticket.AssignedAt = &now
		ticket.AutoAssigned = true
		ticket.ExpiresAt = forceAt
		student.Status = model.StudentStatusRemedial
		return nil
	})
	if err != nil {
		return err
	}

	s.afterTransition(ctx, &student, &ticket)

	if m := metrics.GetMetrics(); m != nil {
		m.RecordTicketAutoAssigned(ctx)
	}

	push.GetHub().Publish(ctx, student.PublicID, strconv.FormatInt(student.PublicID, 10),
		model.EventTypeInterventionAssigned,
		model.InterventionAssignedPayload{
			TicketID:      strconv.FormatInt(ticket.PublicID, 10),
			TaskText:      ticket.TaskText,
			MentorContact: ticket.MentorContact,
			ExpiresAt:     ticket.ExpiresAt.Format(time.RFC3339),
			AutoAssigned:  true,
		},
	)

	logger.Logger.Info("Ticket auto-assigned",
		zap.Int64("ticket_id", ticket.ID),
		zap.Int64("student_id", student.PublicID),
	)

	return nil
}

// ForceResolve 24h+ 档位：工单强制关闭，学生回到 active 并标记需要人工跟进
func (s *InterventionService) ForceResolve(ctx context.Context, ticketID int64) error {
	var (
		ticket   model.InterventionTicket
		student  model.Student
		resolved bool
	)

	err := database.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, st, err := lockTicketByID(tx, ticketID)
		if err != nil {
			return err
		}
		ticket, student = *t, *st

		if !ticket.IsOpen() {
			return nil // 已经关闭，幂等返回
		}

		fromStatus := ticket.Status

		if err := tx.Model(&model.InterventionTicket{}).
			Where("id = ?", ticket.ID).
			Update("status", model.TicketStatusExpired).Error; err != nil {
			return fmt.Errorf("failed to expire ticket: %w", err)
		}

		if err := tx.Model(&model.Student{}).
			Where("id = ?", student.ID).
			Updates(map[string]interface{}{
				"status":             model.StudentStatusActive,
				"follow_up_required": true,
			}).Error; err != nil {
			return fmt.Errorf("failed to update student status: %w", err)
		}

		event := model.TicketEvent{
			TicketID:   ticket.ID,
			StudentID:  student.ID,
			FromStatus: fromStatus,
			ToStatus:   model.TicketStatusExpired,
			Actor:      "system",
			Note:       "force-resolved after expiry window",
		}
		if err := tx.Create(&event).Error; err != nil {
			return fmt.Errorf("failed to record ticket event: %w", err)
		}

		ticket.Status = model.TicketStatusExpired
		student.Status = model.StudentStatusActive
		student.FollowUpRequired = true
		resolved = true
		return nil
	})
	if err != nil {
		return err
	}

	if !resolved {
		return nil // 幂等路径，什么都没发生
	}

	s.afterTransition(ctx, &student, &ticket)

	if m := metrics.GetMetrics(); m != nil {
		m.RecordTicketExpired(ctx, "force")
	}

	push.GetHub().Publish(ctx, student.PublicID, strconv.FormatInt(student.PublicID, 10),
		model.EventTypeStatusChanged,
		model.StatusChangedPayload{
			Status:           string(model.StudentStatusActive),
			FollowUpRequired: true,
		},
	)

	logger.Logger.Warn("Ticket force-resolved, follow-up required",
		zap.Int64("ticket_id", ticket.ID),
		zap.Int64("student_id", student.PublicID),
	)

	return nil
}

// HandleExpiry 工单过期消息的处理入口
// 按工单存活时长落到对应档位，消息早到或状态已变更时安全退出
func (s *InterventionService) HandleExpiry(ctx context.Context, ticketID int64) error {
	db := database.DB().WithContext(ctx)

	var ticket model.InterventionTicket
	if err := db.First(&ticket, ticketID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.TicketNotFound
		}
		return fmt.Errorf("failed to query ticket: %w", err)
	}

	if !ticket.IsOpen() {
		return nil
	}

	age := time.Since(ticket.CreatedAt)
	remindAfter := time.Duration(config.Cfg.TicketReminderHours) * time.Hour
	autoAssignAfter := time.Duration(config.Cfg.TicketAutoAssignHours) * time.Hour
	forceAfter := time.Duration(config.Cfg.TicketForceHours) * time.Hour

	switch {
	case age >= forceAfter:
		return s.ForceResolve(ctx, ticket.ID)
	case ticket.Status == model.TicketStatusPending && age >= autoAssignAfter:
		return s.AutoAssign(ctx, ticket.ID)
	case ticket.Status == model.TicketStatusPending && age >= remindAfter:
		return s.RemindPending(ctx, ticket.ID)
	}

	return nil
}

func (s *InterventionService) afterTransition(ctx context.Context, student *model.Student, ticket *model.InterventionTicket) {
	if err := cache.InvalidateStudentStatus(ctx, student.PublicID); err != nil {
		logger.Logger.Warn("Failed to invalidate student status cache",
			zap.Int64("public_id", student.PublicID),
			zap.Error(err),
		)
	}
}

// lockTicketByPublicID 按对外 ID 定位工单并锁定所属学生行
func lockTicketByPublicID(tx *gorm.DB, ticketPublicID int64) (*model.InterventionTicket, *model.Student, error) {
	var ticket model.InterventionTicket
	if err := tx.Where("public_id = ?", ticketPublicID).First(&ticket).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, pkgerrors.TicketNotFound
		}
		return nil, nil, fmt.Errorf("failed to query ticket: %w", err)
	}

	return lockStudentAndReload(tx, &ticket)
}

// lockTicketByID 按内部 ID 定位工单并锁定所属学生行
func lockTicketByID(tx *gorm.DB, ticketID int64) (*model.InterventionTicket, *model.Student, error) {
	var ticket model.InterventionTicket
	if err := tx.First(&ticket, ticketID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, pkgerrors.TicketNotFound
		}
		return nil, nil, fmt.Errorf("failed to query ticket: %w", err)
	}

	return lockStudentAndReload(tx, &ticket)
}

// lockStudentAndReload 先锁学生行再重读工单，保证拿到锁内的最新状态
func lockStudentAndReload(tx *gorm.DB, ticket *model.InterventionTicket) (*model.InterventionTicket, *model.Student, error) {
	var student model.Student
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&student, ticket.StudentID).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to lock student row: %w", err)
	}

	if err := tx.First(ticket, ticket.ID).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to reload ticket: %w", err)
	}

	return ticket, &student, nil
}
