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
	"StudyGate/internal/gate"
	"StudyGate/internal/model"
	"StudyGate/internal/model/dto"
	"StudyGate/internal/push"
	"StudyGate/internal/queue"
	pkgerrors "StudyGate/pkg/errors"
	"StudyGate/pkg/logger"
	"StudyGate/pkg/metrics"
	"StudyGate/pkg/snowflake"
	"StudyGate/storage/database"
)

type CheckInService struct{}

var (
	checkInService *CheckInService
	checkInOnce    sync.Once
)

func CheckIn() *CheckInService {
	checkInOnce.Do(func() {
		checkInService = &CheckInService{}
	})
	return checkInService
}

// SubmitCheckIn 提交每日打卡
// 整个判定在学生行锁内完成，同一学生的并发提交串行化：
//   - 有未关闭工单时直接拒绝（门禁锁定）
//   - 通过 -> on_track
//   - 未通过 -> needs_intervention + 新建 pending 工单
//
// 升级分发在事务提交后尽力而为地执行，失败不回滚打卡结果
func (s *CheckInService) SubmitCheckIn(
	ctx context.Context,
	publicID int64,
	req dto.SubmitCheckInRequest,
) (*dto.SubmitCheckInResponse, error) {
	if err := gate.ValidateSubmission(req.QuizScore, req.FocusMinutes, req.DistractionCount); err != nil {
		return nil, err
	}

	passed := gate.Evaluate(req.QuizScore, req.FocusMinutes, req.DistractionCount)
	now := time.Now().UTC()

	var (
		student model.Student
		log     model.CheckInLog
		ticket  *model.InterventionTicket
	)

	err := database.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 锁住学生行，串行化该学生的全部状态流转
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("public_id = ?", publicID).
			First(&student).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.StudentNotFound
			}
			return fmt.Errorf("failed to lock student row: %w", err)
		}

		// 门禁锁定：有未关闭工单时不接受新的打卡
		var openCount int64
		if err := tx.Model(&model.InterventionTicket{}).
			Where("student_id = ? AND status IN ?", student.ID,
				[]model.TicketStatus{model.TicketStatusPending, model.TicketStatusAssigned}).
			Count(&openCount).Error; err != nil {
			return fmt.Errorf("failed to count open tickets: %w", err)
		}
		if err := submitGuard(openCount); err != nil {
			return err
		}

		logPublicID, err := snowflake.NextID()
		if err != nil {
			return fmt.Errorf("failed to generate check-in id: %w", err)
		}

		log = model.CheckInLog{
			StudentID:        student.ID,
			PublicID:         logPublicID,
			QuizScore:        req.QuizScore,
			FocusMinutes:     req.FocusMinutes,
			DistractionCount: req.DistractionCount,
			Passed:           passed,
			SubmittedAt:      now,
		}
		if err := tx.Create(&log).Error; err != nil {
			return fmt.Errorf("failed to create check-in log: %w", err)
		}

		if passed {
			student.Status = model.StudentStatusOnTrack
		} else {
			student.Status = model.StudentStatusNeedsIntervention

			ticketPublicID, err := snowflake.NextID()
			if err != nil {
				return fmt.Errorf("failed to generate ticket id: %w", err)
			}

			expiry := time.Duration(config.Cfg.TicketExpiryHours) * time.Hour
			logID := log.ID
			ticket = &model.InterventionTicket{
				StudentID:    student.ID,
				PublicID:     ticketPublicID,
				CheckInLogID: &logID,
				Status:       model.TicketStatusPending,
				ExpiresAt:    now.Add(expiry),
			}
			if err := tx.Create(ticket).Error; err != nil {
				return fmt.Errorf("failed to create intervention ticket: %w", err)
			}

			event := model.TicketEvent{
				TicketID:  ticket.ID,
				StudentID: student.ID,
				ToStatus:  model.TicketStatusPending,
				Actor:     "system",
				Note:      "daily check-in gate failed",
			}
			if err := tx.Create(&event).Error; err != nil {
				return fmt.Errorf("failed to record ticket event: %w", err)
			}
		}

		if err := tx.Model(&model.Student{}).
			Where("id = ?", student.ID).
			Update("status", student.Status).Error; err != nil {
			return fmt.Errorf("failed to update student status: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// 事务提交后的旁路动作，全部不影响已落库的打卡结果
	s.afterSubmit(ctx, &student, &log, ticket, passed)

	resp := &dto.SubmitCheckInResponse{
		SubmittedAt: log.SubmittedAt,
		CheckInID:   strconv.FormatInt(log.PublicID, 10),
		Passed:      passed,
		Status:      string(student.Status),
	}
	if ticket != nil {
		resp.TicketID = strconv.FormatInt(ticket.PublicID, 10)
	}

	return resp, nil
}

func (s *CheckInService) afterSubmit(
	ctx context.Context,
	student *model.Student,
	log *model.CheckInLog,
	ticket *model.InterventionTicket,
	passed bool,
) {
	if err := cache.InvalidateStudentStatus(ctx, student.PublicID); err != nil {
		logger.Logger.Warn("Failed to invalidate student status cache",
			zap.Int64("public_id", student.PublicID),
			zap.Error(err),
		)
	}

	if m := metrics.GetMetrics(); m != nil {
		verdict := "failed"
		if passed {
			verdict = "passed"
		}
		m.RecordCheckIn(ctx, verdict)
	}

	publicIDStr := strconv.FormatInt(student.PublicID, 10)
	push.GetHub().Publish(ctx, student.PublicID, publicIDStr,
		model.EventTypeStatusChanged,
		model.StatusChangedPayload{Status: string(student.Status)},
	)

	if passed || ticket == nil {
		return
	}

	// 延迟过期消息，定时扫描作为补偿路径兜底
	expiryMsg := model.TicketExpiryMessage{
		TicketID:     ticket.ID,
		StudentID:    student.ID,
		ScheduledAt:  time.Now().Format(time.RFC3339),
		DelaySeconds: config.Cfg.TicketExpiryHours * 3600,
	}
	if err := queue.PublishTicketExpiry(expiryMsg); err != nil {
		logger.Logger.Error("Failed to schedule ticket expiry, sweep will pick it up",
			zap.Int64("ticket_id", ticket.ID),
			zap.Error(err),
		)
	}

	// 尽力而为的升级分发，失败会记录在工单上并进入重试链路
	if err := Intervention().DispatchEscalation(ctx, ticket.ID, false, 0); err != nil {
		logger.Logger.Warn("Escalation dispatch failed after check-in",
			zap.Int64("ticket_id", ticket.ID),
			zap.Error(err),
		)
	}
}
