package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"StudyGate/config"
	"StudyGate/internal/cache"
	"StudyGate/internal/model"
	"StudyGate/internal/model/dto"
	pkgerrors "StudyGate/pkg/errors"
	"StudyGate/pkg/logger"
	"StudyGate/pkg/snowflake"
	"StudyGate/storage/database"
)

type StudentService struct{}

var (
	studentService *StudentService
	studentOnce    sync.Once
)

func Student() *StudentService {
	studentOnce.Do(func() {
		studentService = &StudentService{}
	})
	return studentService
}

// ProvisionStudent 开通学生，由外部系统带 workflow secret 调用
// external_ref 重复时返回冲突，开通是一次性的
func (s *StudentService) ProvisionStudent(
	ctx context.Context,
	req dto.ProvisionStudentRequest,
) (*dto.ProvisionStudentResponse, error) {
	if req.ExternalRef == "" {
		return nil, pkgerrors.ExternalRefUnknown
	}

	db := database.DB().WithContext(ctx)

	var existing model.Student
	err := db.Where("external_ref = ?", req.ExternalRef).First(&existing).Error
	if err == nil {
		return nil, pkgerrors.StudentAlreadyExists
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to query student: %w", err)
	}

	publicID, err := snowflake.NextID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate student id: %w", err)
	}

	student := model.Student{
		PublicID:    publicID,
		ExternalRef: req.ExternalRef,
		Name:        req.Name,
		Contact:     req.Contact,
		Status:      model.StudentStatusActive,
	}

	if err := db.Create(&student).Error; err != nil {
		// 并发开通同一个 external_ref 时由唯一索引兜底
		if err == gorm.ErrDuplicatedKey {
			return nil, pkgerrors.StudentAlreadyExists
		}
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	logger.Logger.Info("Student provisioned",
		zap.Int64("public_id", student.PublicID),
		zap.String("external_ref", student.ExternalRef),
	)

	return &dto.ProvisionStudentResponse{
		StudentID:   strconv.FormatInt(student.PublicID, 10),
		ExternalRef: student.ExternalRef,
		Status:      string(student.Status),
	}, nil
}

// GetByPublicID 按对外 ID 查学生
func (s *StudentService) GetByPublicID(ctx context.Context, publicID int64) (*model.Student, error) {
	db := database.DB().WithContext(ctx)

	var student model.Student
	if err := db.Where("public_id = ?", publicID).First(&student).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.StudentNotFound
		}
		return nil, fmt.Errorf("failed to query student: %w", err)
	}

	return &student, nil
}

// GetByExternalRef 按外部标识查学生，签发令牌时使用
func (s *StudentService) GetByExternalRef(ctx context.Context, externalRef string) (*model.Student, error) {
	db := database.DB().WithContext(ctx)

	var student model.Student
	if err := db.Where("external_ref = ?", externalRef).First(&student).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.StudentNotFound
		}
		return nil, fmt.Errorf("failed to query student: %w", err)
	}

	return &student, nil
}

// GetStatus 查询学生当前状态和未关闭工单，走缓存热路径
func (s *StudentService) GetStatus(ctx context.Context, publicID int64) (*dto.StudentStatusData, error) {
	cached, err := cache.GetStudentStatus(ctx, publicID)
	if err != nil {
		logger.Logger.Warn("Student status cache read failed, falling back to database",
			zap.Int64("public_id", publicID),
			zap.Error(err),
		)
	}

	if cached != nil {
		data := &dto.StudentStatusData{
			StudentID:        strconv.FormatInt(publicID, 10),
			Status:           cached.Status,
			FollowUpRequired: cached.FollowUpRequired,
		}

		if cached.OpenTicketID != 0 {
			ticket, err := s.getTicketByID(ctx, cached.OpenTicketID)
			if err == nil && ticket.IsOpen() {
				data.OpenTicket = ticketToData(ticket)
				return data, nil
			}
			// 缓存里的工单已经关闭，走数据库重建
		} else {
			return data, nil
		}
	}

	student, err := s.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	data := &dto.StudentStatusData{
		StudentID:        strconv.FormatInt(student.PublicID, 10),
		Status:           string(student.Status),
		FollowUpRequired: student.FollowUpRequired,
	}

	statusCache := &cache.StudentStatusCache{
		Status:           string(student.Status),
		FollowUpRequired: student.FollowUpRequired,
		UpdatedAt:        time.Now().Unix(),
	}

	db := database.DB().WithContext(ctx)
	var ticket model.InterventionTicket
	err = db.Where("student_id = ? AND status IN ?", student.ID,
		[]model.TicketStatus{model.TicketStatusPending, model.TicketStatusAssigned}).
		First(&ticket).Error
	if err == nil {
		data.OpenTicket = ticketToData(&ticket)
		statusCache.OpenTicketID = ticket.ID
	} else if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to query open ticket: %w", err)
	}

	if err := cache.SetStudentStatus(ctx, publicID, statusCache); err != nil {
		logger.Logger.Warn("Failed to cache student status", zap.Error(err))
	}

	return data, nil
}

// GetHistory 按提交时间倒序翻页返回打卡记录，并附带最近的工单
func (s *StudentService) GetHistory(
	ctx context.Context,
	publicID int64,
	cursorID int64,
	limit int,
) (*dto.HistoryPage, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > config.Cfg.HistoryMaxLimit {
		limit = config.Cfg.HistoryMaxLimit
	}

	student, err := s.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	db := database.DB().WithContext(ctx)

	q := db.Where("student_id = ?", student.ID)
	if cursorID > 0 {
		q = q.Where("id < ?", cursorID)
	}

	var logs []model.CheckInLog
	if err := q.Order("id DESC").Limit(limit + 1).Find(&logs).Error; err != nil {
		logger.Logger.Error("Failed to list check-in logs",
			zap.Int64("public_id", publicID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to list check-in logs: %w", err)
	}

	var nextCursor int64
	if len(logs) > limit {
		nextCursor = logs[limit-1].ID // 多取一条判断是否还有下一页
		logs = logs[:limit]
	}

	page := &dto.HistoryPage{
		CheckIns: make([]dto.CheckInData, 0, len(logs)),
		Tickets:  make([]dto.TicketData, 0),
	}

	for _, log := range logs {
		page.CheckIns = append(page.CheckIns, dto.CheckInData{
			CheckInID:        strconv.FormatInt(log.PublicID, 10),
			QuizScore:        log.QuizScore,
			FocusMinutes:     log.FocusMinutes,
			DistractionCount: log.DistractionCount,
			Passed:           log.Passed,
			SubmittedAt:      log.SubmittedAt,
		})
	}

	if nextCursor > 0 {
		page.NextCursor = strconv.FormatInt(nextCursor, 10)
	}

	// 工单量远小于打卡量，直接取最近一批
	var tickets []model.InterventionTicket
	if err := db.Where("student_id = ?", student.ID).
		Order("id DESC").Limit(20).Find(&tickets).Error; err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}

	for i := range tickets {
		page.Tickets = append(page.Tickets, *ticketToData(&tickets[i]))
	}

	return page, nil
}

func (s *StudentService) getTicketByID(ctx context.Context, ticketID int64) (*model.InterventionTicket, error) {
	db := database.DB().WithContext(ctx)

	var ticket model.InterventionTicket
	if err := db.First(&ticket, ticketID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.TicketNotFound
		}
		return nil, fmt.Errorf("failed to query ticket: %w", err)
	}

	return &ticket, nil
}

// ticketToData 工单模型转 DTO
func ticketToData(t *model.InterventionTicket) *dto.TicketData {
	return &dto.TicketData{
		TicketID:      strconv.FormatInt(t.PublicID, 10),
		Status:        string(t.Status),
		TaskText:      t.TaskText,
		MentorContact: t.MentorContact,
		ExpiresAt:     t.ExpiresAt,
		AssignedAt:    t.AssignedAt,
		CompletedAt:   t.CompletedAt,
		AutoAssigned:  t.AutoAssigned,
		CreatedAt:     t.CreatedAt,
	}
}
