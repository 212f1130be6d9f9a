package repository

import (
	"fmt"
	"os"

	"gorm.io/gen"

	"StudyGate/internal/model"
	"StudyGate/pkg/errors"
	"StudyGate/storage/database"
)

// ========== Student 相关查询接口 ==========

// StudentQuerier 学生查询接口
type StudentQuerier interface {
	// GetByPublicID 根据 PublicID 查询学生（最常用，API 中 studentID 是 public_id）
	//
	// SELECT * FROM @@table WHERE public_id = @publicID LIMIT 1
	GetByPublicID(publicID int64) (*gen.T, error)

	// GetByExternalRef 根据外部系统引用查询学生
	//
	// SELECT * FROM @@table WHERE external_ref = @externalRef LIMIT 1
	GetByExternalRef(externalRef string) (*gen.T, error)

	// ListByStatus 根据状态查询学生列表（用于管理后台或定时任务）
	//
	// SELECT * FROM @@table
	// WHERE status = @status
	// {{if limit > 0}}
	// LIMIT @limit
	// {{end}}
	// {{if offset > 0}}
	// OFFSET @offset
	// {{end}}
	ListByStatus(status string, limit, offset int) ([]*gen.T, error)

	// CountByStatus 统计各状态的学生数量
	//
	// SELECT status, COUNT(*) as count
	// FROM @@table
	// GROUP BY status
	CountByStatus() ([]gen.M, error)

	// ListFollowUpRequired 查询需要人工跟进的学生
	//
	// SELECT * FROM @@table
	// WHERE follow_up_required = true
	// ORDER BY updated_at DESC
	ListFollowUpRequired() ([]*gen.T, error)
}

// ========== CheckInLog 相关查询接口 ==========

// CheckInLogQuerier 打卡记录查询接口
type CheckInLogQuerier interface {
	// GetByPublicID 根据 PublicID 查询打卡记录
	//
	// SELECT * FROM @@table WHERE public_id = @publicID LIMIT 1
	GetByPublicID(publicID int64) (*gen.T, error)

	// ListByStudentID 按学生查询打卡记录，id 倒序翻页
	//
	// SELECT * FROM @@table
	// WHERE student_id = @studentID
	// {{if cursorID > 0}}
	// AND id < @cursorID
	// {{end}}
	// ORDER BY id DESC
	// LIMIT @limit
	ListByStudentID(studentID int64, cursorID int64, limit int) ([]*gen.T, error)

	// CountByStudentIDAndPassed 统计学生通过/未通过的打卡数量
	//
	// SELECT passed, COUNT(*) as count
	// FROM @@table
	// WHERE student_id = @studentID
	// GROUP BY passed
	CountByStudentIDAndPassed(studentID int64) ([]gen.M, error)

	// CountFailedStreak 统计学生最近一次通过之后的连续未通过次数
	//
	// SELECT COUNT(*) FROM @@table
	// WHERE student_id = @studentID
	//   AND id > COALESCE((
	//     SELECT MAX(id) FROM @@table
	//     WHERE student_id = @studentID AND passed = true
	//   ), 0)
	CountFailedStreak(studentID int64) (int, error)
}

// ========== InterventionTicket 相关查询接口 ==========

// InterventionTicketQuerier 干预工单查询接口
type InterventionTicketQuerier interface {
	// GetByPublicID 根据 PublicID 查询工单
	//
	// SELECT * FROM @@table WHERE public_id = @publicID LIMIT 1
	GetByPublicID(publicID int64) (*gen.T, error)

	// GetOpenByStudentID 查询学生当前未关闭的工单
	//
	// SELECT * FROM @@table
	// WHERE student_id = @studentID AND status IN ('pending', 'assigned')
	// ORDER BY id DESC
	// LIMIT 1
	GetOpenByStudentID(studentID int64) (*gen.T, error)

	// ListByStudentID 按学生查询工单，最新优先
	//
	// SELECT * FROM @@table
	// WHERE student_id = @studentID
	// ORDER BY id DESC
	// LIMIT @limit
	ListByStudentID(studentID int64, limit int) ([]*gen.T, error)

	// ListOpenOlderThan 查询创建时间早于给定时刻的未关闭工单（用于补偿扫描）
	//
	// SELECT * FROM @@table
	// WHERE status IN ('pending', 'assigned')
	//   AND created_at <= @before
	// ORDER BY created_at ASC
	// LIMIT @limit
	ListOpenOlderThan(before string, limit int) ([]*gen.T, error)

	// CountByStatus 统计各状态的工单数量
	//
	// SELECT status, COUNT(*) as count
	// FROM @@table
	// GROUP BY status
	CountByStatus() ([]gen.M, error)
}

// ========== TicketEvent 相关查询接口 ==========

// TicketEventQuerier 工单事件查询接口
type TicketEventQuerier interface {
	// ListByTicketID 按工单查询事件，时间正序
	//
	// SELECT * FROM @@table
	// WHERE ticket_id = @ticketID
	// ORDER BY id ASC
	ListByTicketID(ticketID int64) ([]*gen.T, error)

	// ListByStudentID 按学生查询事件，最新优先
	//
	// SELECT * FROM @@table
	// WHERE student_id = @studentID
	// ORDER BY id DESC
	// LIMIT @limit
	ListByStudentID(studentID int64, limit int) ([]*gen.T, error)
}

// Generate 生成类型安全的查询代码
func Generate() error {
	if err := database.Init(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	db := database.DB()
	if db == nil {
		return errors.ErrDatabaseConnectionNil
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:           "./internal/repository/query", // 生成代码的输出路径
		ModelPkgPath:      "StudyGate/internal/model",
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface | gen.WithoutContext,
		FieldNullable:     true, // 字段可以为 null
		FieldCoverable:    false,
		FieldSignable:     false,
		FieldWithIndexTag: false,
		FieldWithTypeTag:  true,
	})

	g.UseDB(db)

	// 注册现有的 model，GORM Gen 会使用这些 model 而不是生成新的
	g.ApplyBasic(
		&model.Student{},
		&model.CheckInLog{},
		&model.InterventionTicket{},
		&model.TicketEvent{},
	)

	// 直接应用接口，GORM Gen 会根据接口中的类型自动匹配已注册的 model
	g.ApplyInterface(func(StudentQuerier) {}, &model.Student{})
	g.ApplyInterface(func(CheckInLogQuerier) {}, &model.CheckInLog{})
	g.ApplyInterface(func(InterventionTicketQuerier) {}, &model.InterventionTicket{})
	g.ApplyInterface(func(TicketEventQuerier) {}, &model.TicketEvent{})

	g.Execute()

	return nil
}

func RunGenerate() {
	if err := Generate(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate code: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Code generation completed successfully!")
}
