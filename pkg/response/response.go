package response

import (
	"context"
	"database/sql"
	"database/sql/driver"
	stderrors "errors"
	"net"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"StudyGate/pkg/errors"
	"StudyGate/pkg/logger"
)

// ErrorResponse 统一的错误响应格式
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Details map[string]interface{} `json:"details,omitempty"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
}

// SuccessResponse 统一的成功响应格式
type SuccessResponse struct {
	Data interface{}            `json:"data"`
	Meta map[string]interface{} `json:"meta,omitempty"`
}

func errorToHTTPStatus(err error) int {
	def, ok := definitionOf(err)
	if !ok {
		return http.StatusInternalServerError
	}

	// 根据错误码映射 HTTP 状态码
	// 校验类 400 / 未找到 404 / 状态冲突 409 / 存储抖动 503
	switch def.Code {
	case "RATE_LIMITED":
		return http.StatusTooManyRequests // 429
	case "UNAUTHORIZED", "WORKFLOW_SECRET_INVALID":
		return http.StatusUnauthorized // 401
	case "QUIZ_SCORE_OUT_OF_RANGE", "FOCUS_MINUTES_NEGATIVE",
		"DISTRACTIONS_NEGATIVE", "INVALID_STUDENT_ID",
		"EXTERNAL_REF_UNKNOWN", "INVALID_REQUEST":
		return http.StatusBadRequest // 400
	case "STUDENT_NOT_FOUND", "TICKET_NOT_FOUND":
		return http.StatusNotFound // 404
	case "STUDENT_ALREADY_EXISTS", "TICKET_NOT_PENDING",
		"TICKET_NOT_ASSIGNED", "TICKET_NOT_OWNED", "OPEN_TICKET_EXISTS":
		return http.StatusConflict // 409
	case "STORAGE_UNAVAILABLE":
		return http.StatusServiceUnavailable // 503，调用方退避重试
	default:
		return http.StatusInternalServerError // 500
	}
}

// definitionOf 业务错误直接取 Definition
// 其余错误先按存储类归入 STORAGE_UNAVAILABLE，调用方可退避重试
func definitionOf(err error) (errors.Definition, bool) {
	if def, ok := err.(errors.Definition); ok {
		return def, true
	}
	if isStorageError(err) {
		return errors.StorageUnavailable, true
	}
	return errors.Definition{}, false
}

// isStorageError 识别连接层面的瞬时存储故障，SQL 本身的错误不算
func isStorageError(err error) bool {
	switch {
	case stderrors.Is(err, gorm.ErrInvalidDB),
		stderrors.Is(err, gorm.ErrInvalidTransaction),
		stderrors.Is(err, driver.ErrBadConn),
		stderrors.Is(err, sql.ErrConnDone),
		stderrors.Is(err, sql.ErrTxDone),
		stderrors.Is(err, context.DeadlineExceeded):
		return true
	}

	var netErr net.Error
	return stderrors.As(err, &netErr)
}

// errorBody 把 error 归一成响应体
// 无法归类的错误只记日志，不把内部细节透给客户端
func errorBody(err error) (int, ErrorDetail) {
	if def, ok := definitionOf(err); ok {
		return errorToHTTPStatus(def), ErrorDetail{
			Code:    def.Code,
			Message: def.Message,
		}
	}

	logger.Logger.Error("Unhandled internal error", zap.Error(err))
	return http.StatusInternalServerError, ErrorDetail{
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
	}
}

// Error 返回错误响应
func Error(ctx context.Context, c *app.RequestContext, err error) {
	statusCode, detail := errorBody(err)
	c.JSON(statusCode, ErrorResponse{Error: detail})
}

func ErrorWithDetails(ctx context.Context, c *app.RequestContext, err error, details map[string]interface{}) {
	statusCode, detail := errorBody(err)
	detail.Details = details
	c.JSON(statusCode, ErrorResponse{Error: detail})
}

func Success(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
	})
}

func SuccessWithMeta(ctx context.Context, c *app.RequestContext, data interface{}, meta map[string]interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
		Meta: meta,
	})
}

func BindError(ctx context.Context, c *app.RequestContext, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		},
	})
}

// NoContent 返回 204 No Content（用于 DELETE 等操作）
func NoContent(ctx context.Context, c *app.RequestContext) {
	c.Status(http.StatusNoContent)
}
