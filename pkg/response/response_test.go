package response

import (
	"context"
	"database/sql/driver"
	"fmt"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"StudyGate/pkg/errors"
	"StudyGate/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Logger = zap.NewNop()
	os.Exit(m.Run())
}

func TestErrorToHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"rate limited", errors.RateLimited, http.StatusTooManyRequests},
		{"unauthorized", errors.Unauthorized, http.StatusUnauthorized},
		{"workflow secret", errors.WorkflowSecretInvalid, http.StatusUnauthorized},
		{"quiz out of range", errors.QuizScoreOutOfRange, http.StatusBadRequest},
		{"invalid student id", errors.InvalidStudentID, http.StatusBadRequest},
		{"student not found", errors.StudentNotFound, http.StatusNotFound},
		{"ticket not found", errors.TicketNotFound, http.StatusNotFound},
		{"already exists", errors.StudentAlreadyExists, http.StatusConflict},
		{"open ticket exists", errors.OpenTicketExists, http.StatusConflict},
		{"ticket not pending", errors.TicketNotPending, http.StatusConflict},
		{"storage unavailable", errors.StorageUnavailable, http.StatusServiceUnavailable},
		{"wrapped gorm invalid db", fmt.Errorf("failed to lock student row: %w", gorm.ErrInvalidDB), http.StatusServiceUnavailable},
		{"wrapped bad conn", fmt.Errorf("failed to count open tickets: %w", driver.ErrBadConn), http.StatusServiceUnavailable},
		{"wrapped deadline", fmt.Errorf("failed to query ticket: %w", context.DeadlineExceeded), http.StatusServiceUnavailable},
		{"plain error", fmt.Errorf("boom"), http.StatusInternalServerError},
		{"unknown code", errors.Definition{Code: "SOMETHING_ELSE"}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorToHTTPStatus(tt.err))
		})
	}
}

func TestErrorBodyStorageClass(t *testing.T) {
	status, detail := errorBody(fmt.Errorf("failed to lock student row: %w", gorm.ErrInvalidDB))

	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, errors.StorageUnavailable.Code, detail.Code)
	assert.Equal(t, errors.StorageUnavailable.Message, detail.Message)
}

func TestErrorBodyDoesNotLeakInternals(t *testing.T) {
	status, detail := errorBody(fmt.Errorf("pq: syntax error at or near %q", "SELECT"))

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "INTERNAL_ERROR", detail.Code)
	assert.Equal(t, "Internal server error", detail.Message)
	assert.NotContains(t, detail.Message, "syntax")
}
