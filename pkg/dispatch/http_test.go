package dispatch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"StudyGate/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Logger = zap.NewNop()
	os.Exit(m.Run())
}

func newTestClient(endpoint string) *HTTPClient {
	return &HTTPClient{
		endpoint: endpoint,
		secret:   "test-secret",
		client:   &http.Client{Timeout: 2 * time.Second},
	}
}

func TestHTTPClientDispatchAccepted(t *testing.T) {
	var gotSecret, gotContentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.Header.Get("X-Workflow-Secret")
		gotContentType = r.Header.Get("Content-Type")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"request_id":"req-42","accepted":true,"message":"queued"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	result, err := c.Dispatch(context.Background(), &Request{
		TicketID:  "1001",
		StudentID: "2002",
		Reason:    "gate_failed",
	})

	require.NoError(t, err)
	assert.Equal(t, "test-secret", gotSecret)
	assert.Equal(t, "application/json", gotContentType)
	assert.True(t, result.Accepted)
	assert.Equal(t, "req-42", result.RequestID)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, "http", result.Provider)
}

func TestHTTPClientDispatchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	result, err := c.Dispatch(context.Background(), &Request{TicketID: "1001"})

	require.Error(t, err)
	require.NotNil(t, result)
	assert.False(t, result.Accepted)
	assert.Equal(t, http.StatusInternalServerError, result.StatusCode)
}

func TestHTTPClientDispatchNonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("accepted"))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	result, err := c.Dispatch(context.Background(), &Request{TicketID: "1001"})

	// 下游返回非 JSON 时只要状态码成功就算受理
	require.NoError(t, err)
	assert.True(t, result.Accepted)
	assert.Empty(t, result.RequestID)
}

func TestHTTPClientDispatchContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	c := newTestClient(srv.URL)
	_, err := c.Dispatch(ctx, &Request{TicketID: "1001"})

	require.Error(t, err)
}

func TestMockClientDispatch(t *testing.T) {
	m := NewMockClient()

	result, err := m.Dispatch(context.Background(), &Request{TicketID: "1001"})
	require.NoError(t, err)
	assert.True(t, result.Accepted)
	assert.Equal(t, "mock", result.Provider)

	m.FailNext = true
	_, err = m.Dispatch(context.Background(), &Request{TicketID: "1002"})
	require.Error(t, err)

	// FailNext 自动复位
	_, err = m.Dispatch(context.Background(), &Request{TicketID: "1003"})
	require.NoError(t, err)

	assert.Equal(t, 3, m.CallCount())
	assert.Equal(t, "1002", m.Calls[1].TicketID)
}
