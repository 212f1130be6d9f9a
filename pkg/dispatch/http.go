package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"StudyGate/config"
	"StudyGate/pkg/logger"

	"go.uber.org/zap"
)

// HTTPClient 通过 HTTP POST 通知外部工作流的客户端
type HTTPClient struct {
	endpoint string
	secret   string
	client   *http.Client
}

func NewHTTPClient() (*HTTPClient, error) {
	cfg := config.Cfg

	if cfg.EscalationEndpoint == "" {
		return nil, fmt.Errorf("escalation endpoint is not configured")
	}

	timeout := time.Duration(cfg.EscalationTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &HTTPClient{
		endpoint: cfg.EscalationEndpoint,
		secret:   cfg.WorkflowSecret,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func (c *HTTPClient) Dispatch(ctx context.Context, req *Request) (*Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal dispatch request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build dispatch request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Workflow-Secret", c.secret)

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call escalation endpoint: %w", err)
	}
	defer resp.Body.Close()

	// 响应体上限 64KB，防御异常下游
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, fmt.Errorf("failed to read escalation response: %w", err)
	}

	result := &Result{
		StatusCode: resp.StatusCode,
		Provider:   "http",
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, result); err != nil {
			logger.Logger.Warn("Escalation response is not valid JSON",
				zap.String("ticket_id", req.TicketID),
				zap.Int("status_code", resp.StatusCode),
			)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return result, fmt.Errorf("escalation endpoint returned status %d", resp.StatusCode)
	}

	result.Accepted = true

	logger.Logger.Info("Escalation dispatched",
		zap.String("ticket_id", req.TicketID),
		zap.String("student_id", req.StudentID),
		zap.String("request_id", result.RequestID),
		zap.Duration("elapsed", time.Since(start)),
	)

	return result, nil
}
