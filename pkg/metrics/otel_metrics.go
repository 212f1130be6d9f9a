package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics OpenTelemetry 指标集合
type OTelMetrics struct {
	// 打卡与升级相关指标
	CheckInsTotal          metric.Int64Counter
	EscalationTotal        metric.Int64Counter
	EscalationDuration     metric.Float64Histogram
	EscalationRetryTotal   metric.Int64Counter
	TicketsExpiredTotal    metric.Int64Counter
	TicketsAutoAssigned    metric.Int64Counter
	PushDeliveredTotal     metric.Int64Counter
	PushDroppedTotal       metric.Int64Counter
	PushActiveSessions     metric.Int64UpDownCounter
}

var (
	// 全局指标实例
	metrics *OTelMetrics
	// meter 用于创建指标
	meter = otel.Meter("studygate")
)

// InitMetrics 初始化 OpenTelemetry 指标
func InitMetrics() error {
	var err error

	metrics = &OTelMetrics{}

	metrics.CheckInsTotal, err = meter.Int64Counter(
		"checkins_total",
		metric.WithDescription("Total number of daily check-ins submitted"),
		metric.WithUnit("{checkin}"),
	)
	if err != nil {
		return err
	}

	metrics.EscalationTotal, err = meter.Int64Counter(
		"escalation_dispatch_total",
		metric.WithDescription("Total number of escalation dispatch attempts"),
		metric.WithUnit("{dispatch}"),
	)
	if err != nil {
		return err
	}

	metrics.EscalationDuration, err = meter.Float64Histogram(
		"escalation_dispatch_duration_seconds",
		metric.WithDescription("Time spent dispatching escalations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	metrics.EscalationRetryTotal, err = meter.Int64Counter(
		"escalation_retry_total",
		metric.WithDescription("Total number of escalation retry attempts"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return err
	}

	metrics.TicketsExpiredTotal, err = meter.Int64Counter(
		"tickets_expired_total",
		metric.WithDescription("Total number of intervention tickets expired"),
		metric.WithUnit("{ticket}"),
	)
	if err != nil {
		return err
	}

	metrics.TicketsAutoAssigned, err = meter.Int64Counter(
		"tickets_auto_assigned_total",
		metric.WithDescription("Total number of tickets auto-assigned a default task"),
		metric.WithUnit("{ticket}"),
	)
	if err != nil {
		return err
	}

	metrics.PushDeliveredTotal, err = meter.Int64Counter(
		"push_delivered_total",
		metric.WithDescription("Total number of push events delivered to live sessions"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return err
	}

	metrics.PushDroppedTotal, err = meter.Int64Counter(
		"push_dropped_total",
		metric.WithDescription("Total number of push events dropped without a live session"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return err
	}

	metrics.PushActiveSessions, err = meter.Int64UpDownCounter(
		"push_active_sessions",
		metric.WithDescription("Number of currently connected push sessions"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// GetMetrics 获取全局指标实例
func GetMetrics() *OTelMetrics {
	return metrics
}

// RecordCheckIn 记录一次打卡及其判定结果
func (m *OTelMetrics) RecordCheckIn(ctx context.Context, verdict string) {
	m.CheckInsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("verdict", verdict),
	))
}

// RecordEscalation 记录一次升级分发
func (m *OTelMetrics) RecordEscalation(ctx context.Context, provider, status string, duration float64) {
	attrs := []attribute.KeyValue{
		attribute.String("provider", provider),
		attribute.String("status", status),
	}

	m.EscalationTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.EscalationDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("provider", provider),
	))
}

// RecordEscalationRetry 记录升级重试
func (m *OTelMetrics) RecordEscalationRetry(ctx context.Context, reason string) {
	m.EscalationRetryTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("retry_reason", reason),
	))
}

// RecordTicketExpired 记录工单过期，tier 标注命中的处理档位
func (m *OTelMetrics) RecordTicketExpired(ctx context.Context, tier string) {
	m.TicketsExpiredTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tier", tier),
	))
}

// RecordTicketAutoAssigned 记录默认任务自动指派
func (m *OTelMetrics) RecordTicketAutoAssigned(ctx context.Context) {
	m.TicketsAutoAssigned.Add(ctx, 1)
}

// RecordPushDelivered 记录推送事件成功投递
func (m *OTelMetrics) RecordPushDelivered(ctx context.Context, eventType string) {
	m.PushDeliveredTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
	))
}

// RecordPushDropped 记录无在线会话而丢弃的推送事件
func (m *OTelMetrics) RecordPushDropped(ctx context.Context, eventType string) {
	m.PushDroppedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
	))
}

// AddPushSession 会话建立
func (m *OTelMetrics) AddPushSession(ctx context.Context) {
	m.PushActiveSessions.Add(ctx, 1)
}

// RemovePushSession 会话断开
func (m *OTelMetrics) RemovePushSession(ctx context.Context) {
	m.PushActiveSessions.Add(ctx, -1)
}
