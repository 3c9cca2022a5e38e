package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "worklane"

// Metrics holds all Worklane metric instruments and implements the
// metrics.Recorder port.
type Metrics struct {
	TasksCreated       metric.Int64Counter
	TasksCompleted     metric.Int64Counter
	RollForwards       metric.Int64Counter
	RollForwardsFailed metric.Int64Counter
	AuthzDenials       metric.Int64Counter
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.TasksCreated, err = meter.Int64Counter("worklane.tasks.created",
		metric.WithDescription("Number of tasks created"))
	if err != nil {
		return nil, err
	}

	m.TasksCompleted, err = meter.Int64Counter("worklane.tasks.completed",
		metric.WithDescription("Number of tasks completed"))
	if err != nil {
		return nil, err
	}

	m.RollForwards, err = meter.Int64Counter("worklane.recurrence.rollforwards",
		metric.WithDescription("Number of recurring occurrences rolled forward"))
	if err != nil {
		return nil, err
	}

	m.RollForwardsFailed, err = meter.Int64Counter("worklane.recurrence.rollforwards_failed",
		metric.WithDescription("Number of roll-forward attempts that failed"))
	if err != nil {
		return nil, err
	}

	m.AuthzDenials, err = meter.Int64Counter("worklane.authz.denied",
		metric.WithDescription("Number of denied task mutations"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// TaskCreated records one task creation.
func (m *Metrics) TaskCreated(ctx context.Context) {
	m.TasksCreated.Add(ctx, 1)
}

// TaskCompleted records one task completion.
func (m *Metrics) TaskCompleted(ctx context.Context) {
	m.TasksCompleted.Add(ctx, 1)
}

// RollForward records the outcome of one roll-forward attempt.
func (m *Metrics) RollForward(ctx context.Context, ok bool) {
	if ok {
		m.RollForwards.Add(ctx, 1)
		return
	}
	m.RollForwardsFailed.Add(ctx, 1)
}

// AuthzDenied records one denied mutation.
func (m *Metrics) AuthzDenied(ctx context.Context) {
	m.AuthzDenials.Add(ctx, 1)
}
