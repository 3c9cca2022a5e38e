// Package metrics defines the port for recording service-level metrics.
package metrics

import "context"

// Recorder receives counters from the lifecycle services. Implemented by the
// OpenTelemetry adapter; Nop is used when observability is disabled.
type Recorder interface {
	TaskCreated(ctx context.Context)
	TaskCompleted(ctx context.Context)
	RollForward(ctx context.Context, ok bool)
	AuthzDenied(ctx context.Context)
}

// Nop is a Recorder that discards every measurement.
type Nop struct{}

func (Nop) TaskCreated(context.Context)            {}
func (Nop) TaskCompleted(context.Context)          {}
func (Nop) RollForward(context.Context, bool)      {}
func (Nop) AuthzDenied(context.Context)            {}
