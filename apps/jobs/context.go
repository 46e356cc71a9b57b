package jobs

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

// Context carries one job run's cancellation signal and progress counters
type Context struct {
	context.Context

	JobName     string
	ExecutionID uuid.UUID

	processed int64
}

// NewContext wraps a cancellation context for one job run
func NewContext(ctx context.Context, jobName string, executionID uuid.UUID) *Context {
	return &Context{
		Context:     ctx,
		JobName:     jobName,
		ExecutionID: executionID,
	}
}

// AddProcessed adds to the run's processed-records counter
func (c *Context) AddProcessed(n int) {
	atomic.AddInt64(&c.processed, int64(n))
}

// Processed returns the number of records processed so far
func (c *Context) Processed() int {
	return int(atomic.LoadInt64(&c.processed))
}
