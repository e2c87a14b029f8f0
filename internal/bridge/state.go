package bridge

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"gitlab.com/interp-bridge.net/internal/core/ports/primary"
	"gitlab.com/interp-bridge.net/internal/domain"
	"gitlab.com/interp-bridge.net/internal/static/errs"
)

// Dispatcher sends one submission to the interpreter runtime. Implemented by
// the gateway server; bound after construction to avoid a construction cycle.
type Dispatcher interface {
	Dispatch(ctx context.Context, sub *domain.Submission) error
}

type submissionEntry struct {
	sub    *domain.Submission
	sink   domain.OutputSink
	future *ResultFuture
}

// ExecutionBridge serializes concurrent code submissions into a single
// execution stream. At most one submission is in flight at any time;
// submissions complete in strict FIFO order and every future resolves
// exactly once. All queue and in-flight mutation happens under one mutex;
// network writes happen outside it.
type ExecutionBridge struct {
	mu         sync.Mutex
	pending    []*submissionEntry
	current    *submissionEntry
	maxPending int
	dispatcher Dispatcher
	logger     primary.Logger
}

// ExecutionBridgeOption configures an ExecutionBridge
type ExecutionBridgeOption func(*ExecutionBridge)

// WithMaxPending bounds the pending queue depth
func WithMaxPending(n int) ExecutionBridgeOption {
	return func(b *ExecutionBridge) {
		b.maxPending = n
	}
}

// NewExecutionBridge creates a new execution bridge
func NewExecutionBridge(logger primary.Logger, options ...ExecutionBridgeOption) *ExecutionBridge {
	b := &ExecutionBridge{
		maxPending: 256,
		logger:     logger,
	}
	for _, option := range options {
		option(b)
	}
	return b
}

// BindDispatcher wires the outbound dispatcher. Must be called once during
// service wiring, before the first Submit.
func (b *ExecutionBridge) BindDispatcher(d Dispatcher) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dispatcher = d
}

// Submit enqueues code for execution and returns its future immediately.
// It never blocks and never fails synchronously; all failure is delivered
// through the returned future.
func (b *ExecutionBridge) Submit(ctx context.Context, code domain.Code, sink domain.OutputSink) *ResultFuture {
	entry := &submissionEntry{
		sub:    domain.NewSubmission(code),
		sink:   sink,
		future: newResultFuture(),
	}

	b.mu.Lock()
	if b.dispatcher == nil {
		b.mu.Unlock()
		entry.future.resolve(domain.FailureResult(entry.sub.ID, domain.ErrorKindExecution, errs.DispatcherUnset.Error()))
		return entry.future
	}
	if b.current != nil {
		if len(b.pending) >= b.maxPending {
			b.mu.Unlock()
			entry.future.resolve(domain.FailureResult(entry.sub.ID, domain.ErrorKindQueueRejected, errs.QueueFull.Error()))
			return entry.future
		}
		b.pending = append(b.pending, entry)
		b.mu.Unlock()
		return entry.future
	}
	b.current = entry
	b.mu.Unlock()

	b.dispatch(ctx, entry)
	return entry.future
}

// Complete delivers the terminal result for the in-flight submission, then
// dispatches the next pending one. Called from the gateway's read goroutine.
func (b *ExecutionBridge) Complete(ctx context.Context, result domain.CodeResult) {
	b.mu.Lock()
	entry := b.current
	if entry == nil || entry.sub.ID != result.SubmissionID {
		b.mu.Unlock()
		b.logger.Warn("Dropping result for unknown submission", "submissionId", result.SubmissionID)
		return
	}
	b.current = nil
	var next *submissionEntry
	if len(b.pending) > 0 {
		next = b.pending[0]
		b.pending = b.pending[1:]
		b.current = next
	}
	b.mu.Unlock()

	// Resolve before dispatching the successor so completion order is
	// observable before the next execution begins.
	entry.future.resolve(result)
	if next != nil {
		b.dispatch(ctx, next)
	}
}

// StreamOutput routes an incremental output chunk to the in-flight
// submission's sink, if one was attached.
func (b *ExecutionBridge) StreamOutput(submissionID uuid.UUID, chunk []byte) {
	b.mu.Lock()
	var sink domain.OutputSink
	if b.current != nil && b.current.sub.ID == submissionID {
		sink = b.current.sink
	}
	b.mu.Unlock()

	if sink == nil {
		return
	}
	if _, err := sink.Write(chunk); err != nil {
		b.logger.Warn("Failed to write to output sink", "submissionId", submissionID, "error", err)
	}
}

// Reset atomically fails the in-flight submission and every pending one with
// a ProcessReset failure carrying message, and clears the queue. No new
// dispatch occurs until a fresh Submit arrives.
func (b *ExecutionBridge) Reset(message string) {
	b.mu.Lock()
	entries := make([]*submissionEntry, 0, len(b.pending)+1)
	if b.current != nil {
		entries = append(entries, b.current)
		b.current = nil
	}
	entries = append(entries, b.pending...)
	b.pending = nil
	b.mu.Unlock()

	for _, entry := range entries {
		entry.future.resolve(domain.FailureResult(entry.sub.ID, domain.ErrorKindProcessReset, message))
	}
	if len(entries) > 0 {
		b.logger.Info("Bridge reset", "failedSubmissions", len(entries), "message", message)
	}
}

// PendingCount returns the current pending queue depth
func (b *ExecutionBridge) PendingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// InFlight reports whether a submission is currently executing
func (b *ExecutionBridge) InFlight() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current != nil
}

// dispatch pushes entry to the runtime. On dispatch failure the entry's
// future fails locally and the next pending entry is tried, until one
// dispatch succeeds or the queue drains.
func (b *ExecutionBridge) dispatch(ctx context.Context, entry *submissionEntry) {
	for entry != nil {
		err := b.dispatcher.Dispatch(ctx, entry.sub)
		if err == nil {
			return
		}
		b.logger.Error("Failed to dispatch submission", "submissionId", entry.sub.ID, "error", err)
		entry.future.resolve(domain.FailureResult(entry.sub.ID, domain.ErrorKindExecution, fmt.Sprintf("dispatch failed: %v", err)))
		entry = b.takeNext(entry)
	}
}

// takeNext clears the in-flight slot if prev still holds it and pops the
// next pending entry. Returns nil if a reset intervened.
func (b *ExecutionBridge) takeNext(prev *submissionEntry) *submissionEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current != prev {
		return nil
	}
	b.current = nil
	if len(b.pending) == 0 {
		return nil
	}
	next := b.pending[0]
	b.pending = b.pending[1:]
	b.current = next
	return next
}
