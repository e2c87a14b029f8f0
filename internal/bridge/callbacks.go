package bridge

import (
	"context"
	"sync"

	"gitlab.com/interp-bridge.net/internal/static/errs"
)

// CallbackRegistry holds two late-bound callback slots connecting the
// process supervisor and the execution bridge. Both objects are constructed
// independently and wired together afterwards, so neither ever holds a
// partially-initialized reference to the other.
type CallbackRegistry struct {
	mu        sync.Mutex
	onReset   func(message string)
	onRestart func(ctx context.Context) error
}

// NewCallbackRegistry creates an empty registry
func NewCallbackRegistry() *CallbackRegistry {
	return &CallbackRegistry{}
}

// BindReset sets the reset slot. Binding twice is a programming error.
func (r *CallbackRegistry) BindReset(fn func(message string)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.onReset != nil {
		return errs.CallbackRebound
	}
	r.onReset = fn
	return nil
}

// BindRestart sets the restart slot. Binding twice is a programming error.
func (r *CallbackRegistry) BindRestart(fn func(ctx context.Context) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.onRestart != nil {
		return errs.CallbackRebound
	}
	r.onRestart = fn
	return nil
}

// Reset invokes the reset slot. Invoking an unbound slot is a programming
// error, signaled rather than silently ignored.
func (r *CallbackRegistry) Reset(message string) error {
	r.mu.Lock()
	fn := r.onReset
	r.mu.Unlock()
	if fn == nil {
		return errs.CallbackUnset
	}
	fn(message)
	return nil
}

// Restart invokes the restart slot
func (r *CallbackRegistry) Restart(ctx context.Context) error {
	r.mu.Lock()
	fn := r.onRestart
	r.mu.Unlock()
	if fn == nil {
		return errs.CallbackUnset
	}
	return fn(ctx)
}
