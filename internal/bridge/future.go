package bridge

import (
	"context"
	"sync"

	"gitlab.com/interp-bridge.net/internal/domain"
)

// ResultFuture delivers exactly one CodeResult per submission. Submit never
// blocks the caller; the future is the suspension point for anyone awaiting
// the result.
type ResultFuture struct {
	once   sync.Once
	done   chan struct{}
	result domain.CodeResult
}

func newResultFuture() *ResultFuture {
	return &ResultFuture{done: make(chan struct{})}
}

// resolve delivers the terminal result. Extra calls are ignored so that a
// completion racing a reset still yields a single resolution.
func (f *ResultFuture) resolve(result domain.CodeResult) {
	f.once.Do(func() {
		f.result = result
		close(f.done)
	})
}

// Done returns a channel closed once the result is available
func (f *ResultFuture) Done() <-chan struct{} {
	return f.done
}

// Result returns the delivered result. Only valid after Done is closed.
func (f *ResultFuture) Result() domain.CodeResult {
	return f.result
}

// Wait blocks until the result is available or ctx ends
func (f *ResultFuture) Wait(ctx context.Context) (domain.CodeResult, error) {
	select {
	case <-f.done:
		return f.result, nil
	case <-ctx.Done():
		return domain.CodeResult{}, ctx.Err()
	}
}
