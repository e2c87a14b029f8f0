package watchdog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gitlab.com/interp-bridge.net/internal/config"
	"gitlab.com/interp-bridge.net/internal/core/ports/primary"
)

// Engine watches heartbeat freshness on a ticker and raises a failure
// alert when the interpreter goes quiet. The supervisor arms it at each
// launch via Mark and reads Alerts in its monitor loop.
type Engine struct {
	cfg    *config.BridgeConfig
	logger primary.Logger

	mu       sync.Mutex
	lastBeat time.Time
	armed    bool

	alertCh chan string
}

// NewEngine creates a heartbeat watchdog engine
func NewEngine(cfg *config.BridgeConfig, logger primary.Logger) *Engine {
	return &Engine{
		cfg:     cfg,
		logger:  logger,
		alertCh: make(chan string, 1),
	}
}

// Beat records a liveness signal from the runtime
func (e *Engine) Beat() {
	e.mu.Lock()
	e.lastBeat = time.Now()
	e.mu.Unlock()
}

// Mark arms the watchdog with a fresh baseline at (re)launch
func (e *Engine) Mark() {
	e.mu.Lock()
	e.lastBeat = time.Now()
	e.armed = true
	e.mu.Unlock()
}

// Disarm stops alerting until the next Mark
func (e *Engine) Disarm() {
	e.mu.Lock()
	e.armed = false
	e.mu.Unlock()
}

// Alerts delivers at most one pending staleness alert
func (e *Engine) Alerts() <-chan string {
	return e.alertCh
}

// Run drives the staleness checks until ctx ends
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.check()
		}
	}
}

func (e *Engine) check() {
	e.mu.Lock()
	if !e.armed {
		e.mu.Unlock()
		return
	}
	age := time.Since(e.lastBeat)
	if age <= e.cfg.HeartbeatMaxAge {
		e.mu.Unlock()
		return
	}
	// One alert per incident; re-armed at the next launch
	e.armed = false
	e.mu.Unlock()

	reason := fmt.Sprintf("no heartbeat for %s", age.Truncate(time.Second))
	e.logger.Warn("Heartbeat watchdog tripped", "age", age)

	select {
	case e.alertCh <- reason:
	default:
	}
}
