package process

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gitlab.com/interp-bridge.net/internal/bridge"
	"gitlab.com/interp-bridge.net/internal/config"
	"gitlab.com/interp-bridge.net/internal/core/ports/primary"
	"gitlab.com/interp-bridge.net/internal/core/ports/secondary"
	"gitlab.com/interp-bridge.net/internal/domain"
	"gitlab.com/interp-bridge.net/internal/static/errs"
)

// Endpoint is the gateway the interpreter dials back into. Satisfied by
// *gateway.Server.
type Endpoint interface {
	Start() error
	Stop(ctx context.Context) error
	Addr() string
	Ready() <-chan domain.RuntimeHello
	Failures() <-chan string
}

// LivenessMonitor raises an alert when the interpreter stops heartbeating.
// Satisfied by *watchdog.Engine. Optional.
type LivenessMonitor interface {
	Alerts() <-chan string
	Mark()
	Disarm()
}

// Supervisor owns the interpreter process lifecycle: it binds the gateway
// endpoint, spawns the process with the negotiated address, observes exits
// and watchdog alerts, and drives crash recovery through the callback
// registry (stop dead handle, reset bridge, restart).
type Supervisor struct {
	handle    Handle
	gateway   Endpoint
	callbacks *bridge.CallbackRegistry
	liveness  LivenessMonitor
	status    secondary.RuntimeStatusRepository
	logger    primary.Logger
	cfg       *config.InterpreterConfig

	mu        sync.Mutex
	state     domain.RuntimeState
	restarts  int
	startedAt time.Time
	lastErr   string
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// SupervisorOption configures a Supervisor
type SupervisorOption func(*Supervisor)

// WithStatusRepository records lifecycle transitions for external health
// tooling
func WithStatusRepository(repo secondary.RuntimeStatusRepository) SupervisorOption {
	return func(s *Supervisor) {
		s.status = repo
	}
}

// WithLivenessMonitor wires a heartbeat watchdog as an extra crash signal
func WithLivenessMonitor(m LivenessMonitor) SupervisorOption {
	return func(s *Supervisor) {
		s.liveness = m
	}
}

// NewSupervisor creates a supervisor over the given handle and gateway
func NewSupervisor(
	handle Handle,
	gw Endpoint,
	callbacks *bridge.CallbackRegistry,
	cfg *config.InterpreterConfig,
	logger primary.Logger,
	options ...SupervisorOption,
) *Supervisor {
	s := &Supervisor{
		handle:    handle,
		gateway:   gw,
		callbacks: callbacks,
		cfg:       cfg,
		logger:    logger,
		state:     domain.RuntimeStopped,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Start binds the gateway, spawns the interpreter and waits for its
// readiness announcement. A second Start while not Stopped is a logical
// error and leaves the running instance untouched.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != domain.RuntimeStopped {
		s.mu.Unlock()
		return errs.AlreadyRunning
	}
	s.state = domain.RuntimeStarting
	s.mu.Unlock()
	s.recordStatus()

	if err := s.gateway.Start(); err != nil {
		s.setState(domain.RuntimeStopped, err.Error())
		return fmt.Errorf("failed to bind gateway endpoint: %w", err)
	}

	if err := s.launch(ctx); err != nil {
		_ = s.gateway.Stop(ctx)
		s.setState(domain.RuntimeStopped, err.Error())
		return err
	}

	s.mu.Lock()
	s.state = domain.RuntimeRunning
	s.startedAt = time.Now()
	s.lastErr = ""
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()
	s.recordStatus()

	s.wg.Add(1)
	go s.monitor(stopCh)

	s.logger.Info("Interpreter supervisor running", "pid", s.handle.Pid(), "gatewayAddr", s.gateway.Addr())
	return nil
}

// Stop terminates the interpreter and closes the gateway endpoint.
// Idempotent: stopping an already-stopped supervisor is a no-op.
func (s *Supervisor) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.state == domain.RuntimeStopped {
		s.mu.Unlock()
		return nil
	}
	s.state = domain.RuntimeStopped
	stopCh := s.stopCh
	s.stopCh = nil
	s.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
	}
	s.wg.Wait()

	if s.liveness != nil {
		s.liveness.Disarm()
	}
	if err := s.handle.Stop(ctx); err != nil {
		s.logger.Warn("Failed to stop interpreter handle", "error", err)
	}
	if err := s.gateway.Stop(ctx); err != nil {
		s.logger.Warn("Failed to stop gateway endpoint", "error", err)
	}
	s.recordStatus()
	s.logger.Info("Interpreter supervisor stopped")
	return nil
}

// TerminateHandle stops the interpreter process without touching the
// gateway or supervisor state. Bound as the first half of the reset
// callback during service wiring.
func (s *Supervisor) TerminateHandle(ctx context.Context) {
	if err := s.handle.Stop(ctx); err != nil {
		s.logger.Warn("Failed to terminate interpreter handle", "error", err)
	}
}

// Relaunch spawns a fresh interpreter instance against the already-bound
// gateway and waits for readiness. Bound as the restart callback during
// service wiring. A supervisor stopped mid-recovery skips the launch so a
// stop request never races a fresh spawn.
func (s *Supervisor) Relaunch(ctx context.Context) error {
	s.mu.Lock()
	if s.state == domain.RuntimeStopped {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()
	return s.launch(ctx)
}

// State returns the current lifecycle state
func (s *Supervisor) State() domain.RuntimeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Status returns a point-in-time status record
func (s *Supervisor) Status() *domain.RuntimeStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &domain.RuntimeStatus{
		State:     s.state,
		Pid:       s.handle.Pid(),
		StartedAt: s.startedAt,
		Restarts:  s.restarts,
		LastError: s.lastErr,
		UpdatedAt: time.Now(),
	}
}

// launch spawns the interpreter and blocks until it announces readiness
// over the gateway, the process dies early, or the ready timeout fires.
func (s *Supervisor) launch(ctx context.Context) error {
	s.drainSignals()
	if s.liveness != nil {
		s.liveness.Mark()
	}

	spec := LaunchSpec{
		GatewayAddr:   s.gateway.Addr(),
		ProtocolToken: s.cfg.ProtocolToken,
	}
	if err := s.handle.Start(ctx, spec); err != nil {
		return err
	}

	select {
	case hello := <-s.gateway.Ready():
		s.logger.Info("Interpreter reported ready", "pid", hello.Pid, "version", hello.Version)
		return nil
	case exitErr := <-s.handle.Exited():
		return fmt.Errorf("interpreter exited before reporting ready: %v", exitErr)
	case <-time.After(s.cfg.ReadyTimeout):
		_ = s.handle.Stop(ctx)
		return errs.ReadyTimeout
	case <-ctx.Done():
		_ = s.handle.Stop(context.Background())
		return ctx.Err()
	}
}

// drainSignals discards readiness and alert signals left over from a
// previous instance so they cannot satisfy the next launch.
func (s *Supervisor) drainSignals() {
	for {
		select {
		case <-s.gateway.Ready():
			continue
		case <-s.gateway.Failures():
			continue
		default:
		}
		if s.liveness != nil {
			select {
			case <-s.liveness.Alerts():
				continue
			default:
			}
		}
		return
	}
}

// monitor watches for process death and failure signals while Running, and
// drives the reset → restart recovery sequence.
func (s *Supervisor) monitor(stopCh chan struct{}) {
	defer s.wg.Done()

	var alerts <-chan string
	if s.liveness != nil {
		alerts = s.liveness.Alerts()
	}

	for {
		var reason string
		select {
		case <-stopCh:
			return
		case exitErr := <-s.handle.Exited():
			reason = fmt.Sprintf("interpreter process exited unexpectedly: %v", exitErr)
		case failure := <-s.gateway.Failures():
			reason = fmt.Sprintf("interpreter watchdog failure: %s", failure)
		case failure := <-alerts:
			reason = fmt.Sprintf("interpreter heartbeat lost: %s", failure)
		}

		if !s.markCrashed(reason) {
			return
		}
		if err := s.recover(reason); err != nil {
			s.logger.Error("Crash recovery failed, interpreter stays down", "error", err)
			return
		}
	}
}

// markCrashed flips Running to Crashed. Returns false if the supervisor was
// stopped concurrently, in which case the exit was expected.
func (s *Supervisor) markCrashed(reason string) bool {
	s.mu.Lock()
	if s.state != domain.RuntimeRunning {
		s.mu.Unlock()
		return false
	}
	s.state = domain.RuntimeCrashed
	s.lastErr = reason
	s.mu.Unlock()
	s.recordStatus()
	s.logger.Error("Interpreter crashed", "reason", reason)
	return true
}

// recover runs the registered reset and restart callbacks. Every state
// change checks that Stop has not intervened; a stop request during
// recovery always wins and leaves the supervisor Stopped.
func (s *Supervisor) recover(reason string) error {
	ctx := context.Background()

	if err := s.callbacks.Reset(reason); err != nil {
		return fmt.Errorf("reset callback: %w", err)
	}

	if !s.transition(domain.RuntimeCrashed, domain.RuntimeRestarting, reason) {
		s.logger.Info("Supervisor stopped during recovery, abandoning restart")
		return nil
	}

	if err := s.callbacks.Restart(ctx); err != nil {
		s.transition(domain.RuntimeRestarting, domain.RuntimeCrashed, err.Error())
		return fmt.Errorf("restart callback: %w", err)
	}

	s.mu.Lock()
	if s.state != domain.RuntimeRestarting {
		s.mu.Unlock()
		// Stopped while relaunching; don't leak the fresh instance
		_ = s.handle.Stop(ctx)
		s.logger.Info("Supervisor stopped during relaunch, terminating fresh instance")
		return nil
	}
	s.state = domain.RuntimeRunning
	s.restarts++
	s.startedAt = time.Now()
	s.lastErr = ""
	s.mu.Unlock()
	s.recordStatus()
	s.logger.Info("Interpreter restarted", "pid", s.handle.Pid(), "restarts", s.restarts)
	return nil
}

// transition flips from one state to another only if from still holds.
// Returns false when a concurrent Stop (or crash) changed the state first.
func (s *Supervisor) transition(from, to domain.RuntimeState, lastErr string) bool {
	s.mu.Lock()
	if s.state != from {
		s.mu.Unlock()
		return false
	}
	s.state = to
	s.lastErr = lastErr
	s.mu.Unlock()
	s.recordStatus()
	return true
}

func (s *Supervisor) setState(state domain.RuntimeState, lastErr string) {
	s.mu.Lock()
	s.state = state
	s.lastErr = lastErr
	s.mu.Unlock()
	s.recordStatus()
}

// recordStatus publishes the current status to the status repository, if
// one is configured
func (s *Supervisor) recordStatus() {
	if s.status == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.status.SaveStatus(ctx, s.Status()); err != nil {
		s.logger.Warn("Failed to record runtime status", "error", err)
	}
}
