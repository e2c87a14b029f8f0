package bridgesvc

import (
	"context"
	"sync/atomic"

	"gitlab.com/interp-bridge.net/internal/bridge"
	"gitlab.com/interp-bridge.net/internal/core/ports/primary"
	"gitlab.com/interp-bridge.net/internal/domain"
	"gitlab.com/interp-bridge.net/internal/static/errs"
)

// ISupervisor is the slice of the process supervisor the facade needs.
// Satisfied by *process.Supervisor.
type ISupervisor interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	TerminateHandle(ctx context.Context)
	Relaunch(ctx context.Context) error
	Status() *domain.RuntimeStatus
}

// IBridgeService is the public facade over the supervisor and the
// execution bridge
type IBridgeService interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	SubmitCode(ctx context.Context, code domain.Code, sink domain.OutputSink) (*bridge.ResultFuture, error)
	IsRunning() bool
	RuntimeStatus() *domain.RuntimeStatus
}

var _ IBridgeService = (*BridgeService)(nil)

// BridgeService composes the process supervisor and the execution bridge
// into start/stop/submit operations for outside callers. The running flag
// is atomic so health checks never contend with the bridge lock.
type BridgeService struct {
	supervisor ISupervisor
	bridge     *bridge.ExecutionBridge
	logger     primary.Logger
	running    atomic.Bool
}

// NewBridgeService creates the facade and performs the callback wiring
// step: both the supervisor and the bridge already exist, so the late-bound
// slots can be filled without a construction cycle.
func NewBridgeService(
	supervisor ISupervisor,
	execBridge *bridge.ExecutionBridge,
	registry *bridge.CallbackRegistry,
	logger primary.Logger,
) (*BridgeService, error) {
	s := &BridgeService{
		supervisor: supervisor,
		bridge:     execBridge,
		logger:     logger,
	}

	if err := registry.BindReset(func(message string) {
		supervisor.TerminateHandle(context.Background())
		execBridge.Reset(message)
	}); err != nil {
		return nil, err
	}
	if err := registry.BindRestart(func(ctx context.Context) error {
		return supervisor.Relaunch(ctx)
	}); err != nil {
		return nil, err
	}

	return s, nil
}

// Start brings up the supervisor; the running flag flips only after the
// supervisor reports Running.
func (s *BridgeService) Start(ctx context.Context) error {
	if s.running.Load() {
		return errs.AlreadyRunning
	}
	if err := s.supervisor.Start(ctx); err != nil {
		return err
	}
	s.running.Store(true)
	s.logger.Info("Bridge service started")
	return nil
}

// Stop shuts down the supervisor and fails all outstanding submissions.
// Idempotent.
func (s *BridgeService) Stop(ctx context.Context) error {
	if !s.running.Swap(false) {
		return nil
	}
	err := s.supervisor.Stop(ctx)
	s.bridge.Reset("bridge service stopped")
	s.logger.Info("Bridge service stopped")
	return err
}

// SubmitCode enqueues code for execution. Fails immediately, without
// contacting the process, when the service is not running.
func (s *BridgeService) SubmitCode(ctx context.Context, code domain.Code, sink domain.OutputSink) (*bridge.ResultFuture, error) {
	if !s.running.Load() {
		return nil, errs.NotRunning
	}
	return s.bridge.Submit(ctx, code, sink), nil
}

// IsRunning reports the externally observable running flag
func (s *BridgeService) IsRunning() bool {
	return s.running.Load()
}

// RuntimeStatus returns the supervisor's current status record
func (s *BridgeService) RuntimeStatus() *domain.RuntimeStatus {
	return s.supervisor.Status()
}
