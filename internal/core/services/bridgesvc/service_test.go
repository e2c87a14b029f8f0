package bridgesvc_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gitlab.com/interp-bridge.net/internal/bridge"
	"gitlab.com/interp-bridge.net/internal/core/services/bridgesvc"
	"gitlab.com/interp-bridge.net/internal/domain"
	"gitlab.com/interp-bridge.net/internal/static/errs"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Warn(msg string, args ...interface{})  {}

type fakeSupervisor struct {
	mu         sync.Mutex
	starts     int
	stops      int
	terminated int
	relaunched int
	startErr   error
}

func (s *fakeSupervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startErr != nil {
		return s.startErr
	}
	s.starts++
	return nil
}

func (s *fakeSupervisor) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops++
	return nil
}

func (s *fakeSupervisor) TerminateHandle(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terminated++
}

func (s *fakeSupervisor) Relaunch(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.relaunched++
	return nil
}

func (s *fakeSupervisor) Status() *domain.RuntimeStatus {
	return &domain.RuntimeStatus{State: domain.RuntimeRunning}
}

// echoDispatcher completes each dispatched submission asynchronously with
// its own source as output
type echoDispatcher struct {
	bridge *bridge.ExecutionBridge
}

func (d *echoDispatcher) Dispatch(ctx context.Context, sub *domain.Submission) error {
	result := domain.SuccessResult(sub.ID, sub.Code.Source)
	go d.bridge.Complete(context.Background(), result)
	return nil
}

// blackholeDispatcher accepts submissions and never completes them
type blackholeDispatcher struct{}

func (blackholeDispatcher) Dispatch(ctx context.Context, sub *domain.Submission) error {
	return nil
}

func newService(t *testing.T) (*bridgesvc.BridgeService, *fakeSupervisor, *bridge.ExecutionBridge, *bridge.CallbackRegistry) {
	t.Helper()
	sup := &fakeSupervisor{}
	execBridge := bridge.NewExecutionBridge(nopLogger{})
	execBridge.BindDispatcher(&echoDispatcher{bridge: execBridge})
	registry := bridge.NewCallbackRegistry()

	svc, err := bridgesvc.NewBridgeService(sup, execBridge, registry, nopLogger{})
	if err != nil {
		t.Fatalf("NewBridgeService: %v", err)
	}
	return svc, sup, execBridge, registry
}

func TestSubmitBeforeStartFailsImmediately(t *testing.T) {
	svc, _, _, _ := newService(t)

	_, err := svc.SubmitCode(context.Background(), domain.Code{Source: "1+1"}, nil)
	if !errors.Is(err, errs.NotRunning) {
		t.Fatalf("SubmitCode before Start: err=%v, want NotRunning", err)
	}
	if svc.IsRunning() {
		t.Fatalf("running flag up before Start")
	}
}

func TestStartSubmitStop(t *testing.T) {
	svc, sup, _, _ := newService(t)
	ctx := context.Background()

	if err := svc.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !svc.IsRunning() {
		t.Fatalf("running flag down after Start")
	}

	fut, err := svc.SubmitCode(ctx, domain.Code{Source: "1+1"}, nil)
	if err != nil {
		t.Fatalf("SubmitCode: %v", err)
	}
	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	result, err := fut.Wait(waitCtx)
	if err != nil || result.Output != "1+1" {
		t.Fatalf("result=%+v err=%v", result, err)
	}

	if err := svc.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if svc.IsRunning() || sup.stops != 1 {
		t.Fatalf("service not stopped cleanly: running=%v stops=%d", svc.IsRunning(), sup.stops)
	}

	if _, err := svc.SubmitCode(ctx, domain.Code{Source: "1+1"}, nil); !errors.Is(err, errs.NotRunning) {
		t.Fatalf("SubmitCode after Stop: err=%v, want NotRunning", err)
	}
}

func TestStartFailurePropagatesAndFlagStaysDown(t *testing.T) {
	sup := &fakeSupervisor{startErr: errors.New("bind: address already in use")}
	execBridge := bridge.NewExecutionBridge(nopLogger{})
	registry := bridge.NewCallbackRegistry()
	svc, err := bridgesvc.NewBridgeService(sup, execBridge, registry, nopLogger{})
	if err != nil {
		t.Fatalf("NewBridgeService: %v", err)
	}

	if err := svc.Start(context.Background()); err == nil {
		t.Fatalf("Start did not propagate supervisor failure")
	}
	if svc.IsRunning() {
		t.Fatalf("running flag up after failed Start")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	svc, sup, _, _ := newService(t)
	ctx := context.Background()

	if err := svc.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := svc.Stop(ctx); err != nil {
			t.Fatalf("Stop #%d: %v", i+1, err)
		}
	}
	if sup.stops != 1 {
		t.Fatalf("supervisor stopped %d times, want 1", sup.stops)
	}
}

func TestWiringConnectsResetAndRestart(t *testing.T) {
	svc, sup, execBridge, registry := newService(t)
	ctx := context.Background()

	if err := svc.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Park a submission by disabling the auto-completion path
	execBridge.BindDispatcher(blackholeDispatcher{})
	fut, err := svc.SubmitCode(ctx, domain.Code{Source: "long running"}, nil)
	if err != nil {
		t.Fatalf("SubmitCode: %v", err)
	}

	// The supervisor's crash path invokes the registry slots
	if err := registry.Reset("process crashed"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if err := registry.Restart(ctx); err != nil {
		t.Fatalf("Restart: %v", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	result, err := fut.Wait(waitCtx)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if result.Kind != domain.ErrorKindProcessReset || result.Message != "process crashed" {
		t.Fatalf("result = %+v, want ProcessReset(process crashed)", result)
	}
	if sup.terminated != 1 || sup.relaunched != 1 {
		t.Fatalf("terminated=%d relaunched=%d, want 1/1", sup.terminated, sup.relaunched)
	}
}

func TestRegistryCannotBeWiredTwice(t *testing.T) {
	_, _, _, registry := newService(t)

	sup := &fakeSupervisor{}
	execBridge := bridge.NewExecutionBridge(nopLogger{})
	if _, err := bridgesvc.NewBridgeService(sup, execBridge, registry, nopLogger{}); !errors.Is(err, errs.CallbackRebound) {
		t.Fatalf("second wiring: err=%v, want CallbackRebound", err)
	}
}
