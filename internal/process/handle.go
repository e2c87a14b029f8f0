package process

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"gitlab.com/interp-bridge.net/internal/config"
	"gitlab.com/interp-bridge.net/internal/core/ports/primary"
)

// LaunchSpec carries the startup arguments negotiated at gateway bind time.
// The interpreter dials the gateway address back and presents the token.
type LaunchSpec struct {
	GatewayAddr   string
	ProtocolToken string
}

// Handle represents one running instance of the external interpreter
// process. A handle is restartable: Start may be called again after the
// previous instance exited.
type Handle interface {
	// Start launches the interpreter with the given spec
	Start(ctx context.Context, spec LaunchSpec) error

	// Stop terminates the process: SIGTERM, then SIGKILL after a grace
	// period. Safe to call when nothing is running.
	Stop(ctx context.Context) error

	// Exited returns the exit observation channel for the current
	// instance. It receives exactly one value when the process exits.
	Exited() <-chan error

	// Pid returns the pid of the current instance, 0 when stopped
	Pid() int

	// Running reports whether the process is currently alive
	Running() bool
}

var _ Handle = (*ProcessHandle)(nil)

// ProcessHandle launches and terminates the interpreter subprocess
type ProcessHandle struct {
	cfg    *config.InterpreterConfig
	logger primary.Logger

	mu       sync.Mutex
	cmd      *exec.Cmd
	pid      int
	exitCh   chan error
	waitDone chan struct{}
}

// NewProcessHandle creates a handle for the configured interpreter binary
func NewProcessHandle(cfg *config.InterpreterConfig, logger primary.Logger) *ProcessHandle {
	return &ProcessHandle{
		cfg:    cfg,
		logger: logger,
	}
}

// Start launches the interpreter subprocess
func (h *ProcessHandle) Start(ctx context.Context, spec LaunchSpec) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cmd != nil {
		return fmt.Errorf("interpreter process already running with pid %d", h.pid)
	}

	args := append([]string{}, h.cfg.Args...)
	args = append(args, "--gateway-addr", spec.GatewayAddr, "--protocol-token", spec.ProtocolToken)

	cmd := exec.CommandContext(ctx, h.cfg.BinPath, args...)
	cmd.Stderr = &logWriter{logger: h.logger}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to spawn interpreter %q: %w", h.cfg.BinPath, err)
	}

	h.cmd = cmd
	h.pid = cmd.Process.Pid
	h.exitCh = make(chan error, 1)
	h.waitDone = make(chan struct{})

	exitCh := h.exitCh
	waitDone := h.waitDone
	go func() {
		err := cmd.Wait()
		h.mu.Lock()
		h.cmd = nil
		h.pid = 0
		h.mu.Unlock()
		exitCh <- err
		close(waitDone)
	}()

	h.logger.Info("Interpreter process started", "pid", cmd.Process.Pid, "bin", h.cfg.BinPath, "gatewayAddr", spec.GatewayAddr)
	return nil
}

// Stop terminates the running process, if any
func (h *ProcessHandle) Stop(ctx context.Context) error {
	h.mu.Lock()
	cmd := h.cmd
	pid := h.pid
	waitDone := h.waitDone
	h.mu.Unlock()

	if cmd == nil {
		return nil
	}

	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		h.logger.Warn("Failed to signal interpreter", "pid", pid, "error", err)
	}

	select {
	case <-waitDone:
		h.logger.Info("Interpreter process exited after SIGTERM", "pid", pid)
		return nil
	case <-time.After(h.cfg.StopGrace):
	case <-ctx.Done():
	}

	if err := cmd.Process.Kill(); err != nil {
		h.logger.Warn("Failed to kill interpreter", "pid", pid, "error", err)
	}
	<-waitDone
	h.logger.Info("Interpreter process killed", "pid", pid)
	return nil
}

// Exited returns the exit observation channel of the current instance
func (h *ProcessHandle) Exited() <-chan error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.exitCh
}

// Pid returns the pid of the running process, 0 when stopped
func (h *ProcessHandle) Pid() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pid
}

// Running reports whether the process is alive
func (h *ProcessHandle) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cmd != nil
}

// logWriter forwards interpreter stderr lines into the service log
type logWriter struct {
	logger primary.Logger
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.logger.Debug("interpreter stderr", "output", string(p))
	return len(p), nil
}
