package handlers

import (
	"context"
	"fmt"
	"net"

	"gitlab.com/interp-bridge.net/internal/core/ports/primary"
	"gitlab.com/interp-bridge.net/internal/core/ports/secondary"
	"gitlab.com/interp-bridge.net/internal/domain"
	"gitlab.com/interp-bridge.net/internal/gateway/connectionmanager"
)

// Implementation of message handlers
// Each handler deals with one specific message type

var _ primary.MessageHandler = (*RuntimeReadyHandler)(nil)

// RuntimeReadyHandler handles the interpreter's readiness announcement
type RuntimeReadyHandler struct {
	ConnectionMgr *connectionmanager.ConnectionManager
	Codec         secondary.ProtocolCodec
	Token         string
	ReadyCh       chan<- domain.RuntimeHello
	Logger        primary.Logger
}

// HandleMessage implements the MessageHandler interface
func (h *RuntimeReadyHandler) HandleMessage(ctx context.Context, conn net.Conn, payload []byte, runtimeID *string) error {
	hello, err := h.Codec.DecodeReady(payload)
	if err != nil {
		h.Logger.Error("Failed to parse runtime ready", "error", err)
		connectionmanager.SendErrorMessage(conn, 2001, "Invalid ready data")
		return err
	}

	if hello.Token != h.Token {
		h.Logger.Error("Runtime presented wrong protocol token", "pid", hello.Pid)
		connectionmanager.SendErrorMessage(conn, 2002, "Protocol token mismatch")
		return fmt.Errorf("protocol token mismatch from pid %d", hello.Pid)
	}

	*runtimeID = fmt.Sprintf("runtime-%d", hello.Pid)
	h.ConnectionMgr.BindRuntime(*runtimeID, conn)

	// Non-blocking: the supervisor may have stopped waiting already
	select {
	case h.ReadyCh <- hello:
	default:
		h.Logger.Warn("Dropping duplicate ready announcement", "runtimeID", *runtimeID)
	}

	h.Logger.Info(
		"Runtime ready",
		"runtimeID", *runtimeID,
		"pid", hello.Pid,
		"version", hello.Version,
	)
	return nil
}
