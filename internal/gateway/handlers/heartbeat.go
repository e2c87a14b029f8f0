package handlers

import (
	"context"
	"fmt"
	"net"

	"gitlab.com/interp-bridge.net/internal/core/ports/primary"
	"gitlab.com/interp-bridge.net/internal/gateway/connectionmanager"
)

var _ primary.MessageHandler = (*HeartbeatHandler)(nil)

// HeartbeatHandler handles liveness pings from the runtime
type HeartbeatHandler struct {
	Heartbeats primary.HeartbeatSink
	Logger     primary.Logger
}

// HandleMessage implements the MessageHandler interface
func (h *HeartbeatHandler) HandleMessage(ctx context.Context, conn net.Conn, payload []byte, runtimeID *string) error {
	if *runtimeID == "" {
		connectionmanager.SendErrorMessage(conn, 2003, "Runtime not registered")
		return fmt.Errorf("heartbeat before ready announcement")
	}

	if h.Heartbeats != nil {
		h.Heartbeats.Beat()
	}
	h.Logger.Debug("Runtime heartbeat", "runtimeID", *runtimeID)
	return nil
}
