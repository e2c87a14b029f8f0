package handlers

import (
	"context"
	"fmt"
	"net"

	"gitlab.com/interp-bridge.net/internal/core/ports/primary"
	"gitlab.com/interp-bridge.net/internal/core/ports/secondary"
	"gitlab.com/interp-bridge.net/internal/gateway/connectionmanager"
)

var _ primary.MessageHandler = (*WatchdogAlertHandler)(nil)

// WatchdogAlertHandler handles explicit failure signals raised by the
// interpreter's own watchdog
type WatchdogAlertHandler struct {
	Codec     secondary.ProtocolCodec
	FailureCh chan<- string
	Logger    primary.Logger
}

// HandleMessage implements the MessageHandler interface
func (h *WatchdogAlertHandler) HandleMessage(ctx context.Context, conn net.Conn, payload []byte, runtimeID *string) error {
	if *runtimeID == "" {
		connectionmanager.SendErrorMessage(conn, 2008, "Runtime not registered")
		return fmt.Errorf("watchdog alert before ready announcement")
	}

	reason, err := h.Codec.DecodeAlert(payload)
	if err != nil {
		h.Logger.Error("Failed to parse watchdog alert", "error", err)
		connectionmanager.SendErrorMessage(conn, 2009, "Invalid watchdog alert data")
		return err
	}

	h.Logger.Error("Runtime watchdog alert", "runtimeID", *runtimeID, "reason", reason)

	select {
	case h.FailureCh <- reason:
	default:
		h.Logger.Warn("Dropping watchdog alert, failure already pending", "reason", reason)
	}
	return nil
}
