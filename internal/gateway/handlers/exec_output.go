package handlers

import (
	"context"
	"fmt"
	"net"

	"gitlab.com/interp-bridge.net/internal/core/ports/primary"
	"gitlab.com/interp-bridge.net/internal/core/ports/secondary"
	"gitlab.com/interp-bridge.net/internal/gateway/connectionmanager"
)

var _ primary.MessageHandler = (*ExecOutputHandler)(nil)

// ExecOutputHandler handles incremental output chunks
type ExecOutputHandler struct {
	Sink   primary.ExecutionSink
	Codec  secondary.ProtocolCodec
	Logger primary.Logger
}

// HandleMessage implements the MessageHandler interface
func (h *ExecOutputHandler) HandleMessage(ctx context.Context, conn net.Conn, payload []byte, runtimeID *string) error {
	if *runtimeID == "" {
		connectionmanager.SendErrorMessage(conn, 2006, "Runtime not registered")
		return fmt.Errorf("output before ready announcement")
	}

	submissionID, chunk, err := h.Codec.DecodeOutput(payload)
	if err != nil {
		h.Logger.Error("Failed to parse execution output", "error", err)
		connectionmanager.SendErrorMessage(conn, 2007, "Invalid output data")
		return err
	}

	h.Sink.StreamOutput(submissionID, chunk)
	return nil
}
