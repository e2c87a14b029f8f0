package handlers

import (
	"context"
	"fmt"
	"net"

	"gitlab.com/interp-bridge.net/internal/core/ports/primary"
	"gitlab.com/interp-bridge.net/internal/core/ports/secondary"
	"gitlab.com/interp-bridge.net/internal/gateway/connectionmanager"
)

var _ primary.MessageHandler = (*ExecResultHandler)(nil)

// ExecResultHandler handles terminal execution results
type ExecResultHandler struct {
	Sink   primary.ExecutionSink
	Codec  secondary.ProtocolCodec
	Logger primary.Logger
}

// HandleMessage implements the MessageHandler interface
func (h *ExecResultHandler) HandleMessage(ctx context.Context, conn net.Conn, payload []byte, runtimeID *string) error {
	if *runtimeID == "" {
		connectionmanager.SendErrorMessage(conn, 2004, "Runtime not registered")
		return fmt.Errorf("result before ready announcement")
	}

	result, err := h.Codec.DecodeResult(payload)
	if err != nil {
		h.Logger.Error("Failed to parse execution result", "error", err)
		connectionmanager.SendErrorMessage(conn, 2005, "Invalid result data")
		return err
	}

	h.Sink.Complete(ctx, result)

	h.Logger.Info("Execution result received", "submissionId", result.SubmissionID, "status", result.Status)
	return nil
}
