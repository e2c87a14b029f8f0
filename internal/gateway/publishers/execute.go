package publishers

import (
	"context"
	"net"

	"gitlab.com/interp-bridge.net/internal/core/ports/primary"
	"gitlab.com/interp-bridge.net/internal/gateway/connectionmanager"
	"gitlab.com/interp-bridge.net/internal/gateway/defs"
)

var _ primary.MessagePublisher = (*ExecutePublisher)(nil)

// ExecutePublisher pushes execute messages to the runtime connection
type ExecutePublisher struct {
	Logger primary.Logger
}

func NewExecutePublisher(logger primary.Logger) *ExecutePublisher {
	return &ExecutePublisher{
		Logger: logger,
	}
}

func (p *ExecutePublisher) PublishMessage(ctx context.Context, conn net.Conn, payload []byte) error {
	err := connectionmanager.SendMessage(conn, defs.MsgExecute, payload)
	if err != nil {
		p.Logger.Error("Failed to send execute message", "error", err)
	}
	return err
}
