package primary

import (
	"context"
	"net"

	"github.com/google/uuid"

	"gitlab.com/interp-bridge.net/internal/domain"
)

// MessageHandler defines an interface for handling different message types
// arriving over the gateway connection.
type MessageHandler interface {
	HandleMessage(ctx context.Context, conn net.Conn, payload []byte, runtimeID *string) error
}

// MessagePublisher defines an interface for pushing messages to the
// connected interpreter runtime.
type MessagePublisher interface {
	PublishMessage(ctx context.Context, conn net.Conn, payload []byte) error
}

// ExecutionSink receives execution traffic decoded off the gateway
type ExecutionSink interface {
	// Complete delivers the terminal result for the in-flight submission.
	Complete(ctx context.Context, result domain.CodeResult)

	// StreamOutput delivers an incremental output chunk for the in-flight
	// submission.
	StreamOutput(submissionID uuid.UUID, chunk []byte)
}

// HeartbeatSink receives liveness signals from the interpreter runtime
type HeartbeatSink interface {
	Beat()
}
