package secondary

import (
	"github.com/google/uuid"

	"gitlab.com/interp-bridge.net/internal/domain"
)

// ProtocolCodec serializes bridge traffic across the gateway boundary.
// The wire schemas are mechanical; the bridge assumes the codec is correct.
type ProtocolCodec interface {
	// EncodeExecute serializes a submission for dispatch to the interpreter
	EncodeExecute(sub *domain.Submission) ([]byte, error)

	// DecodeResult parses a terminal result sent back by the interpreter
	DecodeResult(payload []byte) (domain.CodeResult, error)

	// DecodeOutput parses one incremental output chunk
	DecodeOutput(payload []byte) (uuid.UUID, []byte, error)

	// DecodeReady parses the interpreter's readiness announcement
	DecodeReady(payload []byte) (domain.RuntimeHello, error)

	// DecodeAlert parses an explicit failure signal from the interpreter's
	// own watchdog
	DecodeAlert(payload []byte) (string, error)
}
