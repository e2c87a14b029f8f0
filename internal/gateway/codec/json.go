package codec

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"gitlab.com/interp-bridge.net/internal/core/ports/secondary"
	"gitlab.com/interp-bridge.net/internal/domain"
	"gitlab.com/interp-bridge.net/internal/gateway/defs"
)

var _ secondary.ProtocolCodec = (*JSONCodec)(nil)

// JSONCodec serializes gateway payloads with the schemas in defs
type JSONCodec struct{}

// NewJSONCodec creates the default protocol codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// EncodeExecute serializes a submission for dispatch
func (c *JSONCodec) EncodeExecute(sub *domain.Submission) ([]byte, error) {
	data := defs.ExecuteData{
		SubmissionID: sub.ID.String(),
		Source:       sub.Code.Source,
		Seq:          sub.Code.Seq,
	}
	return json.Marshal(data)
}

// DecodeResult parses a terminal result message
func (c *JSONCodec) DecodeResult(payload []byte) (domain.CodeResult, error) {
	var data defs.ExecResultData
	if err := json.Unmarshal(payload, &data); err != nil {
		return domain.CodeResult{}, fmt.Errorf("invalid result payload: %w", err)
	}
	id, err := uuid.Parse(data.SubmissionID)
	if err != nil {
		return domain.CodeResult{}, fmt.Errorf("invalid submission id %q: %w", data.SubmissionID, err)
	}
	if data.Success {
		return domain.SuccessResult(id, data.Output), nil
	}
	kind := domain.ErrorKind(data.ErrorKind)
	if kind == "" {
		kind = domain.ErrorKindExecution
	}
	return domain.FailureResult(id, kind, data.Error), nil
}

// DecodeOutput parses an incremental output chunk
func (c *JSONCodec) DecodeOutput(payload []byte) (uuid.UUID, []byte, error) {
	var data defs.ExecOutputData
	if err := json.Unmarshal(payload, &data); err != nil {
		return uuid.Nil, nil, fmt.Errorf("invalid output payload: %w", err)
	}
	id, err := uuid.Parse(data.SubmissionID)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("invalid submission id %q: %w", data.SubmissionID, err)
	}
	return id, data.Chunk, nil
}

// DecodeReady parses the readiness announcement
func (c *JSONCodec) DecodeReady(payload []byte) (domain.RuntimeHello, error) {
	var data defs.RuntimeReadyData
	if err := json.Unmarshal(payload, &data); err != nil {
		return domain.RuntimeHello{}, fmt.Errorf("invalid ready payload: %w", err)
	}
	return domain.RuntimeHello{
		Pid:     data.Pid,
		Version: data.Version,
		Token:   data.Token,
	}, nil
}

// DecodeAlert parses a watchdog failure signal
func (c *JSONCodec) DecodeAlert(payload []byte) (string, error) {
	var data defs.WatchdogAlertData
	if err := json.Unmarshal(payload, &data); err != nil {
		return "", fmt.Errorf("invalid watchdog alert payload: %w", err)
	}
	return data.Reason, nil
}
