package codec_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"gitlab.com/interp-bridge.net/internal/domain"
	"gitlab.com/interp-bridge.net/internal/gateway/codec"
	"gitlab.com/interp-bridge.net/internal/gateway/defs"
)

func TestEncodeExecuteCarriesSubmission(t *testing.T) {
	c := codec.NewJSONCodec()
	sub := domain.NewSubmission(domain.Code{Source: "print(1+1)", Seq: 3})

	payload, err := c.EncodeExecute(sub)
	if err != nil {
		t.Fatalf("EncodeExecute: %v", err)
	}

	var data defs.ExecuteData
	if err := json.Unmarshal(payload, &data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if data.SubmissionID != sub.ID.String() || data.Source != "print(1+1)" || data.Seq != 3 {
		t.Fatalf("payload = %+v", data)
	}
}

func TestDecodeResultKinds(t *testing.T) {
	c := codec.NewJSONCodec()
	id := uuid.New()

	cases := []struct {
		name     string
		data     defs.ExecResultData
		wantFail bool
		wantKind domain.ErrorKind
	}{
		{
			name: "success",
			data: defs.ExecResultData{SubmissionID: id.String(), Success: true, Output: "2"},
		},
		{
			name:     "failure with kind",
			data:     defs.ExecResultData{SubmissionID: id.String(), ErrorKind: "EXECUTION_ERROR", Error: "NameError"},
			wantFail: true,
			wantKind: domain.ErrorKindExecution,
		},
		{
			name:     "failure without kind defaults to execution",
			data:     defs.ExecResultData{SubmissionID: id.String(), Error: "boom"},
			wantFail: true,
			wantKind: domain.ErrorKindExecution,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload, _ := json.Marshal(tc.data)
			result, err := c.DecodeResult(payload)
			if err != nil {
				t.Fatalf("DecodeResult: %v", err)
			}
			if result.SubmissionID != id {
				t.Fatalf("submission id = %s", result.SubmissionID)
			}
			if result.Failed() != tc.wantFail {
				t.Fatalf("failed = %v, want %v", result.Failed(), tc.wantFail)
			}
			if tc.wantFail && result.Kind != tc.wantKind {
				t.Fatalf("kind = %q, want %q", result.Kind, tc.wantKind)
			}
		})
	}
}

func TestDecodeResultRejectsBadSubmissionID(t *testing.T) {
	c := codec.NewJSONCodec()
	payload, _ := json.Marshal(defs.ExecResultData{SubmissionID: "not-a-uuid", Success: true})

	if _, err := c.DecodeResult(payload); err == nil {
		t.Fatalf("DecodeResult accepted a bad submission id")
	}
}

func TestDecodeOutput(t *testing.T) {
	c := codec.NewJSONCodec()
	id := uuid.New()
	payload, _ := json.Marshal(defs.ExecOutputData{SubmissionID: id.String(), Chunk: []byte("hello")})

	gotID, chunk, err := c.DecodeOutput(payload)
	if err != nil {
		t.Fatalf("DecodeOutput: %v", err)
	}
	if gotID != id || string(chunk) != "hello" {
		t.Fatalf("id=%s chunk=%q", gotID, chunk)
	}
}

func TestDecodeReadyAndAlert(t *testing.T) {
	c := codec.NewJSONCodec()

	readyPayload, _ := json.Marshal(defs.RuntimeReadyData{Pid: 99, Version: "1.2", Token: "tok"})
	hello, err := c.DecodeReady(readyPayload)
	if err != nil {
		t.Fatalf("DecodeReady: %v", err)
	}
	if hello.Pid != 99 || hello.Version != "1.2" || hello.Token != "tok" {
		t.Fatalf("hello = %+v", hello)
	}

	alertPayload, _ := json.Marshal(defs.WatchdogAlertData{Reason: "stalled"})
	reason, err := c.DecodeAlert(alertPayload)
	if err != nil {
		t.Fatalf("DecodeAlert: %v", err)
	}
	if reason != "stalled" {
		t.Fatalf("reason = %q", reason)
	}
}
