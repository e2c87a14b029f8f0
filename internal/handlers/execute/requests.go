package execute

// ExecuteRequest is the inbound schema for POST /api/execute
type ExecuteRequest struct {
	Source     string `json:"source"`
	Seq        int    `json:"seq,omitempty"`
	TimeoutSec int    `json:"timeout_sec,omitempty"`
}

// ExecuteResponse is the outbound schema for POST /api/execute
type ExecuteResponse struct {
	SubmissionID string `json:"submission_id"`
	Status       string `json:"status"`
	Output       string `json:"output,omitempty"`
	ErrorKind    string `json:"error_kind,omitempty"`
	Error        string `json:"error,omitempty"`
}
