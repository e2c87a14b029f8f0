package defs

// RuntimeReadyData is sent by the interpreter once it has connected back to
// the gateway. Token must match the protocol token it was launched with.
type RuntimeReadyData struct {
	Pid     int    `json:"pid"`
	Version string `json:"version"`
	Token   string `json:"token"`
}

// HeartbeatData is sent periodically by the interpreter while idle or busy
type HeartbeatData struct {
	Pid int `json:"pid"`
}

// ExecuteData carries one submission to the interpreter
type ExecuteData struct {
	SubmissionID string `json:"submission_id"`
	Source       string `json:"source"`
	Seq          int    `json:"seq"`
}

// ExecOutputData carries one incremental output chunk back to the host
type ExecOutputData struct {
	SubmissionID string `json:"submission_id"`
	Chunk        []byte `json:"chunk"`
}

// ExecResultData carries the terminal result of a submission
type ExecResultData struct {
	SubmissionID string `json:"submission_id"`
	Success      bool   `json:"success"`
	Output       string `json:"output"`
	ErrorKind    string `json:"error_kind,omitempty"`
	Error        string `json:"error,omitempty"`
}

// WatchdogAlertData is an explicit failure signal from the interpreter's
// own watchdog
type WatchdogAlertData struct {
	Reason string `json:"reason"`
}
