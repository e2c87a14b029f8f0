package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the terminal status of a submission
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
)

// ErrorKind classifies a failed submission
type ErrorKind string

const (
	// ErrorKindExecution is local to one submission; later submissions
	// are unaffected.
	ErrorKindExecution ErrorKind = "EXECUTION_ERROR"
	// ErrorKindProcessReset is delivered to every submission that was
	// queued or in flight when the interpreter crashed or was reset.
	ErrorKindProcessReset ErrorKind = "PROCESS_RESET"
	// ErrorKindQueueRejected is delivered when the pending queue is full
	// at submit time. The submission never reaches the interpreter.
	ErrorKindQueueRejected ErrorKind = "QUEUE_REJECTED"
)

// CodeResult is the single terminal result of a submission
type CodeResult struct {
	SubmissionID uuid.UUID
	Status       Status
	Output       string
	Kind         ErrorKind
	Message      string
	CompletedAt  time.Time
}

// SuccessResult builds a successful result
func SuccessResult(submissionID uuid.UUID, output string) CodeResult {
	return CodeResult{
		SubmissionID: submissionID,
		Status:       StatusSuccess,
		Output:       output,
		CompletedAt:  time.Now(),
	}
}

// FailureResult builds a failed result
func FailureResult(submissionID uuid.UUID, kind ErrorKind, message string) CodeResult {
	return CodeResult{
		SubmissionID: submissionID,
		Status:       StatusFailure,
		Kind:         kind,
		Message:      message,
		CompletedAt:  time.Now(),
	}
}

// Failed reports whether the result carries a failure
func (r CodeResult) Failed() bool {
	return r.Status == StatusFailure
}
