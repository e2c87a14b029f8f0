package domain

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// Code is one opaque unit of source text to execute. Seq is an optional
// caller-assigned sequence number carried through to the interpreter.
type Code struct {
	Source string
	Seq    int
}

// Submission represents one unit of code submitted for execution
type Submission struct {
	ID          uuid.UUID
	Code        Code
	SubmittedAt time.Time
}

// NewSubmission creates a new submission
func NewSubmission(code Code) *Submission {
	return &Submission{
		ID:          uuid.New(),
		Code:        code,
		SubmittedAt: time.Now(),
	}
}

// OutputSink receives live incremental output while a submission executes.
// It is owned by the caller; the bridge only writes to it for the lifetime
// of the submission it was attached to.
type OutputSink = io.Writer
