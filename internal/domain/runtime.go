package domain

import "time"

// RuntimeState represents the lifecycle state of the interpreter process
type RuntimeState string

const (
	RuntimeStopped    RuntimeState = "STOPPED"
	RuntimeStarting   RuntimeState = "STARTING"
	RuntimeRunning    RuntimeState = "RUNNING"
	RuntimeCrashed    RuntimeState = "CRASHED"
	RuntimeRestarting RuntimeState = "RESTARTING"
)

// RuntimeHello is the readiness announcement the interpreter sends over the
// gateway once it has connected back to the host.
type RuntimeHello struct {
	Pid     int    `json:"pid"`
	Version string `json:"version"`
	Token   string `json:"token"`
}

// RuntimeStatus is a point-in-time record of the supervised interpreter,
// published for external health tooling.
type RuntimeStatus struct {
	State     RuntimeState `json:"state"`
	Pid       int          `json:"pid"`
	StartedAt time.Time    `json:"started_at"`
	Restarts  int          `json:"restarts"`
	LastError string       `json:"last_error,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}
