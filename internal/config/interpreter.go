package config

import (
	"strings"
	"time"
)

// InterpreterConfig describes how the external interpreter subprocess is
// launched and supervised.
type InterpreterConfig struct {
	BinPath       string
	Args          []string
	ProtocolToken string
	ReadyTimeout  time.Duration
	StopGrace     time.Duration
}

func NewInterpreterConfig() *InterpreterConfig {
	var args []string
	if raw := strEnv("INTERPRETER_ARGS", ""); raw != "" {
		args = strings.Fields(raw)
	}
	return &InterpreterConfig{
		BinPath:       strEnv("INTERPRETER_BIN", "interp-runtime"),
		Args:          args,
		ProtocolToken: strEnv("PROTOCOL_TOKEN", "bridge-proto-1"),
		ReadyTimeout:  time.Duration(intEnv("INTERPRETER_READY_TIMEOUT_SEC", 15)) * time.Second,
		StopGrace:     time.Duration(intEnv("INTERPRETER_STOP_GRACE_SEC", 5)) * time.Second,
	}
}
