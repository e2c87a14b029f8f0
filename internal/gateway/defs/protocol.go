package defs

import "time"

// Protocol constants
const (
	MagicNumber uint16 = 0xC0DE

	// Message types
	MsgRuntimeReady     byte = 0x01
	MsgRuntimeHeartbeat byte = 0x02
	MsgExecute          byte = 0x03
	MsgExecOutput       byte = 0x04
	MsgExecResult       byte = 0x05
	MsgWatchdogAlert    byte = 0x06
	MsgError            byte = 0x07

	// Configuration constants
	InitialHandshakeTimeout = 30 * time.Second
	ConnectionRetryDelay    = 1 * time.Second
)
