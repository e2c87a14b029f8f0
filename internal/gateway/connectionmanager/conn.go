package connectionmanager

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"sync"

	"gitlab.com/interp-bridge.net/internal/core/ports/primary"
	"gitlab.com/interp-bridge.net/internal/gateway/defs"
)

// ConnectionManager tracks the single interpreter runtime connection.
// A new registration replaces any stale connection left over from a
// previous process instance.
type ConnectionManager struct {
	mu        sync.RWMutex
	conn      net.Conn
	runtimeID string
	Logger    primary.Logger
}

// ErrorData represents data sent with error responses
type ErrorData struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewConnectionManager creates a new connection manager
func NewConnectionManager(logger primary.Logger) *ConnectionManager {
	return &ConnectionManager{
		Logger: logger,
	}
}

// BindRuntime registers the runtime connection, replacing any previous one
func (cm *ConnectionManager) BindRuntime(runtimeID string, conn net.Conn) {
	cm.mu.Lock()
	prev := cm.conn
	cm.conn = conn
	cm.runtimeID = runtimeID
	cm.mu.Unlock()

	if prev != nil && prev != conn {
		cm.Logger.Warn("Replacing stale runtime connection", "runtimeID", runtimeID)
		_ = prev.Close()
	}
}

// Release removes the runtime connection if it is still the bound one
func (cm *ConnectionManager) Release(runtimeID string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.runtimeID == runtimeID {
		cm.conn = nil
		cm.runtimeID = ""
	}
}

// Current returns the bound runtime connection
func (cm *ConnectionManager) Current() (net.Conn, string, bool) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.conn, cm.runtimeID, cm.conn != nil
}

// CloseAll closes the bound connection, if any
func (cm *ConnectionManager) CloseAll() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.conn != nil {
		if err := cm.conn.Close(); err != nil {
			cm.Logger.Error("Failed to close runtime connection", "runtimeID", cm.runtimeID, "error", err)
		}
		cm.conn = nil
		cm.runtimeID = ""
	}
}

// SendErrorMessage sends an error message to the runtime
func SendErrorMessage(conn net.Conn, code int, message string) {
	errorData := ErrorData{
		Code:    code,
		Message: message,
	}

	errorBytes, err := json.Marshal(errorData)
	if err != nil {
		// Can't do much if marshaling fails
		return
	}

	// Ignore errors here as the connection might be closing
	_ = SendMessage(conn, defs.MsgError, errorBytes)
}

// SendMessage writes one framed message to the runtime. Header and payload
// go out in a single Write so frames from concurrent senders cannot
// interleave on the wire.
func SendMessage(conn net.Conn, msgType byte, payload []byte) error {
	frame := make([]byte, 8+len(payload))
	binary.BigEndian.PutUint16(frame[0:2], defs.MagicNumber)
	frame[2] = msgType
	frame[3] = 0 // Reserved
	binary.BigEndian.PutUint32(frame[4:8], uint32(len(payload)))
	copy(frame[8:], payload)

	if _, err := conn.Write(frame); err != nil {
		return fmt.Errorf("failed to write message frame: %w", err)
	}

	return nil
}

// ReadMessage reads one framed message off the connection
func ReadMessage(conn net.Conn) (byte, []byte, error) {
	// Read message header
	header := make([]byte, 8)
	if _, err := io.ReadFull(conn, header); err != nil {
		return 0, nil, err
	}

	// Parse header
	magic := binary.BigEndian.Uint16(header[0:2])
	msgType := header[2]
	payloadLen := binary.BigEndian.Uint32(header[4:8])

	// Validate magic number
	if magic != defs.MagicNumber {
		return 0, nil, fmt.Errorf("invalid magic number: %x", magic)
	}

	// Read payload
	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(conn, payload); err != nil {
		return 0, nil, err
	}

	return msgType, payload, nil
}
