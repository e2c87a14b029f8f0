// package gateway implements the callback endpoint the interpreter
// subprocess dials back into.
package gateway

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"gitlab.com/interp-bridge.net/internal/core/ports/primary"
	"gitlab.com/interp-bridge.net/internal/core/ports/secondary"
	"gitlab.com/interp-bridge.net/internal/domain"
	"gitlab.com/interp-bridge.net/internal/gateway/connectionmanager"
	"gitlab.com/interp-bridge.net/internal/gateway/defs"
	"gitlab.com/interp-bridge.net/internal/gateway/handlers"
	"gitlab.com/interp-bridge.net/internal/gateway/publishers"
	"gitlab.com/interp-bridge.net/internal/static/errs"
)

// Server accepts the interpreter's callback connection and routes framed
// messages to per-type handlers. It also implements bridge.Dispatcher for
// the outbound execute stream.
type Server struct {
	address       string
	sink          primary.ExecutionSink
	heartbeats    primary.HeartbeatSink
	codec         secondary.ProtocolCodec
	token         string
	logger        primary.Logger
	connectionMgr *connectionmanager.ConnectionManager
	handlers      map[byte]primary.MessageHandler
	publisher     *publishers.ExecutePublisher
	readyCh       chan domain.RuntimeHello
	failureCh     chan string

	mu       sync.Mutex
	listener net.Listener
	stopCh   chan struct{}
	running  bool
}

// ServerOption configures a Server
type ServerOption func(*Server)

// WithAddress sets the listen address. Port 0 lets the OS pick.
func WithAddress(address string) ServerOption {
	return func(s *Server) {
		s.address = address
	}
}

// NewServer creates a new gateway server
func NewServer(
	sink primary.ExecutionSink,
	heartbeats primary.HeartbeatSink,
	codec secondary.ProtocolCodec,
	token string,
	logger primary.Logger,
	options ...ServerOption,
) *Server {
	server := &Server{
		address:       "127.0.0.1:0",
		sink:          sink,
		heartbeats:    heartbeats,
		codec:         codec,
		token:         token,
		logger:        logger,
		connectionMgr: connectionmanager.NewConnectionManager(logger),
		publisher:     publishers.NewExecutePublisher(logger),
		readyCh:       make(chan domain.RuntimeHello, 1),
		failureCh:     make(chan string, 4),
	}

	// Apply options
	for _, option := range options {
		option(server)
	}

	// Register message handlers
	server.setupMessageHandlers()

	return server
}

// setupMessageHandlers registers all message handlers
func (s *Server) setupMessageHandlers() {
	s.handlers = map[byte]primary.MessageHandler{
		defs.MsgRuntimeReady:     &handlers.RuntimeReadyHandler{ConnectionMgr: s.connectionMgr, Codec: s.codec, Token: s.token, ReadyCh: s.readyCh, Logger: s.logger},
		defs.MsgRuntimeHeartbeat: &handlers.HeartbeatHandler{Heartbeats: s.heartbeats, Logger: s.logger},
		defs.MsgExecResult:       &handlers.ExecResultHandler{Sink: s.sink, Codec: s.codec, Logger: s.logger},
		defs.MsgExecOutput:       &handlers.ExecOutputHandler{Sink: s.sink, Codec: s.codec, Logger: s.logger},
		defs.MsgWatchdogAlert:    &handlers.WatchdogAlertHandler{Codec: s.codec, FailureCh: s.failureCh, Logger: s.logger},
	}
}

// Start binds the listener and begins accepting connections
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("gateway already started on %s", s.listener.Addr())
	}

	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to bind gateway endpoint: %w", err)
	}
	s.listener = listener
	s.stopCh = make(chan struct{})
	s.running = true

	s.logger.Info("Gateway endpoint listening", "address", listener.Addr().String())

	// Accept connections in a goroutine
	go s.acceptConnections(listener, s.stopCh)

	return nil
}

// Stop closes the listener and the runtime connection. Idempotent.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	listener := s.listener
	s.mu.Unlock()

	if listener != nil {
		if err := listener.Close(); err != nil {
			s.logger.Error("Failed to close gateway listener", "error", err)
		}
	}

	s.connectionMgr.CloseAll()
	return nil
}

// Addr returns the bound address, negotiated when the listen port was 0
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return s.address
	}
	return s.listener.Addr().String()
}

// Ready delivers the runtime's readiness announcements
func (s *Server) Ready() <-chan domain.RuntimeHello {
	return s.readyCh
}

// Failures delivers explicit failure signals raised over the gateway
func (s *Server) Failures() <-chan string {
	return s.failureCh
}

// Dispatch sends one submission to the connected runtime. Implements
// bridge.Dispatcher.
func (s *Server) Dispatch(ctx context.Context, sub *domain.Submission) error {
	conn, _, ok := s.connectionMgr.Current()
	if !ok {
		return errs.RuntimeNotConnected
	}

	payload, err := s.codec.EncodeExecute(sub)
	if err != nil {
		return fmt.Errorf("failed to encode submission %s: %w", sub.ID, err)
	}

	return s.publisher.PublishMessage(ctx, conn, payload)
}

// acceptConnections accepts incoming connections
func (s *Server) acceptConnections(listener net.Listener, stopCh chan struct{}) {
	for {
		select {
		case <-stopCh:
			return
		default:
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-stopCh:
					return
				default:
					s.logger.Error("Failed to accept connection", "error", err)
					time.Sleep(defs.ConnectionRetryDelay) // Avoid tight loop on error
					continue
				}
			}

			// Handle connection in a goroutine
			go s.handleConnection(conn, stopCh)
		}
	}
}

// handleConnection handles a single runtime connection
func (s *Server) handleConnection(conn net.Conn, stopCh chan struct{}) {
	defer conn.Close()

	// Set initial timeout for the ready handshake
	if err := conn.SetDeadline(time.Now().Add(defs.InitialHandshakeTimeout)); err != nil {
		s.logger.Warn("Failed to set handshake deadline", "error", err)
	}

	// Read and process messages
	var runtimeID string
	for {
		select {
		case <-stopCh:
			return
		default:
			// Read and parse message
			msgType, payload, err := connectionmanager.ReadMessage(conn)
			if err != nil {
				if err != io.EOF {
					s.logger.Error("Failed to read message", "error", err)
				}
				// Remove connection on error
				if runtimeID != "" {
					s.connectionMgr.Release(runtimeID)
					s.logger.Info("Runtime disconnected", "runtimeID", runtimeID)
				}
				return
			}

			// Find handler for message type
			handler, exists := s.handlers[msgType]
			if !exists {
				s.logger.Error("Unknown message type", "type", msgType)
				connectionmanager.SendErrorMessage(conn, 2016, fmt.Sprintf("Unknown message type: %d", msgType))
				continue
			}

			// Create context for message handling
			ctx := context.Background()

			// Handle message
			err = handler.HandleMessage(ctx, conn, payload, &runtimeID)
			if err != nil {
				s.logger.Error("Error handling message", "type", msgType, "error", err)
				if runtimeID != "" {
					s.connectionMgr.Release(runtimeID)
					s.logger.Info("Runtime disconnected due to error", "runtimeID", runtimeID)
				}
				return
			}

			// After the ready handshake, remove the timeout
			if msgType == defs.MsgRuntimeReady {
				if err := conn.SetDeadline(time.Time{}); err != nil {
					s.logger.Warn("Failed to clear connection deadline", "error", err)
				}
			}
		}
	}
}
