package http

// this is entry point of the http request handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"

	"gitlab.com/interp-bridge.net/internal/core/ports/primary"
	"gitlab.com/interp-bridge.net/internal/core/services/bridgesvc"
	"gitlab.com/interp-bridge.net/internal/handlers/execute"
	"gitlab.com/interp-bridge.net/internal/handlers/runtime"
)

type Server struct {
	router      *mux.Router
	srv         *http.Server
	Port        int
	ServiceName string
	service     bridgesvc.IBridgeService
	logger      primary.Logger
}

func NewServer(port int, serviceName string, service bridgesvc.IBridgeService, logger primary.Logger) *Server {
	return &Server{
		Port:        port,
		ServiceName: serviceName,
		service:     service,
		logger:      logger,
	}
}

func (s *Server) Init() error {
	r := mux.NewRouter()
	execute.NewHandler(s.service, s.logger).RegisterRoutes(r)
	runtime.NewHandler(s.service, s.logger).RegisterRoutes(r)
	s.router = r
	return nil
}

func (s *Server) Start(ctx context.Context) {
	// Set up server
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start the server in a goroutine
	go func() {
		s.logger.Info("Server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()
}

func (s *Server) Stop() {
	s.logger.Info("Shutting down http server...")
	if s.srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Error("Http server forced to shutdown", "error", err)
	}
}
