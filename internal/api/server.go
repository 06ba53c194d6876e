package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/adifpush/adifpush/pkg/logger"
)

// Server wraps the status API's http.Server with graceful shutdown.
type Server struct {
	srv    *http.Server
	logger *logger.Logger
}

// NewServer creates the status server on the configured port.
func NewServer(router *Router, port int, log *logger.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           router.Routes(),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: log.Named("api-server"),
	}
}

// Serve runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Status API listening", logger.String("addr", s.srv.Addr))
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down status API: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("status API failed: %w", err)
	}
}
