// internal/server/server.go
//
// HTTP server construction and lifecycle.
//
// Production hardening recommends:
//
//   - ReadTimeout   - abort slow-loris headers (10 s)
//   - WriteTimeout  - cap total response time (15 s)
//   - IdleTimeout   - close keep-alives on idle clients (60 s)
//
// Run blocks until the listener fails or the context is cancelled, then
// drains in-flight requests before returning.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// New constructs an *http.Server with sensible defaults.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Run serves srv until ctx is cancelled, then shuts down gracefully
// with a 10 second drain window.
func Run(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		zap.S().Infow("http server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	zap.S().Infow("http server stopped")
	return nil
}
