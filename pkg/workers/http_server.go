package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type httpServer struct {
	srv *http.Server
}

func NewHTTPServer(addr string, handler http.Handler) (*httpServer, error) {
	if addr == "" {
		return nil, fmt.Errorf("listen address is empty")
	}
	return &httpServer{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

func (h *httpServer) Name() string { return "http_server" }

func (h *httpServer) Run(ctx context.Context) error {
	slog.Info("Starting worker", "name", h.Name(), "addr", h.srv.Addr)
	defer slog.Info("Worker stopped", "name", h.Name())

	errCh := make(chan error, 1)
	go func() {
		if err := h.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving HTTP: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}
	return nil
}
