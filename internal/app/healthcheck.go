package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// healthHandler reports 200 once the boot sequence has finished and 503
// while it is still running.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	if !a.Ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintln(w, "BOOTING")
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// ensureHealthCheckServer starts the health check server unless it is
// already running, so repeated boots keep serving from the same listener.
func (a *App) ensureHealthCheckServer(port int) error {
	a.mu.Lock()
	running := a.httpServer != nil
	a.mu.Unlock()
	if running {
		a.logger.Debug("Health check server already running.")
		return nil
	}
	_, err := a.startHealthCheckServer(port)
	return err
}

// startHealthCheckServer binds the health check listener and serves
// /health and /metrics in the background. It returns the bound address.
func (a *App) startHealthCheckServer(port int) (string, error) {
	a.logger.Debug("Configuring health check server.")
	router := mux.NewRouter()
	router.HandleFunc("/health", a.healthHandler).Methods(http.MethodGet)
	router.Handle("/metrics", a.metrics.handler()).Methods(http.MethodGet)

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return "", fmt.Errorf("failed to bind health check server: %w", err)
	}

	srv := &http.Server{Handler: router, ReadHeaderTimeout: 5 * time.Second}
	a.mu.Lock()
	if a.httpServer != nil {
		a.mu.Unlock()
		_ = ln.Close()
		return "", errors.New("health check server is already running")
	}
	a.httpServer = srv
	a.mu.Unlock()

	addr := ln.Addr().String()
	go func() {
		a.logger.Info("🩺 Health check server starting", "address", fmt.Sprintf("http://%s/health", addr))
		// Serve returns http.ErrServerClosed on graceful shutdown.
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Health check server failed unexpectedly", "error", err)
		}
	}()
	return addr, nil
}

func (a *App) closeHealthCheckServer() error {
	a.mu.Lock()
	srv := a.httpServer
	a.httpServer = nil
	a.mu.Unlock()

	if srv == nil {
		a.logger.Debug("Health check server was not running.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a.logger.Info("🩺 Shutting down health check server...")
	if err := srv.Shutdown(ctx); err != nil {
		a.logger.Error("Health check server shutdown failed", "error", err)
		return err
	}
	a.logger.Debug("Health check server shut down gracefully.")
	return nil
}
