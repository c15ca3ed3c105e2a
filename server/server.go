// Package server exposes the approval lifecycle over JSON/HTTP: agents create
// requests, humans approve or reject them, the orchestrator cancels them.
// The sweeper is not reachable through this surface - expiry is owned by the
// maintenance schedule.
package server

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/viant/approvals"
)

// Server hosts the HTTP decision channel.
type Server struct {
	service *approvals.Service
	server  *http.Server
}

// New creates an HTTP server for the given approval service.
func New(service *approvals.Service, config approvals.ServerConfig) *Server {
	ret := &Server{service: service}
	ret.server = &http.Server{
		Addr:         config.Address(),
		Handler:      ret.Handler(),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
	return ret
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/v1/approvals", s.handleCreate).Methods(http.MethodPost)
	router.HandleFunc("/v1/approvals/pending", s.handlePending).Methods(http.MethodGet)
	router.HandleFunc("/v1/approvals/{id}", s.handleGet).Methods(http.MethodGet)
	router.HandleFunc("/v1/approvals/{id}/decision", s.handleDecision).Methods(http.MethodPost)
	router.HandleFunc("/v1/approvals/{id}/cancel", s.handleCancel).Methods(http.MethodPost)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return router
}

// ListenAndServe starts serving; it blocks until Shutdown or failure.
func (s *Server) ListenAndServe() error {
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
