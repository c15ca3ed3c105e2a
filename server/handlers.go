package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/viant/approvals/service/approval"
)

// decisionRequest is the payload of POST /v1/approvals/{id}/decision.
type decisionRequest struct {
	Approved bool   `json:"approved"`
	Reason   string `json:"reason,omitempty"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	request := &approval.NewRequest{}
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	created, err := s.service.CreateRequest(r.Context(), request)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handlePending(w http.ResponseWriter, r *http.Request) {
	pending, err := s.service.Pending(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if pending == nil {
		pending = []*approval.Request{}
	}
	writeJSON(w, http.StatusOK, pending)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	request, err := s.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request) {
	decision := &decisionRequest{}
	if err := json.NewDecoder(r.Body).Decode(decision); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	updated, err := s.service.Decide(r.Context(), mux.Vars(r)["id"], decision.Approved, decision.Reason)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	updated, err := s.service.CancelRequest(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Health(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, approval.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, approval.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, approval.ErrInvalidState):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, approval.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
