package relay

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type errorBody struct {
	Error string `json:"error"`
}

type okBody struct {
	OK bool `json:"ok"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, okBody{OK: true})
}

func pathUsername(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "username"))
}

// handleGetUser answers null rather than 404 for unknown users.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	username := pathUsername(r)
	if username == "" {
		writeError(w, http.StatusBadRequest, "Invalid username")
		return
	}

	rec, err := s.repo.Find(r.Context(), username)
	if err != nil {
		s.logger.Error("find record",
			zap.String("username", username),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handlePutUser(w http.ResponseWriter, r *http.Request) {
	username := pathUsername(r)
	if username == "" {
		writeError(w, http.StatusBadRequest, "Invalid username")
		return
	}

	var body any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes)).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	obj, ok := body.(map[string]any)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if name, _ := obj["username"].(string); name != username {
		writeError(w, http.StatusBadRequest, "Username in URL must match body.username")
		return
	}

	rec := Sanitize(username, obj)
	if err := s.repo.Upsert(r.Context(), rec); err != nil {
		s.metrics.upserts.WithLabelValues("error").Inc()
		s.logger.Error("upsert record",
			zap.String("username", username),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.metrics.upserts.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, okBody{OK: true})
}
