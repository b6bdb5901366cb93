// Package server exposes the topic gate over HTTP JSON.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rcliao/topic-gate/internal/gate"
	"github.com/rcliao/topic-gate/internal/model"
	"github.com/rcliao/topic-gate/internal/store"
)

// New builds the HTTP handler for a gate. Routes map one-to-one onto the
// gate operations; a successful "not covered" check is a 200 and is never
// conflated with a storage failure, which surfaces as 5xx with a
// machine-readable error code.
func New(g *gate.Gate, logger *slog.Logger) http.Handler {
	s := &srv{gate: g, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(logger), middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Post("/check", s.handleCheck)
	r.Post("/topics", s.handleRecord)
	r.Post("/search-cache", s.handleStoreSearch)
	r.Post("/reset", s.handleReset)
	r.Get("/stats", s.handleStats)

	return r
}

type srv struct {
	gate   *gate.Gate
	logger *slog.Logger
}

// requestLogger logs one line per request to the server's logger, carrying
// chi's request ID so log lines correlate with responses.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, req)
			logger.Info("request",
				"method", req.Method,
				"path", req.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(req.Context()))
		})
	}
}

type checkRequest struct {
	Topic string `json:"topic"`
}

type recordRequest struct {
	Topic    string `json:"topic"`
	SourceID string `json:"source_id,omitempty"`
}

type storeSearchRequest struct {
	Query   string `json:"query"`
	Topic   string `json:"topic,omitempty"`
	Snippet string `json:"snippet"`
}

type resetRequest struct {
	Scope string `json:"scope"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *srv) handleCheck(w http.ResponseWriter, req *http.Request) {
	var in checkRequest
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		s.writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	res, err := s.gate.Check(req.Context(), in.Topic)
	if err != nil {
		s.writeGateError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *srv) handleRecord(w http.ResponseWriter, req *http.Request) {
	var in recordRequest
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		s.writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	rec, err := s.gate.Record(req.Context(), in.Topic, in.SourceID)
	if err != nil {
		s.writeGateError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, rec)
}

func (s *srv) handleStoreSearch(w http.ResponseWriter, req *http.Request) {
	var in storeSearchRequest
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		s.writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	entry, err := s.gate.StoreSearch(req.Context(), in.Query, in.Topic, in.Snippet)
	if err != nil {
		s.writeGateError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, entry)
}

func (s *srv) handleReset(w http.ResponseWriter, req *http.Request) {
	var in resetRequest
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		s.writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	sum, err := s.gate.Reset(req.Context(), model.ResetScope(in.Scope))
	if err != nil {
		s.writeGateError(w, err)
		return
	}
	s.logger.Info("knowledge reset",
		"scope", in.Scope,
		"topics_removed", sum.TopicsRemoved,
		"cache_entries_removed", sum.CacheEntriesRemoved)
	s.writeJSON(w, http.StatusOK, sum)
}

func (s *srv) handleStats(w http.ResponseWriter, req *http.Request) {
	st, err := s.gate.Stats(req.Context())
	if err != nil {
		s.writeGateError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, st)
}

// writeGateError maps gate and storage errors onto distinct statuses and
// error codes so clients can tell invalid input, unreachable storage, and
// corrupt storage apart.
func (s *srv) writeGateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gate.ErrInvalidInput):
		s.writeError(w, http.StatusBadRequest, "invalid_input", err)
	case errors.Is(err, store.ErrStorageCorrupt):
		s.writeError(w, http.StatusInternalServerError, "storage_corrupt", err)
	case errors.Is(err, store.ErrStorageUnavailable):
		s.writeError(w, http.StatusServiceUnavailable, "storage_unavailable", err)
	default:
		s.writeError(w, http.StatusInternalServerError, "internal", err)
	}
}

func (s *srv) writeError(w http.ResponseWriter, status int, code string, err error) {
	if status >= 500 {
		s.logger.Error("request failed", "code", code, "err", err)
	}
	s.writeJSON(w, status, errorResponse{Error: code, Message: err.Error()})
}

func (s *srv) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}
