package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/qtranspile/pkg/errors"
	"github.com/matzehuels/qtranspile/pkg/pipeline"
	"github.com/matzehuels/qtranspile/pkg/store"
	"github.com/matzehuels/qtranspile/pkg/target"
)

// DefaultListLimit and MaxListLimit bound GET /v1/results.
const (
	DefaultListLimit = 20
	MaxListLimit     = 200
)

// CompileRequest is the body of POST /v1/compile. Target must name a builtin
// target; the service never reads target files.
type CompileRequest struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	pipeline.Options
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleTargets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, target.All())
}

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	var req CompileRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	if req.Source == "" {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "source is required"))
		return
	}
	if req.Name == "" {
		req.Name = "circuit"
	}
	if req.Target == "" {
		req.Target = pipeline.DefaultTarget
	}
	dev, err := target.Lookup(req.Target)
	if err != nil {
		s.writeError(w, err)
		return
	}
	req.Device = dev

	res, err := s.runner.Compile(r.Context(), req.Name, req.Source, req.Options)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.Save(r.Context(), res.Record()); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	limit := DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > MaxListLimit {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "limit must be between 1 and %d", MaxListLimit))
			return
		}
		limit = n
	}
	recs, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if recs == nil {
		recs = []*store.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}
