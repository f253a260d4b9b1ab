// Package leaderboardhttp exposes the leaderboard over HTTP with JSON bodies.
package leaderboardhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/rescuerunner/runnerboard"
)

var log = logrus.StandardLogger().WithFields(logrus.Fields{
	"component": "leaderboardhttp",
})

const (
	requestTimeout = 2 * time.Second
	maxBodyBytes   = 1 << 16
)

type Service interface {
	Submit(ctx context.Context, sub runnerboard.Submission) (runnerboard.Result, error)
	Top(ctx context.Context, limit int) (runnerboard.Board, error)
	Standing(ctx context.Context, identity string) (runnerboard.RankedEntry, error)
	Health(ctx context.Context) (details map[string]interface{}, ok bool)
}

type Server struct {
	svc Service

	// debug exposes internal error details to clients.
	debug bool
}

func NewServer(svc Service, debug bool) *Server {
	return &Server{
		svc:   svc,
		debug: debug,
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// submitRequest also accepts the address/username names used by older game
// clients.
type submitRequest struct {
	Identity    string          `json:"identity"`
	Address     string          `json:"address"`
	DisplayName string          `json:"displayName"`
	Username    string          `json:"username"`
	Score       json.RawMessage `json:"score"`
	GameVersion string          `json:"gameVersion"`
}

func (req submitRequest) submission() runnerboard.Submission {
	sub := runnerboard.Submission{
		Identity:    req.Identity,
		DisplayName: req.DisplayName,
		GameVersion: req.GameVersion,
	}
	if sub.Identity == "" {
		sub.Identity = req.Address
	}
	if sub.DisplayName == "" {
		sub.DisplayName = req.Username
	}

	// Anything that is not a bare JSON number, quoted strings included,
	// fails score validation.
	raw := bytes.TrimSpace(req.Score)
	if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		sub.Score = json.Number(raw)
	}
	return sub
}

type submitResponse struct {
	Message      string            `json:"message"`
	Accepted     bool              `json:"accepted"`
	Entry        runnerboard.Entry `json:"entry"`
	Rank         int               `json:"rank"`
	TotalPlayers int               `json:"totalPlayers"`
}

func (s *Server) Scores(w http.ResponseWriter, r *http.Request) {
	logger := log.WithFields(logrus.Fields{
		"handler": "scores",
	})

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer", nil)
			return
		}
		limit = parsed
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	board, err := s.svc.Top(ctx, limit)
	if err != nil {
		logger.WithError(err).Error("Top failed")
		s.writeError(w, http.StatusInternalServerError, "internal server error", err)
		return
	}

	s.writeJSON(w, http.StatusOK, board)
}

func (s *Server) Submit(w http.ResponseWriter, r *http.Request) {
	logger := log.WithFields(logrus.Fields{
		"handler": "submit",
	})

	var req submitRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "request body must be a JSON object", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res, err := s.svc.Submit(ctx, req.submission())
	var verr *runnerboard.ValidationError
	switch {
	case errors.As(err, &verr):
		s.writeError(w, http.StatusBadRequest, verr.Error(), nil)
		return
	case err != nil:
		logger.WithError(err).Error("Submit failed")
		s.writeError(w, http.StatusInternalServerError, "internal server error", err)
		return
	}

	s.writeJSON(w, http.StatusCreated, submitResponse{
		Message:      "Score submitted successfully",
		Accepted:     res.Accepted,
		Entry:        res.Entry,
		Rank:         res.Rank,
		TotalPlayers: res.TotalPlayers,
	})
}

func (s *Server) Standing(w http.ResponseWriter, r *http.Request) {
	logger := log.WithFields(logrus.Fields{
		"handler": "standing",
	})

	identity := chi.URLParam(r, "identity")

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	entry, err := s.svc.Standing(ctx, identity)
	switch {
	case errors.Is(err, runnerboard.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "no score for "+runnerboard.NormalizeIdentity(identity), nil)
		return
	case errors.Is(err, runnerboard.ErrValidation):
		s.writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	case err != nil:
		logger.WithError(err).Error("Standing failed")
		s.writeError(w, http.StatusInternalServerError, "internal server error", err)
		return
	}

	s.writeJSON(w, http.StatusOK, entry)
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	details, ok := s.svc.Health(ctx)
	if details == nil {
		details = make(map[string]interface{})
	}
	details["healthy"] = ok

	status := http.StatusOK
	if !ok {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, details)
}

func (s *Server) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", runnerboard.ErrUnsupported)
}

func (s *Server) NotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, http.StatusNotFound, "not found", nil)
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string, cause error) {
	rsp := errorResponse{Error: msg}
	if s.debug && cause != nil {
		rsp.Details = cause.Error()
	}
	s.writeJSON(w, status, rsp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("json encoding failed")
	}
}
