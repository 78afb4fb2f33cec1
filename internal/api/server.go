// Package api serves the score board and player statistics over HTTP and
// provides the matching client used by the game.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/tomz197/bugzapper/internal/store"
)

// Validation errors.
var (
	ErrInvalidScore = errors.New("invalid player name or score")
	ErrInvalidStats = errors.New("invalid player statistics data")
)

// Error bodies returned to clients.
const (
	MsgInvalidScore  = "Invalid player name or score"
	MsgInvalidStats  = "Invalid player statistics data"
	MsgInternalError = "Internal server error"
)

// ClearedMessage confirms a cleared score board.
const ClearedMessage = "All scores cleared successfully"

// maxRequestBody bounds POST bodies.
const maxRequestBody = 64 << 10

// Server exposes a Store over HTTP.
type Server struct {
	store  store.Store
	logger *log.Logger
	now    func() time.Time
	newID  func() string
}

// NewServer creates a Server backed by st. A nil logger discards output.
func NewServer(st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{
		store:  st,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// RegisterHandlers registers the API routes on mux.
func (s *Server) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/scores", s.handleTopScores)
	mux.HandleFunc("POST /api/scores", s.handleAddScore)
	mux.HandleFunc("GET /api/clearScores", s.handleClearScores)
	mux.HandleFunc("GET /api/playerStats", s.handleRecentStats)
	mux.HandleFunc("POST /api/playerStats", s.handleAddStats)
}

// Handler returns the routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterHandlers(mux)
	return s.LogRequests(mux)
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the body of a successful command without a record.
type MessageResponse struct {
	Message string `json:"message"`
}

// ScoreRequest is the body of POST /api/scores. Pointer fields tell a
// missing value apart from a zero one.
type ScoreRequest struct {
	PlayerName *string  `json:"playerName"`
	Score      *float64 `json:"score"`
}

// PlayerStatsRequest is the body of POST /api/playerStats.
type PlayerStatsRequest struct {
	PlayerName         *string  `json:"playerName"`
	BulletsFired       *float64 `json:"bulletsFired"`
	AsteroidsDestroyed *float64 `json:"asteroidsDestroyed"`
	LevelReached       *float64 `json:"levelReached"`
	TimePlayed         *float64 `json:"timePlayed"`
	Score              *float64 `json:"score"`
}

func (s *Server) handleTopScores(w http.ResponseWriter, r *http.Request) {
	scores, err := s.store.TopScores(r.Context(), store.TopScoresLimit)
	if err != nil {
		s.internalError(w, "load scores", err)
		return
	}
	s.writeJSON(w, http.StatusOK, scores)
}

func (s *Server) handleAddScore(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := decodeBody(w, r, &req, ScoreRequest.validate); err != nil {
		s.logger.Debug("rejected score", "err", err)
		s.sendError(w, http.StatusBadRequest, MsgInvalidScore)
		return
	}

	rec := store.ScoreRecord{
		ID:         s.newID(),
		PlayerName: store.TruncateName(*req.PlayerName),
		Score:      floorAtLeast(*req.Score, 0),
		Timestamp:  s.now().UTC(),
	}
	if err := s.store.AddScore(r.Context(), rec); err != nil {
		s.internalError(w, "save score", err)
		return
	}

	s.logger.Info("score added", "player", rec.PlayerName, "score", rec.Score)
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleClearScores(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ClearScores(r.Context()); err != nil {
		s.internalError(w, "clear scores", err)
		return
	}

	s.logger.Info(ClearedMessage)
	s.writeJSON(w, http.StatusOK, MessageResponse{Message: ClearedMessage})
}

func (s *Server) handleRecentStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.RecentPlayerStats(r.Context(), store.RecentStatLimit)
	if err != nil {
		s.internalError(w, "load player stats", err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleAddStats(w http.ResponseWriter, r *http.Request) {
	var req PlayerStatsRequest
	if err := decodeBody(w, r, &req, PlayerStatsRequest.validate); err != nil {
		s.logger.Debug("rejected player stats", "err", err)
		s.sendError(w, http.StatusBadRequest, MsgInvalidStats)
		return
	}

	rec := store.PlayerStatsRecord{
		ID:                 s.newID(),
		PlayerName:         store.TruncateName(*req.PlayerName),
		BulletsFired:       floorAtLeast(*req.BulletsFired, 0),
		AsteroidsDestroyed: floorAtLeast(*req.AsteroidsDestroyed, 0),
		LevelReached:       floorAtLeast(*req.LevelReached, 1),
		TimePlayed:         floorAtLeast(*req.TimePlayed, 0),
		Score:              floorAtLeast(*req.Score, 0),
		Timestamp:          s.now().UTC(),
	}
	rec.Accuracy = store.Accuracy(rec.AsteroidsDestroyed, rec.BulletsFired)
	if rec.Accuracy == nil {
		s.logger.Warn("accuracy unavailable, no shots fired", "player", rec.PlayerName)
	}

	if err := s.store.AddPlayerStats(r.Context(), rec); err != nil {
		s.internalError(w, "save player stats", err)
		return
	}

	s.logger.Info("player stats added", "player", rec.PlayerName, "score", rec.Score, "level", rec.LevelReached)
	s.writeJSON(w, http.StatusOK, rec)
}

func (req ScoreRequest) validate() error {
	if !validName(req.PlayerName) || req.Score == nil {
		return ErrInvalidScore
	}
	return nil
}

func (req PlayerStatsRequest) validate() error {
	if !validName(req.PlayerName) ||
		req.BulletsFired == nil ||
		req.AsteroidsDestroyed == nil ||
		req.LevelReached == nil ||
		req.TimePlayed == nil ||
		req.Score == nil {
		return ErrInvalidStats
	}
	return nil
}

func validName(name *string) bool {
	return name != nil && *name != ""
}

// maxSafeInt is the largest integer a float64 represents exactly.
const maxSafeInt = 1<<53 - 1

// floorAtLeast floors v and clamps it to [lo, maxSafeInt].
func floorAtLeast(v float64, lo int) int {
	v = math.Floor(v)
	if v < float64(lo) {
		return lo
	}
	if v > maxSafeInt {
		return maxSafeInt
	}
	return int(v)
}

// decodeBody reads a bounded JSON body into dst and checks it with validate.
func decodeBody[T any](w http.ResponseWriter, r *http.Request, dst *T, validate func(T) error) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return validate(*dst)
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Error(op+" failed", "err", err)
	s.sendError(w, http.StatusInternalServerError, MsgInternalError)
}

func (s *Server) sendError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", "status", status, "err", err)
	}
}
