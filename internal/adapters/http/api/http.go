// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/okian/compare/internal/adapters/http/openapi"
	service "github.com/okian/compare/internal/app"
	"github.com/okian/compare/internal/domain/matchmaking"
	"github.com/okian/compare/internal/domain/model"
	"github.com/okian/compare/internal/domain/types"
	"github.com/okian/compare/pkg/logger"
)

// maxBodyBytes bounds request bodies; verdicts and songs are tiny.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the session service.
type Dependencies interface {
	NextMatchup(ctx context.Context) (types.Matchup, error)
	RecordMatch(ctx context.Context, v types.Verdict) (types.MatchResult, error)

	AddSong(ctx context.Context, req types.NewSong) (model.Song, error)
	Songs(ctx context.Context) []model.Song

	Leaderboard(ctx context.Context, limit int) ([]types.Standing, error)
	Standing(ctx context.Context, songID int) (types.Standing, error)

	Reload(ctx context.Context) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	opts options

	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	songsHandler       *SongsHandler
	matchupHandler     *MatchupHandler
	matchesHandler     *MatchesHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
	adminHandler       *AdminHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	o := applyOptions(opts)
	rw := &responder{log: o.log, validate: validator.New()}
	return &Server{
		opts:               o,
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		songsHandler:       newSongsHandler(deps, rw),
		matchupHandler:     newMatchupHandler(deps, rw),
		matchesHandler:     newMatchesHandler(deps, rw),
		leaderboardHandler: newLeaderboardHandler(deps, rw, o.maxLimit),
		rankHandler:        newRankHandler(deps, rw),
		adminHandler:       newAdminHandler(deps, rw),
	}
}

// Routes builds the chi router serving every endpoint.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/metrics", MetricsMiddleware(s.healthHandler.HandleMetrics, "metrics"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Get("/openapi.yaml", MetricsMiddleware(openapi.HandleSpec, "openapi"))

	r.Get("/songs", MetricsMiddleware(s.songsHandler.HandleListSongs, "songs"))
	r.Post("/songs", MetricsMiddleware(s.songsHandler.HandleAddSong, "songs"))
	r.Get("/matchup", MetricsMiddleware(s.matchupHandler.HandleGetMatchup, "matchup"))
	r.Post("/matches", MetricsMiddleware(s.matchesHandler.HandlePostMatch, "matches"))
	r.Get("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	r.Get("/rank/{song_id}", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
	r.Post("/admin/reload", MetricsMiddleware(s.adminHandler.HandleReload, "reload"))

	return r
}

type statusResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// statusFor maps upstream sentinels onto an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, matchmaking.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, matchmaking.ErrInvalidArgument),
		errors.Is(err, model.ErrInvalidSong),
		errors.Is(err, model.ErrInvalidMatch):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrLimitExceeded):
		return http.StatusBadRequest, "limit_exceeded"
	case errors.Is(err, matchmaking.ErrInsufficientPlayers):
		return http.StatusConflict, "insufficient_players"
	case errors.Is(err, matchmaking.ErrAlreadyExists):
		return http.StatusConflict, "already_exists"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "not_started"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// responder is shared by handlers that decode bodies or surface
// service errors.
type responder struct {
	log      logger.Logger
	validate *validator.Validate
}

func (rw *responder) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		rw.log.Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.String("request_id", middleware.GetReqID(r.Context())),
			logger.Error(err),
		)
	}
	writeError(w, status, code, err)
}

// decode reads a JSON body into v and validates its struct tags.
func (rw *responder) decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	if err := rw.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}
