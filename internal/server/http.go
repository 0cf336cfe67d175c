package server

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/puzzlewager/puzzlewager/internal/auth"
	"github.com/puzzlewager/puzzlewager/internal/config"
	"github.com/puzzlewager/puzzlewager/internal/leaderboard"
	"github.com/puzzlewager/puzzlewager/internal/live"
	"github.com/puzzlewager/puzzlewager/internal/match"
	"github.com/puzzlewager/puzzlewager/internal/puzzle"
)

// Handlers groups the route handlers the server mounts.
type Handlers struct {
	Tokens      *auth.Manager
	Puzzle      *puzzle.HTTPHandlers
	Match       *match.HTTPHandlers
	Leaderboard *leaderboard.Service
	Live        *live.Hub
}

// NewHTTPServer wires base routes (health, metrics) plus the API surface.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, pool *pgxpool.Pool, redisClient *redis.Client, h Handlers) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		if err := pingDependencies(r.Context(), pool, redisClient); err != nil {
			logger.Error().Err(err).Msg("dependency ping failed")
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	// Puzzle session surface. Demo calls are anonymous, live calls carry
	// the wallet bearer token; Optional lets the handler decide.
	mux.HandleFunc("/v1/puzzle/get-or-create", h.Tokens.Optional(h.Puzzle.GetOrCreate))
	mux.HandleFunc("/v1/puzzle/submit-guess", h.Tokens.Optional(h.Puzzle.SubmitGuess))
	mux.HandleFunc("/v1/puzzle/reset-game", h.Tokens.Optional(h.Puzzle.ResetGame))
	mux.HandleFunc("/v1/puzzle/verify-solution", h.Tokens.Middleware(h.Puzzle.VerifySolution))

	// Match queries
	mux.HandleFunc("/v1/matches", h.Tokens.Middleware(h.Match.ListMine))
	mux.HandleFunc("/v1/matches/archive", h.Tokens.Middleware(h.Match.Archive))
	mux.HandleFunc("/v1/lobbies", h.Match.ListLobbies)
	mux.HandleFunc("/v1/stats", h.Tokens.Middleware(h.Match.Stats))

	mux.HandleFunc("/v1/leaderboard", leaderboard.Handler(h.Leaderboard, logger))

	mux.HandleFunc("/ws/matches", h.Tokens.Middleware(h.Live.Handler))

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, redisClient *redis.Client) error {
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	return redisClient.Ping(ctx).Err()
}
