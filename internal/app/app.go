package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/puzzlewager/puzzlewager/internal/auth"
	"github.com/puzzlewager/puzzlewager/internal/chain"
	"github.com/puzzlewager/puzzlewager/internal/config"
	"github.com/puzzlewager/puzzlewager/internal/db/repository"
	"github.com/puzzlewager/puzzlewager/internal/leaderboard"
	"github.com/puzzlewager/puzzlewager/internal/live"
	"github.com/puzzlewager/puzzlewager/internal/logging"
	"github.com/puzzlewager/puzzlewager/internal/match"
	"github.com/puzzlewager/puzzlewager/internal/puzzle"
	"github.com/puzzlewager/puzzlewager/internal/server"
)

// Application aggregates shared infrastructure (DB, cache, chain mirror,
// HTTP server) and the background loops that keep views current.
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server

	ingestor *chain.Ingestor
	lbSvc    *leaderboard.Service
	liveHub  *live.Hub
}

// New bootstraps config, logger, Postgres, Redis, the chain snapshot
// store and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	operator, err := chain.ParseAddress(cfg.Chain.OperatorAddress)
	if err != nil {
		return nil, fmt.Errorf("operator address: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.Postgres.DSN()+" pool_max_conns=10")
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	signer, err := puzzle.NewSigner(cfg.Security.SignerPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("puzzle master key: %w", err)
	}

	store := chain.NewStore(logger)
	ingestor := chain.NewIngestor(redisClient, store, cfg.Chain.EventsChannel, logger)

	sessionRepo := repository.NewSessionRepository(pool, cfg.Chain.ID)
	puzzleSvc := puzzle.NewService(sessionRepo, redisClient, chain.NewReader(store), signer, logger, puzzle.ServiceOptions{
		LockTTL:  cfg.Puzzle.LockTTL,
		LockWait: cfg.Puzzle.LockWait,
	})

	lbSvc := leaderboard.NewService(store, redisClient, operator, logger, leaderboard.ServiceOptions{
		ProtocolFeeBps: cfg.Leaderboard.ProtocolFeeBps,
		CacheTTL:       cfg.Leaderboard.CacheTTL,
	})

	tokens := auth.NewManager([]byte(cfg.Security.JWTSecret), cfg.Name, 0)
	liveHub := live.NewHub(store, operator, cfg.Puzzle.TickInterval, logger)

	httpServer := server.NewHTTPServer(cfg, logger, pool, redisClient, server.Handlers{
		Tokens:      tokens,
		Puzzle:      puzzle.NewHTTPHandlers(puzzleSvc, logger),
		Match:       match.NewHTTPHandlers(store, operator, repository.NewSettingsRepository(pool), logger),
		Leaderboard: lbSvc,
		Live:        liveHub,
	})

	return &Application{
		cfg:      cfg,
		logger:   logger,
		pool:     pool,
		redis:    redisClient,
		http:     httpServer,
		ingestor: ingestor,
		lbSvc:    lbSvc,
		liveHub:  liveHub,
	}, nil
}

// Run starts the background loops and the HTTP server, then blocks until
// shutdown is requested.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bgCtx, cancelBg := context.WithCancel(ctx)
	defer cancelBg()

	go func() {
		if err := a.ingestor.Run(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error().Err(err).Msg("chain ingestor stopped")
		}
	}()
	go func() {
		if err := a.lbSvc.Run(bgCtx, a.cfg.Leaderboard.RefreshInterval); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error().Err(err).Msg("leaderboard refresher stopped")
		}
	}()
	go func() {
		if err := a.liveHub.Run(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error().Err(err).Msg("live hub stopped")
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		errCh <- a.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()
	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn().Err(err).Msg("http shutdown incomplete")
	}
	cancelBg()
	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("redis close failed")
	}
	return nil
}
