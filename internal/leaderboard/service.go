package leaderboard

import (
	"context"
	"encoding/json"
	"math/big"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/puzzlewager/puzzlewager/internal/chain"
	"github.com/puzzlewager/puzzlewager/internal/match"
)

// Entry is one player's aggregated record. Profit is net wei across all
// completed matches: winners gain the pot minus the protocol fee, losers
// forfeit their wager, ties wash.
type Entry struct {
	Player string   `json:"player"`
	Wins   int      `json:"wins"`
	Losses int      `json:"losses"`
	Ties   int      `json:"ties"`
	Profit *big.Int `json:"profit"`
	Rank   int      `json:"rank"`
}

// ServiceOptions configures aggregation and caching.
type ServiceOptions struct {
	ProtocolFeeBps int64
	CacheTTL       time.Duration
	CacheKey       string
	RankKey        string
}

// Service recomputes the leaderboard from the chain snapshot and caches
// the result in Redis. Entries are always derived, never persisted
// independently: the Complete matches are the source of truth.
type Service struct {
	store    *chain.Store
	redis    *redis.Client
	operator chain.Address
	logger   zerolog.Logger

	feeBps   int64
	cacheTTL time.Duration
	cacheKey string
	rankKey  string
}

// NewService constructs the leaderboard service.
func NewService(store *chain.Store, redisClient *redis.Client, operator chain.Address, logger zerolog.Logger, opts ServiceOptions) *Service {
	cacheKey := opts.CacheKey
	if cacheKey == "" {
		cacheKey = "lb:entries"
	}
	rankKey := opts.RankKey
	if rankKey == "" {
		rankKey = "lb:profit"
	}
	cacheTTL := opts.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &Service{
		store:    store,
		redis:    redisClient,
		operator: operator,
		logger:   logger.With().Str("component", "leaderboard").Logger(),
		feeBps:   opts.ProtocolFeeBps,
		cacheTTL: cacheTTL,
		cacheKey: cacheKey,
		rankKey:  rankKey,
	}
}

// Compute scans every Complete match run by the operator, aggregates each
// participant once across all their matches, and ranks by descending
// profit with dense ranks starting at 1.
func Compute(snap *chain.Snapshot, operator chain.Address, feeBps int64, now int64) []Entry {
	byPlayer := map[chain.Address]*Entry{}

	for _, id := range snap.MatchIDs() {
		g, err := match.ProjectGame(id, snap)
		if err != nil {
			continue
		}
		if g.Status != match.StatusComplete || g.P2 == nil {
			continue
		}
		if master, ok := snap.PuzzleMaster(id); !ok || master != operator {
			continue
		}
		for _, player := range []chain.Address{g.P1, *g.P2} {
			e := byPlayer[player]
			if e == nil {
				e = &Entry{Player: player.Hex(), Profit: big.NewInt(0)}
				byPlayer[player] = e
			}
			o := match.ComputeOutcome(match.ToPerspective(g, player), now)
			switch o.Result {
			case match.ResultWin:
				e.Wins++
				e.Profit.Add(e.Profit, winProfit(g.BuyIn, feeBps))
			case match.ResultLose:
				e.Losses++
				e.Profit.Sub(e.Profit, g.BuyIn)
			case match.ResultTie:
				e.Ties++
			}
		}
	}

	entries := make([]Entry, 0, len(byPlayer))
	for _, e := range byPlayer {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if c := entries[i].Profit.Cmp(entries[j].Profit); c != 0 {
			return c > 0
		}
		return entries[i].Player < entries[j].Player
	})

	rank := 0
	var prev *big.Int
	for i := range entries {
		if prev == nil || entries[i].Profit.Cmp(prev) != 0 {
			rank++
			prev = entries[i].Profit
		}
		entries[i].Rank = rank
	}
	return entries
}

// winProfit is the winner's net gain: the pot (2x wager) minus the
// protocol fee taken on payout, minus their own stake back out.
func winProfit(buyIn *big.Int, feeBps int64) *big.Int {
	pot := new(big.Int).Mul(buyIn, big.NewInt(2))
	fee := new(big.Int).Mul(pot, big.NewInt(feeBps))
	fee.Div(fee, big.NewInt(10000))
	profit := new(big.Int).Sub(pot, fee)
	return profit.Sub(profit, buyIn)
}

// Refresh recomputes the leaderboard and writes the JSON cache plus the
// profit sorted-set used for rank lookups.
func (s *Service) Refresh(ctx context.Context) ([]Entry, error) {
	entries := Compute(s.store.Current(), s.operator, s.feeBps, time.Now().Unix())

	raw, err := json.Marshal(entries)
	if err != nil {
		return nil, err
	}
	if err := s.redis.Set(ctx, s.cacheKey, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("leaderboard cache write failed")
	}

	pipe := s.redis.TxPipeline()
	pipe.Del(ctx, s.rankKey)
	for _, e := range entries {
		profit, _ := new(big.Float).SetInt(e.Profit).Float64()
		pipe.ZAdd(ctx, s.rankKey, redis.Z{Score: profit, Member: e.Player})
	}
	pipe.Expire(ctx, s.rankKey, s.cacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("leaderboard rank-set write failed")
	}
	return entries, nil
}

// Cached returns the cached leaderboard, recomputing on a miss.
func (s *Service) Cached(ctx context.Context) ([]Entry, error) {
	raw, err := s.redis.Get(ctx, s.cacheKey).Bytes()
	if err == nil {
		var entries []Entry
		if jsonErr := json.Unmarshal(raw, &entries); jsonErr == nil {
			return entries, nil
		}
	} else if err != redis.Nil {
		s.logger.Warn().Err(err).Msg("leaderboard cache read failed")
	}
	return s.Refresh(ctx)
}

// Run refreshes the cache on an interval until the context is cancelled.
func (s *Service) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.Refresh(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("leaderboard refresh failed")
			}
		}
	}
}
