package puzzle

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/puzzlewager/puzzlewager/internal/chain"
	"github.com/puzzlewager/puzzlewager/internal/metrics"
)

// Sentinel errors for expected session-store conditions. Contention and
// unauthorized resets are no-op rejections, not failures: callers re-fetch
// instead of retrying the same write.
var (
	ErrNotFound        = errors.New("puzzle session not found")
	ErrNotParticipant  = errors.New("viewer is not a match participant")
	ErrResetNotAllowed = errors.New("reset not authorized by on-chain rematch count")
	ErrLockBusy        = errors.New("session operation already in flight")
)

// SessionRecord is the persisted row for one (match, player) session.
type SessionRecord struct {
	MatchID    string
	Player     string
	State      string
	ResetCount uint32
}

// SessionRepo is the persistence surface for puzzle sessions. Demo
// sessions use an empty player address and a reserved demo scope.
type SessionRepo interface {
	Get(ctx context.Context, matchID, player string, demo bool) (SessionRecord, error)
	CreateDuel(ctx context.Context, matchID, p1, p2, state string, resetCount uint32) error
	CreateDemo(ctx context.Context, matchID, state string) error
	SetState(ctx context.Context, matchID, player string, demo bool, state string) error
	Reset(ctx context.Context, matchID, state string, newResetCount uint32, demo bool) (bool, error)
}

// ChainReader exposes the slice of on-chain state the session service
// depends on: match participants and the authorized rematch count.
type ChainReader interface {
	Players(id chain.MatchID) (p1 chain.Address, p2 chain.Address, hasP2 bool, ok bool)
	RematchCount(id chain.MatchID) uint32
}

// Session is the client-facing session state. Answer is revealed only
// once the attempt budget is exhausted.
type Session struct {
	MatchID    string   `json:"gameId"`
	Guesses    []string `json:"guesses"`
	Answers    []string `json:"answers"`
	Answer     *string  `json:"answer"`
	Solved     bool     `json:"solved"`
	Lost       bool     `json:"lost"`
	BadGuess   bool     `json:"badGuess,omitempty"`
	ResetCount uint32   `json:"resetCount"`
}

// VerifyResult is the server-derived solve verdict plus the attestation
// that lets the player claim on-chain.
type VerifyResult struct {
	Won        bool   `json:"won"`
	Score      uint32 `json:"score"`
	ResetCount uint32 `json:"resetCount"`
	Signature  string `json:"signature,omitempty"`
}

// ServiceOptions tunes locking behavior.
type ServiceOptions struct {
	LockTTL  time.Duration
	LockWait time.Duration
}

// Service owns all reads and writes of puzzle sessions. Create, guess and
// reset are serialized per (matchID, player) with a Redis lock so
// overlapping calls never interleave partial writes; duplicate concurrent
// callers wait for the in-flight operation and then re-read its result.
type Service struct {
	repo     SessionRepo
	redis    *redis.Client
	chain    ChainReader
	signer   *Signer
	logger   zerolog.Logger
	lockTTL  time.Duration
	lockWait time.Duration
}

// NewService constructs the session service.
func NewService(repo SessionRepo, redisClient *redis.Client, chainReader ChainReader, signer *Signer, logger zerolog.Logger, opts ServiceOptions) *Service {
	lockTTL := opts.LockTTL
	if lockTTL <= 0 {
		lockTTL = 10 * time.Second
	}
	lockWait := opts.LockWait
	if lockWait <= 0 {
		lockWait = 3 * time.Second
	}
	return &Service{
		repo:     repo,
		redis:    redisClient,
		chain:    chainReader,
		signer:   signer,
		logger:   logger.With().Str("component", "puzzle_service").Logger(),
		lockTTL:  lockTTL,
		lockWait: lockWait,
	}
}

// GetOrCreate returns the existing session for (matchID, viewer), or
// allocates one. Creation is collapsed to a single winner under the
// per-key lock; losers observe the winner's row. For live matches the
// participants come from the chain snapshot, never from the client, and
// one board is shared by both players of the duel.
func (s *Service) GetOrCreate(ctx context.Context, id chain.MatchID, viewer chain.Address, isDemo bool) (Session, error) {
	player := playerScope(viewer, isDemo)

	if rec, err := s.repo.Get(ctx, id.Hex(), player, isDemo); err == nil {
		return s.toSession(rec)
	} else if !errors.Is(err, ErrNotFound) {
		return Session{}, fmt.Errorf("load session: %w", err)
	}

	unlock, err := s.lock(ctx, lockKey("create", id, player))
	if err != nil {
		return Session{}, err
	}
	defer unlock()

	// the lock winner may have created it while we waited
	if rec, err := s.repo.Get(ctx, id.Hex(), player, isDemo); err == nil {
		return s.toSession(rec)
	} else if !errors.Is(err, ErrNotFound) {
		return Session{}, fmt.Errorf("load session: %w", err)
	}

	resetCount := uint32(0)
	board := NewBoard(BoardIndex(id, 0))
	if isDemo {
		if err := s.repo.CreateDemo(ctx, id.Hex(), board.Serialize()); err != nil {
			return Session{}, fmt.Errorf("create demo session: %w", err)
		}
	} else {
		p1, p2, hasP2, ok := s.chain.Players(id)
		if !ok || !hasP2 {
			return Session{}, fmt.Errorf("match %s: %w", id.Hex(), ErrNotFound)
		}
		if viewer != p1 && viewer != p2 {
			return Session{}, ErrNotParticipant
		}
		resetCount = s.chain.RematchCount(id)
		board = NewBoard(BoardIndex(id, resetCount))
		if err := s.repo.CreateDuel(ctx, id.Hex(), p1.Hex(), p2.Hex(), board.Serialize(), resetCount); err != nil {
			return Session{}, fmt.Errorf("create duel session: %w", err)
		}
	}

	rec, err := s.repo.Get(ctx, id.Hex(), player, isDemo)
	if err != nil {
		return Session{}, fmt.Errorf("reload created session: %w", err)
	}
	s.logger.Info().Str("match_id", id.Hex()).Bool("demo", isDemo).Msg("puzzle session created")
	return s.toSession(rec)
}

// SubmitGuess validates and records one guess. Invalid dictionary words
// are reported via BadGuess with the session unchanged; guesses after the
// budget is spent (or after a solve) are no-ops returning current state.
func (s *Service) SubmitGuess(ctx context.Context, id chain.MatchID, viewer chain.Address, guess string, isDemo bool) (Session, error) {
	player := playerScope(viewer, isDemo)

	unlock, err := s.lock(ctx, lockKey("guess", id, player))
	if err != nil {
		return Session{}, err
	}
	defer unlock()

	rec, err := s.repo.Get(ctx, id.Hex(), player, isDemo)
	if err != nil {
		return Session{}, err
	}
	board, err := ParseBoard(rec.State)
	if err != nil {
		return Session{}, fmt.Errorf("stored session state: %w", err)
	}

	if board.Won() || board.Lost() {
		return s.sessionFrom(rec, board, false)
	}

	valid := board.Enter(guess)
	metrics.GuessesTotal.WithLabelValues(strconv.FormatBool(valid)).Inc()
	if valid {
		rec.State = board.Serialize()
		if err := s.repo.SetState(ctx, id.Hex(), player, isDemo, rec.State); err != nil {
			return Session{}, fmt.Errorf("persist guess: %w", err)
		}
	}
	return s.sessionFrom(rec, board, !valid)
}

// Reset clears the session for a new rematch cycle. The local reset count
// must be strictly behind the on-chain rematch count; otherwise the call
// is rejected without touching state. A conditional update enforces the
// guard in storage too, so a lost race is recovered by re-reading the
// winner's row rather than erroring.
func (s *Service) Reset(ctx context.Context, id chain.MatchID, viewer chain.Address, isDemo bool) (Session, error) {
	player := playerScope(viewer, isDemo)

	unlock, err := s.lock(ctx, lockKey("reset", id, player))
	if err != nil {
		return Session{}, err
	}
	defer unlock()

	rec, err := s.repo.Get(ctx, id.Hex(), player, isDemo)
	if err != nil {
		return Session{}, err
	}

	if isDemo {
		// demo resets are free but still advance the reset count, so
		// every cycle derives a new board index
		next := rec.ResetCount + 1
		board := NewBoard(BoardIndex(id, next))
		if _, err := s.repo.Reset(ctx, id.Hex(), board.Serialize(), next, true); err != nil {
			return Session{}, fmt.Errorf("reset demo session: %w", err)
		}
		rec, err = s.repo.Get(ctx, id.Hex(), player, isDemo)
		if err != nil {
			return Session{}, fmt.Errorf("reload reset session: %w", err)
		}
		return s.toSession(rec)
	}

	chainCount := s.chain.RematchCount(id)
	if rec.ResetCount >= chainCount {
		return Session{}, ErrResetNotAllowed
	}

	board := NewBoard(BoardIndex(id, chainCount))
	applied, err := s.repo.Reset(ctx, id.Hex(), board.Serialize(), chainCount, false)
	if err != nil {
		return Session{}, fmt.Errorf("reset session: %w", err)
	}
	if !applied {
		// a concurrent reset won; the authoritative row is theirs
		s.logger.Debug().Str("match_id", id.Hex()).Msg("reset lost race, re-fetching")
	}

	rec, err = s.repo.Get(ctx, id.Hex(), player, isDemo)
	if err != nil {
		return Session{}, fmt.Errorf("reload reset session: %w", err)
	}
	return s.toSession(rec)
}

// Verify re-derives the solve verdict from persisted state, never from
// anything the client submitted, and signs the attestation when won.
func (s *Service) Verify(ctx context.Context, id chain.MatchID, player chain.Address) (VerifyResult, error) {
	rec, err := s.repo.Get(ctx, id.Hex(), player.Hex(), false)
	if err != nil {
		return VerifyResult{}, err
	}
	board, err := ParseBoard(rec.State)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("stored session state: %w", err)
	}

	if !board.Won() {
		return VerifyResult{Won: false, ResetCount: rec.ResetCount}, nil
	}

	score := uint32(board.Score())
	sig, err := s.signer.SignScore(id, player, score, rec.ResetCount)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("sign attestation: %w", err)
	}
	return VerifyResult{
		Won:        true,
		Score:      score,
		ResetCount: rec.ResetCount,
		Signature:  "0x" + fmt.Sprintf("%x", sig),
	}, nil
}

func (s *Service) toSession(rec SessionRecord) (Session, error) {
	board, err := ParseBoard(rec.State)
	if err != nil {
		return Session{}, fmt.Errorf("stored session state: %w", err)
	}
	return s.sessionFrom(rec, board, false)
}

func (s *Service) sessionFrom(rec SessionRecord, board *Board, badGuess bool) (Session, error) {
	sess := Session{
		MatchID:    rec.MatchID,
		Guesses:    board.Guesses,
		Answers:    board.Answers,
		Solved:     board.Won(),
		Lost:       board.Lost(),
		BadGuess:   badGuess,
		ResetCount: rec.ResetCount,
	}
	if sess.Answers == nil {
		sess.Answers = []string{}
	}
	if len(board.Answers) >= MaxGuesses {
		answer := board.Answer()
		sess.Answer = &answer
	}
	return sess, nil
}

// lock acquires the per-key operation latch, waiting with backoff up to
// lockWait so duplicate concurrent callers queue instead of being
// dropped. The uuid token makes the Lua unlock delete only our own lock.
func (s *Service) lock(ctx context.Context, key string) (func(), error) {
	token := uuid.New().String()
	started := time.Now()
	backoff := 25 * time.Millisecond
	for {
		acquired, err := s.redis.SetNX(ctx, key, token, s.lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire session lock: %w", err)
		}
		if acquired {
			metrics.SessionLockWaits.Observe(time.Since(started).Seconds())
			return func() {
				script := `
					if redis.call("get", KEYS[1]) == ARGV[1] then
						return redis.call("del", KEYS[1])
					else
						return 0
					end
				`
				if err := s.redis.Eval(context.Background(), script, []string{key}, token).Err(); err != nil {
					s.logger.Warn().Err(err).Str("key", key).Msg("release session lock failed")
				}
			}, nil
		}
		if time.Since(started) >= s.lockWait {
			return nil, ErrLockBusy
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 200*time.Millisecond {
			backoff *= 2
		}
	}
}

func lockKey(op string, id chain.MatchID, player string) string {
	return fmt.Sprintf("puzzle:lock:%s:%s:%s", op, id.Hex(), player)
}

func playerScope(viewer chain.Address, isDemo bool) string {
	if isDemo {
		return ""
	}
	return viewer.Hex()
}
