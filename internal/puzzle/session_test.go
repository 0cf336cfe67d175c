package puzzle

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puzzlewager/puzzlewager/internal/chain"
)

// memRepo mimics the Postgres session repository: keyed rows, create-if-
// absent semantics, and the conditional reset guard.
type memRepo struct {
	mu   sync.Mutex
	rows map[[3]string]SessionRecord
}

func newMemRepo() *memRepo {
	return &memRepo{rows: map[[3]string]SessionRecord{}}
}

func scopeOf(demo bool) string {
	if demo {
		return "demo"
	}
	return "live"
}

func (r *memRepo) Get(_ context.Context, matchID, player string, demo bool) (SessionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.rows[[3]string{scopeOf(demo), matchID, player}]
	if !ok {
		return SessionRecord{}, ErrNotFound
	}
	return rec, nil
}

func (r *memRepo) CreateDuel(_ context.Context, matchID, p1, p2, state string, resetCount uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, player := range []string{p1, p2} {
		key := [3]string{"live", matchID, player}
		if _, ok := r.rows[key]; !ok {
			r.rows[key] = SessionRecord{MatchID: matchID, Player: player, State: state, ResetCount: resetCount}
		}
	}
	return nil
}

func (r *memRepo) CreateDemo(_ context.Context, matchID, state string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [3]string{"demo", matchID, ""}
	if _, ok := r.rows[key]; !ok {
		r.rows[key] = SessionRecord{MatchID: matchID, State: state}
	}
	return nil
}

func (r *memRepo) SetState(_ context.Context, matchID, player string, demo bool, state string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [3]string{scopeOf(demo), matchID, player}
	rec, ok := r.rows[key]
	if !ok {
		return ErrNotFound
	}
	rec.State = state
	r.rows[key] = rec
	return nil
}

func (r *memRepo) Reset(_ context.Context, matchID, state string, newResetCount uint32, demo bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	applied := false
	for key, rec := range r.rows {
		if key[0] != scopeOf(demo) || key[1] != matchID || rec.ResetCount >= newResetCount {
			continue
		}
		rec.State = state
		rec.ResetCount = newResetCount
		r.rows[key] = rec
		applied = true
	}
	return applied, nil
}

type stubChain struct {
	p1, p2  chain.Address
	hasP2   bool
	known   bool
	rematch uint32
}

func (c *stubChain) Players(chain.MatchID) (chain.Address, chain.Address, bool, bool) {
	return c.p1, c.p2, c.hasP2, c.known
}

func (c *stubChain) RematchCount(chain.MatchID) uint32 {
	return c.rematch
}

type sessionFixture struct {
	svc   *Service
	repo  *memRepo
	chain *stubChain
	redis *redis.Client
	p1    chain.Address
	p2    chain.Address
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	p1, err := chain.ParseAddress("0xab5801a7d398351b8be11c439e05c5b3259aec9b")
	require.NoError(t, err)
	p2, err := chain.ParseAddress("0x00000000219ab540356cbb839cbe05303d7705fa")
	require.NoError(t, err)

	signer, err := NewSigner(testSignerKey)
	require.NoError(t, err)

	repo := newMemRepo()
	reader := &stubChain{p1: p1, p2: p2, hasP2: true, known: true}
	svc := NewService(repo, client, reader, signer, zerolog.Nop(), ServiceOptions{
		LockTTL:  time.Second,
		LockWait: 100 * time.Millisecond,
	})
	return &sessionFixture{svc: svc, repo: repo, chain: reader, redis: client, p1: p1, p2: p2}
}

// missWord is a guess that can never solve a board: it lives in the
// extra allowed list, which board indexes never select from.
const missWord = "roast"

func TestGetOrCreateDuelSharedBoard(t *testing.T) {
	fx := newSessionFixture(t)
	ctx := context.Background()
	id := chain.MatchIDFromUint64(1)

	sess, err := fx.svc.GetOrCreate(ctx, id, fx.p1, false)
	require.NoError(t, err)
	assert.Equal(t, id.Hex(), sess.MatchID)
	assert.False(t, sess.Solved)
	assert.Empty(t, sess.Answers)
	assert.Nil(t, sess.Answer)

	// creation seeds both seats with the same board
	p1Rec, err := fx.repo.Get(ctx, id.Hex(), fx.p1.Hex(), false)
	require.NoError(t, err)
	p2Rec, err := fx.repo.Get(ctx, id.Hex(), fx.p2.Hex(), false)
	require.NoError(t, err)
	assert.Equal(t, p1Rec.State, p2Rec.State)

	// repeated calls return the existing row, not a fresh board
	again, err := fx.svc.GetOrCreate(ctx, id, fx.p1, false)
	require.NoError(t, err)
	assert.Equal(t, sess, again)
}

func TestGetOrCreateRejectsOutsiders(t *testing.T) {
	fx := newSessionFixture(t)
	ctx := context.Background()
	id := chain.MatchIDFromUint64(1)

	outsider, err := chain.ParseAddress("0x3333333333333333333333333333333333333333")
	require.NoError(t, err)
	_, err = fx.svc.GetOrCreate(ctx, id, outsider, false)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestGetOrCreateRequiresJoinedMatch(t *testing.T) {
	fx := newSessionFixture(t)
	ctx := context.Background()
	id := chain.MatchIDFromUint64(1)

	fx.chain.hasP2 = false
	_, err := fx.svc.GetOrCreate(ctx, id, fx.p1, false)
	assert.ErrorIs(t, err, ErrNotFound)

	fx.chain.hasP2 = true
	fx.chain.known = false
	_, err = fx.svc.GetOrCreate(ctx, id, fx.p1, false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetOrCreateDemo(t *testing.T) {
	fx := newSessionFixture(t)
	ctx := context.Background()
	id := chain.MatchIDFromUint64(77)

	sess, err := fx.svc.GetOrCreate(ctx, id, chain.Address{}, true)
	require.NoError(t, err)
	assert.Equal(t, id.Hex(), sess.MatchID)

	// demo sessions never consult match participants
	fx.chain.known = false
	again, err := fx.svc.GetOrCreate(ctx, id, chain.Address{}, true)
	require.NoError(t, err)
	assert.Equal(t, sess, again)
}

func TestSubmitGuessLifecycle(t *testing.T) {
	fx := newSessionFixture(t)
	ctx := context.Background()
	id := chain.MatchIDFromUint64(2)

	_, err := fx.svc.GetOrCreate(ctx, id, fx.p1, false)
	require.NoError(t, err)
	answer := answers[BoardIndex(id, 0)]

	// a bad dictionary word is reported and leaves the board untouched
	sess, err := fx.svc.SubmitGuess(ctx, id, fx.p1, "zzzzz", false)
	require.NoError(t, err)
	assert.True(t, sess.BadGuess)
	assert.Empty(t, sess.Answers)

	sess, err = fx.svc.SubmitGuess(ctx, id, fx.p1, missWord, false)
	require.NoError(t, err)
	assert.False(t, sess.BadGuess)
	assert.Len(t, sess.Answers, 1)
	assert.False(t, sess.Solved)

	sess, err = fx.svc.SubmitGuess(ctx, id, fx.p1, answer, false)
	require.NoError(t, err)
	assert.True(t, sess.Solved)
	assert.False(t, sess.Lost)

	// solved boards ignore further guesses
	after, err := fx.svc.SubmitGuess(ctx, id, fx.p1, missWord, false)
	require.NoError(t, err)
	assert.Equal(t, sess.Answers, after.Answers)
	assert.True(t, after.Solved)
}

func TestSubmitGuessExhaustsBudgetAndRevealsAnswer(t *testing.T) {
	fx := newSessionFixture(t)
	ctx := context.Background()
	id := chain.MatchIDFromUint64(3)

	_, err := fx.svc.GetOrCreate(ctx, id, fx.p1, false)
	require.NoError(t, err)
	answer := answers[BoardIndex(id, 0)]

	var sess Session
	for i := 0; i < MaxGuesses; i++ {
		sess, err = fx.svc.SubmitGuess(ctx, id, fx.p1, missWord, false)
		require.NoError(t, err)
	}
	assert.True(t, sess.Lost)
	require.NotNil(t, sess.Answer)
	assert.Equal(t, answer, *sess.Answer)

	// the budget is spent; nothing further is recorded
	after, err := fx.svc.SubmitGuess(ctx, id, fx.p1, answer, false)
	require.NoError(t, err)
	assert.True(t, after.Lost)
	assert.Len(t, after.Answers, MaxGuesses)
}

func TestResetGatedByChainRematchCount(t *testing.T) {
	fx := newSessionFixture(t)
	ctx := context.Background()
	id := chain.MatchIDFromUint64(4)

	_, err := fx.svc.GetOrCreate(ctx, id, fx.p1, false)
	require.NoError(t, err)
	answer := answers[BoardIndex(id, 0)]
	_, err = fx.svc.SubmitGuess(ctx, id, fx.p1, answer, false)
	require.NoError(t, err)

	// nobody agreed to a rematch on-chain yet
	_, err = fx.svc.Reset(ctx, id, fx.p1, false)
	assert.ErrorIs(t, err, ErrResetNotAllowed)

	fx.chain.rematch = 1
	sess, err := fx.svc.Reset(ctx, id, fx.p1, false)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), sess.ResetCount)
	assert.False(t, sess.Solved)
	assert.Empty(t, sess.Answers)

	// both seats share the fresh board
	p2Rec, err := fx.repo.Get(ctx, id.Hex(), fx.p2.Hex(), false)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), p2Rec.ResetCount)

	// a second reset against the same rematch count is rejected
	_, err = fx.svc.Reset(ctx, id, fx.p2, false)
	assert.ErrorIs(t, err, ErrResetNotAllowed)
}

func TestResetDemoAlwaysAllowed(t *testing.T) {
	fx := newSessionFixture(t)
	ctx := context.Background()
	id := chain.MatchIDFromUint64(5)

	_, err := fx.svc.GetOrCreate(ctx, id, chain.Address{}, true)
	require.NoError(t, err)

	sess, err := fx.svc.Reset(ctx, id, chain.Address{}, true)
	require.NoError(t, err)
	assert.Empty(t, sess.Answers)
	assert.False(t, sess.Solved)
}

func TestResetDemoAdvancesBoard(t *testing.T) {
	fx := newSessionFixture(t)
	ctx := context.Background()
	id := chain.MatchIDFromUint64(5)

	_, err := fx.svc.GetOrCreate(ctx, id, chain.Address{}, true)
	require.NoError(t, err)

	// every demo reset must advance the reset count and re-derive the
	// board from it; a stuck count would deal the same word forever
	for _, want := range []uint32{1, 2, 3} {
		sess, err := fx.svc.Reset(ctx, id, chain.Address{}, true)
		require.NoError(t, err)
		assert.Equal(t, want, sess.ResetCount)

		rec, err := fx.repo.Get(ctx, id.Hex(), "", true)
		require.NoError(t, err)
		board, err := ParseBoard(rec.State)
		require.NoError(t, err)
		assert.Equal(t, BoardIndex(id, want), board.Index)
	}
}

func TestVerifySignsOnlyWins(t *testing.T) {
	fx := newSessionFixture(t)
	ctx := context.Background()
	id := chain.MatchIDFromUint64(6)

	_, err := fx.svc.GetOrCreate(ctx, id, fx.p1, false)
	require.NoError(t, err)
	answer := answers[BoardIndex(id, 0)]

	// unsolved: no score, no signature
	res, err := fx.svc.Verify(ctx, id, fx.p1)
	require.NoError(t, err)
	assert.False(t, res.Won)
	assert.Empty(t, res.Signature)

	_, err = fx.svc.SubmitGuess(ctx, id, fx.p1, missWord, false)
	require.NoError(t, err)
	_, err = fx.svc.SubmitGuess(ctx, id, fx.p1, answer, false)
	require.NoError(t, err)

	res, err = fx.svc.Verify(ctx, id, fx.p1)
	require.NoError(t, err)
	assert.True(t, res.Won)
	assert.Equal(t, uint32(5), res.Score)
	assert.NotEmpty(t, res.Signature)

	// the opponent's board is untouched by p1's guesses
	res, err = fx.svc.Verify(ctx, id, fx.p2)
	require.NoError(t, err)
	assert.False(t, res.Won)

	_, err = fx.svc.Verify(ctx, chain.MatchIDFromUint64(99), fx.p1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLockBusyAfterWait(t *testing.T) {
	fx := newSessionFixture(t)
	ctx := context.Background()
	id := chain.MatchIDFromUint64(8)

	// hold the guess lock so the service times out waiting for it
	key := lockKey("guess", id, fx.p1.Hex())
	require.NoError(t, fx.redis.Set(ctx, key, "someone-else", time.Minute).Err())

	_, err := fx.svc.SubmitGuess(ctx, id, fx.p1, "crane", false)
	assert.ErrorIs(t, err, ErrLockBusy)
}
