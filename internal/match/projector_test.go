package match

import (
	"strconv"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puzzlewager/puzzlewager/internal/chain"
)

const (
	alice    = "0xab5801a7d398351b8be11c439e05c5b3259aec9b"
	bob      = "0x00000000219ab540356cbb839cbe05303d7705fa"
	operator = "0x1111111111111111111111111111111111111111"
)

func addr(t *testing.T, s string) chain.Address {
	t.Helper()
	a, err := chain.ParseAddress(s)
	require.NoError(t, err)
	return a
}

// snapshotWith replays record events through a store and returns the
// resulting snapshot.
func snapshotWith(t *testing.T, events []chain.RecordEvent) *chain.Snapshot {
	t.Helper()
	st := chain.NewStore(zerolog.Nop())
	for _, ev := range events {
		require.NoError(t, st.Apply(ev))
	}
	return st.Current()
}

// createdMatch is the minimal event set the contract writes atomically at
// match creation.
func createdMatch(id uint64, p1 string) []chain.RecordEvent {
	mid := strconv.FormatUint(id, 10)
	return []chain.RecordEvent{
		{Table: chain.TablePuzzleType, MatchID: mid, Value: "0"},
		{Table: chain.TableGameStatus, MatchID: mid, Value: "1"},
		{Table: chain.TablePlayer1, MatchID: mid, Value: p1},
		{Table: chain.TableSubmissionWindow, MatchID: mid, Value: "3600"},
		{Table: chain.TableInviteExpiration, MatchID: mid, Value: "2000000000"},
		{Table: chain.TablePuzzleMasterEoa, MatchID: mid, Value: operator},
	}
}

func TestProjectGameDefaultsOptionalFields(t *testing.T) {
	snap := snapshotWith(t, createdMatch(1, alice))

	g, err := ProjectGame(chain.MatchIDFromUint64(1), snap)
	require.NoError(t, err)

	assert.Equal(t, KindWordle, g.Kind)
	assert.Equal(t, StatusPending, g.Status)
	assert.Equal(t, addr(t, alice), g.P1)
	assert.Nil(t, g.P2)
	assert.Equal(t, uint32(3600), g.SubmissionWindow)
	assert.Equal(t, uint64(2000000000), g.InviteExpiration)

	// optional records absent: defaulted, never an error
	assert.Equal(t, "0", g.BuyIn.String())
	assert.Equal(t, "0", g.P1Balance.String())
	assert.Equal(t, "0", g.P2Balance.String())
	assert.Nil(t, g.P1StartTime)
	assert.Nil(t, g.P2StartTime)
	assert.Zero(t, g.P1Score)
	assert.False(t, g.P1Submitted)
	assert.Zero(t, g.RematchCount)
	assert.False(t, g.HasPassword)
}

func TestProjectGameMissingRequiredField(t *testing.T) {
	required := []string{
		chain.TablePuzzleType,
		chain.TableGameStatus,
		chain.TablePlayer1,
		chain.TableSubmissionWindow,
		chain.TableInviteExpiration,
	}
	for _, table := range required {
		t.Run(table, func(t *testing.T) {
			var events []chain.RecordEvent
			for _, ev := range createdMatch(1, alice) {
				if ev.Table != table {
					events = append(events, ev)
				}
			}
			snap := snapshotWith(t, events)
			_, err := ProjectGame(chain.MatchIDFromUint64(1), snap)
			assert.ErrorIs(t, err, ErrMissingField)
		})
	}
}

func TestProjectGameUnknownID(t *testing.T) {
	snap := snapshotWith(t, nil)
	_, err := ProjectGame(chain.MatchIDFromUint64(99), snap)
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestProjectGameFullMatch(t *testing.T) {
	events := append(createdMatch(5, alice),
		chain.RecordEvent{Table: chain.TableGameStatus, MatchID: "5", Value: "2"},
		chain.RecordEvent{Table: chain.TablePlayer2, MatchID: "5", Value: bob},
		chain.RecordEvent{Table: chain.TableBuyIn, MatchID: "5", Value: "2000000000000000000"},
		chain.RecordEvent{Table: chain.TablePlaybackWindow, MatchID: "5", Value: "86400"},
		chain.RecordEvent{Table: chain.TableRematchCount, MatchID: "5", Value: "2"},
		chain.RecordEvent{Table: chain.TableStartTime, MatchID: "5", Player: alice, Value: "1700000000"},
		chain.RecordEvent{Table: chain.TableSubmitted, MatchID: "5", Player: alice, Value: "true"},
		chain.RecordEvent{Table: chain.TableScore, MatchID: "5", Player: alice, Value: "5"},
		chain.RecordEvent{Table: chain.TableBalance, MatchID: "5", Player: alice, Value: "2000000000000000000"},
		chain.RecordEvent{Table: chain.TableBalance, MatchID: "5", Player: bob, Value: "2000000000000000000"},
		chain.RecordEvent{Table: chain.TableVoteRematch, MatchID: "5", Player: bob, Value: "true"},
	)
	snap := snapshotWith(t, events)

	g, err := ProjectGame(chain.MatchIDFromUint64(5), snap)
	require.NoError(t, err)

	assert.Equal(t, StatusActive, g.Status)
	require.NotNil(t, g.P2)
	assert.Equal(t, addr(t, bob), *g.P2)
	assert.Equal(t, "2000000000000000000", g.BuyIn.String())
	assert.Equal(t, uint32(86400), g.PlaybackWindow)
	assert.Equal(t, uint32(2), g.RematchCount)
	require.NotNil(t, g.P1StartTime)
	assert.Equal(t, uint64(1700000000), *g.P1StartTime)
	assert.Nil(t, g.P2StartTime)
	assert.True(t, g.P1Submitted)
	assert.Equal(t, uint32(5), g.P1Score)
	assert.True(t, g.P2RematchVote)
	assert.False(t, g.P1RematchVote)
}

func TestProjectGameIdempotent(t *testing.T) {
	snap := snapshotWith(t, append(createdMatch(2, alice),
		chain.RecordEvent{Table: chain.TablePlayer2, MatchID: "2", Value: bob},
		chain.RecordEvent{Table: chain.TableBuyIn, MatchID: "2", Value: "100"},
	))

	a, err := ProjectGame(chain.MatchIDFromUint64(2), snap)
	require.NoError(t, err)
	b, err := ProjectGame(chain.MatchIDFromUint64(2), snap)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestToPerspectiveSeats(t *testing.T) {
	start := uint64(1700000000)
	bobAddr := addr(t, bob)
	g := Game{
		P1:          addr(t, alice),
		P2:          &bobAddr,
		P1Score:     5,
		P2Score:     3,
		P1Submitted: true,
		P1StartTime: &start,
	}

	p1 := ToPerspective(g, addr(t, alice))
	assert.True(t, p1.IsP1)
	require.NotNil(t, p1.Opponent)
	assert.Equal(t, bobAddr, *p1.Opponent)
	assert.Equal(t, uint32(5), p1.MyScore)
	assert.Equal(t, uint32(3), p1.OpponentScore)
	assert.True(t, p1.ISubmitted)
	assert.Equal(t, &start, p1.MyStartTime)

	p2 := ToPerspective(g, bobAddr)
	assert.False(t, p2.IsP1)
	require.NotNil(t, p2.Opponent)
	assert.Equal(t, addr(t, alice), *p2.Opponent)
	assert.Equal(t, uint32(3), p2.MyScore)
	assert.Equal(t, uint32(5), p2.OpponentScore)
	assert.True(t, p2.OpponentSubmitted)
	assert.Equal(t, &start, p2.OpponentStartTime)
}

func TestToPerspectiveUnknownViewerGetsJoinerSeat(t *testing.T) {
	g := Game{P1: addr(t, alice), P1Score: 4}
	p := ToPerspective(g, addr(t, bob))
	assert.False(t, p.IsP1)
	require.NotNil(t, p.Opponent)
	assert.Equal(t, addr(t, alice), *p.Opponent)
	assert.Equal(t, uint32(4), p.OpponentScore)
}
