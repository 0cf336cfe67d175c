package match

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/puzzlewager/puzzlewager/internal/chain"
	"github.com/puzzlewager/puzzlewager/internal/metrics"
)

// ErrMissingField reports that a snapshot lacks a field written atomically
// at match creation. Its absence means the id is unknown or garbage, so
// the projection fails rather than defaulting.
var ErrMissingField = errors.New("missing required match field")

// ProjectGame maps one match's component records into a structured Game.
// Pure over the snapshot: projecting the same snapshot twice yields
// structurally equal results. Required fields (PuzzleType, Player1,
// GameStatus, SubmissionWindow, InviteExpiration) fail hard when absent;
// optional fields default to their zero values, which is the normal state
// for a match nobody has joined or played yet.
func ProjectGame(id chain.MatchID, snap *chain.Snapshot) (Game, error) {
	kind, ok := snap.PuzzleType(id)
	if !ok {
		return Game{}, missing(id, chain.TablePuzzleType)
	}
	p1, ok := snap.Player1(id)
	if !ok {
		return Game{}, missing(id, chain.TablePlayer1)
	}
	status, ok := snap.GameStatus(id)
	if !ok {
		return Game{}, missing(id, chain.TableGameStatus)
	}
	submissionWindow, ok := snap.SubmissionWindow(id)
	if !ok {
		return Game{}, missing(id, chain.TableSubmissionWindow)
	}
	inviteExpiration, ok := snap.InviteExpiration(id)
	if !ok {
		return Game{}, missing(id, chain.TableInviteExpiration)
	}

	g := Game{
		ID:               id,
		Kind:             Kind(kind),
		Status:           Status(status),
		P1:               p1,
		SubmissionWindow: submissionWindow,
		InviteExpiration: inviteExpiration,
		RematchCount:     0,
		HasPassword:      snap.HasPassword(id),
	}

	if p2, ok := snap.Player2(id); ok && !p2.IsZero() {
		g.P2 = &p2
	}
	if w, ok := snap.PlaybackWindow(id); ok {
		g.PlaybackWindow = w
	}
	if n, ok := snap.RematchCount(id); ok {
		g.RematchCount = n
	}
	g.BuyIn = bigOrZero(snap.BuyIn(id))

	g.P1Balance = bigOrZero(snap.Balance(id, p1))
	if t, ok := snap.StartTime(id, p1); ok {
		g.P1StartTime = &t
	}
	if v, ok := snap.Score(id, p1); ok {
		g.P1Score = v
	}
	if v, ok := snap.Submitted(id, p1); ok {
		g.P1Submitted = v
	}
	if v, ok := snap.VoteRematch(id, p1); ok {
		g.P1RematchVote = v
	}

	if g.P2 != nil {
		p2 := *g.P2
		g.P2Balance = bigOrZero(snap.Balance(id, p2))
		if t, ok := snap.StartTime(id, p2); ok {
			g.P2StartTime = &t
		}
		if v, ok := snap.Score(id, p2); ok {
			g.P2Score = v
		}
		if v, ok := snap.Submitted(id, p2); ok {
			g.P2Submitted = v
		}
		if v, ok := snap.VoteRematch(id, p2); ok {
			g.P2RematchVote = v
		}
	} else {
		g.P2Balance = big.NewInt(0)
	}

	metrics.ProjectionsTotal.WithLabelValues("ok").Inc()
	return g, nil
}

func missing(id chain.MatchID, table string) error {
	metrics.ProjectionsTotal.WithLabelValues("missing_field").Inc()
	return fmt.Errorf("project %s: %s: %w", id.Hex(), table, ErrMissingField)
}

func bigOrZero(v *big.Int, ok bool) *big.Int {
	if !ok || v == nil {
		return big.NewInt(0)
	}
	return v
}
