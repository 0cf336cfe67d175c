package match

import (
	"bytes"
	"math/big"
	"sort"

	"github.com/puzzlewager/puzzlewager/internal/chain"
)

// PlayerMatch is a match enriched with the viewer's perspective and the
// arbitrated outcome, ready for the UI.
type PlayerMatch struct {
	Perspective
	Outcome Outcome
}

// ForPlayer returns every match run by the given operator in which the
// player holds either seat, each enriched with perspective and outcome.
// Iterating the match index visits each id once, so the p1/p2 union is
// dedup'd by construction. Results are ordered by match id so repeated
// queries over one snapshot are stable.
func ForPlayer(snap *chain.Snapshot, operator, player chain.Address, now int64) []PlayerMatch {
	var out []PlayerMatch
	for _, id := range sortedIDs(snap) {
		g, err := ProjectGame(id, snap)
		if err != nil {
			// partial snapshot; the id will round out on a later event
			continue
		}
		if !operatedBy(snap, id, operator) {
			continue
		}
		if g.P1 != player && (g.P2 == nil || *g.P2 != player) {
			continue
		}
		p := ToPerspective(g, player)
		out = append(out, PlayerMatch{Perspective: p, Outcome: ComputeOutcome(p, now)})
	}
	return out
}

// ActiveForPlayer filters ForPlayer down to matches still in play.
func ActiveForPlayer(snap *chain.Snapshot, operator, player chain.Address, now int64) []PlayerMatch {
	all := ForPlayer(snap, operator, player, now)
	out := all[:0]
	for _, m := range all {
		if m.Status != StatusInactive && m.Status != StatusComplete {
			out = append(out, m)
		}
	}
	return out
}

// OpenLobbies returns joinable public matches: Pending, run by the given
// operator, not password gated, invite not yet expired.
func OpenLobbies(snap *chain.Snapshot, operator chain.Address, now int64) []Game {
	var out []Game
	for _, id := range sortedIDs(snap) {
		g, err := ProjectGame(id, snap)
		if err != nil {
			continue
		}
		if g.Status != StatusPending || g.HasPassword {
			continue
		}
		if !operatedBy(snap, id, operator) {
			continue
		}
		if int64(g.InviteExpiration) <= now {
			continue
		}
		out = append(out, g)
	}
	return out
}

// Stats aggregates a player's record across their finished matches plus
// their exposure in ongoing ones.
type Stats struct {
	Wins        int      `json:"wins"`
	Losses      int      `json:"losses"`
	Ties        int      `json:"ties"`
	TotalBet    *big.Int `json:"totalBet"`
	TotalWon    *big.Int `json:"totalWon"`
	ActiveWager *big.Int `json:"activeWager"`
	ActiveGames int      `json:"activeGames"`
}

// StatsForPlayer tallies wins, losses, ties and wager flow for a player.
func StatsForPlayer(snap *chain.Snapshot, operator, player chain.Address, now int64) Stats {
	st := Stats{
		TotalBet:    big.NewInt(0),
		TotalWon:    big.NewInt(0),
		ActiveWager: big.NewInt(0),
	}
	for _, m := range ForPlayer(snap, operator, player, now) {
		if m.Status != StatusInactive && m.Status != StatusComplete {
			st.ActiveGames++
			st.ActiveWager.Add(st.ActiveWager, m.BuyIn)
		}
		if !m.Outcome.GameOver {
			continue
		}
		st.TotalBet.Add(st.TotalBet, m.BuyIn)
		switch m.Outcome.Result {
		case ResultWin:
			st.Wins++
			st.TotalWon.Add(st.TotalWon, new(big.Int).Mul(m.BuyIn, big.NewInt(2)))
		case ResultLose:
			st.Losses++
		case ResultTie:
			st.Ties++
			st.TotalWon.Add(st.TotalWon, m.BuyIn)
		}
	}
	return st
}

func operatedBy(snap *chain.Snapshot, id chain.MatchID, operator chain.Address) bool {
	master, ok := snap.PuzzleMaster(id)
	return ok && master == operator
}

func sortedIDs(snap *chain.Snapshot) []chain.MatchID {
	ids := snap.MatchIDs()
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids
}
