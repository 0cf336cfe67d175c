package match

import "github.com/puzzlewager/puzzlewager/internal/chain"

// ToPerspective reshapes a Game relative to one viewer. The viewer is
// matched against p1 by byte equality; addresses are lowercased at parse
// time so the comparison is effectively case-insensitive. A viewer that
// matches neither player gets the p2 side, which for a Pending lobby is
// the seat they would take by joining.
func ToPerspective(g Game, viewer chain.Address) Perspective {
	p := Perspective{Game: g, Viewer: viewer}

	if viewer == g.P1 {
		p.IsP1 = true
		p.Opponent = g.P2
		p.MyBalance = g.P1Balance
		p.OpponentBalance = g.P2Balance
		p.MyStartTime = g.P1StartTime
		p.OpponentStartTime = g.P2StartTime
		p.MyScore = g.P1Score
		p.OpponentScore = g.P2Score
		p.MyRematchVote = g.P1RematchVote
		p.OpponentRematchVote = g.P2RematchVote
		p.ISubmitted = g.P1Submitted
		p.OpponentSubmitted = g.P2Submitted
		return p
	}

	opponent := g.P1
	p.Opponent = &opponent
	p.MyBalance = g.P2Balance
	p.OpponentBalance = g.P1Balance
	p.MyStartTime = g.P2StartTime
	p.OpponentStartTime = g.P1StartTime
	p.MyScore = g.P2Score
	p.OpponentScore = g.P1Score
	p.MyRematchVote = g.P2RematchVote
	p.OpponentRematchVote = g.P1RematchVote
	p.ISubmitted = g.P2Submitted
	p.OpponentSubmitted = g.P1Submitted
	return p
}
