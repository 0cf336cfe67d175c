package match

// TimerNone marks a countdown that is not applicable or not yet started.
// An expired countdown is exactly 0, never negative; callers treat 0 as
// the definitive "expired" signal.
const TimerNone int64 = -1

// Result is the terminal outcome from one player's perspective.
type Result string

const (
	ResultNone Result = ""
	ResultWin  Result = "win"
	ResultLose Result = "lose"
	ResultTie  Result = "tie"
)

// Timers holds the countdowns for one perspective, in whole seconds.
type Timers struct {
	MySubmissionTimeLeft       int64 `json:"mySubmissionTimeLeft"`
	OpponentSubmissionTimeLeft int64 `json:"opponentSubmissionTimeLeft"`
	MyPlaybackTime             int64 `json:"myPlaybackTime"`
	OpponentPlaybackTime       int64 `json:"opponentPlaybackTime"`
	InviteTimeLeft             int64 `json:"inviteTimeLeft"`
}

// Outcome is the deadline-arbitrated terminal state for one perspective.
type Outcome struct {
	Timers

	OpponentMissedPlaybackWindow bool   `json:"opponentMissedPlaybackWindow"`
	IMissedPlaybackWindow        bool   `json:"iMissedPlaybackWindow"`
	GameOver                     bool   `json:"gameOver"`
	Result                       Result `json:"gameOutcome,omitempty"`
	CanViewResults               bool   `json:"canViewResults"`
	Claimed                      bool   `json:"claimed"`
	OpponentClaimed              bool   `json:"opponentClaimed"`
	CanSubmit                    bool   `json:"canSubmit"`
	WaitingForOpponentPlayback   bool   `json:"waitingForOpponentPlayback"`
}

func timeLeft(deadline, now int64) int64 {
	if d := deadline - now; d > 0 {
		return d
	}
	return 0
}

// ComputeTimers derives the countdowns for one perspective at one instant.
// Playback countdowns only exist on the side still waiting for the other
// player to start: the opponent's for p1 who started first, mine for p2
// who has not started while p1 has.
func ComputeTimers(p Perspective, now int64) Timers {
	t := Timers{
		MySubmissionTimeLeft:       TimerNone,
		OpponentSubmissionTimeLeft: TimerNone,
		MyPlaybackTime:             TimerNone,
		OpponentPlaybackTime:       TimerNone,
		InviteTimeLeft:             TimerNone,
	}

	if p.MyStartTime != nil {
		t.MySubmissionTimeLeft = timeLeft(int64(*p.MyStartTime)+int64(p.SubmissionWindow), now)
	}
	if p.OpponentStartTime != nil {
		t.OpponentSubmissionTimeLeft = timeLeft(int64(*p.OpponentStartTime)+int64(p.SubmissionWindow), now)
	}
	if p.IsP1 && p.MyStartTime != nil && p.OpponentStartTime == nil {
		t.OpponentPlaybackTime = timeLeft(int64(*p.MyStartTime)+int64(p.PlaybackWindow), now)
	}
	if !p.IsP1 && p.MyStartTime == nil && p.OpponentStartTime != nil {
		t.MyPlaybackTime = timeLeft(int64(*p.OpponentStartTime)+int64(p.PlaybackWindow), now)
	}
	if p.InviteExpiration > 0 {
		t.InviteTimeLeft = timeLeft(int64(p.InviteExpiration), now)
	}
	return t
}

// ComputeOutcome arbitrates the terminal state for one perspective. All
// comparisons use the single now passed in; mixing timestamps from
// different calls produces contradictory flags.
//
// Playback-forfeit is evaluated symmetrically for both seats: whichever
// side fails to start within the playback window loses.
func ComputeOutcome(p Perspective, now int64) Outcome {
	t := ComputeTimers(p, now)
	o := Outcome{Timers: t}

	o.OpponentMissedPlaybackWindow = p.MyStartTime != nil && p.OpponentStartTime == nil &&
		now >= int64(*p.MyStartTime)+int64(p.PlaybackWindow)
	o.IMissedPlaybackWindow = p.OpponentStartTime != nil && p.MyStartTime == nil &&
		now >= int64(*p.OpponentStartTime)+int64(p.PlaybackWindow)

	o.GameOver = gameOver(p, t, o.OpponentMissedPlaybackWindow, o.IMissedPlaybackWindow)
	o.Result = result(p, o.GameOver, o.OpponentMissedPlaybackWindow, o.IMissedPlaybackWindow)

	o.CanViewResults = o.GameOver || p.ISubmitted ||
		t.MySubmissionTimeLeft == 0 || p.Status == StatusComplete

	// balance-zero is the authoritative claim signal; the outcome check is
	// a fallback for a snapshot where the balance write has not landed yet
	o.Claimed = (p.BuyIn.Sign() > 0 && p.MyBalance.Sign() == 0) ||
		(o.Result == ResultWin && p.Status == StatusComplete)
	o.OpponentClaimed = (p.BuyIn.Sign() > 0 && p.OpponentBalance != nil && p.OpponentBalance.Sign() == 0) ||
		(o.Result == ResultLose && p.Status == StatusComplete)

	o.CanSubmit = p.Status == StatusActive && p.MyStartTime != nil &&
		t.MySubmissionTimeLeft > 0 && !p.ISubmitted

	o.WaitingForOpponentPlayback = p.MyStartTime != nil && p.OpponentStartTime == nil &&
		(t.MySubmissionTimeLeft == 0 || p.ISubmitted)

	return o
}

func gameOver(p Perspective, t Timers, opponentMissed, iMissed bool) bool {
	if opponentMissed || iMissed {
		return true
	}
	if p.MyStartTime == nil || p.OpponentStartTime == nil {
		return false
	}
	if p.Status == StatusComplete {
		return true
	}
	if p.ISubmitted && p.OpponentSubmitted {
		return true
	}
	return t.MySubmissionTimeLeft == 0 && t.OpponentSubmissionTimeLeft == 0
}

func result(p Perspective, over, opponentMissed, iMissed bool) Result {
	if !over {
		return ResultNone
	}
	if iMissed {
		return ResultLose
	}
	if p.MyScore > p.OpponentScore || opponentMissed {
		return ResultWin
	}
	if p.MyScore < p.OpponentScore {
		return ResultLose
	}
	return ResultTie
}
