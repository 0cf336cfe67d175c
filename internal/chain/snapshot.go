package chain

import "math/big"

// Table names mirror the on-chain component tables the snapshot tracks.
const (
	TablePuzzleType       = "PuzzleType"
	TableGameStatus       = "GameStatus"
	TablePlayer1          = "Player1"
	TablePlayer2          = "Player2"
	TableBuyIn            = "BuyIn"
	TableSubmissionWindow = "SubmissionWindow"
	TableInviteExpiration = "InviteExpiration"
	TablePlaybackWindow   = "PlaybackWindow"
	TableStartTime        = "GamePlayerStartTime"
	TableSubmitted        = "Submitted"
	TableScore            = "Score"
	TableBalance          = "Balance"
	TableVoteRematch      = "VoteRematch"
	TableRematchCount     = "RematchCount"
	TablePasswordHash     = "GamePasswordHash"
	TablePuzzleMasterEoa  = "PuzzleMasterEoa"
)

// Snapshot is an immutable view of the mirrored on-chain component state.
// Accessors return (value, ok); a missing record is a normal condition
// (e.g. a match nobody has joined yet), never an error at this layer.
// Whether absence is fatal is the projector's call.
//
// A Snapshot is never mutated after publication. The Store swaps in a new
// Snapshot on every applied event, so holders can read without locks and
// repeated reads of one Snapshot are always mutually consistent.
type Snapshot struct {
	puzzleType       map[MatchID]uint8
	gameStatus       map[MatchID]uint8
	player1          map[MatchID]Address
	player2          map[MatchID]Address
	buyIn            map[MatchID]*big.Int
	submissionWindow map[MatchID]uint32
	inviteExpiration map[MatchID]uint64
	playbackWindow   map[MatchID]uint32
	rematchCount     map[MatchID]uint32
	passwordHash     map[MatchID][32]byte
	puzzleMaster     map[MatchID]Address

	startTime   map[RecordKey]uint64
	submitted   map[RecordKey]bool
	score       map[RecordKey]uint32
	balance     map[RecordKey]*big.Int
	voteRematch map[RecordKey]bool
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		puzzleType:       map[MatchID]uint8{},
		gameStatus:       map[MatchID]uint8{},
		player1:          map[MatchID]Address{},
		player2:          map[MatchID]Address{},
		buyIn:            map[MatchID]*big.Int{},
		submissionWindow: map[MatchID]uint32{},
		inviteExpiration: map[MatchID]uint64{},
		playbackWindow:   map[MatchID]uint32{},
		rematchCount:     map[MatchID]uint32{},
		passwordHash:     map[MatchID][32]byte{},
		puzzleMaster:     map[MatchID]Address{},
		startTime:        map[RecordKey]uint64{},
		submitted:        map[RecordKey]bool{},
		score:            map[RecordKey]uint32{},
		balance:          map[RecordKey]*big.Int{},
		voteRematch:      map[RecordKey]bool{},
	}
}

// PuzzleType returns the puzzle kind for a match.
func (s *Snapshot) PuzzleType(id MatchID) (uint8, bool) {
	v, ok := s.puzzleType[id]
	return v, ok
}

// GameStatus returns the raw status value for a match.
func (s *Snapshot) GameStatus(id MatchID) (uint8, bool) {
	v, ok := s.gameStatus[id]
	return v, ok
}

// Player1 returns the match creator's address.
func (s *Snapshot) Player1(id MatchID) (Address, bool) {
	v, ok := s.player1[id]
	return v, ok
}

// Player2 returns the joiner's address; absent while the match is Pending.
func (s *Snapshot) Player2(id MatchID) (Address, bool) {
	v, ok := s.player2[id]
	return v, ok
}

// BuyIn returns the per-player wager in wei.
func (s *Snapshot) BuyIn(id MatchID) (*big.Int, bool) {
	v, ok := s.buyIn[id]
	return v, ok
}

// SubmissionWindow returns the per-turn submission window in seconds.
func (s *Snapshot) SubmissionWindow(id MatchID) (uint32, bool) {
	v, ok := s.submissionWindow[id]
	return v, ok
}

// InviteExpiration returns the absolute invite deadline (unix seconds).
func (s *Snapshot) InviteExpiration(id MatchID) (uint64, bool) {
	v, ok := s.inviteExpiration[id]
	return v, ok
}

// PlaybackWindow returns the playback window in seconds.
func (s *Snapshot) PlaybackWindow(id MatchID) (uint32, bool) {
	v, ok := s.playbackWindow[id]
	return v, ok
}

// RematchCount returns how many agreed rematches the match has had.
func (s *Snapshot) RematchCount(id MatchID) (uint32, bool) {
	v, ok := s.rematchCount[id]
	return v, ok
}

// HasPassword reports whether the match invite is password protected.
func (s *Snapshot) HasPassword(id MatchID) bool {
	_, ok := s.passwordHash[id]
	return ok
}

// PuzzleMaster returns the operator address the match was created under.
func (s *Snapshot) PuzzleMaster(id MatchID) (Address, bool) {
	v, ok := s.puzzleMaster[id]
	return v, ok
}

// StartTime returns when a player began their turn (unix seconds).
func (s *Snapshot) StartTime(id MatchID, player Address) (uint64, bool) {
	v, ok := s.startTime[PlayerRecordKey(id, player)]
	return v, ok
}

// Submitted reports whether a player has submitted a solution.
func (s *Snapshot) Submitted(id MatchID, player Address) (bool, bool) {
	v, ok := s.submitted[PlayerRecordKey(id, player)]
	return v, ok
}

// Score returns a player's submitted score.
func (s *Snapshot) Score(id MatchID, player Address) (uint32, bool) {
	v, ok := s.score[PlayerRecordKey(id, player)]
	return v, ok
}

// Balance returns a player's remaining escrowed balance in wei.
func (s *Snapshot) Balance(id MatchID, player Address) (*big.Int, bool) {
	v, ok := s.balance[PlayerRecordKey(id, player)]
	return v, ok
}

// VoteRematch reports whether a player has voted for a rematch.
func (s *Snapshot) VoteRematch(id MatchID, player Address) (bool, bool) {
	v, ok := s.voteRematch[PlayerRecordKey(id, player)]
	return v, ok
}

// MatchIDs lists every match id with a GameStatus record. GameStatus is
// written atomically at match creation, so it doubles as the match index.
func (s *Snapshot) MatchIDs() []MatchID {
	ids := make([]MatchID, 0, len(s.gameStatus))
	for id := range s.gameStatus {
		ids = append(ids, id)
	}
	return ids
}

func cloneMatchMap[V any](m map[MatchID]V) map[MatchID]V {
	out := make(map[MatchID]V, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneRecordMap[V any](m map[RecordKey]V) map[RecordKey]V {
	out := make(map[RecordKey]V, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

// shallow copies the snapshot; Apply then replaces only the table it touches.
func (s *Snapshot) shallow() *Snapshot {
	cp := *s
	return &cp
}
