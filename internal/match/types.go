package match

import (
	"math/big"

	"github.com/puzzlewager/puzzlewager/internal/chain"
)

// Status is the on-chain lifecycle stage of a match. Transitions are
// monotonic: Inactive -> Pending -> Active -> Complete.
type Status uint8

const (
	StatusInactive Status = iota
	StatusPending
	StatusActive
	StatusComplete
)

func (s Status) String() string {
	switch s {
	case StatusInactive:
		return "inactive"
	case StatusPending:
		return "pending"
	case StatusActive:
		return "active"
	case StatusComplete:
		return "complete"
	}
	return "unknown"
}

// Kind is the puzzle type a match is played over.
type Kind uint8

const (
	KindWordle Kind = iota
	KindConnections
)

func (k Kind) String() string {
	switch k {
	case KindWordle:
		return "wordle"
	case KindConnections:
		return "connections"
	}
	return "unknown"
}

// Game is one wagered puzzle contest, reshaped from raw component records.
// Pointer fields distinguish "record absent" from a zero value: a nil
// P2 means nobody joined yet, a nil start time means the player has not
// started their turn this rematch cycle.
type Game struct {
	ID     chain.MatchID
	Kind   Kind
	Status Status

	P1 chain.Address
	P2 *chain.Address

	BuyIn     *big.Int
	P1Balance *big.Int
	P2Balance *big.Int

	P1StartTime *uint64
	P2StartTime *uint64

	P1Score uint32
	P2Score uint32

	P1Submitted bool
	P2Submitted bool

	P1RematchVote bool
	P2RematchVote bool

	SubmissionWindow uint32
	PlaybackWindow   uint32
	InviteExpiration uint64
	RematchCount     uint32
	HasPassword      bool
}

// Perspective is a Game reshaped relative to one viewing player. Derived,
// never stored. Opponent fields are nil/zero while no opponent exists.
type Perspective struct {
	Game

	Viewer chain.Address
	IsP1   bool

	Opponent *chain.Address

	MyBalance       *big.Int
	OpponentBalance *big.Int

	MyStartTime       *uint64
	OpponentStartTime *uint64

	MyScore       uint32
	OpponentScore uint32

	MyRematchVote       bool
	OpponentRematchVote bool

	ISubmitted        bool
	OpponentSubmitted bool
}
