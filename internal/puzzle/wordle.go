package puzzle

import (
	"encoding/binary"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/puzzlewager/puzzlewager/internal/chain"
)

// Board geometry and feedback markers. Feedback strings use one marker
// per letter position: exact, close (present elsewhere), miss.
const (
	MaxGuesses = 6
	WordLength = 5

	markExact = 'x'
	markClose = 'c'
	markMiss  = '_'
)

// Board is the off-chain state of one Wordle puzzle instance: a fixed
// slot-indexed guess list plus one feedback string per entered guess.
type Board struct {
	Index   int
	Guesses []string
	Answers []string
}

// NewBoard initialises an empty board over the answer list entry at index.
func NewBoard(index int) *Board {
	if index < 0 || index >= len(answers) {
		index = 0
	}
	return &Board{
		Index:   index,
		Guesses: make([]string, MaxGuesses),
		Answers: nil,
	}
}

// BoardIndex deterministically selects an answer for a match instance.
// Both players of a duel derive the same word, and each agreed rematch
// (reset count bump) rolls a fresh one.
func BoardIndex(id chain.MatchID, resetCount uint32) int {
	h := sha3.NewLegacyKeccak256()
	h.Write(id[:])
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], resetCount)
	h.Write(n[:])
	sum := h.Sum(nil)
	return int(binary.BigEndian.Uint64(sum[:8]) % uint64(len(answers)))
}

// ParseBoard rebuilds a board from its serialized "index-guesses-answers"
// form.
func ParseBoard(serialized string) (*Board, error) {
	parts := strings.SplitN(serialized, "-", 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("malformed board state %q", serialized)
	}
	var index int
	if _, err := fmt.Sscanf(parts[0], "%d", &index); err != nil {
		return nil, fmt.Errorf("board index %q: %w", parts[0], err)
	}
	if index < 0 || index >= len(answers) {
		return nil, fmt.Errorf("board index %d out of range", index)
	}
	b := &Board{Index: index, Guesses: make([]string, MaxGuesses)}
	if parts[1] != "" {
		for i, g := range strings.Split(parts[1], " ") {
			if i >= MaxGuesses {
				break
			}
			b.Guesses[i] = g
		}
	}
	if parts[2] != "" {
		b.Answers = strings.Split(parts[2], " ")
	}
	return b, nil
}

// Serialize flattens the board so it can be persisted as a single string.
func (b *Board) Serialize() string {
	return fmt.Sprintf("%d-%s-%s", b.Index, strings.Join(b.Guesses, " "), strings.Join(b.Answers, " "))
}

// Answer returns the target word.
func (b *Board) Answer() string {
	return answers[b.Index]
}

// Enter records a guess and computes its per-letter feedback. Returns
// whether the guess was a valid dictionary word; invalid guesses and
// guesses past the attempt budget leave the board unchanged.
//
// Feedback runs in two passes: exact position matches first, consuming
// those letters from the answer's available pool, then present-but-
// misplaced letters from what remains. The order matters: an early close
// match must not consume a letter needed later for an exact match.
func (b *Board) Enter(word string) bool {
	word = strings.ToLower(strings.TrimSpace(word))
	if len(word) != WordLength || !allowed[word] {
		return false
	}
	if b.NumGuesses() >= MaxGuesses {
		return false
	}

	b.Guesses[len(b.Answers)] = word

	answer := b.Answer()
	available := []byte(answer)
	feedback := []byte(strings.Repeat(string(markMiss), WordLength))

	for i := 0; i < WordLength; i++ {
		if word[i] == available[i] {
			feedback[i] = markExact
			available[i] = ' '
		}
	}
	for i := 0; i < WordLength; i++ {
		if feedback[i] != markMiss {
			continue
		}
		for j := 0; j < WordLength; j++ {
			if available[j] == word[i] {
				feedback[i] = markClose
				available[j] = ' '
				break
			}
		}
	}

	b.Answers = append(b.Answers, string(feedback))
	return true
}

// Won reports whether the most recent feedback is all-exact.
func (b *Board) Won() bool {
	if len(b.Answers) == 0 {
		return false
	}
	return b.Answers[len(b.Answers)-1] == strings.Repeat(string(markExact), WordLength)
}

// Lost reports whether the attempt budget is spent without solving.
func (b *Board) Lost() bool {
	return len(b.Answers) >= MaxGuesses && !b.Won()
}

// Score is maxGuesses+1-attempts when solved: 6 for a first-guess solve
// down to 1 for a sixth-guess solve, 0 when unsolved.
func (b *Board) Score() int {
	if !b.Won() {
		return 0
	}
	return MaxGuesses + 1 - b.NumGuesses()
}

// NumGuesses counts recorded (valid) guesses.
func (b *Board) NumGuesses() int {
	n := 0
	for _, g := range b.Guesses {
		if g != "" {
			n++
		}
	}
	return n
}
