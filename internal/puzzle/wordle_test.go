package puzzle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puzzlewager/puzzlewager/internal/chain"
)

func answerIndex(t *testing.T, word string) int {
	t.Helper()
	for i, w := range answers {
		if w == word {
			return i
		}
	}
	t.Fatalf("%q not in answer list", word)
	return -1
}

func TestEnterFeedback(t *testing.T) {
	b := NewBoard(answerIndex(t, "crane"))

	require.True(t, b.Enter("react"))
	assert.Equal(t, "ccxc_", b.Answers[0])

	require.True(t, b.Enter("crane"))
	assert.Equal(t, "xxxxx", b.Answers[1])
	assert.True(t, b.Won())
	assert.False(t, b.Lost())
}

func TestEnterDuplicateLetters(t *testing.T) {
	// answer has one 'e'; the exact match at the last position consumes
	// it, so the misplaced first 'e' gets no close mark
	b := NewBoard(answerIndex(t, "crane"))
	require.True(t, b.Enter("elite"))
	assert.Equal(t, "____x", b.Answers[0])
}

func TestEnterRejectsInvalidGuesses(t *testing.T) {
	b := NewBoard(answerIndex(t, "crane"))

	assert.False(t, b.Enter("zzzzz"), "not a word")
	assert.False(t, b.Enter("cran"), "too short")
	assert.False(t, b.Enter("cranes"), "too long")
	assert.False(t, b.Enter(""), "empty")

	assert.Zero(t, b.NumGuesses())
	assert.Empty(t, b.Answers)
}

func TestEnterNormalizesInput(t *testing.T) {
	b := NewBoard(answerIndex(t, "crane"))
	require.True(t, b.Enter("  CRANE "))
	assert.True(t, b.Won())
	assert.Equal(t, "crane", b.Guesses[0])
}

func TestEnterBudgetExhausted(t *testing.T) {
	b := NewBoard(answerIndex(t, "crane"))
	for i := 0; i < MaxGuesses; i++ {
		require.True(t, b.Enter("roast"))
	}
	assert.True(t, b.Lost())
	assert.False(t, b.Enter("crane"), "board is closed after six misses")
	assert.Equal(t, MaxGuesses, b.NumGuesses())
}

func TestScore(t *testing.T) {
	first := NewBoard(answerIndex(t, "crane"))
	require.True(t, first.Enter("crane"))
	assert.Equal(t, 6, first.Score())

	sixth := NewBoard(answerIndex(t, "crane"))
	for i := 0; i < 5; i++ {
		require.True(t, sixth.Enter("roast"))
	}
	require.True(t, sixth.Enter("crane"))
	assert.Equal(t, 1, sixth.Score())

	unsolved := NewBoard(answerIndex(t, "crane"))
	require.True(t, unsolved.Enter("roast"))
	assert.Equal(t, 0, unsolved.Score())
}

func TestSerializeRoundTrip(t *testing.T) {
	b := NewBoard(answerIndex(t, "crane"))
	require.True(t, b.Enter("react"))
	require.True(t, b.Enter("creak"))

	parsed, err := ParseBoard(b.Serialize())
	require.NoError(t, err)
	assert.Equal(t, b.Index, parsed.Index)
	assert.Equal(t, b.Guesses, parsed.Guesses)
	assert.Equal(t, b.Answers, parsed.Answers)
	assert.Equal(t, b.Answer(), parsed.Answer())

	empty := NewBoard(answerIndex(t, "crane"))
	parsed, err = ParseBoard(empty.Serialize())
	require.NoError(t, err)
	assert.Equal(t, empty.Index, parsed.Index)
	assert.Zero(t, parsed.NumGuesses())
}

func TestParseBoardRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "12", "x-foo-bar", "999999999--"} {
		_, err := ParseBoard(s)
		assert.Error(t, err, s)
	}
}

func TestBoardIndexDeterministic(t *testing.T) {
	id := chain.MatchIDFromUint64(42)

	a := BoardIndex(id, 0)
	b := BoardIndex(id, 0)
	assert.Equal(t, a, b)
	assert.GreaterOrEqual(t, a, 0)
	assert.Less(t, a, len(answers))

	// the derivation must depend on both inputs; any one pair may
	// collide modulo the answer list, a whole run of them cannot
	distinct := map[int]bool{}
	for reset := uint32(0); reset < 8; reset++ {
		distinct[BoardIndex(id, reset)] = true
	}
	for n := uint64(100); n < 108; n++ {
		distinct[BoardIndex(chain.MatchIDFromUint64(n), 0)] = true
	}
	assert.Greater(t, len(distinct), 1)
}
