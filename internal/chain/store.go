package chain

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// RecordEvent is one per-table record change delivered by the indexer.
// Values arrive as decimal or hex strings; the store decodes them per
// table. Player is set only for per-player tables.
type RecordEvent struct {
	Table   string `json:"table"`
	MatchID string `json:"matchId"`
	Player  string `json:"player,omitempty"`
	Value   string `json:"value"`
	Deleted bool   `json:"deleted,omitempty"`
}

// Store is the observable holder for the mirrored component state. Apply
// is the single mutation entry point; every applied event publishes a new
// immutable Snapshot and notifies subscribers, who re-derive their views
// from scratch rather than diffing.
type Store struct {
	mu      sync.RWMutex
	current *Snapshot
	subs    map[int]chan *Snapshot
	nextSub int
	logger  zerolog.Logger
}

// NewStore creates an empty observable snapshot store.
func NewStore(logger zerolog.Logger) *Store {
	return &Store{
		current: NewSnapshot(),
		subs:    map[int]chan *Snapshot{},
		logger:  logger.With().Str("component", "chain_store").Logger(),
	}
}

// Current returns the latest published snapshot. The returned value is
// immutable and safe to read from any goroutine.
func (st *Store) Current() *Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.current
}

// Subscribe registers for snapshot updates. The channel is buffered and
// lossy: a slow consumer misses intermediate snapshots but always sees a
// later one, which is correct for re-derivation consumers.
func (st *Store) Subscribe() (<-chan *Snapshot, func()) {
	st.mu.Lock()
	defer st.mu.Unlock()
	id := st.nextSub
	st.nextSub++
	ch := make(chan *Snapshot, 1)
	st.subs[id] = ch
	cancel := func() {
		st.mu.Lock()
		defer st.mu.Unlock()
		if c, ok := st.subs[id]; ok {
			delete(st.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// Apply decodes and applies one record event, publishing a new snapshot.
// Undecodable events are rejected with an error; the caller decides
// whether to skip or stop. A single event may land before related tables
// update, so consumers must treat any one snapshot as best-effort.
func (st *Store) Apply(ev RecordEvent) error {
	id, err := ParseMatchID(ev.MatchID)
	if err != nil {
		return fmt.Errorf("event match id: %w", err)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	next := st.current.shallow()
	if err := applyEvent(next, st.current, id, ev); err != nil {
		return err
	}
	st.current = next

	// Notify while still holding the lock: every send is non-blocking,
	// and cancel closes subscriber channels under this same lock, so a
	// send can never race a close.
	for _, ch := range st.subs {
		select {
		case ch <- next:
		default:
			// drop stale pending snapshot, replace with the newest
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- next:
			default:
			}
		}
	}
	return nil
}

func applyEvent(next, prev *Snapshot, id MatchID, ev RecordEvent) error {
	switch ev.Table {
	case TablePuzzleType, TableGameStatus:
		n, err := parseUint(ev, 8)
		if err != nil {
			return err
		}
		if ev.Table == TablePuzzleType {
			next.puzzleType = cloneMatchMap(prev.puzzleType)
			setOrDelete(next.puzzleType, id, uint8(n), ev.Deleted)
		} else {
			next.gameStatus = cloneMatchMap(prev.gameStatus)
			setOrDelete(next.gameStatus, id, uint8(n), ev.Deleted)
		}
	case TablePlayer1, TablePlayer2, TablePuzzleMasterEoa:
		addr, err := parseAddr(ev)
		if err != nil {
			return err
		}
		switch ev.Table {
		case TablePlayer1:
			next.player1 = cloneMatchMap(prev.player1)
			setOrDelete(next.player1, id, addr, ev.Deleted)
		case TablePlayer2:
			next.player2 = cloneMatchMap(prev.player2)
			setOrDelete(next.player2, id, addr, ev.Deleted)
		default:
			next.puzzleMaster = cloneMatchMap(prev.puzzleMaster)
			setOrDelete(next.puzzleMaster, id, addr, ev.Deleted)
		}
	case TableBuyIn:
		wei, err := parseBig(ev)
		if err != nil {
			return err
		}
		next.buyIn = cloneMatchMap(prev.buyIn)
		setOrDelete(next.buyIn, id, wei, ev.Deleted)
	case TableSubmissionWindow, TablePlaybackWindow, TableRematchCount:
		n, err := parseUint(ev, 32)
		if err != nil {
			return err
		}
		switch ev.Table {
		case TableSubmissionWindow:
			next.submissionWindow = cloneMatchMap(prev.submissionWindow)
			setOrDelete(next.submissionWindow, id, uint32(n), ev.Deleted)
		case TablePlaybackWindow:
			next.playbackWindow = cloneMatchMap(prev.playbackWindow)
			setOrDelete(next.playbackWindow, id, uint32(n), ev.Deleted)
		default:
			next.rematchCount = cloneMatchMap(prev.rematchCount)
			setOrDelete(next.rematchCount, id, uint32(n), ev.Deleted)
		}
	case TableInviteExpiration:
		n, err := parseUint(ev, 64)
		if err != nil {
			return err
		}
		next.inviteExpiration = cloneMatchMap(prev.inviteExpiration)
		setOrDelete(next.inviteExpiration, id, n, ev.Deleted)
	case TablePasswordHash:
		hash, err := parseHash(ev)
		if err != nil {
			return err
		}
		next.passwordHash = cloneMatchMap(prev.passwordHash)
		setOrDelete(next.passwordHash, id, hash, ev.Deleted)
	case TableStartTime, TableSubmitted, TableScore, TableBalance, TableVoteRematch:
		player, err := ParseAddress(ev.Player)
		if err != nil {
			return fmt.Errorf("event player for %s: %w", ev.Table, err)
		}
		key := PlayerRecordKey(id, player)
		switch ev.Table {
		case TableStartTime:
			n, err := parseUint(ev, 64)
			if err != nil {
				return err
			}
			next.startTime = cloneRecordMap(prev.startTime)
			setOrDelete(next.startTime, key, n, ev.Deleted)
		case TableSubmitted:
			b, err := parseBool(ev)
			if err != nil {
				return err
			}
			next.submitted = cloneRecordMap(prev.submitted)
			setOrDelete(next.submitted, key, b, ev.Deleted)
		case TableScore:
			n, err := parseUint(ev, 32)
			if err != nil {
				return err
			}
			next.score = cloneRecordMap(prev.score)
			setOrDelete(next.score, key, uint32(n), ev.Deleted)
		case TableBalance:
			wei, err := parseBig(ev)
			if err != nil {
				return err
			}
			next.balance = cloneRecordMap(prev.balance)
			setOrDelete(next.balance, key, wei, ev.Deleted)
		case TableVoteRematch:
			b, err := parseBool(ev)
			if err != nil {
				return err
			}
			next.voteRematch = cloneRecordMap(prev.voteRematch)
			setOrDelete(next.voteRematch, key, b, ev.Deleted)
		}
	default:
		return fmt.Errorf("unknown table %q", ev.Table)
	}
	return nil
}

func setOrDelete[K comparable, V any](m map[K]V, k K, v V, deleted bool) {
	if deleted {
		delete(m, k)
		return
	}
	m[k] = v
}

func parseUint(ev RecordEvent, bits int) (uint64, error) {
	if ev.Deleted {
		return 0, nil
	}
	v := strings.TrimSpace(ev.Value)
	base := 10
	if strings.HasPrefix(v, "0x") {
		v, base = v[2:], 16
	}
	n, err := strconv.ParseUint(v, base, bits)
	if err != nil {
		return 0, fmt.Errorf("%s value %q: %w", ev.Table, ev.Value, err)
	}
	return n, nil
}

func parseBig(ev RecordEvent) (*big.Int, error) {
	if ev.Deleted {
		return nil, nil
	}
	v := strings.TrimSpace(ev.Value)
	base := 10
	if strings.HasPrefix(v, "0x") {
		v, base = v[2:], 16
	}
	n, ok := new(big.Int).SetString(v, base)
	if !ok {
		return nil, fmt.Errorf("%s value %q: not an integer", ev.Table, ev.Value)
	}
	return n, nil
}

func parseBool(ev RecordEvent) (bool, error) {
	if ev.Deleted {
		return false, nil
	}
	switch strings.TrimSpace(strings.ToLower(ev.Value)) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("%s value %q: not a bool", ev.Table, ev.Value)
}

func parseAddr(ev RecordEvent) (Address, error) {
	if ev.Deleted {
		return Address{}, nil
	}
	return ParseAddress(ev.Value)
}

func parseHash(ev RecordEvent) ([32]byte, error) {
	var out [32]byte
	if ev.Deleted {
		return out, nil
	}
	v := strings.TrimPrefix(strings.TrimSpace(ev.Value), "0x")
	raw, err := hex.DecodeString(v)
	if err != nil || len(raw) != 32 {
		return out, fmt.Errorf("%s value %q: not a 32-byte hash", ev.Table, ev.Value)
	}
	copy(out[:], raw)
	return out, nil
}
