package chain

// Reader is a convenience view over the store for callers that need a
// few point lookups rather than a full snapshot.
type Reader struct {
	store *Store
}

// NewReader wraps a store.
func NewReader(store *Store) Reader {
	return Reader{store: store}
}

// Players returns the match participants from the latest snapshot.
func (r Reader) Players(id MatchID) (Address, Address, bool, bool) {
	snap := r.store.Current()
	p1, ok := snap.Player1(id)
	if !ok {
		return Address{}, Address{}, false, false
	}
	p2, hasP2 := snap.Player2(id)
	return p1, p2, hasP2 && !p2.IsZero(), true
}

// RematchCount returns the on-chain rematch counter, zero when unset.
func (r Reader) RematchCount(id MatchID) uint32 {
	n, _ := r.store.Current().RematchCount(id)
	return n
}
