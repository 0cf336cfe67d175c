package chain

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// MatchID is the 32-byte match identifier used as the key for all
// match-level component records. Small integer ids are left-padded
// big-endian, matching the on-chain key encoding.
type MatchID [32]byte

// MatchIDFromUint64 encodes an integer match id as a left-padded 32-byte key.
func MatchIDFromUint64(n uint64) MatchID {
	var id MatchID
	binary.BigEndian.PutUint64(id[24:], n)
	return id
}

// Uint64 recovers the integer form of a match id. Fails if the id does not
// fit in 64 bits, which indicates a key that was never integer-derived.
func (id MatchID) Uint64() (uint64, error) {
	for _, b := range id[:24] {
		if b != 0 {
			return 0, fmt.Errorf("match id %s exceeds uint64 range", id.Hex())
		}
	}
	return binary.BigEndian.Uint64(id[24:]), nil
}

// Hex returns the 0x-prefixed hex form of the id.
func (id MatchID) Hex() string {
	return "0x" + hex.EncodeToString(id[:])
}

// ParseMatchID accepts either a 0x-prefixed 32-byte hex key or a plain
// decimal integer id and returns the canonical 32-byte form.
func ParseMatchID(s string) (MatchID, error) {
	var id MatchID
	s = strings.TrimSpace(s)
	if s == "" {
		return id, fmt.Errorf("empty match id")
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		raw, err := hex.DecodeString(s[2:])
		if err != nil {
			return id, fmt.Errorf("decode match id: %w", err)
		}
		if len(raw) != 32 {
			return id, fmt.Errorf("match id must be 32 bytes, got %d", len(raw))
		}
		copy(id[:], raw)
		return id, nil
	}
	var n uint64
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return id, fmt.Errorf("parse match id %q: %w", s, err)
	}
	return MatchIDFromUint64(n), nil
}

// Address is a 20-byte player address. Parsing lowercases the hex input,
// so two addresses that differ only in checksum casing compare equal.
type Address [20]byte

// ParseAddress decodes a 0x-prefixed 20-byte hex address.
func ParseAddress(s string) (Address, error) {
	var a Address
	s = strings.TrimSpace(strings.ToLower(s))
	if !strings.HasPrefix(s, "0x") {
		return a, fmt.Errorf("address %q missing 0x prefix", s)
	}
	raw, err := hex.DecodeString(s[2:])
	if err != nil {
		return a, fmt.Errorf("decode address: %w", err)
	}
	if len(raw) != 20 {
		return a, fmt.Errorf("address must be 20 bytes, got %d", len(raw))
	}
	copy(a[:], raw)
	return a, nil
}

// Hex returns the 0x-prefixed lowercase hex form of the address.
func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool {
	return a == Address{}
}

// RecordKey identifies one record in a per-player component table.
type RecordKey [32]byte

// PlayerRecordKey derives the composite key for per-player component
// records. Every read and write of a (matchID, player) record must go
// through this function so keys are byte-for-byte identical everywhere.
func PlayerRecordKey(id MatchID, player Address) RecordKey {
	h := sha3.NewLegacyKeccak256()
	h.Write(id[:])
	// address is left-padded to a 32-byte word, matching the key tuple
	// encoding used by the on-chain store
	var word [32]byte
	copy(word[12:], player[:])
	h.Write(word[:])
	var key RecordKey
	h.Sum(key[:0])
	return key
}
