package puzzle

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"

	"github.com/puzzlewager/puzzlewager/internal/chain"
	"github.com/puzzlewager/puzzlewager/internal/metrics"
)

// Signer produces the operator-signed score attestations the on-chain
// claim function consumes. The signature binds (matchID, player, score,
// resetCount) over a fixed binary encoding, so a session verified once
// cannot be replayed for a different match, player or rematch cycle.
type Signer struct {
	priv *secp256k1.PrivateKey
}

// NewSigner parses a 0x-prefixed 32-byte hex private key.
func NewSigner(hexKey string) (*Signer, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("decode signer key: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("signer key must be 32 bytes, got %d", len(raw))
	}
	return &Signer{priv: secp256k1.PrivKeyFromBytes(raw)}, nil
}

// PackAttestation produces the packed encoding the contract hashes:
// matchID (32 bytes) ‖ player (20 bytes) ‖ score (uint32 BE) ‖
// resetCount (uint32 BE).
func PackAttestation(id chain.MatchID, player chain.Address, score, resetCount uint32) []byte {
	out := make([]byte, 0, 60)
	out = append(out, id[:]...)
	out = append(out, player[:]...)
	out = binary.BigEndian.AppendUint32(out, score)
	out = binary.BigEndian.AppendUint32(out, resetCount)
	return out
}

// SignScore signs the packed attestation with the EVM personal-message
// scheme: keccak of the packed bytes, wrapped in the signed-message
// prefix, keccak'd again, then a recoverable secp256k1 signature in the
// r ‖ s ‖ v layout contracts expect.
func (s *Signer) SignScore(id chain.MatchID, player chain.Address, score, resetCount uint32) ([]byte, error) {
	digest := keccak(PackAttestation(id, player, score, resetCount))
	wrapped := keccak(append([]byte("\x19Ethereum Signed Message:\n32"), digest...))

	compact := ecdsa.SignCompact(s.priv, wrapped, false)
	// SignCompact puts the 27/28 recovery byte first; contracts take it last
	sig := make([]byte, 65)
	copy(sig[:64], compact[1:])
	sig[64] = compact[0]

	metrics.AttestationsTotal.Inc()
	return sig, nil
}

// RecoverAttester returns the compressed public key that produced sig
// over the given attestation fields. Used in tests and by tooling that
// audits issued attestations.
func RecoverAttester(sig []byte, id chain.MatchID, player chain.Address, score, resetCount uint32) (*secp256k1.PublicKey, error) {
	if len(sig) != 65 {
		return nil, fmt.Errorf("signature must be 65 bytes, got %d", len(sig))
	}
	digest := keccak(PackAttestation(id, player, score, resetCount))
	wrapped := keccak(append([]byte("\x19Ethereum Signed Message:\n32"), digest...))

	compact := make([]byte, 65)
	compact[0] = sig[64]
	copy(compact[1:], sig[:64])

	pub, _, err := ecdsa.RecoverCompact(compact, wrapped)
	if err != nil {
		return nil, fmt.Errorf("recover attester: %w", err)
	}
	return pub, nil
}

// PublicKey exposes the signer's compressed public key.
func (s *Signer) PublicKey() *secp256k1.PublicKey {
	return s.priv.PubKey()
}

func keccak(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}
