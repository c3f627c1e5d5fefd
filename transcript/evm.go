package transcript

import (
	"golang.org/x/crypto/sha3"
)

// NewEVM returns a transcript whose byte layout matches what an EVM verifier
// recomputes: keccak256 over uncompressed point coordinates. Proofs produced
// under this transcript verify bit-for-bit against a solidity verifier
// hashing the same protocol messages.
func NewEVM(challenges ...string) *Transcript {
	t := New(sha3.NewLegacyKeccak256(), challenges...)
	t.rawPoints = true
	return t
}
