// Package transcript implements the Fiat-Shamir transcript binding a proving
// or verifying run to a deterministic challenge sequence.
//
// Challenges are named at construction time and must be computed in that
// order. Each challenge is a hash of its name, the previous challenge and
// the values bound to it, so for a fixed sequence of binds the derived
// challenges are a pure function of the transcript content. A transcript is
// owned by exactly one proving or verifying run and must never be reused.
package transcript

import (
	"crypto/sha256"
	"errors"
	"hash"

	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

var (
	// ErrChallengeNotFound is returned when a wrong challenge name is provided.
	ErrChallengeNotFound = errors.New("challenge not recorded in the transcript")

	// ErrChallengeAlreadyComputed is returned when a challenge is bound to new
	// values after having been computed.
	ErrChallengeAlreadyComputed = errors.New("challenge already computed, cannot be bound to other values")

	// ErrPreviousChallengeNotComputed is returned when a challenge is computed
	// before the one preceding it in the transcript order.
	ErrPreviousChallengeNotComputed = errors.New("the previous challenge is needed and has not been computed")
)

// Transcript handles the creation of challenges for Fiat-Shamir.
type Transcript struct {
	h hash.Hash

	challengeOrder map[string]int

	// bindings[i] accumulates the bytes bound to the i-th challenge, in the
	// order they were appended.
	bindings [][]byte

	challenges [][]byte
	isComputed []bool

	// rawPoints selects the uncompressed point encoding (EVM layout).
	rawPoints bool
}

// New returns a new transcript.
// h is the hash function used to compute the challenges.
// challenges are the names of the challenges; the order is significant and is
// the order in which ComputeChallenge must be called.
func New(h hash.Hash, challenges ...string) *Transcript {

	t := &Transcript{
		h:              h,
		challengeOrder: make(map[string]int, len(challenges)),
		bindings:       make([][]byte, len(challenges)),
		challenges:     make([][]byte, len(challenges)),
		isComputed:     make([]bool, len(challenges)),
	}
	for i, c := range challenges {
		t.challengeOrder[c] = i
	}
	return t
}

// NewDefault returns a transcript over sha256, the default challenge hash.
func NewDefault(challenges ...string) *Transcript {
	return New(sha256.New(), challenges...)
}

// Bind binds bValue to the named challenge. A challenge can be bound to an
// arbitrary number of values; the order of the binds is significant. Once a
// challenge has been computed it cannot be bound to other values.
func (t *Transcript) Bind(challengeID string, bValue []byte) error {

	n, ok := t.challengeOrder[challengeID]
	if !ok {
		return ErrChallengeNotFound
	}
	if t.isComputed[n] {
		return ErrChallengeAlreadyComputed
	}
	t.bindings[n] = append(t.bindings[n], bValue...)
	return nil
}

// BindFieldElement binds the canonical big-endian encoding of e to the named
// challenge.
func (t *Transcript) BindFieldElement(challengeID string, e *fr.Element) error {
	return t.Bind(challengeID, e.Marshal())
}

// BindCommitment binds the encoding of p to the named challenge. The generic
// encoding is the compressed point; the EVM encoding (see NewEVM) is the
// uncompressed coordinates, matching what an on-chain verifier hashes.
func (t *Transcript) BindCommitment(challengeID string, p *curve.G1Affine) error {
	if t.rawPoints {
		b := p.RawBytes()
		return t.Bind(challengeID, b[:])
	}
	b := p.Bytes()
	return t.Bind(challengeID, b[:])
}

// ComputeChallenge computes the named challenge:
//
//	H(name ∥ previousChallenge ∥ boundValues...)
//
// The previous-challenge chaining means omitting a bind, or computing
// challenges out of order, yields different (or no) challenges on the two
// sides of the protocol.
func (t *Transcript) ComputeChallenge(challengeID string) ([]byte, error) {

	n, ok := t.challengeOrder[challengeID]
	if !ok {
		return nil, ErrChallengeNotFound
	}

	// challenges are only computed once; the computed value is cached
	if t.isComputed[n] {
		return t.challenges[n], nil
	}

	t.h.Reset()
	defer t.h.Reset()

	// domain separator
	if _, err := t.h.Write([]byte(challengeID)); err != nil {
		return nil, err
	}

	if n != 0 {
		if !t.isComputed[n-1] {
			return nil, ErrPreviousChallengeNotComputed
		}
		if _, err := t.h.Write(t.challenges[n-1]); err != nil {
			return nil, err
		}
	}

	if _, err := t.h.Write(t.bindings[n]); err != nil {
		return nil, err
	}

	res := t.h.Sum(nil)
	t.challenges[n] = res
	t.isComputed[n] = true

	return res, nil
}

// ChallengeField computes the named challenge and maps it to a field element.
func (t *Transcript) ChallengeField(challengeID string) (fr.Element, error) {
	var res fr.Element
	b, err := t.ComputeChallenge(challengeID)
	if err != nil {
		return res, err
	}
	res.SetBytes(b)
	return res, nil
}
