package plonk

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"hash"
	"io"
)

// Option configures a proving or verifying run. Transcript-related options
// must be identical on both sides for a proof to verify.
type Option func(*config) error

type config struct {
	challengeHash  hash.Hash
	kzgFoldingHash hash.Hash
	rng            io.Reader
	extraMessage   []byte
	evm            bool
}

// WithChallengeHash sets the hash function deriving the protocol challenges.
// It is ignored when the EVM transcript is selected.
func WithChallengeHash(h hash.Hash) Option {
	return func(c *config) error {
		if h == nil {
			return errors.New("nil challenge hash")
		}
		c.challengeHash = h
		return nil
	}
}

// WithKZGFoldingHash sets the hash function deriving the batch-opening
// folding challenge.
func WithKZGFoldingHash(h hash.Hash) Option {
	return func(c *config) error {
		if h == nil {
			return errors.New("nil folding hash")
		}
		c.kzgFoldingHash = h
		return nil
	}
}

// WithRNG sets the randomness source of the blinding polynomials. Proving
// twice with the same circuit, keys and RNG stream yields identical proofs.
// Verification ignores this option.
func WithRNG(rng io.Reader) Option {
	return func(c *config) error {
		if rng == nil {
			return errors.New("nil rng")
		}
		c.rng = rng
		return nil
	}
}

// WithExtraMessage binds an application-chosen message into the transcript,
// tying the proof to a context (a chain ID, a session...) beyond the public
// inputs. Prover and verifier must pass the same message.
func WithExtraMessage(msg []byte) Option {
	return func(c *config) error {
		c.extraMessage = msg
		return nil
	}
}

// WithEVMTranscript switches the challenge derivation to keccak256 over
// uncompressed point coordinates, the layout an on-chain verifier hashes.
func WithEVMTranscript() Option {
	return func(c *config) error {
		c.evm = true
		return nil
	}
}

func newConfig(opts ...Option) (*config, error) {
	c := &config{
		challengeHash:  sha256.New(),
		kzgFoldingHash: sha256.New(),
		rng:            rand.Reader,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}
