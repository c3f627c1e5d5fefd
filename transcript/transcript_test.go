package transcript

import (
	"bytes"
	"crypto/sha256"
	"testing"

	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestDeterminism(t *testing.T) {
	assert := assert.New(t)

	run := func() ([]byte, []byte) {
		fs := NewDefault("alpha", "beta")
		assert.NoError(fs.Bind("alpha", []byte("statement")))
		assert.NoError(fs.Bind("beta", []byte("message")))
		a, err := fs.ComputeChallenge("alpha")
		assert.NoError(err)
		b, err := fs.ComputeChallenge("beta")
		assert.NoError(err)
		return a, b
	}

	a1, b1 := run()
	a2, b2 := run()
	assert.Equal(a1, a2)
	assert.Equal(b1, b2)

	// recomputing returns the cached value
	fs := NewDefault("alpha")
	assert.NoError(fs.Bind("alpha", []byte("x")))
	c1, err := fs.ComputeChallenge("alpha")
	assert.NoError(err)
	c2, err := fs.ComputeChallenge("alpha")
	assert.NoError(err)
	assert.Equal(c1, c2)
}

func TestChaining(t *testing.T) {
	assert := assert.New(t)

	derive := func(alphaBind []byte) []byte {
		fs := NewDefault("alpha", "beta")
		assert.NoError(fs.Bind("alpha", alphaBind))
		_, err := fs.ComputeChallenge("alpha")
		assert.NoError(err)
		b, err := fs.ComputeChallenge("beta")
		assert.NoError(err)
		return b
	}

	// beta binds nothing, yet depends on alpha through the chaining
	b1 := derive([]byte("x"))
	b2 := derive([]byte("y"))
	assert.NotEqual(b1, b2)
}

func TestErrors(t *testing.T) {
	assert := assert.New(t)

	fs := NewDefault("alpha", "beta")

	assert.ErrorIs(fs.Bind("nope", []byte("x")), ErrChallengeNotFound)
	_, err := fs.ComputeChallenge("nope")
	assert.ErrorIs(err, ErrChallengeNotFound)

	// out of order computation
	_, err = fs.ComputeChallenge("beta")
	assert.ErrorIs(err, ErrPreviousChallengeNotComputed)

	// bind after computation
	_, err = fs.ComputeChallenge("alpha")
	assert.NoError(err)
	assert.ErrorIs(fs.Bind("alpha", []byte("late")), ErrChallengeAlreadyComputed)
}

func TestPointEncodings(t *testing.T) {
	assert := assert.New(t)

	_, _, g, _ := curve.Generators()

	challenge := func(fs *Transcript) []byte {
		assert.NoError(fs.BindCommitment("alpha", &g))
		c, err := fs.ComputeChallenge("alpha")
		assert.NoError(err)
		return c
	}

	generic := challenge(NewDefault("alpha"))
	evm := challenge(NewEVM("alpha"))

	// keccak over raw coordinates vs sha256 over the compressed point
	assert.False(bytes.Equal(generic, evm))
}

func TestChallengeField(t *testing.T) {
	assert := assert.New(t)

	fs := NewDefault("alpha")
	var e fr.Element
	e.SetUint64(42)
	assert.NoError(fs.BindFieldElement("alpha", &e))

	v, err := fs.ChallengeField("alpha")
	assert.NoError(err)

	// same bytes through the generic path
	fs2 := New(sha256.New(), "alpha")
	assert.NoError(fs2.Bind("alpha", e.Marshal()))
	v2, err := fs2.ChallengeField("alpha")
	assert.NoError(err)
	assert.True(v.Equal(&v2))
}

func TestBindSensitivity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	properties.Property("different binds give different challenges", prop.ForAll(
		func(a, b []byte) bool {
			fs1 := NewDefault("c")
			fs2 := NewDefault("c")
			if err := fs1.Bind("c", a); err != nil {
				return false
			}
			if err := fs2.Bind("c", b); err != nil {
				return false
			}
			c1, err := fs1.ComputeChallenge("c")
			if err != nil {
				return false
			}
			c2, err := fs2.ComputeChallenge("c")
			if err != nil {
				return false
			}
			if bytes.Equal(a, b) {
				return bytes.Equal(c1, c2)
			}
			return !bytes.Equal(c1, c2)
		},
		gen.SliceOf(gen.UInt8()),
		gen.SliceOf(gen.UInt8()),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
