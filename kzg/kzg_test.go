package kzg

import (
	"crypto/rand"
	"crypto/sha256"
	"math/big"
	mrand "math/rand"
	"testing"

	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const srsSize = 230

var testSRS *SRS

func init() {
	alpha, err := rand.Int(rand.Reader, fr.Modulus())
	if err != nil {
		panic(err)
	}
	testSRS, err = NewSRS(srsSize, alpha)
	if err != nil {
		panic(err)
	}
}

func randomPolynomial(rng *mrand.Rand, size int) []fr.Element {
	p := make([]fr.Element, size)
	for i := range p {
		p[i].SetUint64(rng.Uint64())
	}
	return p
}

func TestNewSRS(t *testing.T) {
	assert := assert.New(t)

	_, err := NewSRS(1, big.NewInt(42))
	assert.ErrorIs(err, ErrMinSRSSize)

	srs, err := NewSRS(8, big.NewInt(42))
	assert.NoError(err)
	assert.Len(srs.Pk.G1, 8)

	// [α]G₁ consistency: srs.Pk.G1[1] = α·G₁
	var expected curve.G1Affine
	expected.ScalarMultiplication(&srs.Vk.G1, big.NewInt(42))
	assert.True(expected.Equal(&srs.Pk.G1[1]))
}

func TestCommitOpenVerify(t *testing.T) {
	assert := assert.New(t)
	rng := mrand.New(mrand.NewSource(1))

	p := randomPolynomial(rng, 60)
	digest, err := Commit(p, testSRS.Pk)
	assert.NoError(err)

	var point fr.Element
	point.SetUint64(rng.Uint64())
	proof, err := Open(p, point, testSRS.Pk)
	assert.NoError(err)
	assert.True(proof.ClaimedValue.Equal(func() *fr.Element { v := eval(p, point); return &v }()))

	assert.NoError(Verify(&digest, &proof, point, testSRS.Vk))

	// wrong claimed value
	tampered := proof
	var one fr.Element
	one.SetOne()
	tampered.ClaimedValue.Add(&tampered.ClaimedValue, &one)
	assert.ErrorIs(Verify(&digest, &tampered, point, testSRS.Vk), ErrVerifyOpeningProof)

	// wrong point
	var otherPoint fr.Element
	otherPoint.SetUint64(rng.Uint64())
	assert.ErrorIs(Verify(&digest, &proof, otherPoint, testSRS.Vk), ErrVerifyOpeningProof)
}

func TestCommitErrors(t *testing.T) {
	assert := assert.New(t)

	_, err := Commit(nil, testSRS.Pk)
	assert.ErrorIs(err, ErrInvalidPolynomialSize)

	tooBig := make([]fr.Element, srsSize+1)
	_, err = Commit(tooBig, testSRS.Pk)
	assert.ErrorIs(err, ErrInvalidPolynomialSize)
}

func TestCommitLinearity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 10
	properties := gopter.NewProperties(parameters)

	properties.Property("commit(a·p+q) == a·commit(p)+commit(q)", prop.ForAll(
		func(seed int64) bool {
			rng := mrand.New(mrand.NewSource(seed))
			p := randomPolynomial(rng, 40)
			q := randomPolynomial(rng, 40)
			var a fr.Element
			a.SetUint64(rng.Uint64())

			apq := make([]fr.Element, len(p))
			for i := range apq {
				apq[i].Mul(&p[i], &a).Add(&apq[i], &q[i])
			}

			cp, err := Commit(p, testSRS.Pk)
			if err != nil {
				return false
			}
			cq, err := Commit(q, testSRS.Pk)
			if err != nil {
				return false
			}
			capq, err := Commit(apq, testSRS.Pk)
			if err != nil {
				return false
			}

			var ba big.Int
			a.BigInt(&ba)
			var expected curve.G1Affine
			expected.ScalarMultiplication(&cp, &ba)
			expected.Add(&expected, &cq)
			return expected.Equal(&capq)
		},
		gen.Int64(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestBatchOpenSinglePoint(t *testing.T) {
	assert := assert.New(t)
	rng := mrand.New(mrand.NewSource(2))

	nbPolys := 5
	polys := make([][]fr.Element, nbPolys)
	digests := make([]Digest, nbPolys)
	var err error
	for i := range polys {
		polys[i] = randomPolynomial(rng, 20+i)
		digests[i], err = Commit(polys[i], testSRS.Pk)
		require.NoError(t, err)
	}

	var point fr.Element
	point.SetUint64(rng.Uint64())

	proof, err := BatchOpenSinglePoint(polys, digests, point, sha256.New(), testSRS.Pk)
	assert.NoError(err)
	assert.Len(proof.ClaimedValues, nbPolys)

	assert.NoError(BatchVerifySinglePoint(digests, &proof, point, sha256.New(), testSRS.Vk))

	// tampering any claimed value breaks the folding
	var one fr.Element
	one.SetOne()
	proof.ClaimedValues[3].Add(&proof.ClaimedValues[3], &one)
	assert.Error(BatchVerifySinglePoint(digests, &proof, point, sha256.New(), testSRS.Vk))

	// size mismatches
	_, err = BatchOpenSinglePoint(polys, digests[:nbPolys-1], point, sha256.New(), testSRS.Pk)
	assert.ErrorIs(err, ErrInvalidNbDigests)
	_, err = BatchOpenSinglePoint(nil, nil, point, sha256.New(), testSRS.Pk)
	assert.ErrorIs(err, ErrZeroNbDigests)
}

func TestBatchOpenTranscriptBinding(t *testing.T) {
	assert := assert.New(t)
	rng := mrand.New(mrand.NewSource(3))

	polys := [][]fr.Element{randomPolynomial(rng, 30), randomPolynomial(rng, 30)}
	digests := make([]Digest, 2)
	var err error
	for i := range polys {
		digests[i], err = Commit(polys[i], testSRS.Pk)
		require.NoError(t, err)
	}
	var point fr.Element
	point.SetUint64(rng.Uint64())

	proof, err := BatchOpenSinglePoint(polys, digests, point, sha256.New(), testSRS.Pk, []byte("ctx"))
	assert.NoError(err)

	// the verifier must fold under the same transcript state
	assert.NoError(BatchVerifySinglePoint(digests, &proof, point, sha256.New(), testSRS.Vk, []byte("ctx")))
	assert.Error(BatchVerifySinglePoint(digests, &proof, point, sha256.New(), testSRS.Vk, []byte("other")))
	assert.Error(BatchVerifySinglePoint(digests, &proof, point, sha256.New(), testSRS.Vk))
}

func TestBatchVerifyMultiPoints(t *testing.T) {
	assert := assert.New(t)
	rng := mrand.New(mrand.NewSource(4))

	// two batches opened at two different points
	var points [2]fr.Element
	var foldedProofs [2]OpeningProof
	var foldedDigests [2]Digest
	for k := 0; k < 2; k++ {
		polys := [][]fr.Element{randomPolynomial(rng, 25), randomPolynomial(rng, 25), randomPolynomial(rng, 25)}
		digests := make([]Digest, 3)
		var err error
		for i := range polys {
			digests[i], err = Commit(polys[i], testSRS.Pk)
			require.NoError(t, err)
		}
		points[k].SetUint64(rng.Uint64())

		batch, err := BatchOpenSinglePoint(polys, digests, points[k], sha256.New(), testSRS.Pk)
		require.NoError(t, err)
		foldedProofs[k], foldedDigests[k], err = FoldProof(digests, &batch, points[k], sha256.New())
		require.NoError(t, err)
	}

	assert.NoError(BatchVerifyMultiPoints(foldedDigests[:], foldedProofs[:], points[:], testSRS.Vk))

	// swapping the proofs breaks the check
	assert.ErrorIs(
		BatchVerifyMultiPoints(foldedDigests[:], []OpeningProof{foldedProofs[1], foldedProofs[0]}, points[:], testSRS.Vk),
		ErrVerifyOpeningProof,
	)

	// inconsistent lengths
	assert.ErrorIs(
		BatchVerifyMultiPoints(foldedDigests[:1], foldedProofs[:], points[:], testSRS.Vk),
		ErrInvalidNbDigests,
	)
}
