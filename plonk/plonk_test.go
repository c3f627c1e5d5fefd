package plonk

import (
	"bytes"
	mrand "math/rand"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AYUSHMIT/jellyfish/circuit"
	"github.com/AYUSHMIT/jellyfish/kzg"
	"github.com/AYUSHMIT/jellyfish/test"
)

// x (public) * y (private) == z (public)
func buildMulCircuit(t *testing.T, x, y, z uint64) *circuit.CS {
	t.Helper()
	ccs := circuit.New()

	var vx, vy, vz fr.Element
	vx.SetUint64(x)
	vy.SetUint64(y)
	vz.SetUint64(z)

	a, err := ccs.AddPublicVariable(vx)
	require.NoError(t, err)
	c, err := ccs.AddPublicVariable(vz)
	require.NoError(t, err)
	b, err := ccs.AddVariable(vy)
	require.NoError(t, err)

	ab, err := ccs.Mul(a, b)
	require.NoError(t, err)
	require.NoError(t, ccs.AssertEqual(ab, c))
	require.NoError(t, ccs.Finalize())
	return ccs
}

func setupKeys(t *testing.T, ccs *circuit.CS) (*ProvingKey, *VerifyingKey) {
	t.Helper()
	srs, err := test.NewKZGSRS(ccs.Size() + 3)
	require.NoError(t, err)
	pk, vk, err := Setup(ccs, srs)
	require.NoError(t, err)
	return pk, vk
}

func TestProveVerify(t *testing.T) {
	assert := assert.New(t)

	ccs := buildMulCircuit(t, 4, 4, 16)
	pk, vk := setupKeys(t, ccs)

	proof, err := Prove(ccs, pk)
	assert.NoError(err)

	publicInputs := ccs.PublicInputs()
	assert.NoError(Verify(proof, vk, publicInputs))

	// wrong public inputs must not verify
	bad := make([]fr.Element, len(publicInputs))
	copy(bad, publicInputs)
	bad[1].SetUint64(17)
	assert.ErrorIs(Verify(proof, vk, bad), errAlgebraicRelation)

	// wrong number of public inputs
	assert.ErrorIs(Verify(proof, vk, publicInputs[:1]), errInvalidWitness)
}

func TestUnsatisfiedWitness(t *testing.T) {
	assert := assert.New(t)

	// 4·4 == 17 does not hold; the prover must refuse before committing
	ccs := buildMulCircuit(t, 4, 4, 17)
	pk, _ := setupKeys(t, ccs)

	_, err := Prove(ccs, pk)
	assert.Error(err)
	var target *circuit.UnsatisfiedConstraintError
	assert.ErrorAs(err, &target)
	assert.Equal(1, target.Gate)
}

func TestSetupErrors(t *testing.T) {
	assert := assert.New(t)

	ccs := buildMulCircuit(t, 4, 4, 16)

	// srs too small for the blinded polynomials
	srs, err := test.NewKZGSRS(ccs.Size() + 2)
	assert.NoError(err)
	_, _, err = Setup(ccs, srs)
	assert.ErrorIs(err, kzg.ErrSRSTooSmall)

	// non finalized circuit
	srs, err = test.NewKZGSRS(64)
	assert.NoError(err)
	_, _, err = Setup(circuit.New(), srs)
	assert.ErrorIs(err, circuit.ErrNotFinalized)
}

func TestProofTampering(t *testing.T) {
	assert := assert.New(t)

	ccs := buildMulCircuit(t, 4, 4, 16)
	pk, vk := setupKeys(t, ccs)
	publicInputs := ccs.PublicInputs()

	proof, err := Prove(ccs, pk)
	assert.NoError(err)
	assert.NoError(Verify(proof, vk, publicInputs))

	// tampered opened value
	tampered := *proof
	var one fr.Element
	one.SetOne()
	tampered.BatchedProof.ClaimedValues = append([]fr.Element{}, proof.BatchedProof.ClaimedValues...)
	tampered.BatchedProof.ClaimedValues[2].Add(&tampered.BatchedProof.ClaimedValues[2], &one)
	assert.Error(Verify(&tampered, vk, publicInputs))

	// tampered commitment
	tampered = *proof
	tampered.LRO[0] = proof.LRO[1]
	assert.Error(Verify(&tampered, vk, publicInputs))

	// truncated claimed values
	tampered = *proof
	tampered.ShiftedProof.ClaimedValues = nil
	assert.ErrorIs(Verify(&tampered, vk, publicInputs), errInvalidProof)
}

func TestProverDeterminism(t *testing.T) {
	assert := assert.New(t)

	ccs := buildMulCircuit(t, 4, 4, 16)
	pk, vk := setupKeys(t, ccs)

	prove := func(seed int64) []byte {
		rng := mrand.New(mrand.NewSource(seed))
		proof, err := Prove(ccs, pk, WithRNG(rng))
		assert.NoError(err)
		assert.NoError(Verify(proof, vk, ccs.PublicInputs()))
		var buf bytes.Buffer
		_, err = proof.WriteTo(&buf)
		assert.NoError(err)
		return buf.Bytes()
	}

	p1 := prove(42)
	p2 := prove(42)
	assert.Equal(p1, p2)

	// a different blinding stream yields a different (still valid) proof
	p3 := prove(43)
	assert.NotEqual(p1, p3)
}

func TestExtraMessage(t *testing.T) {
	assert := assert.New(t)

	ccs := buildMulCircuit(t, 4, 4, 16)
	pk, vk := setupKeys(t, ccs)
	publicInputs := ccs.PublicInputs()

	proof, err := Prove(ccs, pk, WithExtraMessage([]byte("session-1")))
	assert.NoError(err)

	assert.NoError(Verify(proof, vk, publicInputs, WithExtraMessage([]byte("session-1"))))
	assert.Error(Verify(proof, vk, publicInputs, WithExtraMessage([]byte("session-2"))))
	assert.Error(Verify(proof, vk, publicInputs))
}

func TestEVMTranscript(t *testing.T) {
	assert := assert.New(t)

	ccs := buildMulCircuit(t, 4, 4, 16)
	pk, vk := setupKeys(t, ccs)
	publicInputs := ccs.PublicInputs()

	proof, err := Prove(ccs, pk, WithEVMTranscript())
	assert.NoError(err)

	assert.NoError(Verify(proof, vk, publicInputs, WithEVMTranscript()))

	// the generic transcript derives different challenges
	assert.Error(Verify(proof, vk, publicInputs))
}

func buildRangeCircuit(t *testing.T, nbBits int, values ...uint64) *circuit.CS {
	t.Helper()
	ccs := circuit.NewRange(nbBits)
	for _, val := range values {
		var v fr.Element
		v.SetUint64(val)
		a, err := ccs.AddVariable(v)
		require.NoError(t, err)
		require.NoError(t, ccs.RangeGate(a, nbBits))
	}
	require.NoError(t, ccs.Finalize())
	return ccs
}

func TestExtendedProveVerify(t *testing.T) {
	assert := assert.New(t)

	ccs := buildRangeCircuit(t, 4, 13, 0, 15, 3, 3)
	assert.True(ccs.Lookup())
	pk, vk := setupKeys(t, ccs)
	assert.True(vk.Lookup)

	proof, err := Prove(ccs, pk)
	assert.NoError(err)
	assert.NoError(Verify(proof, vk, nil))

	// out of range witness is caught before proving
	bad := buildRangeCircuit(t, 4, 29)
	pkBad, _ := setupKeys(t, bad)
	_, err = Prove(bad, pkBad)
	var target *circuit.UnsatisfiedConstraintError
	assert.ErrorAs(err, &target)
	assert.True(target.Lookup)
}

func TestExtendedWithGates(t *testing.T) {
	assert := assert.New(t)

	// mix arithmetic and lookup rows: w = x+y must fit 8 bits
	ccs := circuit.NewRange(8)
	var vx, vy fr.Element
	vx.SetUint64(200)
	vy.SetUint64(55)
	x, err := ccs.AddPublicVariable(vx)
	require.NoError(t, err)
	y, err := ccs.AddVariable(vy)
	require.NoError(t, err)
	w, err := ccs.Add(x, y)
	require.NoError(t, err)
	require.NoError(t, ccs.RangeGate(w, 8))
	require.NoError(t, ccs.Finalize())

	pk, vk := setupKeys(t, ccs)
	proof, err := Prove(ccs, pk)
	assert.NoError(err)
	assert.NoError(Verify(proof, vk, ccs.PublicInputs()))

	// wrong public input
	var bad fr.Element
	bad.SetUint64(201)
	assert.ErrorIs(Verify(proof, vk, []fr.Element{bad}), errAlgebraicRelation)
}
