package circuit

import (
	"bytes"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// x (public) * y == 16
func buildMulCircuit(t *testing.T, x, y, expected uint64) *CS {
	t.Helper()
	cs := New()

	var vx, vy fr.Element
	vx.SetUint64(x)
	vy.SetUint64(y)

	a, err := cs.AddPublicVariable(vx)
	require.NoError(t, err)
	b, err := cs.AddVariable(vy)
	require.NoError(t, err)
	c, err := cs.Mul(a, b)
	require.NoError(t, err)

	var k fr.Element
	k.SetUint64(expected)
	require.NoError(t, cs.AssertConstant(c, k))
	return cs
}

func TestCheckSatisfied(t *testing.T) {
	assert := assert.New(t)

	cs := buildMulCircuit(t, 4, 4, 16)
	assert.NoError(cs.CheckSatisfied())

	// wrong product
	cs = buildMulCircuit(t, 4, 4, 17)
	err := cs.CheckSatisfied()
	assert.Error(err)
	var target *UnsatisfiedConstraintError
	assert.ErrorAs(err, &target)
	assert.Equal(1, target.Gate)
	assert.False(target.Lookup)
}

func TestFinalize(t *testing.T) {
	assert := assert.New(t)

	cs := buildMulCircuit(t, 4, 4, 16)
	assert.EqualValues(0, cs.Size())
	assert.NoError(cs.Finalize())
	assert.True(cs.Finalized())

	// 1 public + 2 gates rounds to 4
	assert.EqualValues(4, cs.Size())

	// the circuit is frozen
	assert.ErrorIs(cs.Finalize(), ErrFinalized)
	_, err := cs.AddVariable(fr.Element{})
	assert.ErrorIs(err, ErrFinalized)
	_, err = cs.Mul(0, 0)
	assert.ErrorIs(err, ErrFinalized)
	assert.ErrorIs(cs.AssertEqual(0, 0), ErrFinalized)
}

func TestUnknownVariable(t *testing.T) {
	assert := assert.New(t)

	cs := New()
	_, err := cs.Mul(cs.Zero(), 42)
	assert.ErrorIs(err, ErrUnknownVariable)
	assert.ErrorIs(cs.AssertEqual(42, cs.Zero()), ErrUnknownVariable)
}

func TestBooleanDedup(t *testing.T) {
	assert := assert.New(t)

	cs := New()
	var one fr.Element
	one.SetOne()
	a, err := cs.AddVariable(one)
	assert.NoError(err)

	assert.NoError(cs.AssertBoolean(a))
	n := cs.NbGates()
	assert.NoError(cs.AssertBoolean(a))
	assert.Equal(n, cs.NbGates())
	assert.NoError(cs.CheckSatisfied())

	// non boolean value
	var two fr.Element
	two.SetUint64(2)
	b, err := cs.AddVariable(two)
	assert.NoError(err)
	assert.NoError(cs.AssertBoolean(b))
	assert.Error(cs.CheckSatisfied())
}

func TestLookup(t *testing.T) {
	assert := assert.New(t)

	_, err := NewExtended(nil)
	assert.ErrorIs(err, ErrEmptyLookupTable)

	// lookup gate on a standard circuit
	cs := New()
	assert.ErrorIs(cs.LookupGate(cs.Zero()), ErrNoLookupTable)

	table := RangeTable(2) // {0,1,2,3}
	cs, err = NewExtended(table)
	assert.NoError(err)

	var three, five fr.Element
	three.SetUint64(3)
	five.SetUint64(5)

	a, err := cs.AddVariable(three)
	assert.NoError(err)
	assert.NoError(cs.LookupGate(a))
	assert.NoError(cs.CheckSatisfied())

	b, err := cs.AddVariable(five)
	assert.NoError(err)
	assert.NoError(cs.LookupGate(b))
	err = cs.CheckSatisfied()
	assert.Error(err)
	var target *UnsatisfiedConstraintError
	assert.ErrorAs(err, &target)
	assert.True(target.Lookup)
}

func TestRangeGate(t *testing.T) {
	assert := assert.New(t)

	cs := NewRange(4)
	var v fr.Element
	v.SetUint64(13)
	a, err := cs.AddVariable(v)
	assert.NoError(err)

	assert.ErrorIs(cs.RangeGate(a, 8), ErrRangeWidthMismatch)
	assert.NoError(cs.RangeGate(a, 4))
	assert.NoError(cs.CheckSatisfied())

	// range gates on a plain extended circuit have no declared width
	ext, err := NewExtended(RangeTable(4))
	assert.NoError(err)
	assert.ErrorIs(ext.RangeGate(ext.Zero(), 4), ErrRangeWidthMismatch)
}

func TestExtendedFinalizeSize(t *testing.T) {
	assert := assert.New(t)

	// the domain must hold the table
	cs := NewRange(4)
	var v fr.Element
	v.SetUint64(3)
	a, _ := cs.AddVariable(v)
	assert.NoError(cs.RangeGate(a, 4))
	assert.NoError(cs.Finalize())
	assert.EqualValues(16, cs.Size())
}

func TestSolutionVectors(t *testing.T) {
	assert := assert.New(t)

	cs := buildMulCircuit(t, 4, 4, 16)

	_, _, _, err := cs.SolutionVectors()
	assert.ErrorIs(err, ErrNotFinalized)
	assert.NoError(cs.Finalize())

	l, r, o, err := cs.SolutionVectors()
	assert.NoError(err)
	assert.Len(l, int(cs.Size()))

	// row 0 is the public placeholder
	var four fr.Element
	four.SetUint64(4)
	assert.True(l[0].Equal(&four))
	assert.True(r[0].IsZero())

	// row 1 is the multiplication gate
	var sixteen fr.Element
	sixteen.SetUint64(16)
	assert.True(l[1].Equal(&four))
	assert.True(r[1].Equal(&four))
	assert.True(o[1].Equal(&sixteen))

	// padding rows carry the zero wire
	assert.True(l[3].IsZero())
	assert.True(o[3].IsZero())
}

func TestPermutation(t *testing.T) {
	assert := assert.New(t)

	cs := buildMulCircuit(t, 4, 4, 16)

	_, err := cs.Permutation()
	assert.ErrorIs(err, ErrNotFinalized)
	assert.NoError(cs.Finalize())

	perm, err := cs.Permutation()
	assert.NoError(err)
	assert.Len(perm, 3*int(cs.Size()))

	// the permutation must fix the concatenated wire vector
	l, r, o, err := cs.SolutionVectors()
	assert.NoError(err)
	lro := append(append(append([]fr.Element{}, l...), r...), o...)
	for i := range perm {
		assert.True(lro[i].Equal(&lro[perm[i]]), "permutation moves position %d across wire classes", i)
	}

	// every position is reachable exactly once
	seen := make(map[int64]bool, len(perm))
	for _, p := range perm {
		assert.False(seen[p])
		seen[p] = true
	}
}

func TestShapeRoundTrip(t *testing.T) {
	assert := assert.New(t)

	cs := buildMulCircuit(t, 4, 4, 16)
	assert.NoError(cs.Finalize())

	var buf bytes.Buffer
	written, err := cs.WriteTo(&buf)
	assert.NoError(err)
	assert.EqualValues(buf.Len(), written)

	var back CS
	read, err := back.ReadFrom(&buf)
	assert.NoError(err)
	assert.Equal(written, read)

	assert.True(cmp.Equal(cs.gates, back.gates))
	assert.True(cmp.Equal(cs.public, back.public))
	assert.Equal(cs.size, back.size)
	assert.Equal(cs.finalized, back.finalized)
	assert.Equal(cs.NbVariables(), back.NbVariables())

	// the witness does not travel
	for i := range back.values {
		assert.True(back.values[i].IsZero())
	}

	// permutation and keys derive identically from the shape
	p1, err := cs.Permutation()
	assert.NoError(err)
	p2, err := back.Permutation()
	assert.NoError(err)
	assert.Equal(p1, p2)
}
