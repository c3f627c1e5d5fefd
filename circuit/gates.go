package circuit

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

func (cs *CS) addGate(g Gate) error {
	if cs.finalized {
		return ErrFinalized
	}
	if err := cs.checkVariables(g.XA, g.XB, g.XC); err != nil {
		return err
	}
	cs.gates = append(cs.gates, g)
	return nil
}

// Add appends an addition gate and returns the variable bound to a+b.
func (cs *CS) Add(a, b Variable) (Variable, error) {
	if cs.finalized {
		return 0, ErrFinalized
	}
	if err := cs.checkVariables(a, b); err != nil {
		return 0, err
	}
	var v fr.Element
	v.Add(&cs.values[a], &cs.values[b])
	c, err := cs.AddVariable(v)
	if err != nil {
		return 0, err
	}
	var g Gate
	g.QL.SetOne()
	g.QR.SetOne()
	g.QO.SetOne().Neg(&g.QO)
	g.XA, g.XB, g.XC = a, b, c
	return c, cs.addGate(g)
}

// Sub appends a subtraction gate and returns the variable bound to a-b.
func (cs *CS) Sub(a, b Variable) (Variable, error) {
	if cs.finalized {
		return 0, ErrFinalized
	}
	if err := cs.checkVariables(a, b); err != nil {
		return 0, err
	}
	var v fr.Element
	v.Sub(&cs.values[a], &cs.values[b])
	c, err := cs.AddVariable(v)
	if err != nil {
		return 0, err
	}
	var g Gate
	g.QL.SetOne()
	g.QR.SetOne().Neg(&g.QR)
	g.QO.SetOne().Neg(&g.QO)
	g.XA, g.XB, g.XC = a, b, c
	return c, cs.addGate(g)
}

// Mul appends a multiplication gate and returns the variable bound to a·b.
func (cs *CS) Mul(a, b Variable) (Variable, error) {
	if cs.finalized {
		return 0, ErrFinalized
	}
	if err := cs.checkVariables(a, b); err != nil {
		return 0, err
	}
	var v fr.Element
	v.Mul(&cs.values[a], &cs.values[b])
	c, err := cs.AddVariable(v)
	if err != nil {
		return 0, err
	}
	var g Gate
	g.QM.SetOne()
	g.QO.SetOne().Neg(&g.QO)
	g.XA, g.XB, g.XC = a, b, c
	return c, cs.addGate(g)
}

// AddConstant appends a gate binding a fresh variable to a+k.
func (cs *CS) AddConstant(a Variable, k fr.Element) (Variable, error) {
	if cs.finalized {
		return 0, ErrFinalized
	}
	if err := cs.checkVariables(a); err != nil {
		return 0, err
	}
	var v fr.Element
	v.Add(&cs.values[a], &k)
	c, err := cs.AddVariable(v)
	if err != nil {
		return 0, err
	}
	var g Gate
	g.QL.SetOne()
	g.QO.SetOne().Neg(&g.QO)
	g.QC.Set(&k)
	g.XA, g.XB, g.XC = a, cs.Zero(), c
	return c, cs.addGate(g)
}

// QuadGate appends the generic quadratic gate
//
//	qL·a + qR·b + qM·a·b + qO·c + qC == 0
//
// over existing variables a, b, c.
func (cs *CS) QuadGate(a, b, c Variable, qL, qR, qM, qO, qC fr.Element) error {
	return cs.addGate(Gate{
		QL: qL, QR: qR, QM: qM, QO: qO, QC: qC,
		XA: a, XB: b, XC: c,
	})
}

// AssertEqual appends a gate enforcing a == b.
func (cs *CS) AssertEqual(a, b Variable) error {
	var g Gate
	g.QL.SetOne()
	g.QR.SetOne().Neg(&g.QR)
	g.XA, g.XB, g.XC = a, b, cs.Zero()
	return cs.addGate(g)
}

// AssertConstant appends a gate enforcing a == k.
func (cs *CS) AssertConstant(a Variable, k fr.Element) error {
	var g Gate
	g.QL.SetOne()
	g.QC.Set(&k)
	g.QC.Neg(&g.QC)
	g.XA, g.XB, g.XC = a, cs.Zero(), cs.Zero()
	return cs.addGate(g)
}

// AssertBoolean appends a gate enforcing a ∈ {0,1}. Asserting the same
// variable boolean twice adds a single gate.
func (cs *CS) AssertBoolean(a Variable) error {
	if cs.finalized {
		return ErrFinalized
	}
	if err := cs.checkVariables(a); err != nil {
		return err
	}
	if cs.booleans.Test(uint(a)) {
		return nil
	}
	// a·a - a == 0
	var g Gate
	g.QM.SetOne()
	g.QL.SetOne().Neg(&g.QL)
	g.XA, g.XB, g.XC = a, a, cs.Zero()
	if err := cs.addGate(g); err != nil {
		return err
	}
	cs.booleans.Set(uint(a))
	return nil
}

// LookupGate appends a gate enforcing that a takes a value of the circuit's
// lookup table (extended mode only). The row carries no algebraic identity,
// only the membership constraint.
func (cs *CS) LookupGate(a Variable) error {
	if cs.finalized {
		return ErrFinalized
	}
	if cs.table == nil {
		return ErrNoLookupTable
	}
	if err := cs.checkVariables(a); err != nil {
		return err
	}
	return cs.addGate(Gate{
		XA: a, XB: cs.Zero(), XC: cs.Zero(),
		Lookup: true,
	})
}

// RangeGate enforces a ∈ [0, 2^nbBits) through the lookup argument. The
// circuit must have been built with NewRange(nbBits): a wider table would
// only prove membership of the wider range.
func (cs *CS) RangeGate(a Variable, nbBits int) error {
	if cs.rangeBits == 0 || cs.rangeBits != nbBits {
		return ErrRangeWidthMismatch
	}
	return cs.LookupGate(a)
}
