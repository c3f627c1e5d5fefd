// Package circuit implements the constraint system of the proving engine.
//
// A circuit is built by creating variables (private or public) and appending
// gates; every gate row enforces
//
//	qL·a + qR·b + qM·a·b + qO·c + qC == 0
//
// over its three wires a, b, c. The circuit records, for every variable, all
// the (gate, wire-slot) positions it occupies; this wiring relation is what
// the permutation argument of the prover enforces.
//
// A circuit is a two-state object: Building, then Finalized. Finalize pads
// the gate count to the next power of two and freezes the circuit; mutating
// operations afterwards return ErrFinalized.
//
// The extended arithmetization carries a lookup table: lookup gates
// additionally constrain their left wire to take a value of the table. The
// standard and extended variants share the constraint layout and the
// permutation; extended mode only adds the lookup selector column.
package circuit

import (
	"errors"
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

var (
	// ErrFinalized is returned when mutating a finalized circuit.
	ErrFinalized = errors.New("circuit is finalized")

	// ErrNotFinalized is returned when using a building-state circuit where a
	// finalized one is required (key derivation, arithmetization).
	ErrNotFinalized = errors.New("circuit is not finalized")

	// ErrUnknownVariable is returned when a gate references a variable that
	// was not created by this circuit.
	ErrUnknownVariable = errors.New("unknown variable")

	// ErrNoLookupTable is returned when a lookup gate is added to a circuit
	// built without a table.
	ErrNoLookupTable = errors.New("circuit has no lookup table")

	// ErrEmptyLookupTable is returned when building an extended circuit from
	// an empty table.
	ErrEmptyLookupTable = errors.New("lookup table is empty")

	// ErrRangeWidthMismatch is returned when a range gate does not match the
	// width of the circuit's range table.
	ErrRangeWidthMismatch = errors.New("range width does not match the circuit's range table")
)

// UnsatisfiedConstraintError reports a witness failing a gate identity (or,
// for lookup gates, table membership). Gate is the offending row index.
type UnsatisfiedConstraintError struct {
	Gate   int
	Lookup bool
}

func (e *UnsatisfiedConstraintError) Error() string {
	if e.Lookup {
		return fmt.Sprintf("constraint #%d is not satisfied: wire value not in the lookup table", e.Gate)
	}
	return fmt.Sprintf("constraint #%d is not satisfied", e.Gate)
}

// Variable is an opaque index into the witness vector. It carries no value
// itself, only identity. Variables are created by the circuit and are
// immutable.
type Variable uint32

// Gate is one row of the circuit: three wires and the selector coefficients
// choosing the identity the row enforces. Lookup marks rows whose left wire
// is additionally constrained to the table (extended mode only).
type Gate struct {
	QL, QR, QM, QO, QC fr.Element
	XA, XB, XC         Variable
	Lookup             bool
}

// CS is the constraint system. The zero value is not usable; use New,
// NewExtended or NewRange.
type CS struct {
	gates  []Gate
	values []fr.Element // witness vector, indexed by Variable
	public []Variable   // public variables, in declaration order

	// extended mode
	table     []fr.Element
	rangeBits int

	booleans *bitset.BitSet

	size      uint64 // domain cardinality, set by Finalize
	finalized bool
}

// New returns a standard (no lookup argument) circuit in building state.
func New() *CS {
	cs := &CS{
		booleans: bitset.New(8),
	}
	// reserved zero wire, used by padding rows and unused gate slots
	cs.values = append(cs.values, fr.Element{})
	return cs
}

// NewExtended returns an extended circuit carrying the given lookup table.
// The table is copied; its first entry is the dummy query of non-lookup rows
// and so is part of the public circuit description.
func NewExtended(table []fr.Element) (*CS, error) {
	if len(table) == 0 {
		return nil, ErrEmptyLookupTable
	}
	cs := New()
	cs.table = make([]fr.Element, len(table))
	copy(cs.table, table)
	return cs, nil
}

// NewRange returns an extended circuit whose table is [0, 2^nbBits); range
// gates of that width are lookup gates against this table.
func NewRange(nbBits int) *CS {
	cs := New()
	cs.table = RangeTable(nbBits)
	cs.rangeBits = nbBits
	return cs
}

// RangeTable returns the table [0, 2^nbBits).
func RangeTable(nbBits int) []fr.Element {
	table := make([]fr.Element, 1<<nbBits)
	for i := range table {
		table[i].SetUint64(uint64(i))
	}
	return table
}

// AddVariable binds value to a fresh private witness variable.
func (cs *CS) AddVariable(value fr.Element) (Variable, error) {
	if cs.finalized {
		return 0, ErrFinalized
	}
	v := Variable(len(cs.values))
	cs.values = append(cs.values, value)
	return v, nil
}

// AddPublicVariable binds value to a fresh variable whose value is also
// exposed to the verifier. Public variables occupy the first rows of the
// arithmetization, in declaration order.
func (cs *CS) AddPublicVariable(value fr.Element) (Variable, error) {
	v, err := cs.AddVariable(value)
	if err != nil {
		return 0, err
	}
	cs.public = append(cs.public, v)
	return v, nil
}

// Zero returns the reserved zero-valued wire, used for unused gate slots.
func (cs *CS) Zero() Variable {
	return 0
}

// Finalize pads the gate count to the next power of two (public placeholder
// rows first, padding rows last) and freezes the circuit. In extended mode an
// extra row is reserved so the lookup recurrence never touches the last row,
// and the domain is large enough to hold the table.
func (cs *CS) Finalize() error {
	if cs.finalized {
		return ErrFinalized
	}

	sizeSystem := uint64(len(cs.public) + len(cs.gates))
	if cs.table != nil {
		sizeSystem++
		if t := uint64(len(cs.table)); t > sizeSystem {
			sizeSystem = t
		}
	}
	cs.size = ecc.NextPowerOfTwo(sizeSystem)
	cs.finalized = true
	return nil
}

// Finalized reports whether the circuit is frozen.
func (cs *CS) Finalized() bool {
	return cs.finalized
}

// Size returns the evaluation-domain cardinality. It is zero before Finalize.
func (cs *CS) Size() uint64 {
	return cs.size
}

// NbGates returns the number of gates appended so far, excluding public
// placeholder and padding rows.
func (cs *CS) NbGates() int {
	return len(cs.gates)
}

// NbPublic returns the number of public variables.
func (cs *CS) NbPublic() int {
	return len(cs.public)
}

// NbVariables returns the number of variables, the reserved zero wire
// included.
func (cs *CS) NbVariables() int {
	return len(cs.values)
}

// Gates returns the gate rows. The returned slice is owned by the circuit
// and must not be modified.
func (cs *CS) Gates() []Gate {
	return cs.gates
}

// Lookup reports whether the circuit uses the extended (lookup-enabled)
// arithmetization.
func (cs *CS) Lookup() bool {
	return cs.table != nil
}

// Table returns the lookup table (nil in standard mode). The returned slice
// is owned by the circuit and must not be modified.
func (cs *CS) Table() []fr.Element {
	return cs.table
}

// PublicInputs returns the values of the public variables, in declaration
// order.
func (cs *CS) PublicInputs() []fr.Element {
	res := make([]fr.Element, len(cs.public))
	for i, v := range cs.public {
		res[i] = cs.values[v]
	}
	return res
}

// CheckSatisfied recomputes every gate identity (and table membership for
// lookup gates) against the witness. It returns an
// UnsatisfiedConstraintError identifying the first offending gate, or nil if
// the witness satisfies the circuit.
func (cs *CS) CheckSatisfied() error {

	var lookups map[fr.Element]struct{}
	if cs.table != nil {
		lookups = make(map[fr.Element]struct{}, len(cs.table))
		for _, e := range cs.table {
			lookups[e] = struct{}{}
		}
	}

	var t0, t1 fr.Element
	for i := range cs.gates {
		g := &cs.gates[i]
		a := &cs.values[g.XA]
		b := &cs.values[g.XB]
		c := &cs.values[g.XC]

		// qL·a + qR·b + qM·a·b + qO·c + qC
		t0.Mul(&g.QM, b).Add(&t0, &g.QL).Mul(&t0, a)
		t1.Mul(&g.QR, b)
		t0.Add(&t0, &t1)
		t1.Mul(&g.QO, c)
		t0.Add(&t0, &t1).Add(&t0, &g.QC)

		if !t0.IsZero() {
			return &UnsatisfiedConstraintError{Gate: i}
		}

		if g.Lookup {
			if _, ok := lookups[*a]; !ok {
				return &UnsatisfiedConstraintError{Gate: i, Lookup: true}
			}
		}
	}
	return nil
}

// SolutionVectors consumes the witness into the three wire vectors in
// Lagrange basis: [ public placeholders | gates | padding ]. The circuit
// must be finalized.
func (cs *CS) SolutionVectors() (l, r, o []fr.Element, err error) {
	if !cs.finalized {
		return nil, nil, nil, ErrNotFinalized
	}

	s := int(cs.size)
	l = make([]fr.Element, s)
	r = make([]fr.Element, s)
	o = make([]fr.Element, s)
	s0 := cs.values[0]

	for i, v := range cs.public { // placeholders
		l[i] = cs.values[v]
		r[i] = s0
		o[i] = s0
	}
	offset := len(cs.public)
	for i := range cs.gates {
		l[offset+i] = cs.values[cs.gates[i].XA]
		r[offset+i] = cs.values[cs.gates[i].XB]
		o[offset+i] = cs.values[cs.gates[i].XC]
	}
	offset += len(cs.gates)
	for i := offset; i < s; i++ { // padding rows
		l[i] = s0
		r[i] = s0
		o[i] = s0
	}
	return l, r, o, nil
}

func (cs *CS) checkVariables(vars ...Variable) error {
	for _, v := range vars {
		if int(v) >= len(cs.values) {
			return ErrUnknownVariable
		}
	}
	return nil
}
