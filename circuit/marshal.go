package circuit

import (
	"io"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/fxamacker/cbor/v2"
)

// shape is the serializable description of a circuit: everything needed to
// re-derive keys and verify, and nothing of the witness. The witness vector
// is deliberately not part of the encoding; a decoded circuit carries zeroed
// variable values.
type shape struct {
	Gates       []Gate
	Public      []Variable
	Table       []fr.Element
	RangeBits   int
	NbVariables int
	Booleans    []byte
	Size        uint64
	Finalized   bool
}

type countWriter struct {
	w io.Writer
	n int64
}

func (cw *countWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// WriteTo encodes the circuit shape to w using deterministic CBOR. Witness
// values are never serialized.
func (cs *CS) WriteTo(w io.Writer) (int64, error) {
	opts, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return 0, err
	}
	cw := &countWriter{w: w}
	enc := opts.NewEncoder(cw)

	s := shape{
		Gates:       cs.gates,
		Public:      cs.public,
		Table:       cs.table,
		RangeBits:   cs.rangeBits,
		NbVariables: len(cs.values),
		Size:        cs.size,
		Finalized:   cs.finalized,
	}
	if s.Booleans, err = cs.booleans.MarshalBinary(); err != nil {
		return cw.n, err
	}
	err = enc.Encode(&s)
	return cw.n, err
}

// ReadFrom decodes a circuit shape from r, replacing the receiver's content.
// The decoded circuit has no witness: all variable values are zero.
func (cs *CS) ReadFrom(r io.Reader) (int64, error) {
	opts, err := cbor.DecOptions{MaxArrayElements: 1 << 28}.DecMode()
	if err != nil {
		return 0, err
	}
	cr := &countReader{r: r}
	dec := opts.NewDecoder(cr)

	var s shape
	if err := dec.Decode(&s); err != nil {
		return cr.n, err
	}

	cs.gates = s.Gates
	cs.public = s.Public
	cs.table = s.Table
	cs.rangeBits = s.RangeBits
	cs.values = make([]fr.Element, s.NbVariables)
	cs.size = s.Size
	cs.finalized = s.Finalized
	cs.booleans = bitset.New(8)
	if err := cs.booleans.UnmarshalBinary(s.Booleans); err != nil {
		return cr.n, err
	}
	return cr.n, nil
}

type countReader struct {
	r io.Reader
	n int64
}

func (cr *countReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	return n, err
}
