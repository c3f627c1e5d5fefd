package plonk

import (
	"io"

	curve "github.com/consensys/gnark-crypto/ecc/bn254"
)

// WriteTo writes binary encoding of the Proof
func (proof *Proof) WriteTo(w io.Writer) (int64, error) {
	return proof.writeTo(w)
}

// WriteRawTo writes binary encoding of the Proof without point compression
func (proof *Proof) WriteRawTo(w io.Writer) (int64, error) {
	return proof.writeTo(w, curve.RawEncoding())
}

func (proof *Proof) writeTo(w io.Writer, options ...func(*curve.Encoder)) (int64, error) {
	enc := curve.NewEncoder(w, options...)

	toEncode := []interface{}{
		&proof.LRO[0],
		&proof.LRO[1],
		&proof.LRO[2],
		&proof.Hl[0],
		&proof.Hl[1],
		&proof.Z,
		&proof.Zl,
		&proof.H[0],
		&proof.H[1],
		&proof.H[2],
		&proof.BatchedProof.H,
		proof.BatchedProof.ClaimedValues,
		&proof.ShiftedProof.H,
		proof.ShiftedProof.ClaimedValues,
	}
	for _, v := range toEncode {
		if err := enc.Encode(v); err != nil {
			return enc.BytesWritten(), err
		}
	}
	return enc.BytesWritten(), nil
}

// ReadFrom decodes Proof data from reader.
func (proof *Proof) ReadFrom(r io.Reader) (int64, error) {
	dec := curve.NewDecoder(r)

	toDecode := []interface{}{
		&proof.LRO[0],
		&proof.LRO[1],
		&proof.LRO[2],
		&proof.Hl[0],
		&proof.Hl[1],
		&proof.Z,
		&proof.Zl,
		&proof.H[0],
		&proof.H[1],
		&proof.H[2],
		&proof.BatchedProof.H,
		&proof.BatchedProof.ClaimedValues,
		&proof.ShiftedProof.H,
		&proof.ShiftedProof.ClaimedValues,
	}
	for _, v := range toDecode {
		if err := dec.Decode(v); err != nil {
			return dec.BytesRead(), err
		}
	}
	return dec.BytesRead(), nil
}

// WriteTo writes binary encoding of the VerifyingKey
func (vk *VerifyingKey) WriteTo(w io.Writer) (int64, error) {
	return vk.writeTo(w)
}

// WriteRawTo writes binary encoding of the VerifyingKey without point compression
func (vk *VerifyingKey) WriteRawTo(w io.Writer) (int64, error) {
	return vk.writeTo(w, curve.RawEncoding())
}

func (vk *VerifyingKey) writeTo(w io.Writer, options ...func(*curve.Encoder)) (int64, error) {
	enc := curve.NewEncoder(w, options...)

	var lookup uint64
	if vk.Lookup {
		lookup = 1
	}
	toEncode := []interface{}{
		vk.Size,
		&vk.SizeInv,
		&vk.Generator,
		vk.NbPublicVariables,
		&vk.Shifter[0],
		&vk.Shifter[1],
		lookup,
		&vk.TableFirst,
		&vk.Kzg.G2[0],
		&vk.Kzg.G2[1],
		&vk.Kzg.G1,
		&vk.S[0],
		&vk.S[1],
		&vk.S[2],
		&vk.Ql,
		&vk.Qr,
		&vk.Qm,
		&vk.Qo,
		&vk.Qk,
		&vk.Qlk,
		&vk.T,
	}
	for _, v := range toEncode {
		if err := enc.Encode(v); err != nil {
			return enc.BytesWritten(), err
		}
	}
	return enc.BytesWritten(), nil
}

// ReadFrom decodes VerifyingKey data from reader.
func (vk *VerifyingKey) ReadFrom(r io.Reader) (int64, error) {
	dec := curve.NewDecoder(r)

	var lookup uint64
	toDecode := []interface{}{
		&vk.Size,
		&vk.SizeInv,
		&vk.Generator,
		&vk.NbPublicVariables,
		&vk.Shifter[0],
		&vk.Shifter[1],
		&lookup,
		&vk.TableFirst,
		&vk.Kzg.G2[0],
		&vk.Kzg.G2[1],
		&vk.Kzg.G1,
		&vk.S[0],
		&vk.S[1],
		&vk.S[2],
		&vk.Ql,
		&vk.Qr,
		&vk.Qm,
		&vk.Qo,
		&vk.Qk,
		&vk.Qlk,
		&vk.T,
	}
	for _, v := range toDecode {
		if err := dec.Decode(v); err != nil {
			return dec.BytesRead(), err
		}
	}
	vk.Lookup = lookup == 1
	return dec.BytesRead(), nil
}

// WriteTo writes binary encoding of the ProvingKey. The KZG proving key is
// not part of the encoding; after ReadFrom it must be reattached from the
// SRS the keys were derived from.
func (pk *ProvingKey) WriteTo(w io.Writer) (int64, error) {

	n, err := pk.Vk.WriteTo(w)
	if err != nil {
		return n, err
	}

	n2, err := pk.DomainSmall.WriteTo(w)
	n += n2
	if err != nil {
		return n, err
	}
	n2, err = pk.DomainBig.WriteTo(w)
	n += n2
	if err != nil {
		return n, err
	}

	enc := curve.NewEncoder(w)
	toEncode := []interface{}{
		pk.Ql,
		pk.Qr,
		pk.Qm,
		pk.Qo,
		pk.CQk,
		pk.LQk,
		pk.CQlk,
		pk.LQlk,
		pk.CT,
		pk.LT,
		pk.LS1,
		pk.LS2,
		pk.LS3,
		pk.CS1,
		pk.CS2,
		pk.CS3,
	}
	for _, v := range toEncode {
		if err := enc.Encode(v); err != nil {
			return n + enc.BytesWritten(), err
		}
	}

	if err := enc.Encode(uint64(len(pk.Permutation))); err != nil {
		return n + enc.BytesWritten(), err
	}
	for _, p := range pk.Permutation {
		if err := enc.Encode(uint64(p)); err != nil {
			return n + enc.BytesWritten(), err
		}
	}
	return n + enc.BytesWritten(), nil
}

// ReadFrom decodes ProvingKey data from reader. The KZG proving key is left
// empty; reattach it from the SRS.
func (pk *ProvingKey) ReadFrom(r io.Reader) (int64, error) {

	pk.Vk = &VerifyingKey{}
	n, err := pk.Vk.ReadFrom(r)
	if err != nil {
		return n, err
	}

	n2, err := pk.DomainSmall.ReadFrom(r)
	n += n2
	if err != nil {
		return n, err
	}
	n2, err = pk.DomainBig.ReadFrom(r)
	n += n2
	if err != nil {
		return n, err
	}

	dec := curve.NewDecoder(r)
	toDecode := []interface{}{
		&pk.Ql,
		&pk.Qr,
		&pk.Qm,
		&pk.Qo,
		&pk.CQk,
		&pk.LQk,
		&pk.CQlk,
		&pk.LQlk,
		&pk.CT,
		&pk.LT,
		&pk.LS1,
		&pk.LS2,
		&pk.LS3,
		&pk.CS1,
		&pk.CS2,
		&pk.CS3,
	}
	for _, v := range toDecode {
		if err := dec.Decode(v); err != nil {
			return n + dec.BytesRead(), err
		}
	}

	var lenPerm uint64
	if err := dec.Decode(&lenPerm); err != nil {
		return n + dec.BytesRead(), err
	}
	pk.Permutation = make([]int64, lenPerm)
	for i := range pk.Permutation {
		var p uint64
		if err := dec.Decode(&p); err != nil {
			return n + dec.BytesRead(), err
		}
		pk.Permutation[i] = int64(p)
	}
	return n + dec.BytesRead(), nil
}
