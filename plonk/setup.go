package plonk

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
	"golang.org/x/sync/errgroup"

	"github.com/AYUSHMIT/jellyfish/circuit"
	"github.com/AYUSHMIT/jellyfish/kzg"
)

// ProvingKey holds the per-circuit prover material: the selector and
// permutation polynomials in both bases, the evaluation domains and the KZG
// proving key.
type ProvingKey struct {
	Vk *VerifyingKey

	DomainSmall, DomainBig fft.Domain

	// gate selectors, canonical basis
	Ql, Qr, Qm, Qo []fr.Element

	// constant selector, canonical and Lagrange basis. The first
	// NbPublicVariables slots are zero; the prover completes them with the
	// public inputs of the statement being proved.
	CQk, LQk []fr.Element

	// lookup selector and table polynomial (extended circuits only)
	CQlk, LQlk []fr.Element
	CT, LT     []fr.Element

	// permutation polynomials in Lagrange and canonical basis
	LS1, LS2, LS3 []fr.Element
	CS1, CS2, CS3 []fr.Element

	// Permutation maps each of the 3·n wire slots to the previous slot of
	// its copy class
	Permutation []int64

	Kzg kzg.ProvingKey
}

// VerifyingKey holds the public per-circuit material: the commitments to the
// selector and permutation polynomials and the domain description.
type VerifyingKey struct {
	Size              uint64
	SizeInv           fr.Element
	Generator         fr.Element
	NbPublicVariables uint64

	// Shifter[0], Shifter[1] shift the small domain to its two disjoint
	// cosets for the extended permutation identities
	Shifter [2]fr.Element

	Kzg kzg.VerifyingKey

	// commitments to the permutation polynomials
	S [3]kzg.Digest

	// commitments to the selector polynomials; Qk is committed with zeroed
	// public slots, the verifier folds the public inputs in separately
	Ql, Qr, Qm, Qo, Qk kzg.Digest

	// lookup argument (extended circuits only)
	Lookup     bool
	Qlk, T     kzg.Digest
	TableFirst fr.Element
}

// Setup derives the proving and verifying keys of a finalized circuit from
// an SRS. The SRS must have at least Size+3 G1 points to cover the blinded
// polynomials.
func Setup(ccs *circuit.CS, srs *kzg.SRS) (*ProvingKey, *VerifyingKey, error) {
	if !ccs.Finalized() {
		return nil, nil, circuit.ErrNotFinalized
	}

	var pk ProvingKey
	var vk VerifyingKey
	pk.Vk = &vk

	size := ccs.Size()

	// the quotient has degree 3·size+5; on a coset of size 4·size the
	// pointwise division is exact as soon as size >= 6
	pk.DomainSmall = *fft.NewDomain(size)
	if size < 6 {
		pk.DomainBig = *fft.NewDomain(8 * size)
	} else {
		pk.DomainBig = *fft.NewDomain(4 * size)
	}

	// blinded polynomials have size+3 coefficients
	if uint64(len(srs.Pk.G1)) < size+3 {
		return nil, nil, kzg.ErrSRSTooSmall
	}
	pk.Kzg = srs.Pk
	vk.Kzg = srs.Vk

	vk.Size = size
	vk.SizeInv = pk.DomainSmall.CardinalityInv
	vk.Generator = pk.DomainSmall.Generator
	vk.NbPublicVariables = uint64(ccs.NbPublic())
	vk.Shifter[0] = pk.DomainSmall.FrMultiplicativeGen
	vk.Shifter[1].Square(&pk.DomainSmall.FrMultiplicativeGen)

	if err := pk.buildSelectors(ccs); err != nil {
		return nil, nil, err
	}
	if err := pk.buildPermutation(ccs); err != nil {
		return nil, nil, err
	}

	// commit to the public part of the keys
	g := new(errgroup.Group)
	g.Go(func() (err error) { vk.Ql, err = kzg.Commit(pk.Ql, pk.Kzg); return })
	g.Go(func() (err error) { vk.Qr, err = kzg.Commit(pk.Qr, pk.Kzg); return })
	g.Go(func() (err error) { vk.Qm, err = kzg.Commit(pk.Qm, pk.Kzg); return })
	g.Go(func() (err error) { vk.Qo, err = kzg.Commit(pk.Qo, pk.Kzg); return })
	g.Go(func() (err error) { vk.Qk, err = kzg.Commit(pk.CQk, pk.Kzg); return })
	g.Go(func() (err error) { vk.S[0], err = kzg.Commit(pk.CS1, pk.Kzg); return })
	g.Go(func() (err error) { vk.S[1], err = kzg.Commit(pk.CS2, pk.Kzg); return })
	g.Go(func() (err error) { vk.S[2], err = kzg.Commit(pk.CS3, pk.Kzg); return })
	if vk.Lookup {
		g.Go(func() (err error) { vk.Qlk, err = kzg.Commit(pk.CQlk, pk.Kzg); return })
		g.Go(func() (err error) { vk.T, err = kzg.Commit(pk.CT, pk.Kzg); return })
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return &pk, &vk, nil
}

// buildSelectors fills the selector polynomials from the gate rows, in row
// order [ public placeholders | gates | padding ].
func (pk *ProvingKey) buildSelectors(ccs *circuit.CS) error {
	n := int(pk.DomainSmall.Cardinality)
	nbPublic := ccs.NbPublic()
	gates := ccs.Gates()

	pk.Ql = make([]fr.Element, n)
	pk.Qr = make([]fr.Element, n)
	pk.Qm = make([]fr.Element, n)
	pk.Qo = make([]fr.Element, n)
	pk.LQk = make([]fr.Element, n)

	for i := 0; i < nbPublic; i++ {
		pk.Ql[i].SetOne().Neg(&pk.Ql[i])
	}
	for i := range gates {
		j := nbPublic + i
		pk.Ql[j] = gates[i].QL
		pk.Qr[j] = gates[i].QR
		pk.Qm[j] = gates[i].QM
		pk.Qo[j] = gates[i].QO
		pk.LQk[j] = gates[i].QC
	}

	pk.CQk = make([]fr.Element, n)
	copy(pk.CQk, pk.LQk)

	toCanonical(pk.Ql, &pk.DomainSmall)
	toCanonical(pk.Qr, &pk.DomainSmall)
	toCanonical(pk.Qm, &pk.DomainSmall)
	toCanonical(pk.Qo, &pk.DomainSmall)
	toCanonical(pk.CQk, &pk.DomainSmall)

	if ccs.Lookup() {
		pk.Vk.Lookup = true
		table := ccs.Table()
		pk.Vk.TableFirst = table[0]

		pk.LQlk = make([]fr.Element, n)
		for i := range gates {
			if gates[i].Lookup {
				pk.LQlk[nbPublic+i].SetOne()
			}
		}
		pk.LT = make([]fr.Element, n)
		copy(pk.LT, table)
		for i := len(table); i < n; i++ {
			pk.LT[i] = table[len(table)-1]
		}

		pk.CQlk = make([]fr.Element, n)
		copy(pk.CQlk, pk.LQlk)
		toCanonical(pk.CQlk, &pk.DomainSmall)
		pk.CT = make([]fr.Element, n)
		copy(pk.CT, pk.LT)
		toCanonical(pk.CT, &pk.DomainSmall)
	}

	return nil
}

// buildPermutation derives the three permutation polynomials from the wiring
// of the circuit. The identity polynomials take the values of the small
// domain and its two shifted cosets; the sigma polynomials permute those
// values along the copy classes.
func (pk *ProvingKey) buildPermutation(ccs *circuit.CS) error {
	perm, err := ccs.Permutation()
	if err != nil {
		return err
	}
	pk.Permutation = perm

	n := int(pk.DomainSmall.Cardinality)

	// sID = [1,ω,..,ω^{n-1} | u,uω,..,uω^{n-1} | u²,u²ω,..,u²ω^{n-1}]
	sID := make([]fr.Element, 3*n)
	sID[0].SetOne()
	for i := 1; i < n; i++ {
		sID[i].Mul(&sID[i-1], &pk.DomainSmall.Generator)
	}
	for i := 0; i < n; i++ {
		sID[n+i].Mul(&sID[i], &pk.Vk.Shifter[0])
		sID[2*n+i].Mul(&sID[i], &pk.Vk.Shifter[1])
	}

	pk.LS1 = make([]fr.Element, n)
	pk.LS2 = make([]fr.Element, n)
	pk.LS3 = make([]fr.Element, n)
	for i := 0; i < n; i++ {
		pk.LS1[i] = sID[perm[i]]
		pk.LS2[i] = sID[perm[n+i]]
		pk.LS3[i] = sID[perm[2*n+i]]
	}

	pk.CS1 = make([]fr.Element, n)
	pk.CS2 = make([]fr.Element, n)
	pk.CS3 = make([]fr.Element, n)
	copy(pk.CS1, pk.LS1)
	copy(pk.CS2, pk.LS2)
	copy(pk.CS3, pk.LS3)
	toCanonical(pk.CS1, &pk.DomainSmall)
	toCanonical(pk.CS2, &pk.DomainSmall)
	toCanonical(pk.CS3, &pk.DomainSmall)

	return nil
}

// toCanonical interpolates, in place, a vector of evaluations over the
// domain into coefficient form.
func toCanonical(p []fr.Element, domain *fft.Domain) {
	domain.FFTInverse(p, fft.DIF)
	fft.BitReverse(p)
}
