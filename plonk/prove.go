package plonk

import (
	"crypto/rand"
	"io"
	"math/big"
	"math/bits"
	"runtime"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"

	"github.com/AYUSHMIT/jellyfish/circuit"
	"github.com/AYUSHMIT/jellyfish/internal/parallel"
	"github.com/AYUSHMIT/jellyfish/kzg"
	"github.com/AYUSHMIT/jellyfish/logger"
	"github.com/AYUSHMIT/jellyfish/transcript"
)

// Proof is a zero-knowledge argument that the prover holds a witness
// satisfying the circuit of the corresponding keys, consistent with the
// public inputs handed to the verifier.
type Proof struct {

	// commitments to the blinded wire polynomials l, r, o
	LRO [3]kzg.Digest

	// commitments to the blinded halves of the sorted lookup vector
	// (extended circuits only)
	Hl [2]kzg.Digest

	// commitment to the blinded permutation grand product
	Z kzg.Digest

	// commitment to the blinded lookup grand product (extended circuits only)
	Zl kzg.Digest

	// commitments to the three chunks of the quotient polynomial
	H [3]kzg.Digest

	// batch opening proof at ζ
	BatchedProof kzg.BatchOpeningProof

	// batch opening proof at ωζ
	ShiftedProof kzg.BatchOpeningProof
}

func challengeNames(lookup bool) []string {
	if lookup {
		return []string{"gamma", "beta", "lbeta", "lgamma", "alpha", "zeta"}
	}
	return []string{"gamma", "beta", "alpha", "zeta"}
}

// Prove produces a proof that the circuit's witness satisfies every gate and
// copy (and, for extended circuits, lookup) constraint. The circuit must be
// finalized and carry a complete witness; an unsatisfied witness is reported
// through UnsatisfiedConstraintError before any commitment is made.
func Prove(ccs *circuit.CS, pk *ProvingKey, opts ...Option) (*Proof, error) {

	log := logger.Logger().With().Str("curve", "bn254").Str("backend", "plonk").Logger()
	start := time.Now()

	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	if !ccs.Finalized() {
		return nil, circuit.ErrNotFinalized
	}
	if err := ccs.CheckSatisfied(); err != nil {
		return nil, err
	}

	lookup := ccs.Lookup()
	var fs *transcript.Transcript
	if cfg.evm {
		fs = transcript.NewEVM(challengeNames(lookup)...)
	} else {
		fs = transcript.New(cfg.challengeHash, challengeNames(lookup)...)
	}

	publicInputs := ccs.PublicInputs()
	if err := bindPublicData(fs, "gamma", pk.Vk, publicInputs, cfg.extraMessage); err != nil {
		return nil, err
	}

	proof := &Proof{}
	n := pk.DomainSmall.Cardinality

	// wire vectors in Lagrange basis
	ll, lr, lo, err := ccs.SolutionVectors()
	if err != nil {
		return nil, err
	}

	// complete the constant selector with the public inputs
	qkFull := make([]fr.Element, n)
	copy(qkFull, pk.LQk)
	copy(qkFull, publicInputs)
	toCanonical(qkFull, &pk.DomainSmall)

	// blinded wire polynomials, canonical basis
	bcl, err := blindedCanonical(cfg.rng, ll, 1, &pk.DomainSmall)
	if err != nil {
		return nil, err
	}
	bcr, err := blindedCanonical(cfg.rng, lr, 1, &pk.DomainSmall)
	if err != nil {
		return nil, err
	}
	bco, err := blindedCanonical(cfg.rng, lo, 1, &pk.DomainSmall)
	if err != nil {
		return nil, err
	}

	if err := commitToLRO(bcl, bcr, bco, proof, pk.Kzg); err != nil {
		return nil, err
	}
	for i := 0; i < 3; i++ {
		if err := fs.BindCommitment("gamma", &proof.LRO[i]); err != nil {
			return nil, err
		}
	}

	// lookup queries and the sorted vector halves
	var fL, h1L, h2L, bh1, bh2 []fr.Element
	if lookup {
		fL = make([]fr.Element, n)
		c := pk.Vk.TableFirst
		for i := range fL {
			fL[i].Sub(&ll[i], &c).Mul(&fL[i], &pk.LQlk[i]).Add(&fL[i], &c)
		}
		h1L, h2L = buildSortedHalves(fL, pk.LT)

		if bh1, err = blindedCanonical(cfg.rng, h1L, 2, &pk.DomainSmall); err != nil {
			return nil, err
		}
		if bh2, err = blindedCanonical(cfg.rng, h2L, 2, &pk.DomainSmall); err != nil {
			return nil, err
		}
		if proof.Hl[0], err = kzg.Commit(bh1, pk.Kzg); err != nil {
			return nil, err
		}
		if proof.Hl[1], err = kzg.Commit(bh2, pk.Kzg); err != nil {
			return nil, err
		}
		for i := 0; i < 2; i++ {
			if err := fs.BindCommitment("gamma", &proof.Hl[i]); err != nil {
				return nil, err
			}
		}
	}

	gamma, err := fs.ChallengeField("gamma")
	if err != nil {
		return nil, err
	}
	beta, err := fs.ChallengeField("beta")
	if err != nil {
		return nil, err
	}

	// permutation grand product
	z := computeZ(ll, lr, lo, pk, beta, gamma)
	bz, err := blindedCanonical(cfg.rng, z, 2, &pk.DomainSmall)
	if err != nil {
		return nil, err
	}
	if proof.Z, err = kzg.Commit(bz, pk.Kzg); err != nil {
		return nil, err
	}
	afterZ := "alpha"
	if lookup {
		afterZ = "lbeta"
	}
	if err := fs.BindCommitment(afterZ, &proof.Z); err != nil {
		return nil, err
	}

	// lookup grand product
	var lbeta, lgamma fr.Element
	var bzl []fr.Element
	if lookup {
		if lbeta, err = fs.ChallengeField("lbeta"); err != nil {
			return nil, err
		}
		if lgamma, err = fs.ChallengeField("lgamma"); err != nil {
			return nil, err
		}
		zl := computeZl(fL, pk.LT, h1L, h2L, lbeta, lgamma)
		if bzl, err = blindedCanonical(cfg.rng, zl, 2, &pk.DomainSmall); err != nil {
			return nil, err
		}
		if proof.Zl, err = kzg.Commit(bzl, pk.Kzg); err != nil {
			return nil, err
		}
		if err := fs.BindCommitment("alpha", &proof.Zl); err != nil {
			return nil, err
		}
	}

	alpha, err := fs.ChallengeField("alpha")
	if err != nil {
		return nil, err
	}

	// quotient
	h1, h2, h3 := computeQuotientCanonical(pk, quotientInput{
		wl: bcl, wr: bcr, wo: bco,
		qk: qkFull,
		z:  bz, zl: bzl, h1: bh1, h2: bh2,
		alpha: alpha, beta: beta, gamma: gamma,
		lbeta: lbeta, lgamma: lgamma,
		lookup: lookup,
	})
	if err := commitToQuotient(h1, h2, h3, proof, pk.Kzg); err != nil {
		return nil, err
	}
	for i := 0; i < 3; i++ {
		if err := fs.BindCommitment("zeta", &proof.H[i]); err != nil {
			return nil, err
		}
	}

	zeta, err := fs.ChallengeField("zeta")
	if err != nil {
		return nil, err
	}
	zetaBytes := zeta.Marshal()

	var omegaZeta fr.Element
	omegaZeta.Mul(&zeta, &pk.DomainSmall.Generator)

	// linearization
	lZeta := evalPolynomial(bcl, zeta)
	rZeta := evalPolynomial(bcr, zeta)
	oZeta := evalPolynomial(bco, zeta)
	zOmegaZeta := evalPolynomial(bz, omegaZeta)
	linPol := computeLinearizedPolynomial(lZeta, rZeta, oZeta, alpha, beta, gamma, zeta, zOmegaZeta, bz, pk)
	linDigest, err := kzg.Commit(linPol, pk.Kzg)
	if err != nil {
		return nil, err
	}

	// fold the quotient chunks with ζⁿ⁺²
	var zetaPowerM fr.Element
	zetaPowerM.Exp(zeta, big.NewInt(int64(n+2)))
	foldedH := make([]fr.Element, len(h3))
	copy(foldedH, h3)
	for i := range foldedH {
		foldedH[i].Mul(&foldedH[i], &zetaPowerM).
			Add(&foldedH[i], &h2[i]).
			Mul(&foldedH[i], &zetaPowerM).
			Add(&foldedH[i], &h1[i])
	}
	var bZetaPowerM big.Int
	zetaPowerM.BigInt(&bZetaPowerM)
	foldedHDigest := proof.H[2]
	foldedHDigest.ScalarMultiplication(&foldedHDigest, &bZetaPowerM)
	foldedHDigest.Add(&foldedHDigest, &proof.H[1])
	foldedHDigest.ScalarMultiplication(&foldedHDigest, &bZetaPowerM)
	foldedHDigest.Add(&foldedHDigest, &proof.H[0])

	// batch opening at ζ
	polysZeta := [][]fr.Element{foldedH, linPol, bcl, bcr, bco, pk.CS1, pk.CS2}
	digestsZeta := []kzg.Digest{foldedHDigest, linDigest, proof.LRO[0], proof.LRO[1], proof.LRO[2], pk.Vk.S[0], pk.Vk.S[1]}
	if lookup {
		polysZeta = append(polysZeta, pk.CQlk, pk.CT, bh1, bh2, bzl)
		digestsZeta = append(digestsZeta, pk.Vk.Qlk, pk.Vk.T, proof.Hl[0], proof.Hl[1], proof.Zl)
	}
	proof.BatchedProof, err = kzg.BatchOpenSinglePoint(polysZeta, digestsZeta, zeta, cfg.kzgFoldingHash, pk.Kzg, zetaBytes)
	if err != nil {
		return nil, err
	}

	// batch opening at ωζ
	polysOmegaZeta := [][]fr.Element{bz}
	digestsOmegaZeta := []kzg.Digest{proof.Z}
	if lookup {
		polysOmegaZeta = append(polysOmegaZeta, pk.CT, bh1, bh2, bzl)
		digestsOmegaZeta = append(digestsOmegaZeta, pk.Vk.T, proof.Hl[0], proof.Hl[1], proof.Zl)
	}
	proof.ShiftedProof, err = kzg.BatchOpenSinglePoint(polysOmegaZeta, digestsOmegaZeta, omegaZeta, cfg.kzgFoldingHash, pk.Kzg, zetaBytes)
	if err != nil {
		return nil, err
	}

	log.Debug().Dur("took", time.Since(start)).Msg("prover done")

	return proof, nil
}

// blindedCanonical interpolates the Lagrange vector p into canonical form
// and adds a random multiple b(X)·(Xⁿ−1) of the vanishing polynomial, with
// deg b = bo. The blinded polynomial agrees with p on the domain and has
// n+bo+1 coefficients. p is left untouched.
func blindedCanonical(rng io.Reader, p []fr.Element, bo uint64, domain *fft.Domain) ([]fr.Element, error) {
	res := make([]fr.Element, domain.Cardinality+bo+1)
	copy(res, p)
	toCanonical(res[:domain.Cardinality], domain)
	for i := uint64(0); i <= bo; i++ {
		b, err := randFr(rng)
		if err != nil {
			return nil, err
		}
		res[i].Sub(&res[i], &b)
		res[domain.Cardinality+i].Add(&res[domain.Cardinality+i], &b)
	}
	return res, nil
}

func randFr(rng io.Reader) (fr.Element, error) {
	var res fr.Element
	b, err := rand.Int(rng, fr.Modulus())
	if err != nil {
		return res, err
	}
	res.SetBigInt(b)
	return res, nil
}

func commitToLRO(bcl, bcr, bco []fr.Element, proof *Proof, pk kzg.ProvingKey) error {
	n := runtime.NumCPU()
	var err0, err1, err2 error
	chCommit0 := make(chan struct{}, 1)
	chCommit1 := make(chan struct{}, 1)
	go func() {
		proof.LRO[0], err0 = kzg.Commit(bcl, pk, n)
		close(chCommit0)
	}()
	go func() {
		proof.LRO[1], err1 = kzg.Commit(bcr, pk, n)
		close(chCommit1)
	}()
	if proof.LRO[2], err2 = kzg.Commit(bco, pk, n); err2 != nil {
		return err2
	}
	<-chCommit0
	if err0 != nil {
		return err0
	}
	<-chCommit1
	return err1
}

func commitToQuotient(h1, h2, h3 []fr.Element, proof *Proof, pk kzg.ProvingKey) error {
	n := runtime.NumCPU()
	var err0, err1, err2 error
	chCommit0 := make(chan struct{}, 1)
	chCommit1 := make(chan struct{}, 1)
	go func() {
		proof.H[0], err0 = kzg.Commit(h1, pk, n)
		close(chCommit0)
	}()
	go func() {
		proof.H[1], err1 = kzg.Commit(h2, pk, n)
		close(chCommit1)
	}()
	if proof.H[2], err2 = kzg.Commit(h3, pk, n); err2 != nil {
		return err2
	}
	<-chCommit0
	if err0 != nil {
		return err0
	}
	<-chCommit1
	return err1
}

// buildSortedHalves merges the lookup queries (the first n-1 rows of f) into
// the table vector, preserving the table order. The merged vector has 2n-1
// entries and is returned as the overlapping halves s[:n] and s[n-1:], which
// share the middle element.
func buildSortedHalves(f, t []fr.Element) (h1, h2 []fr.Element) {
	n := len(t)
	counts := make(map[fr.Element]int, n)
	for i := 0; i < n-1; i++ {
		counts[f[i]]++
	}
	s := make([]fr.Element, 0, 2*n-1)
	seen := make(map[fr.Element]struct{}, n)
	for i := 0; i < n; i++ {
		s = append(s, t[i])
		if _, ok := seen[t[i]]; !ok {
			seen[t[i]] = struct{}{}
			for k := counts[t[i]]; k > 0; k-- {
				s = append(s, t[i])
			}
		}
	}
	return s[:n], s[n-1:]
}

// computeZ builds, in Lagrange basis, the permutation grand product
//
//	z(ωⁱ) = Π_{k<i} Π_w (w(ωᵏ)+β·id_w(ωᵏ)+γ) / (w(ωᵏ)+β·σ_w(ωᵏ)+γ)
//
// over the three wire columns, with z(ω⁰) = 1.
func computeZ(ll, lr, lo []fr.Element, pk *ProvingKey, beta, gamma fr.Element) []fr.Element {

	n := int(pk.DomainSmall.Cardinality)
	num := make([]fr.Element, n)
	den := make([]fr.Element, n)
	u := pk.Vk.Shifter[0]
	uu := pk.Vk.Shifter[1]

	parallel.Execute(n, func(start, end int) {
		var w, f, g, t fr.Element
		w.Exp(pk.DomainSmall.Generator, big.NewInt(int64(start)))
		for i := start; i < end; i++ {
			f.Mul(&beta, &w).Add(&f, &ll[i]).Add(&f, &gamma)
			t.Mul(&beta, &u).Mul(&t, &w).Add(&t, &lr[i]).Add(&t, &gamma)
			f.Mul(&f, &t)
			t.Mul(&beta, &uu).Mul(&t, &w).Add(&t, &lo[i]).Add(&t, &gamma)
			num[i].Mul(&f, &t)

			g.Mul(&beta, &pk.LS1[i]).Add(&g, &ll[i]).Add(&g, &gamma)
			t.Mul(&beta, &pk.LS2[i]).Add(&t, &lr[i]).Add(&t, &gamma)
			g.Mul(&g, &t)
			t.Mul(&beta, &pk.LS3[i]).Add(&t, &lo[i]).Add(&t, &gamma)
			den[i].Mul(&g, &t)

			w.Mul(&w, &pk.DomainSmall.Generator)
		}
	})
	den = fr.BatchInvert(den)

	z := make([]fr.Element, n)
	z[0].SetOne()
	for i := 1; i < n; i++ {
		z[i].Mul(&z[i-1], &num[i-1]).Mul(&z[i], &den[i-1])
	}
	return z
}

// computeZl builds, in Lagrange basis, the lookup grand product
//
//	zl(ωⁱ⁺¹) = zl(ωⁱ) · (1+β)·(γ+fᵢ)·(γ(1+β)+tᵢ+β·tᵢ₊₁)
//	                    / [(γ(1+β)+h1ᵢ+β·h1ᵢ₊₁)·(γ(1+β)+h2ᵢ+β·h2ᵢ₊₁)]
//
// for i < n-1, with zl(ω⁰) = 1. The last row carries no recurrence; the
// quotient zeroes it out with the (X−ωⁿ⁻¹) factor.
func computeZl(f, t, h1, h2 []fr.Element, beta, gamma fr.Element) []fr.Element {

	n := len(t)
	var onePlusBeta, gammaPrime, one fr.Element
	one.SetOne()
	onePlusBeta.Add(&beta, &one)
	gammaPrime.Mul(&gamma, &onePlusBeta)

	num := make([]fr.Element, n-1)
	den := make([]fr.Element, n-1)
	parallel.Execute(n-1, func(start, end int) {
		var t0, t1 fr.Element
		for i := start; i < end; i++ {
			t0.Add(&gamma, &f[i]).Mul(&t0, &onePlusBeta)
			t1.Mul(&beta, &t[i+1]).Add(&t1, &t[i]).Add(&t1, &gammaPrime)
			num[i].Mul(&t0, &t1)

			t0.Mul(&beta, &h1[i+1]).Add(&t0, &h1[i]).Add(&t0, &gammaPrime)
			t1.Mul(&beta, &h2[i+1]).Add(&t1, &h2[i]).Add(&t1, &gammaPrime)
			den[i].Mul(&t0, &t1)
		}
	})
	den = fr.BatchInvert(den)

	zl := make([]fr.Element, n)
	zl[0].SetOne()
	for i := 1; i < n; i++ {
		zl[i].Mul(&zl[i-1], &num[i-1]).Mul(&zl[i], &den[i-1])
	}
	return zl
}

type quotientInput struct {
	wl, wr, wo []fr.Element // blinded wires, canonical
	qk         []fr.Element // completed constant selector, canonical
	z          []fr.Element // blinded permutation grand product, canonical
	zl         []fr.Element // blinded lookup grand product, canonical
	h1, h2     []fr.Element // blinded sorted-vector halves, canonical

	alpha, beta, gamma fr.Element
	lbeta, lgamma      fr.Element
	lookup             bool
}

// computeQuotientCanonical evaluates the full constraint numerator on a
// coset of the big domain, divides pointwise by Xⁿ−1 and interpolates the
// quotient, returned as its three chunks of n+2 coefficients.
//
// All big-domain evaluations are kept in bit-reversed order; evaluating a
// polynomial at ω·x moves its storage index by the domain-size ratio in
// natural order.
func computeQuotientCanonical(pk *ProvingKey, in quotientInput) ([]fr.Element, []fr.Element, []fr.Element) {

	n := pk.DomainSmall.Cardinality
	sizeBig := int(pk.DomainBig.Cardinality)
	ratio := int(pk.DomainBig.Cardinality / n)
	nn := uint64(64 - bits.TrailingZeros64(uint64(sizeBig)))

	ev := func(p []fr.Element) []fr.Element {
		res := make([]fr.Element, sizeBig)
		copy(res, p)
		pk.DomainBig.FFT(res, fft.DIF, fft.OnCoset())
		return res
	}

	wl := ev(in.wl)
	wr := ev(in.wr)
	wo := ev(in.wo)
	ql := ev(pk.Ql)
	qr := ev(pk.Qr)
	qm := ev(pk.Qm)
	qo := ev(pk.Qo)
	qk := ev(in.qk)
	s1 := ev(pk.CS1)
	s2 := ev(pk.CS2)
	s3 := ev(pk.CS3)
	z := ev(in.z)

	// L₀ = (1/n)·Σᵢ Xⁱ
	lag0 := make([]fr.Element, n)
	for i := range lag0 {
		lag0[i] = pk.DomainSmall.CardinalityInv
	}
	l0 := ev(lag0)

	var qlk, tbl, h1e, h2e, zl, ln1 []fr.Element
	if in.lookup {
		qlk = ev(pk.CQlk)
		tbl = ev(pk.CT)
		h1e = ev(in.h1)
		h2e = ev(in.h2)
		zl = ev(in.zl)

		// L_{n-1} = (1/n)·Σᵢ ωⁱ·Xⁱ
		lagN1 := make([]fr.Element, n)
		lagN1[0] = pk.DomainSmall.CardinalityInv
		for i := 1; i < int(n); i++ {
			lagN1[i].Mul(&lagN1[i-1], &pk.DomainSmall.Generator)
		}
		ln1 = ev(lagN1)
	}

	xnMinusOneInv := fr.BatchInvert(evaluateXnMinusOneDomainBigCoset(&pk.DomainBig, &pk.DomainSmall))

	var alpha2, alpha3, alpha4, alpha5, alpha6 fr.Element
	alpha2.Square(&in.alpha)
	alpha3.Mul(&alpha2, &in.alpha)
	alpha4.Mul(&alpha3, &in.alpha)
	alpha5.Mul(&alpha4, &in.alpha)
	alpha6.Mul(&alpha5, &in.alpha)

	var onePlusBeta, gammaPrime, one, omegaNm1 fr.Element
	one.SetOne()
	if in.lookup {
		onePlusBeta.Add(&in.lbeta, &one)
		gammaPrime.Mul(&in.lgamma, &onePlusBeta)
	}
	omegaNm1 = pk.DomainSmall.GeneratorInv // ωⁿ⁻¹ = ω⁻¹
	c := pk.Vk.TableFirst
	u := pk.Vk.Shifter[0]
	uu := pk.Vk.Shifter[1]

	h := make([]fr.Element, sizeBig)
	parallel.Execute(sizeBig, func(start, end int) {
		var x, acc, t0, t1, t2, t3 fr.Element
		x.Exp(pk.DomainBig.Generator, big.NewInt(int64(start)))
		x.Mul(&x, &pk.DomainBig.FrMultiplicativeGen)

		for i := start; i < end; i++ {
			is := bits.Reverse64(uint64(i)) >> nn
			isShift := bits.Reverse64(uint64((i+ratio)%sizeBig)) >> nn

			// gate constraint: ql·l + qr·r + qm·l·r + qo·o + qk
			acc.Mul(&qm[is], &wr[is]).Add(&acc, &ql[is]).Mul(&acc, &wl[is])
			t0.Mul(&qr[is], &wr[is])
			acc.Add(&acc, &t0)
			t0.Mul(&qo[is], &wo[is])
			acc.Add(&acc, &t0).Add(&acc, &qk[is])

			// permutation: α·[ z·Πw(w+β·id+γ) − z(ω·)·Πw(w+β·σ+γ) ]
			t0.Mul(&in.beta, &x).Add(&t0, &wl[is]).Add(&t0, &in.gamma)
			t1.Mul(&in.beta, &u).Mul(&t1, &x).Add(&t1, &wr[is]).Add(&t1, &in.gamma)
			t0.Mul(&t0, &t1)
			t1.Mul(&in.beta, &uu).Mul(&t1, &x).Add(&t1, &wo[is]).Add(&t1, &in.gamma)
			t0.Mul(&t0, &t1).Mul(&t0, &z[is])

			t1.Mul(&in.beta, &s1[is]).Add(&t1, &wl[is]).Add(&t1, &in.gamma)
			t2.Mul(&in.beta, &s2[is]).Add(&t2, &wr[is]).Add(&t2, &in.gamma)
			t1.Mul(&t1, &t2)
			t2.Mul(&in.beta, &s3[is]).Add(&t2, &wo[is]).Add(&t2, &in.gamma)
			t1.Mul(&t1, &t2).Mul(&t1, &z[isShift])

			t0.Sub(&t0, &t1).Mul(&t0, &in.alpha)
			acc.Add(&acc, &t0)

			// α²·L₀·(z−1)
			t0.Sub(&z[is], &one).Mul(&t0, &l0[is]).Mul(&t0, &alpha2)
			acc.Add(&acc, &t0)

			if in.lookup {
				// f = qlk·(l−c)+c
				var fx fr.Element
				fx.Sub(&wl[is], &c).Mul(&fx, &qlk[is]).Add(&fx, &c)

				// α³·(X−ωⁿ⁻¹)·[ zl·(1+β)(γ+f)(γ(1+β)+t+β·t(ω·))
				//              − zl(ω·)·(γ(1+β)+h1+β·h1(ω·))(γ(1+β)+h2+β·h2(ω·)) ]
				t0.Add(&in.lgamma, &fx).Mul(&t0, &onePlusBeta)
				t1.Mul(&in.lbeta, &tbl[isShift]).Add(&t1, &tbl[is]).Add(&t1, &gammaPrime)
				t0.Mul(&t0, &t1).Mul(&t0, &zl[is])

				t1.Mul(&in.lbeta, &h1e[isShift]).Add(&t1, &h1e[is]).Add(&t1, &gammaPrime)
				t2.Mul(&in.lbeta, &h2e[isShift]).Add(&t2, &h2e[is]).Add(&t2, &gammaPrime)
				t1.Mul(&t1, &t2).Mul(&t1, &zl[isShift])

				t0.Sub(&t0, &t1)
				t3.Sub(&x, &omegaNm1)
				t0.Mul(&t0, &t3).Mul(&t0, &alpha3)
				acc.Add(&acc, &t0)

				// α⁴·L₀·(zl−1)
				t0.Sub(&zl[is], &one).Mul(&t0, &l0[is]).Mul(&t0, &alpha4)
				acc.Add(&acc, &t0)

				// α⁵·L_{n−1}·(h1−h2(ω·))
				t0.Sub(&h1e[is], &h2e[isShift]).Mul(&t0, &ln1[is]).Mul(&t0, &alpha5)
				acc.Add(&acc, &t0)

				// α⁶·L_{n−1}·(zl−1)
				t0.Sub(&zl[is], &one).Mul(&t0, &ln1[is]).Mul(&t0, &alpha6)
				acc.Add(&acc, &t0)
			}

			h[is].Mul(&acc, &xnMinusOneInv[i%ratio])

			x.Mul(&x, &pk.DomainBig.Generator)
		}
	})

	// interpolate the quotient and split it
	pk.DomainBig.FFTInverse(h, fft.DIT, fft.OnCoset())

	m := int(n + 2)
	return h[:m], h[m : 2*m], h[2*m : 3*m]
}

// evaluateXnMinusOneDomainBigCoset evaluates Xⁿ−1 on the coset of the big
// domain. The result is periodic with the domain-size ratio, so only ratio
// values are returned, indexed by the natural position modulo ratio.
func evaluateXnMinusOneDomainBigCoset(domainBig, domainSmall *fft.Domain) []fr.Element {

	ratio := domainBig.Cardinality / domainSmall.Cardinality
	res := make([]fr.Element, ratio)

	expo := big.NewInt(int64(domainSmall.Cardinality))
	res[0].Exp(domainBig.FrMultiplicativeGen, expo)

	var t fr.Element
	t.Exp(domainBig.Generator, expo)
	for i := 1; i < int(ratio); i++ {
		res[i].Mul(&res[i-1], &t)
	}

	var one fr.Element
	one.SetOne()
	for i := range res {
		res[i].Sub(&res[i], &one)
	}
	return res
}

// computeLinearizedPolynomial computes the linearized polynomial at ζ:
//
//	l̂·Ql + r̂·Qr + l̂r̂·Qm + ô·Qo + Qk
//	+ Z(X)·[ α·(l̂+βζ+γ)(r̂+βuζ+γ)(ô+βu²ζ+γ) + α²·L₀(ζ) ]
//	− S3(X)·α·β·ẑ(ωζ)·(l̂+βŝ1(ζ)+γ)(r̂+βŝ2(ζ)+γ)
//
// where hats denote evaluations at ζ. The constant terms the linearization
// drops are reconstructed by the verifier from the opened values.
func computeLinearizedPolynomial(lZeta, rZeta, oZeta, alpha, beta, gamma, zeta, zOmegaZeta fr.Element, blindedZCanonical []fr.Element, pk *ProvingKey) []fr.Element {

	// (l̂+βŝ1+γ)(r̂+βŝ2+γ)
	var g1, g2 fr.Element
	g1 = evalPolynomial(pk.CS1, zeta)
	g1.Mul(&g1, &beta).Add(&g1, &lZeta).Add(&g1, &gamma)
	g2 = evalPolynomial(pk.CS2, zeta)
	g2.Mul(&g2, &beta).Add(&g2, &rZeta).Add(&g2, &gamma)

	var s3Coef fr.Element
	s3Coef.Mul(&g1, &g2).Mul(&s3Coef, &zOmegaZeta).Mul(&s3Coef, &beta).Mul(&s3Coef, &alpha)
	s3Coef.Neg(&s3Coef)

	// α·(l̂+βζ+γ)(r̂+βuζ+γ)(ô+βu²ζ+γ) + α²·L₀(ζ)
	var zCoef, t0 fr.Element
	zCoef.Mul(&beta, &zeta).Add(&zCoef, &lZeta).Add(&zCoef, &gamma)
	t0.Mul(&beta, &pk.Vk.Shifter[0]).Mul(&t0, &zeta).Add(&t0, &rZeta).Add(&t0, &gamma)
	zCoef.Mul(&zCoef, &t0)
	t0.Mul(&beta, &pk.Vk.Shifter[1]).Mul(&t0, &zeta).Add(&t0, &oZeta).Add(&t0, &gamma)
	zCoef.Mul(&zCoef, &t0).Mul(&zCoef, &alpha)

	lagZero := evalLagrangeFirst(zeta, pk.Vk)
	t0.Square(&alpha).Mul(&t0, &lagZero)
	zCoef.Add(&zCoef, &t0)

	var rl fr.Element
	rl.Mul(&lZeta, &rZeta)

	n := len(pk.Ql)
	linPol := make([]fr.Element, len(blindedZCanonical))
	copy(linPol, blindedZCanonical)
	parallel.Execute(len(linPol), func(start, end int) {
		var t0, t1 fr.Element
		for i := start; i < end; i++ {
			linPol[i].Mul(&linPol[i], &zCoef)
			if i < n {
				t0.Mul(&pk.CS3[i], &s3Coef)
				linPol[i].Add(&linPol[i], &t0)

				t0.Mul(&pk.Ql[i], &lZeta)
				t1.Mul(&pk.Qr[i], &rZeta)
				t0.Add(&t0, &t1)
				t1.Mul(&pk.Qm[i], &rl)
				t0.Add(&t0, &t1)
				t1.Mul(&pk.Qo[i], &oZeta)
				t0.Add(&t0, &t1).Add(&t0, &pk.CQk[i])
				linPol[i].Add(&linPol[i], &t0)
			}
		}
	})
	return linPol
}

// evalPolynomial evaluates, in canonical basis, p at point.
func evalPolynomial(p []fr.Element, point fr.Element) fr.Element {
	var res fr.Element
	for i := len(p) - 1; i >= 0; i-- {
		res.Mul(&res, &point).Add(&res, &p[i])
	}
	return res
}
