package plonk

import (
	"errors"
	"math/big"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/AYUSHMIT/jellyfish/kzg"
	"github.com/AYUSHMIT/jellyfish/logger"
	"github.com/AYUSHMIT/jellyfish/transcript"
)

var (
	errInvalidWitness    = errors.New("public witness size does not match the verifying key")
	errInvalidProof      = errors.New("proof is malformed")
	errAlgebraicRelation = errors.New("algebraic relation does not hold")
)

// Verify checks a proof against a verifying key and the claimed public
// inputs. The verifier replays the prover's transcript from the proof
// messages, checks the algebraic relation at ζ on the opened values, then
// checks both batch opening proofs in a single pairing.
func Verify(proof *Proof, vk *VerifyingKey, publicInputs []fr.Element, opts ...Option) error {

	log := logger.Logger().With().Str("curve", "bn254").Str("backend", "plonk").Logger()
	start := time.Now()

	cfg, err := newConfig(opts...)
	if err != nil {
		return err
	}

	if len(publicInputs) != int(vk.NbPublicVariables) {
		return errInvalidWitness
	}

	nbClaims, nbShifted := 7, 1
	if vk.Lookup {
		nbClaims, nbShifted = 12, 5
	}
	if len(proof.BatchedProof.ClaimedValues) != nbClaims ||
		len(proof.ShiftedProof.ClaimedValues) != nbShifted {
		return errInvalidProof
	}

	// replay the transcript
	var fs *transcript.Transcript
	if cfg.evm {
		fs = transcript.NewEVM(challengeNames(vk.Lookup)...)
	} else {
		fs = transcript.New(cfg.challengeHash, challengeNames(vk.Lookup)...)
	}
	if err := bindPublicData(fs, "gamma", vk, publicInputs, cfg.extraMessage); err != nil {
		return err
	}
	for i := 0; i < 3; i++ {
		if err := fs.BindCommitment("gamma", &proof.LRO[i]); err != nil {
			return err
		}
	}
	if vk.Lookup {
		for i := 0; i < 2; i++ {
			if err := fs.BindCommitment("gamma", &proof.Hl[i]); err != nil {
				return err
			}
		}
	}
	gamma, err := fs.ChallengeField("gamma")
	if err != nil {
		return err
	}
	beta, err := fs.ChallengeField("beta")
	if err != nil {
		return err
	}
	afterZ := "alpha"
	if vk.Lookup {
		afterZ = "lbeta"
	}
	if err := fs.BindCommitment(afterZ, &proof.Z); err != nil {
		return err
	}
	var lbeta, lgamma fr.Element
	if vk.Lookup {
		if lbeta, err = fs.ChallengeField("lbeta"); err != nil {
			return err
		}
		if lgamma, err = fs.ChallengeField("lgamma"); err != nil {
			return err
		}
		if err := fs.BindCommitment("alpha", &proof.Zl); err != nil {
			return err
		}
	}
	alpha, err := fs.ChallengeField("alpha")
	if err != nil {
		return err
	}
	for i := 0; i < 3; i++ {
		if err := fs.BindCommitment("zeta", &proof.H[i]); err != nil {
			return err
		}
	}
	zeta, err := fs.ChallengeField("zeta")
	if err != nil {
		return err
	}
	zetaBytes := zeta.Marshal()

	var omegaZeta fr.Element
	omegaZeta.Mul(&zeta, &vk.Generator)

	// opened values
	hZeta := proof.BatchedProof.ClaimedValues[0]
	linZeta := proof.BatchedProof.ClaimedValues[1]
	lZeta := proof.BatchedProof.ClaimedValues[2]
	rZeta := proof.BatchedProof.ClaimedValues[3]
	oZeta := proof.BatchedProof.ClaimedValues[4]
	s1Zeta := proof.BatchedProof.ClaimedValues[5]
	s2Zeta := proof.BatchedProof.ClaimedValues[6]
	zOmegaZeta := proof.ShiftedProof.ClaimedValues[0]

	var one fr.Element
	one.SetOne()

	// ζⁿ−1
	var zetaPowerN, zhZeta fr.Element
	zetaPowerN.Exp(zeta, new(big.Int).SetUint64(vk.Size))
	zhZeta.Sub(&zetaPowerN, &one)

	lagFirst := evalLagrangeFirst(zeta, vk)

	// Σᵢ pubᵢ·Lᵢ(ζ), with Lᵢ(ζ) = ωⁱ·(ζⁿ−1)/(n·(ζ−ωⁱ))
	var pi fr.Element
	if len(publicInputs) > 0 {
		dens := make([]fr.Element, len(publicInputs))
		wPow := one
		for i := range dens {
			dens[i].Sub(&zeta, &wPow)
			wPow.Mul(&wPow, &vk.Generator)
		}
		invDens := fr.BatchInvert(dens)

		var li, t0 fr.Element
		li.Mul(&zhZeta, &vk.SizeInv)
		wPow = one
		for i := range publicInputs {
			t0.Mul(&li, &wPow).Mul(&t0, &invDens[i]).Mul(&t0, &publicInputs[i])
			pi.Add(&pi, &t0)
			wPow.Mul(&wPow, &vk.Generator)
		}
	}

	// constant part of the permutation term:
	// α·ẑ(ωζ)·(l̂+βŝ1+γ)(r̂+βŝ2+γ)(ô+γ)
	var g1, g2, permConst fr.Element
	g1.Mul(&beta, &s1Zeta).Add(&g1, &lZeta).Add(&g1, &gamma)
	g2.Mul(&beta, &s2Zeta).Add(&g2, &rZeta).Add(&g2, &gamma)
	permConst.Add(&oZeta, &gamma).Mul(&permConst, &g1).Mul(&permConst, &g2).
		Mul(&permConst, &zOmegaZeta).Mul(&permConst, &alpha)

	var alpha2 fr.Element
	alpha2.Square(&alpha)

	// lin(ζ) + PI − α·ẑ(ωζ)·ĝ1·ĝ2·(ô+γ) − α²·L₀(ζ) == Ĥ(ζ)·(ζⁿ−1)
	var lhs, t0 fr.Element
	lhs.Add(&linZeta, &pi).Sub(&lhs, &permConst)
	t0.Mul(&alpha2, &lagFirst)
	lhs.Sub(&lhs, &t0)

	if vk.Lookup {
		qlkZeta := proof.BatchedProof.ClaimedValues[7]
		tZeta := proof.BatchedProof.ClaimedValues[8]
		h1Zeta := proof.BatchedProof.ClaimedValues[9]
		h2Zeta := proof.BatchedProof.ClaimedValues[10]
		zlZeta := proof.BatchedProof.ClaimedValues[11]
		tOmegaZeta := proof.ShiftedProof.ClaimedValues[1]
		h1OmegaZeta := proof.ShiftedProof.ClaimedValues[2]
		h2OmegaZeta := proof.ShiftedProof.ClaimedValues[3]
		zlOmegaZeta := proof.ShiftedProof.ClaimedValues[4]

		var alpha3, alpha4, alpha5, alpha6 fr.Element
		alpha3.Mul(&alpha2, &alpha)
		alpha4.Mul(&alpha3, &alpha)
		alpha5.Mul(&alpha4, &alpha)
		alpha6.Mul(&alpha5, &alpha)

		var onePlusBeta, gammaPrime fr.Element
		onePlusBeta.Add(&lbeta, &one)
		gammaPrime.Mul(&lgamma, &onePlusBeta)

		// f̂(ζ) from the opened wire and selector
		var fZeta fr.Element
		fZeta.Sub(&lZeta, &vk.TableFirst).Mul(&fZeta, &qlkZeta).Add(&fZeta, &vk.TableFirst)

		var num, den, t1 fr.Element
		num.Add(&lgamma, &fZeta).Mul(&num, &onePlusBeta)
		t1.Mul(&lbeta, &tOmegaZeta).Add(&t1, &tZeta).Add(&t1, &gammaPrime)
		num.Mul(&num, &t1).Mul(&num, &zlZeta)

		den.Mul(&lbeta, &h1OmegaZeta).Add(&den, &h1Zeta).Add(&den, &gammaPrime)
		t1.Mul(&lbeta, &h2OmegaZeta).Add(&t1, &h2Zeta).Add(&t1, &gammaPrime)
		den.Mul(&den, &t1).Mul(&den, &zlOmegaZeta)

		var omegaNm1 fr.Element
		omegaNm1.Inverse(&vk.Generator) // ωⁿ⁻¹ = ω⁻¹

		var lk fr.Element
		lk.Sub(&num, &den)
		t1.Sub(&zeta, &omegaNm1)
		lk.Mul(&lk, &t1).Mul(&lk, &alpha3)

		t1.Sub(&zlZeta, &one).Mul(&t1, &lagFirst).Mul(&t1, &alpha4)
		lk.Add(&lk, &t1)

		lagLast := evalLagrangeLast(zeta, vk)
		t1.Sub(&h1Zeta, &h2OmegaZeta).Mul(&t1, &lagLast).Mul(&t1, &alpha5)
		lk.Add(&lk, &t1)
		t1.Sub(&zlZeta, &one).Mul(&t1, &lagLast).Mul(&t1, &alpha6)
		lk.Add(&lk, &t1)

		lhs.Add(&lhs, &lk)
	}

	var rhs fr.Element
	rhs.Mul(&hZeta, &zhZeta)
	if !lhs.Equal(&rhs) {
		return errAlgebraicRelation
	}

	// reconstruct the linearization commitment from the verifying key
	var zCoef, s3Coef fr.Element
	zCoef.Mul(&beta, &zeta).Add(&zCoef, &lZeta).Add(&zCoef, &gamma)
	t0.Mul(&beta, &vk.Shifter[0]).Mul(&t0, &zeta).Add(&t0, &rZeta).Add(&t0, &gamma)
	zCoef.Mul(&zCoef, &t0)
	t0.Mul(&beta, &vk.Shifter[1]).Mul(&t0, &zeta).Add(&t0, &oZeta).Add(&t0, &gamma)
	zCoef.Mul(&zCoef, &t0).Mul(&zCoef, &alpha)
	t0.Mul(&alpha2, &lagFirst)
	zCoef.Add(&zCoef, &t0)

	s3Coef.Mul(&g1, &g2).Mul(&s3Coef, &zOmegaZeta).Mul(&s3Coef, &beta).Mul(&s3Coef, &alpha)
	s3Coef.Neg(&s3Coef)

	var rl fr.Element
	rl.Mul(&lZeta, &rZeta)

	points := []kzg.Digest{vk.Ql, vk.Qr, vk.Qm, vk.Qo, vk.Qk, vk.S[2], proof.Z}
	scalars := []fr.Element{lZeta, rZeta, rl, oZeta, one, s3Coef, zCoef}
	var linDigest kzg.Digest
	if _, err := linDigest.MultiExp(points, scalars, ecc.MultiExpConfig{}); err != nil {
		return err
	}

	// fold the quotient chunk commitments with ζⁿ⁺²
	var zetaPowerM fr.Element
	zetaPowerM.Exp(zeta, new(big.Int).SetUint64(vk.Size+2))
	var bZetaPowerM big.Int
	zetaPowerM.BigInt(&bZetaPowerM)
	foldedHDigest := proof.H[2]
	foldedHDigest.ScalarMultiplication(&foldedHDigest, &bZetaPowerM)
	foldedHDigest.Add(&foldedHDigest, &proof.H[1])
	foldedHDigest.ScalarMultiplication(&foldedHDigest, &bZetaPowerM)
	foldedHDigest.Add(&foldedHDigest, &proof.H[0])

	digestsZeta := []kzg.Digest{foldedHDigest, linDigest, proof.LRO[0], proof.LRO[1], proof.LRO[2], vk.S[0], vk.S[1]}
	digestsOmegaZeta := []kzg.Digest{proof.Z}
	if vk.Lookup {
		digestsZeta = append(digestsZeta, vk.Qlk, vk.T, proof.Hl[0], proof.Hl[1], proof.Zl)
		digestsOmegaZeta = append(digestsOmegaZeta, vk.T, proof.Hl[0], proof.Hl[1], proof.Zl)
	}

	foldedProof, foldedDigest, err := kzg.FoldProof(digestsZeta, &proof.BatchedProof, zeta, cfg.kzgFoldingHash, zetaBytes)
	if err != nil {
		return err
	}
	shiftedProof, shiftedDigest, err := kzg.FoldProof(digestsOmegaZeta, &proof.ShiftedProof, omegaZeta, cfg.kzgFoldingHash, zetaBytes)
	if err != nil {
		return err
	}

	err = kzg.BatchVerifyMultiPoints(
		[]kzg.Digest{foldedDigest, shiftedDigest},
		[]kzg.OpeningProof{foldedProof, shiftedProof},
		[]fr.Element{zeta, omegaZeta},
		vk.Kzg,
	)
	if err != nil {
		return err
	}

	log.Debug().Dur("took", time.Since(start)).Msg("verifier done")

	return nil
}

// bindPublicData binds the verifying key and the public inputs to the first
// challenge, so both sides agree on the statement before any randomness is
// drawn.
func bindPublicData(fs *transcript.Transcript, challenge string, vk *VerifyingKey, publicInputs []fr.Element, extra []byte) error {

	digests := []*kzg.Digest{
		&vk.S[0], &vk.S[1], &vk.S[2],
		&vk.Ql, &vk.Qr, &vk.Qm, &vk.Qo, &vk.Qk,
	}
	if vk.Lookup {
		digests = append(digests, &vk.Qlk, &vk.T)
	}
	for _, d := range digests {
		if err := fs.BindCommitment(challenge, d); err != nil {
			return err
		}
	}
	for i := range publicInputs {
		if err := fs.BindFieldElement(challenge, &publicInputs[i]); err != nil {
			return err
		}
	}
	if len(extra) > 0 {
		if err := fs.Bind(challenge, extra); err != nil {
			return err
		}
	}
	return nil
}

// evalLagrangeFirst evaluates L₀ = (Xⁿ−1)/(n·(X−1)) at zeta.
func evalLagrangeFirst(zeta fr.Element, vk *VerifyingKey) fr.Element {
	var res, den, one fr.Element
	one.SetOne()
	res.Exp(zeta, new(big.Int).SetUint64(vk.Size))
	res.Sub(&res, &one)
	den.Sub(&zeta, &one).Inverse(&den)
	res.Mul(&res, &den).Mul(&res, &vk.SizeInv)
	return res
}

// evalLagrangeLast evaluates L_{n−1} = ωⁿ⁻¹·(Xⁿ−1)/(n·(X−ωⁿ⁻¹)) at zeta.
func evalLagrangeLast(zeta fr.Element, vk *VerifyingKey) fr.Element {
	var res, den, one, omegaNm1 fr.Element
	one.SetOne()
	omegaNm1.Inverse(&vk.Generator)
	res.Exp(zeta, new(big.Int).SetUint64(vk.Size))
	res.Sub(&res, &one)
	den.Sub(&zeta, &omegaNm1).Inverse(&den)
	res.Mul(&res, &den).Mul(&res, &vk.SizeInv).Mul(&res, &omegaNm1)
	return res
}
