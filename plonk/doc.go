// Package plonk implements a PLONK proving engine over BN254 with KZG
// commitments: key derivation from a finalized circuit and an SRS, a prover
// producing constant-size zero-knowledge proofs, and a verifier checking a
// proof against the public inputs with two pairings.
//
// Extended circuits carry a single-column lookup argument on top of the
// standard pipeline. The lookup side adds two committed polynomials (the
// halves of the sorted query/table vector) and a second grand product; the
// quotient still fits in three chunks and the proof stays constant-size.
package plonk
