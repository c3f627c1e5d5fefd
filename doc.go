// Package jellyfish provides a PLONK proving engine over the BN254 curve.
//
// The module is organized bottom-up:
//
//   - circuit: the constraint system (standard and lookup-extended)
//   - kzg: the KZG polynomial commitment scheme
//   - transcript: the Fiat-Shamir transcript
//   - plonk: key derivation, prover and verifier
package jellyfish
