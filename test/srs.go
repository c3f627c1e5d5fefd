// Package test provides helpers shared by the package tests. Nothing here
// is safe for production use.
package test

import (
	"crypto/rand"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/AYUSHMIT/jellyfish/kzg"
)

var (
	lock     sync.Mutex
	srsCache = make(map[uint64]*kzg.SRS)
)

// NewKZGSRS returns a KZG SRS of the given size with freshly sampled toxic
// waste. Results are cached per size to keep test runs fast; callers must
// treat the returned SRS as read-only.
func NewKZGSRS(size uint64) (*kzg.SRS, error) {
	lock.Lock()
	defer lock.Unlock()

	if srs, ok := srsCache[size]; ok {
		return srs, nil
	}
	alpha, err := rand.Int(rand.Reader, fr.Modulus())
	if err != nil {
		return nil, err
	}
	srs, err := kzg.NewSRS(size, alpha)
	if err != nil {
		return nil, err
	}
	srsCache[size] = srs
	return srs, nil
}
