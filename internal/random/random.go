// Package random is the random-source external collaborator (spec.md §1,
// §5): it produces role assignment and starting stations. It is a thin
// constructor for a concrete *math/rand.Rand, not an interface; tests inject
// their own seeded *rand.Rand instead of calling New.
package random

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
)

// New returns a *math/rand.Rand seeded from a crypto-random seed, suitable
// for production use (role draws and station draws need only be
// unpredictable to players, not cryptographically secure themselves).
func New() *mrand.Rand {
	var seed [8]byte
	if _, err := rand.Read(seed[:]); err != nil {
		// crypto/rand failure on a sane OS is not recoverable; fall back to
		// a fixed seed rather than crash the process on startup.
		return mrand.New(mrand.NewSource(1))
	}
	return mrand.New(mrand.NewSource(int64(binary.LittleEndian.Uint64(seed[:]))))
}
