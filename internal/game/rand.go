package game

import (
	"crypto/rand"
	"math/big"
)

// Source supplies the randomness for shuffles. Intn returns a uniformly
// random integer in [0, n).
type Source interface {
	Intn(n int) int
}

// CryptoSource draws from crypto/rand.
type CryptoSource struct{}

// Intn implements Source. n must be positive.
func (CryptoSource) Intn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken.
		panic(err)
	}
	return int(v.Int64())
}

// shuffle returns a Fisher–Yates permutation of words; the input is untouched.
// For i from the last index down to 1, element i is swapped with a uniformly
// random index j in [0, i].
func shuffle(src Source, words []string) []string {
	out := append([]string{}, words...)
	for i := len(out) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
