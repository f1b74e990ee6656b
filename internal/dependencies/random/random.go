package random

import (
	"crypto/rand"
	"encoding/binary"
	"math"
)

// Random is the source behind puzzle shuffles, invite codes and AI rating offsets
type Random interface {
	// Intn returns a uniform int in [0, n), or 0 when n <= 0
	Intn(n int) int

	// String returns length characters drawn uniformly from alphabet
	String(length int, alphabet string) string
}

// CryptoRandom draws from crypto/rand. Invite codes are guessable otherwise.
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Intn rejects draws above the largest multiple of n so every result is equally likely
func (r *CryptoRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	bound := uint64(n)
	limit := math.MaxUint64 - math.MaxUint64%bound
	var buf [8]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			// crypto/rand.Read does not fail on supported platforms
			panic(err)
		}
		v := binary.LittleEndian.Uint64(buf[:])
		if v < limit {
			return int(v % bound)
		}
	}
}

func (r *CryptoRandom) String(length int, alphabet string) string {
	if length <= 0 || alphabet == "" {
		return ""
	}
	out := make([]byte, length)
	for i := range out {
		out[i] = alphabet[r.Intn(len(alphabet))]
	}
	return string(out)
}

// Shuffle applies a Fisher-Yates shuffle of n elements, walking from the back
func Shuffle(r Random, n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		swap(i, r.Intn(i+1))
	}
}
