package partid

import (
	"crypto/rand"
	"fmt"
)

// Alphabet is the set of characters part ids are drawn from.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Source produces n characters from Alphabet.
type Source func(n int) (string, error)

// maxUnbiased is the largest multiple of len(Alphabet) that fits in a byte.
const maxUnbiased = 256 - 256%len(Alphabet)

// CryptoSource draws characters from crypto/rand, rejecting bytes that would
// bias the distribution.
func CryptoSource(n int) (string, error) {
	out := make([]byte, 0, n)
	buf := make([]byte, n+n/2+1)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= maxUnbiased {
				continue
			}
			out = append(out, Alphabet[int(b)%len(Alphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}
