// Package random generates identifiers that must not collide, such as names of in-memory databases.
package random

import (
	"crypto/rand"
	"log/slog"

	"github.com/myrjola/nai/internal/errors"
)

const allowedLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// unbiasedLimit is the largest multiple of len(allowedLetters) that fits in a byte. Bytes at or above it are
// skipped so that every letter is equally likely.
const unbiasedLimit = 256 - 256%len(allowedLetters)

// Letters returns n cryptographically random ASCII letters.
func Letters(n uint) (string, error) {
	letters := make([]byte, 0, n)
	buf := make([]byte, n+n/4+1) //nolint:mnd // about a fifth of the bytes get rejected
	for uint(len(letters)) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", errors.Wrap(err, "read random bytes", slog.Uint64("n", uint64(n)))
		}
		for _, b := range buf {
			if int(b) >= unbiasedLimit {
				continue
			}
			letters = append(letters, allowedLetters[int(b)%len(allowedLetters)])
			if uint(len(letters)) == n {
				break
			}
		}
	}
	return string(letters), nil
}
