package crypto

import (
	"crypto/rand"
	"math/big"
)

// Alphabets for RandomString.
const (
	AlphanumericAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	DigitAlphabet        = "0123456789"
)

// RandomString returns a random string of length n drawn from alphabet using
// crypto/rand. Each character is selected with rand.Int, so the distribution
// is uniform regardless of alphabet size.
func RandomString(n int, alphabet string) string {
	if n <= 0 || len(alphabet) == 0 {
		return ""
	}
	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failing means the platform entropy source is broken,
			// same condition the stdlib treats as fatal.
			panic("crypto: random source unavailable: " + err.Error())
		}
		b[i] = alphabet[idx.Int64()]
	}
	return string(b)
}

// RandomDigits returns a string of exactly n numeric characters.
// Used for email verification and password recovery codes.
func RandomDigits(n int) string {
	return RandomString(n, DigitAlphabet)
}
