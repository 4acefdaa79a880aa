package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const randomAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateRandomString returns n characters drawn uniformly from an
// alphanumeric alphabet using crypto/rand.
func GenerateRandomString(n int) (string, error) {
	max := big.NewInt(int64(len(randomAlphabet)))
	buf := make([]byte, n)

	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random string: %w", err)
		}
		buf[i] = randomAlphabet[idx.Int64()]
	}

	return string(buf), nil
}
