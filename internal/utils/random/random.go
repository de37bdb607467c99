package random

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Source yields random integers in [0, n). Implementations must be safe for
// the single-goroutine use the selection engine makes of them.
type Source interface {
	Intn(n int) (int, error)
}

// CryptoSource draws from crypto/rand so winner selection cannot be
// predicted or biased by participants.
type CryptoSource struct{}

func NewCryptoSource() *CryptoSource {
	return &CryptoSource{}
}

func (s *CryptoSource) Intn(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("invalid upper bound: %d", n)
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("failed to generate random number: %w", err)
	}
	return int(v.Int64()), nil
}

// Shuffle performs a Fisher-Yates shuffle of the slice using the given source.
func Shuffle[T any](slice []T, src Source) error {
	for i := len(slice) - 1; i > 0; i-- {
		j, err := src.Intn(i + 1)
		if err != nil {
			return err
		}
		slice[i], slice[j] = slice[j], slice[i]
	}
	return nil
}
