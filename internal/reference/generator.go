// Package reference produces booking reference tokens.
package reference

import (
	"crypto/rand"
	"math/big"
)

const (
	Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	Length   = 10
)

// Generator hands out candidate booking references. Tokens are not checked
// for uniqueness here; the booking primary key rejects a reused token.
type Generator interface {
	Generate() (string, error)
}

type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (RandomGenerator) Generate() (string, error) {
	alphabetLen := big.NewInt(int64(len(Alphabet)))
	buf := make([]byte, Length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		buf[i] = Alphabet[n.Int64()]
	}
	return string(buf), nil
}

// Valid reports whether s has the shape of a booking reference.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9') && !(c >= 'A' && c <= 'Z') {
			return false
		}
	}
	return true
}

var _ Generator = (*RandomGenerator)(nil)
