package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// SecretGenerator makes random hex secrets for email links.
type SecretGenerator struct {
	size int
}

func NewSecretGenerator() *SecretGenerator { return &SecretGenerator{size: 32} }

func (g *SecretGenerator) New() (plain, hash string, err error) {
	b := make([]byte, g.size)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	plain = hex.EncodeToString(b)
	return plain, g.Hash(plain), nil
}

func (g *SecretGenerator) Hash(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
