package security

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/jhoicas/clinica-portal/internal/application/ports"
)

var _ ports.SecretGenerator = (*RandomGenerator)(nil)

// MinTemporaryLength longitud mínima de una contraseña temporal.
const MinTemporaryLength = 8

// Clases de caracteres. Se omiten los ambiguos (0/O, 1/l/I) porque la contraseña se dicta o se copia a mano.
const (
	lowerChars  = "abcdefghijkmnopqrstuvwxyz"
	upperChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	digitChars  = "23456789"
	symbolChars = "!@#$%&*?"
)

// RandomGenerator genera contraseñas temporales con crypto/rand.
// Siempre incluye al menos una minúscula, una mayúscula, un dígito y un símbolo.
type RandomGenerator struct {
	rand io.Reader
}

// NewRandomGenerator usa crypto/rand.Reader.
func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{rand: rand.Reader}
}

// NewRandomGeneratorFrom usa la fuente indicada (tests).
func NewRandomGeneratorFrom(r io.Reader) *RandomGenerator {
	return &RandomGenerator{rand: r}
}

// TemporaryPassword genera una contraseña de length caracteres (mínimo MinTemporaryLength).
func (g *RandomGenerator) TemporaryPassword(length int) (string, error) {
	if length < MinTemporaryLength {
		length = MinTemporaryLength
	}
	classes := []string{lowerChars, upperChars, digitChars, symbolChars}
	all := lowerChars + upperChars + digitChars + symbolChars

	out := make([]byte, length)
	for i := range out {
		set := all
		if i < len(classes) {
			set = classes[i]
		}
		c, err := g.pick(set)
		if err != nil {
			return "", err
		}
		out[i] = c
	}
	// Fisher-Yates para que las clases obligatorias no queden siempre al inicio.
	for i := len(out) - 1; i > 0; i-- {
		j, err := g.intn(i + 1)
		if err != nil {
			return "", err
		}
		out[i], out[j] = out[j], out[i]
	}
	return string(out), nil
}

func (g *RandomGenerator) pick(set string) (byte, error) {
	n, err := g.intn(len(set))
	if err != nil {
		return 0, err
	}
	return set[n], nil
}

func (g *RandomGenerator) intn(n int) (int, error) {
	v, err := rand.Int(g.rand, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("generar aleatorio: %w", err)
	}
	return int(v.Int64()), nil
}
