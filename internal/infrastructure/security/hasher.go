package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/clinica-portal/internal/application/ports"
)

var _ ports.CredentialHasher = (*BcryptHasher)(nil)

// DefaultCost factor de trabajo bcrypt por defecto.
const DefaultCost = 10

// BcryptHasher hashea y verifica contraseñas con bcrypt. Nunca registrar ni persistir el texto plano.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher construye el hasher; cost fuera de rango se ajusta a [bcrypt.MinCost, bcrypt.MaxCost].
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{cost: cost}
}

// Cost factor de trabajo efectivo.
func (h *BcryptHasher) Cost() int { return h.cost }

// Hash genera el hash bcrypt (con sal) de plain.
func (h *BcryptHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify compara en tiempo constante (bcrypt.CompareHashAndPassword).
func (h *BcryptHasher) Verify(hash, plain string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}
