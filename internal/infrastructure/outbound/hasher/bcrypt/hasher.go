package bcrypt_hasher

import (
	"errors"
	"fmt"

	"feedstack-post-service/internal/custom_errors"
	ports "feedstack-post-service/internal/domain/ports/output"

	"golang.org/x/crypto/bcrypt"
)

type Hasher struct {
	cost int
}

// NewHasher falls back to bcrypt.DefaultCost when cost is out of range.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

var _ ports.PasswordHasher = (*Hasher)(nil)

func (h *Hasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (h *Hasher) Compare(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return custom_errors.ErrInvalidCredentials
	}
	return fmt.Errorf("failed to compare password: %w", err)
}
