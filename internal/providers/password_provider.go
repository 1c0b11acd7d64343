package providers

import (
	"errors"
	"postit/internal/models"
	"postit/internal/structures"

	"golang.org/x/crypto/bcrypt"
)

type BcryptHasher struct {
	cost int
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", &models.Error{Kind: models.KindValidation, Msg: err.Error()}
	}
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (h *BcryptHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NewPasswordHasher falls back to bcrypt.DefaultCost when the configured cost
// is outside the range bcrypt accepts.
func NewPasswordHasher(conf *structures.Config) models.PasswordHasher {
	cost := conf.Security.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}
