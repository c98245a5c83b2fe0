package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes: bcrypt учитывает не больше 72 байт
const MaxPasswordBytes = 72

// ErrPasswordTooLong пароль длиннее MaxPasswordBytes в байтах
var ErrPasswordTooLong = errors.New("password too long")

// PasswordHasher: соленый bcrypt-хеш паролей
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher; cost == 0 означает bcrypt.DefaultCost
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash возвращает новый хеш со случайной солью
func (h *PasswordHasher) Hash(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrPasswordTooLong, len(password))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify сравнивает пароль с хешем за постоянное время.
// Поврежденный хеш считается несовпадением.
func (h *PasswordHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
