package hash

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost - стоимость хеширования по умолчанию (12)
	DefaultCost = 12
	// MinPasswordLength - минимальная длина пароля
	MinPasswordLength = 6
)

// ErrPasswordTooShort возвращается для слишком коротких паролей
var ErrPasswordTooShort = errors.New("password is too short")

// Hasher хеширует пароли администраторов и водителей
type Hasher struct {
	cost int
}

// NewHasher создает Hasher с заданной стоимостью bcrypt
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash хеширует пароль с использованием bcrypt
func (h *Hasher) Hash(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Check сравнивает хешированный пароль с plain-text паролем
func (h *Hasher) Check(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// HashPassword хеширует пароль со стоимостью по умолчанию
func HashPassword(password string) (string, error) {
	return NewHasher(DefaultCost).Hash(password)
}

// CheckPassword сравнивает хешированный пароль с plain-text паролем
func CheckPassword(hashedPassword, password string) bool {
	return NewHasher(DefaultCost).Check(hashedPassword, password)
}
