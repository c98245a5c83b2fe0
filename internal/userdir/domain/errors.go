package domain

import (
	"errors"
	"strings"
)

var (
	// ErrDuplicate email или CPF уже заняты (в том числе неактивным пользователем)
	ErrDuplicate = errors.New("duplicate")

	// ErrUserNotFound пользователь не найден
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials неизвестный email или неверный пароль
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserInactive пользователь деактивирован
	ErrUserInactive = errors.New("user inactive")

	// ErrInvalidRole роль вне допустимого набора
	ErrInvalidRole = errors.New("invalid role")

	// ErrInvalidToken подпись неверна или срок истек
	ErrInvalidToken = errors.New("invalid or expired token")
)

// ValidationError: ошибки валидации входных данных по полям
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

// NewValidationError создает ошибку из одного или нескольких сообщений
func NewValidationError(problems ...string) *ValidationError {
	return &ValidationError{Problems: problems}
}
