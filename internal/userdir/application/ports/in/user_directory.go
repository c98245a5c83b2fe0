package in

import (
	"context"
)

// CreateUserInput: входные данные для создания пользователя
type CreateUserInput struct {
	Name      string  `json:"name"      validate:"required,max=100"`
	CPF       string  `json:"cpf"       validate:"required,max=14"`
	Email     string  `json:"email"     validate:"required,email,max=100"`
	Password  string  `json:"password"  validate:"required,maxbytes=72"` // plain text, будет захеширован
	Role      string  `json:"role"      validate:"required"`              // PATIENT | DOCTOR | RECEPTIONIST | ADMIN
	Phone     *string `json:"phone"     validate:"omitempty,max=15"`
	CRM       *string `json:"crm"       validate:"omitempty,max=20"`
	Specialty *string `json:"specialty" validate:"omitempty,max=100"`
}

// AuthenticateInput: логин по email и паролю
type AuthenticateInput struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserInput: частичное обновление; nil-поля не меняются
type UpdateUserInput struct {
	UserID    int64   `json:"user_id"   validate:"required,gt=0"`
	Name      *string `json:"name"      validate:"omitempty,min=1,max=100"`
	Email     *string `json:"email"     validate:"omitempty,email,max=100"`
	Phone     *string `json:"phone"     validate:"omitempty,max=15"`
	Password  *string `json:"password"  validate:"omitempty,min=1,maxbytes=72"`
	CRM       *string `json:"crm"       validate:"omitempty,max=20"`
	Specialty *string `json:"specialty" validate:"omitempty,max=100"`
}

// ListUsersInput: фильтры списка; nil означает "без ограничения"
type ListUsersInput struct {
	Role   *string `json:"role"`
	Active *bool   `json:"active"`
}

// UserDTO: пользователь в ответах протокола. Хеш пароля не отдается никогда.
type UserDTO struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	CPF       string  `json:"cpf"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	Phone     *string `json:"phone"`
	CRM       *string `json:"crm"`
	Specialty *string `json:"specialty"`
	Active    bool    `json:"active"`
	CreatedAt string  `json:"created_at"` // ISO8601
	UpdatedAt string  `json:"updated_at"` // ISO8601
}

// AuthenticateOutput: результат успешной аутентификации
type AuthenticateOutput struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// TokenPayload: содержимое проверенного токена
type TokenPayload struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	Exp    int64  `json:"exp"` // unix seconds
}

// CreateUserUseCase: интерфейс use case создания пользователя
type CreateUserUseCase interface {
	Execute(ctx context.Context, input CreateUserInput) (*UserDTO, error)
}

// AuthenticateUseCase: интерфейс use case аутентификации
type AuthenticateUseCase interface {
	Execute(ctx context.Context, input AuthenticateInput) (*AuthenticateOutput, error)
}

// GetUserUseCase: интерфейс use case получения пользователя
type GetUserUseCase interface {
	Execute(ctx context.Context, userID int64) (*UserDTO, error)
}

// UpdateUserUseCase: интерфейс use case обновления пользователя
type UpdateUserUseCase interface {
	Execute(ctx context.Context, input UpdateUserInput) (*UserDTO, error)
}

// DeleteUserUseCase: интерфейс use case деактивации (soft delete)
type DeleteUserUseCase interface {
	Execute(ctx context.Context, userID int64) error
}

// ListUsersUseCase: интерфейс use case получения списка пользователей
type ListUsersUseCase interface {
	Execute(ctx context.Context, input ListUsersInput) ([]UserDTO, error)
}

// VerifyTokenUseCase: интерфейс use case проверки токена
type VerifyTokenUseCase interface {
	Execute(ctx context.Context, token string) (*TokenPayload, error)
}
