package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/auth"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/logger"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/application/ports/in"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/application/ports/out"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/domain"
)

// AuthenticateService реализует AuthenticateUseCase
type AuthenticateService struct {
	userRepo out.UserRepository
	hasher   *auth.PasswordHasher
	tokens   *auth.JWTService
	log      *logger.Logger
}

// NewAuthenticateService создает новый сервис аутентификации
func NewAuthenticateService(userRepo out.UserRepository, hasher *auth.PasswordHasher, tokens *auth.JWTService, log *logger.Logger) *AuthenticateService {
	return &AuthenticateService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		log:      log,
	}
}

// Execute проверяет пароль и выпускает токен на 24 часа
func (s *AuthenticateService) Execute(ctx context.Context, input in.AuthenticateInput) (*in.AuthenticateOutput, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, domain.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	// статус раскрываем только тому, кто знает пароль
	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		s.log.Warn(logger.Entry{
			Action:     "authenticate_failed",
			Message:    "wrong password",
			Additional: map[string]any{"user_id": user.ID},
		})
		return nil, domain.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, domain.ErrUserInactive
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Role.String())
	if err != nil {
		s.log.Error(logger.Entry{
			Action:  "issue_token_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
		return nil, err
	}

	s.log.Info(logger.Entry{
		Action:  "user_authenticated",
		Message: fmt.Sprintf("user %d authenticated", user.ID),
		Additional: map[string]any{
			"user_id": user.ID,
			"role":    user.Role.String(),
		},
	})

	return &in.AuthenticateOutput{
		Token: token,
		User:  toDTO(user),
	}, nil
}
