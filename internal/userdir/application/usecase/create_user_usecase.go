package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/auth"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/logger"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/application/ports/in"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/application/ports/out"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/domain"
)

// CreateUserService реализует CreateUserUseCase
type CreateUserService struct {
	userRepo out.UserRepository
	hasher   *auth.PasswordHasher
	notifier out.Notifier
	log      *logger.Logger
}

// NewCreateUserService создает новый сервис создания пользователя
func NewCreateUserService(userRepo out.UserRepository, hasher *auth.PasswordHasher, notifier out.Notifier, log *logger.Logger) *CreateUserService {
	return &CreateUserService{
		userRepo: userRepo,
		hasher:   hasher,
		notifier: notifier,
		log:      log,
	}
}

// Execute создает нового пользователя
func (s *CreateUserService) Execute(ctx context.Context, input in.CreateUserInput) (*in.UserDTO, error) {
	input = normalizeCreate(input)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	role, err := domain.ParseRole(input.Role)
	if err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("role must be one of: %s", roleNames()))
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, passwordError(err)
		}
		s.log.Error(logger.Entry{
			Action:  "hash_password_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Name:         input.Name,
		CPF:          input.CPF,
		Email:        input.Email,
		PasswordHash: passwordHash,
		Role:         role,
		Phone:        input.Phone,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// CRM и специальность есть только у врача
	if role.HasProfessionalRecord() {
		user.CRM = input.CRM
		user.Specialty = input.Specialty
	}

	created, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			s.log.Warn(logger.Entry{
				Action:     "create_user_duplicate",
				Message:    "email or cpf already registered",
				Additional: map[string]any{"email": user.Email},
			})
			return nil, domain.ErrDuplicate
		}
		s.log.Error(logger.Entry{
			Action:  "create_user_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
			Additional: map[string]any{
				"email": user.Email,
				"role":  role.String(),
			},
		})
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info(logger.Entry{
		Action:  "user_created",
		Message: fmt.Sprintf("user %s created", created.Email),
		Additional: map[string]any{
			"user_id": created.ID,
			"email":   created.Email,
			"role":    created.Role.String(),
		},
	})

	s.notifier.Notify(ctx, welcomeNotification(created, now))

	dto := toDTO(created)
	return &dto, nil
}

func roleNames() string {
	names := make([]string, 0, len(domain.AllRoles))
	for _, r := range domain.AllRoles {
		names = append(names, r.String())
	}
	return strings.Join(names, ", ")
}
