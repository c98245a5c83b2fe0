package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/auth"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/logger"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/application/ports/in"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/application/ports/out"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/domain"
)

// UpdateUserService реализует UpdateUserUseCase
type UpdateUserService struct {
	userRepo out.UserRepository
	hasher   *auth.PasswordHasher
	notifier out.Notifier
	log      *logger.Logger
}

func NewUpdateUserService(userRepo out.UserRepository, hasher *auth.PasswordHasher, notifier out.Notifier, log *logger.Logger) *UpdateUserService {
	return &UpdateUserService{
		userRepo: userRepo,
		hasher:   hasher,
		notifier: notifier,
		log:      log,
	}
}

// Execute применяет только переданные поля
func (s *UpdateUserService) Execute(ctx context.Context, input in.UpdateUserInput) (*in.UserDTO, error) {
	input = normalizeUpdate(input)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	patch := domain.UserPatch{
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		CRM:       input.CRM,
		Specialty: input.Specialty,
	}
	if input.Password != nil {
		hash, err := s.hasher.Hash(*input.Password)
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
		patch.PasswordHash = &hash
	}
	if patch.IsEmpty() {
		return nil, domain.NewValidationError("no fields to update")
	}

	user, err := s.userRepo.Update(ctx, input.UserID, patch)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound),
			errors.Is(err, domain.ErrUserInactive),
			errors.Is(err, domain.ErrDuplicate):
			return nil, err
		}
		s.log.Error(logger.Entry{
			Action:     "update_user_failed",
			Message:    err.Error(),
			Error:      &logger.ErrObj{Msg: err.Error()},
			Additional: map[string]any{"user_id": input.UserID},
		})
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.log.Info(logger.Entry{
		Action:  "user_updated",
		Message: fmt.Sprintf("user %d updated", user.ID),
		Additional: map[string]any{
			"user_id":          user.ID,
			"password_changed": patch.PasswordHash != nil,
		},
	})

	s.notifier.Notify(ctx, updatedNotification(user, time.Now().UTC()))

	dto := toDTO(user)
	return &dto, nil
}
