package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/logger"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/application/ports/out"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/domain"
)

// DeleteUserService реализует DeleteUserUseCase: запись не удаляется,
// пользователь только деактивируется.
type DeleteUserService struct {
	userRepo out.UserRepository
	notifier out.Notifier
	log      *logger.Logger
}

func NewDeleteUserService(userRepo out.UserRepository, notifier out.Notifier, log *logger.Logger) *DeleteUserService {
	return &DeleteUserService{
		userRepo: userRepo,
		notifier: notifier,
		log:      log,
	}
}

// Execute идемпотентен: повторная деактивация успешна, но письмо не отправляется
func (s *DeleteUserService) Execute(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return domain.NewValidationError("user_id is required")
	}

	user, changed, err := s.userRepo.Deactivate(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		s.log.Error(logger.Entry{
			Action:     "deactivate_user_failed",
			Message:    err.Error(),
			Error:      &logger.ErrObj{Msg: err.Error()},
			Additional: map[string]any{"user_id": userID},
		})
		return fmt.Errorf("deactivate user: %w", err)
	}
	if !changed {
		return nil
	}

	s.log.Info(logger.Entry{
		Action:     "user_deactivated",
		Message:    fmt.Sprintf("user %d deactivated", user.ID),
		Additional: map[string]any{"user_id": user.ID},
	})

	s.notifier.Notify(ctx, deactivatedNotification(user, time.Now().UTC()))
	return nil
}
