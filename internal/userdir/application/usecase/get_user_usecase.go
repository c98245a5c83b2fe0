package usecase

import (
	"context"

	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/application/ports/in"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/application/ports/out"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/domain"
)

// GetUserService реализует GetUserUseCase. Неактивные пользователи
// тоже возвращаются.
type GetUserService struct {
	userRepo out.UserRepository
}

func NewGetUserService(userRepo out.UserRepository) *GetUserService {
	return &GetUserService{userRepo: userRepo}
}

func (s *GetUserService) Execute(ctx context.Context, userID int64) (*in.UserDTO, error) {
	if userID <= 0 {
		return nil, domain.NewValidationError("user_id is required")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	dto := toDTO(user)
	return &dto, nil
}
