package usecase

import (
	"context"

	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/logger"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/application/ports/in"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/application/ports/out"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/domain"
)

// ListUsersService реализует ListUsersUseCase
type ListUsersService struct {
	userRepo out.UserRepository
	log      *logger.Logger
}

// NewListUsersService создает новый сервис получения списка пользователей
func NewListUsersService(userRepo out.UserRepository, log *logger.Logger) *ListUsersService {
	return &ListUsersService{
		userRepo: userRepo,
		log:      log,
	}
}

// Execute получает список пользователей с фильтрами
func (s *ListUsersService) Execute(ctx context.Context, input in.ListUsersInput) ([]in.UserDTO, error) {
	filter := domain.ListFilter{Active: input.Active}
	if input.Role != nil {
		role, err := domain.ParseRole(*input.Role)
		if err != nil {
			return nil, domain.NewValidationError("filters.role must be one of: " + roleNames())
		}
		filter.Role = &role
	}

	users, err := s.userRepo.List(ctx, filter)
	if err != nil {
		s.log.Error(logger.Entry{
			Action:  "list_users_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
		return nil, err
	}

	// Маппим доменные модели в DTO
	userDTOs := make([]in.UserDTO, 0, len(users))
	for _, user := range users {
		userDTOs = append(userDTOs, toDTO(user))
	}
	return userDTOs, nil
}
