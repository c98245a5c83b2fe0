package out

import (
	"context"

	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/domain"
)

// UserRepository: транзакционное хранилище пользователей. Каждая операция
// выполняется в своей транзакции: commit при успехе, rollback при ошибке.
type UserRepository interface {
	// Create вставляет пользователя и возвращает его с присвоенным ID.
	// domain.ErrDuplicate если email или CPF уже есть у любого пользователя.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)

	// FindByID возвращает domain.ErrUserNotFound если не найден
	FindByID(ctx context.Context, userID int64) (*domain.User, error)

	// FindByEmail возвращает domain.ErrUserNotFound если не найден
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update сливает patch с текущей записью. Смена email повторно проверяет
	// уникальность среди остальных пользователей.
	// domain.ErrUserInactive для деактивированного пользователя.
	Update(ctx context.Context, userID int64, patch domain.UserPatch) (*domain.User, error)

	// Deactivate выставляет active=false. changed=false если пользователь
	// уже был неактивен.
	Deactivate(ctx context.Context, userID int64) (user *domain.User, changed bool, err error)

	// List возвращает всех пользователей, подходящих под фильтр
	List(ctx context.Context, filter domain.ListFilter) ([]*domain.User, error)
}
