package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/logger"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/application/ports/out"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const userColumns = `id, name, cpf, email, password_hash, role, phone, crm, specialty, active, created_at, updated_at`

var _ out.UserRepository = (*UserPgRepository)(nil)

// UserPgRepository: Postgres реализация UserRepository
type UserPgRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewUserPgRepository создает новый репозиторий пользователей
func NewUserPgRepository(pool *pgxpool.Pool, log *logger.Logger) *UserPgRepository {
	return &UserPgRepository{
		pool: pool,
		log:  log,
	}
}

// Create создает нового пользователя. Уникальность email и CPF проверяется
// среди всех записей, включая неактивные.
func (r *UserPgRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx) // Откатываем если не закоммитили
	}()

	var taken bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 OR cpf = $2)`,
		user.Email, user.CPF,
	).Scan(&taken)
	if err != nil {
		return nil, fmt.Errorf("check duplicates: %w", err)
	}
	if taken {
		return nil, domain.ErrDuplicate
	}

	query := `
		INSERT INTO users (name, cpf, email, password_hash, role, phone, crm, specialty, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + userColumns

	created, err := scanUser(tx.QueryRow(ctx, query,
		user.Name,
		user.CPF,
		user.Email,
		user.PasswordHash,
		user.Role.String(),
		user.Phone,
		user.CRM,
		user.Specialty,
		user.Active,
		user.CreatedAt,
		user.UpdatedAt,
	))
	if err != nil {
		// гонка между проверкой и вставкой ловится constraint'ом
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicate
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicate
		}
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return created, nil
}

// FindByID находит пользователя по ID
func (r *UserPgRepository) FindByID(ctx context.Context, userID int64) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
}

// FindByEmail находит пользователя по email
func (r *UserPgRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserPgRepository) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	user, err := scanUser(tx.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return user, nil
}

// Update блокирует строку, сливает patch и сохраняет результат
func (r *UserPgRepository) Update(ctx context.Context, userID int64, patch domain.UserPatch) (*domain.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	user, err := scanUser(tx.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("lock user: %w", err)
	}
	if !user.Active {
		return nil, domain.ErrUserInactive
	}

	if patch.Email != nil {
		email := domain.NormalizeEmail(*patch.Email)
		if email != user.Email {
			var taken bool
			err := tx.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2)`,
				email, userID,
			).Scan(&taken)
			if err != nil {
				return nil, fmt.Errorf("check email: %w", err)
			}
			if taken {
				return nil, domain.ErrDuplicate
			}
		}
	}

	user.Apply(patch, time.Now().UTC())

	query := `
		UPDATE users
		SET name = $2, email = $3, password_hash = $4, phone = $5, crm = $6, specialty = $7, updated_at = $8
		WHERE id = $1
	`
	_, err = tx.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Phone,
		user.CRM,
		user.Specialty,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicate
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return user, nil
}

// Deactivate выставляет active=false; повторный вызов ничего не меняет
func (r *UserPgRepository) Deactivate(ctx context.Context, userID int64) (*domain.User, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	user, err := scanUser(tx.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, domain.ErrUserNotFound
		}
		return nil, false, fmt.Errorf("lock user: %w", err)
	}
	if !user.Active {
		return user, false, nil
	}

	user.Active = false
	user.UpdatedAt = time.Now().UTC()
	if _, err := tx.Exec(ctx,
		`UPDATE users SET active = FALSE, updated_at = $2 WHERE id = $1`,
		user.ID, user.UpdatedAt,
	); err != nil {
		return nil, false, fmt.Errorf("deactivate user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("commit transaction: %w", err)
	}
	return user, true, nil
}

// List получает список пользователей с фильтрами
func (r *UserPgRepository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.User, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Role != nil {
		args = append(args, filter.Role.String())
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)))
	}

	query := `SELECT ` + userColumns + ` FROM users`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	rows.Close()

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	r.log.Debug(logger.Entry{
		Action:     "users_listed",
		Message:    fmt.Sprintf("%d users", len(users)),
		Additional: map[string]any{"filters": len(conditions)},
	})
	return users, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user domain.User
		role string
	)
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.CPF,
		&user.Email,
		&user.PasswordHash,
		&role,
		&user.Phone,
		&user.CRM,
		&user.Specialty,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Role, err = domain.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", user.ID, err)
	}
	return &user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
