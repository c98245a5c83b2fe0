package usecase

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/auth"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/config"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/logger"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/application/ports/out"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/domain"

	"golang.org/x/crypto/bcrypt"
)

// memRepo: in-memory UserRepository с той же семантикой, что и Postgres
type memRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]domain.User
}

func newMemRepo() *memRepo {
	return &memRepo{users: make(map[int64]domain.User)}
}

func (r *memRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email || existing.CPF == u.CPF {
			return nil, domain.ErrDuplicate
		}
	}
	r.nextID++
	cp := *u
	cp.ID = r.nextID
	r.users[cp.ID] = cp
	out := cp
	return &out, nil
}

func (r *memRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *memRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memRepo) Update(_ context.Context, id int64, p domain.UserPatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if !u.Active {
		return nil, domain.ErrUserInactive
	}
	if p.Email != nil {
		email := domain.NormalizeEmail(*p.Email)
		for otherID, other := range r.users {
			if otherID != id && other.Email == email {
				return nil, domain.ErrDuplicate
			}
		}
	}
	u.Apply(p, time.Now().UTC())
	r.users[id] = u
	return &u, nil
}

func (r *memRepo) Deactivate(_ context.Context, id int64) (*domain.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, false, domain.ErrUserNotFound
	}
	if !u.Active {
		return &u, false, nil
	}
	u.Active = false
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return &u, true, nil
}

func (r *memRepo) List(_ context.Context, f domain.ListFilter) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*domain.User
	for _, u := range r.users {
		if f.Matches(&u) {
			cp := u
			res = append(res, &cp)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (r *memRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []out.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, msg out.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
}

func (n *recordingNotifier) events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	events := make([]string, 0, len(n.sent))
	for _, m := range n.sent {
		events = append(events, m.Event)
	}
	return events
}

// fixture собирает все use case'ы над одним репозиторием
type fixture struct {
	repo     *memRepo
	notifier *recordingNotifier
	tokens   *auth.JWTService

	create       *CreateUserService
	authenticate *AuthenticateService
	get          *GetUserService
	update       *UpdateUserService
	remove       *DeleteUserService
	list         *ListUsersService
	verify       *VerifyTokenService
}

func newFixture() *fixture {
	log := logger.NewLoggerWithOptions("userdir-test", "ERROR", io.Discard)
	repo := newMemRepo()
	notifier := &recordingNotifier{}
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	tokens := auth.NewJWTService(config.JWTConfig{Secret: "test-secret", TTL: 24 * time.Hour})

	return &fixture{
		repo:         repo,
		notifier:     notifier,
		tokens:       tokens,
		create:       NewCreateUserService(repo, hasher, notifier, log),
		authenticate: NewAuthenticateService(repo, hasher, tokens, log),
		get:          NewGetUserService(repo),
		update:       NewUpdateUserService(repo, hasher, notifier, log),
		remove:       NewDeleteUserService(repo, notifier, log),
		list:         NewListUsersService(repo, log),
		verify:       NewVerifyTokenService(tokens, log),
	}
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
