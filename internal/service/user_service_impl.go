package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/repository"
)

type userService struct {
	users    repository.UserRepo
	observer UseCaseObserver
	now      func() time.Time
}

func NewUserService(users repository.UserRepo, observers ...UseCaseObserver) UserService {
	return &userService{
		users:    users,
		observer: useCaseObserverOrNoop(observers),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *userService) EnsureUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	if u.ID == "" {
		return nil, fmt.Errorf("%w: user ID is required", ErrInvalidInput)
	}
	now := s.now()
	rec := *u
	if rec.Role != domain.RoleAdmin {
		rec.Role = domain.RoleMember
	}
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if err := s.users.Upsert(ctx, &rec); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, u.ID)
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *userService) List(ctx context.Context, actor *domain.User) ([]*domain.User, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.users.List(ctx)
}

func (s *userService) SetRole(ctx context.Context, actor *domain.User, userID string, role domain.Role) (err error) {
	fields := map[string]any{"user_id": userID, "role": string(role)}
	defer observe(ctx, s.observer, "set-user-role", time.Now(), fields, &err)

	if actor == nil || !actor.IsAdmin() {
		return ErrForbidden
	}
	if role != domain.RoleAdmin && role != domain.RoleMember {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	fields["actor_id"] = actor.ID
	return s.users.SetRole(ctx, userID, role)
}
