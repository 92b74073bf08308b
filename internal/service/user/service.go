package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/security"
)

// PostCreateHook runs after a user row has been written.
type PostCreateHook interface {
	AfterCreate(ctx context.Context, user *model.User) error
}

// PostCreateHookFunc adapts a function to PostCreateHook.
type PostCreateHookFunc func(ctx context.Context, user *model.User) error

func (f PostCreateHookFunc) AfterCreate(ctx context.Context, user *model.User) error {
	return f(ctx, user)
}

type CreateInput struct {
	Username  string
	Email     string
	Password  string
	Role      model.Role
	FirstName string
	LastName  string
	Phone     string
}

type Service struct {
	repo   repository.UserRepository
	hasher security.PasswordHasher
	hooks  []PostCreateHook
}

func NewService(repo repository.UserRepository, hasher security.PasswordHasher, hooks ...PostCreateHook) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		hooks:  hooks,
	}
}

// Create persists a new user and then runs every hook in order. The user
// stays persisted if a hook fails.
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.User, error) {
	if !in.Role.Valid() {
		return nil, apperrors.BadRequest(fmt.Sprintf("unknown role %q", in.Role), nil)
	}
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, apperrors.BadRequest("username is required", nil)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, security.ErrWeakPassword) {
			return nil, apperrors.BadRequest(err.Error(), err)
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Base:               model.NewBase(),
		Username:           username,
		Email:              strings.TrimSpace(in.Email),
		PasswordHash:       hash,
		FirstName:          in.FirstName,
		LastName:           in.LastName,
		Role:               in.Role,
		Phone:              in.Phone,
		NotificationMethod: model.NotifyEmail,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("A user with that username already exists.", err)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	for _, h := range s.hooks {
		if err := h.AfterCreate(ctx, user); err != nil {
			return user, fmt.Errorf("post-create hook for user %s: %w", user.ID, err)
		}
	}
	return user, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user", err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// Authenticate checks a username and password pair.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized(err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, apperrors.Unauthorized(err)
	}
	return user, nil
}

func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, req model.ChangePasswordRequest) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.hasher.Compare(user.PasswordHash, req.OldPassword); err != nil {
		return apperrors.BadRequest("Your old password was entered incorrectly.", err)
	}
	if req.NewPassword1 != req.NewPassword2 {
		return apperrors.BadRequest("The two password fields didn't match.", security.ErrPasswordMismatch)
	}
	hash, err := s.hasher.Hash(req.NewPassword1)
	if err != nil {
		if errors.Is(err, security.ErrWeakPassword) {
			return apperrors.BadRequest(err.Error(), err)
		}
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// UpdateNotificationSettings overwrites only the fields that are set.
func (s *Service) UpdateNotificationSettings(ctx context.Context, id uuid.UUID, email, method string) (*model.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if email != "" {
		user.NotificationEmail = strings.TrimSpace(email)
	}
	if method != "" {
		m, err := model.ParseNotificationMethod(method)
		if err != nil {
			return nil, apperrors.BadRequest(err.Error(), err)
		}
		user.NotificationMethod = m
	}
	if err := s.repo.UpdateNotificationSettings(ctx, id, user.NotificationEmail, user.NotificationMethod); err != nil {
		return nil, fmt.Errorf("failed to update notification settings: %w", err)
	}
	return user, nil
}

// Admins lists every user with the admin role.
func (s *Service) Admins(ctx context.Context) ([]*model.User, error) {
	admins, err := s.repo.ListByRole(ctx, model.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	return admins, nil
}
