package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

type userRepository struct {
	BaseRepository
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{base}
}

const userColumns = `id, username, email, password_hash, first_name, last_name, role,
	phone, notification_email, notification_method, created_at`

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (
			id, username, email, password_hash, first_name, last_name, role,
			phone, notification_email, notification_method, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.NotificationMethod == "" {
		user.NotificationMethod = model.NotifyEmail
	}

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Role,
		user.Phone,
		user.NotificationEmail,
		user.NotificationMethod,
		user.CreatedAt,
	)
	if err != nil {
		return wrapErr("create user", err)
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = $1`, id); err != nil {
		return nil, wrapErr("get user", err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE username = $1`, username); err != nil {
		return nil, wrapErr("get user by username", err)
	}
	return &user, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, hash, id)
	if err != nil {
		return wrapErr("update password", err)
	}
	return expectRows("update password", res)
}

func (r *userRepository) UpdateNotificationSettings(ctx context.Context, id uuid.UUID, email string, method model.NotificationMethod) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET notification_email = $1, notification_method = $2 WHERE id = $3`,
		email, method, id)
	if err != nil {
		return wrapErr("update notification settings", err)
	}
	return expectRows("update notification settings", res)
}

func (r *userRepository) ListByRole(ctx context.Context, role model.Role) ([]*model.User, error) {
	var users []*model.User
	if err := r.db.SelectContext(ctx, &users,
		`SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY username`, role); err != nil {
		return nil, wrapErr("list users by role", err)
	}
	return users, nil
}
