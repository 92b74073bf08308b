package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/security"
)

func input(username string, role model.Role) CreateInput {
	return CreateInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "s3cure-pass",
		Role:     role,
	}
}

func TestCreate_RunsHooksInOrder(t *testing.T) {
	store := memory.NewStore()
	var calls []string
	hook := func(name string) PostCreateHook {
		return PostCreateHookFunc(func(_ context.Context, u *model.User) error {
			calls = append(calls, name+":"+u.Username)
			return nil
		})
	}
	svc := NewService(store.Users, security.NewBcryptHasher(bcrypt.MinCost), hook("a"), hook("b"))

	u, err := svc.Create(context.Background(), input("jane", model.RolePatient))
	require.NoError(t, err)
	assert.Equal(t, []string{"a:jane", "b:jane"}, calls)
	assert.NotEqual(t, "s3cure-pass", u.PasswordHash)
	assert.Equal(t, model.NotifyEmail, u.NotificationMethod)
}

func TestCreate_HookFailureKeepsUser(t *testing.T) {
	store := memory.NewStore()
	boom := errors.New("boom")
	svc := NewService(store.Users, security.NewBcryptHasher(bcrypt.MinCost),
		PostCreateHookFunc(func(context.Context, *model.User) error { return boom }))

	u, err := svc.Create(context.Background(), input("jane", model.RolePatient))
	require.ErrorIs(t, err, boom)
	require.NotNil(t, u)

	stored, err := store.Users.Get(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "jane", stored.Username)
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(memory.NewStore().Users, security.NewBcryptHasher(bcrypt.MinCost))
	ctx := context.Background()

	_, err := svc.Create(ctx, input("x", model.Role("root")))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))

	in := input("x", model.RoleAdmin)
	in.Password = "short"
	_, err = svc.Create(ctx, in)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))
}

func TestChangePassword(t *testing.T) {
	svc := NewService(memory.NewStore().Users, security.NewBcryptHasher(bcrypt.MinCost))
	ctx := context.Background()
	u, err := svc.Create(ctx, input("jane", model.RolePatient))
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, u.ID, model.ChangePasswordRequest{
		OldPassword: "wrong", NewPassword1: "brand-new-pass", NewPassword2: "brand-new-pass",
	})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))

	require.NoError(t, svc.ChangePassword(ctx, u.ID, model.ChangePasswordRequest{
		OldPassword: "s3cure-pass", NewPassword1: "brand-new-pass", NewPassword2: "brand-new-pass",
	}))
	_, err = svc.Authenticate(ctx, "jane", "s3cure-pass")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrUnauthorized))
	_, err = svc.Authenticate(ctx, "jane", "brand-new-pass")
	assert.NoError(t, err)
}

func TestUpdateNotificationSettings_KeepsUnsetFields(t *testing.T) {
	svc := NewService(memory.NewStore().Users, security.NewBcryptHasher(bcrypt.MinCost))
	ctx := context.Background()
	u, err := svc.Create(ctx, input("boss", model.RoleAdmin))
	require.NoError(t, err)

	updated, err := svc.UpdateNotificationSettings(ctx, u.ID, "alerts@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, model.NotifyEmail, updated.NotificationMethod)

	updated, err = svc.UpdateNotificationSettings(ctx, u.ID, "", "both")
	require.NoError(t, err)
	assert.Equal(t, "alerts@example.com", updated.NotificationEmail)
	assert.Equal(t, model.NotifyBoth, updated.NotificationMethod)

	_, err = svc.UpdateNotificationSettings(ctx, u.ID, "", "sms")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))
}
