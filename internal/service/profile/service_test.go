package profile

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
)

func TestGetOrCreate_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewStore().Profiles)
	userID := uuid.New()

	p1, created, err := svc.GetOrCreate(ctx, userID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, model.DefaultCountry, p1.Country)

	p2, created, err := svc.GetOrCreate(ctx, userID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, p1.ID, p2.ID)
}

func TestAfterCreate_OnlyPatients(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewStore().Profiles)

	doctor := &model.User{Base: model.NewBase(), Role: model.RoleDoctor}
	require.NoError(t, svc.AfterCreate(ctx, doctor))
	p, err := svc.FindByUser(ctx, doctor.ID)
	require.NoError(t, err)
	assert.Nil(t, p)

	patient := &model.User{Base: model.NewBase(), Role: model.RolePatient}
	require.NoError(t, svc.AfterCreate(ctx, patient))
	require.NoError(t, svc.AfterCreate(ctx, patient))
	p, err = svc.FindByUser(ctx, patient.ID)
	require.NoError(t, err)
	require.NotNil(t, p)
}

func TestUpdateEmergencyContact(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewStore().Profiles)
	userID := uuid.New()

	_, err := svc.UpdateEmergencyContact(ctx, userID, model.EmergencyContactForm{Name: "  "})
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
	assert.Equal(t, MsgEmergencyContactRequired, appErr.Message)

	p, err := svc.UpdateEmergencyContact(ctx, userID, model.EmergencyContactForm{Phone: "+254700000000"})
	require.NoError(t, err)
	assert.Equal(t, "+254700000000", p.EmergencyPhone)
	assert.Empty(t, p.EmergencyName)
}

func TestUpdateAndMedicalHistory(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewStore().Profiles)
	userID := uuid.New()

	_, err := svc.Update(ctx, userID, model.ProfileForm{DateOfBirth: "1990-13-40"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))

	p, err := svc.Update(ctx, userID, model.ProfileForm{
		DateOfBirth: "1990-05-17",
		City:        "Nairobi",
		BloodType:   "O+",
		Allergies:   "Penicillin",
	})
	require.NoError(t, err)
	require.NotNil(t, p.BirthDate)
	assert.Equal(t, "1990-05-17", p.BirthDate.Format(model.DateLayout))
	assert.Equal(t, model.DefaultCountry, p.Country)

	h, err := svc.MedicalHistory(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, model.MedicalHistory{BloodType: "O+", Allergies: "Penicillin"}, h)
}
