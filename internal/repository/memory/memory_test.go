package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

func appointment(t *testing.T, doctorID uuid.UUID, date, clock string, ref model.PatientRef) *model.Appointment {
	t.Helper()
	d, err := model.ParseDate(date)
	require.NoError(t, err)
	tm, err := model.ParseClockTime(clock)
	require.NoError(t, err)
	return &model.Appointment{DoctorID: doctorID, Date: d, Time: tm, Patient: ref}
}

func TestAppointments_OrderingAndStatus(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	doc := uuid.New()

	a1 := appointment(t, doc, "2025-12-02", "09:00", model.GuestContact{Name: "A", Email: "a@example.com"})
	a2 := appointment(t, doc, "2025-12-01", "14:00", model.GuestContact{Name: "B", Email: "b@example.com"})
	a3 := appointment(t, doc, "2025-12-01", "08:30", model.GuestContact{Name: "C", Email: "c@example.com"})
	for _, a := range []*model.Appointment{a1, a2, a3} {
		require.NoError(t, store.Appointments.Create(ctx, a))
		assert.Equal(t, model.AppointmentStatusPending, a.Status)
	}

	byDoctor, err := store.Appointments.ListByDoctor(ctx, doc)
	require.NoError(t, err)
	require.Len(t, byDoctor, 3)
	assert.Equal(t, []uuid.UUID{a3.ID, a2.ID, a1.ID}, []uuid.UUID{byDoctor[0].ID, byDoctor[1].ID, byDoctor[2].ID})

	all, err := store.Appointments.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, a1.ID, all[0].ID)
	assert.Equal(t, a3.ID, all[2].ID)

	n, err := store.Appointments.SetStatus(ctx, []uuid.UUID{a1.ID, a3.ID, a1.ID, uuid.New()}, model.AppointmentStatusCancelled)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	got, err := store.Appointments.Get(ctx, a2.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusPending, got.Status)
	got, err = store.Appointments.Get(ctx, a3.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, got.Status)
}

func TestAppointments_ListForPatient(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	doc := uuid.New()
	userID := uuid.New()
	profileID := uuid.New()

	byEmail := appointment(t, doc, "2025-12-01", "09:00", model.GuestContact{Email: "Jane@Example.com"})
	byUser := appointment(t, doc, "2025-12-02", "09:00", model.LinkedPatient{UserID: &userID})
	byProfile := appointment(t, doc, "2025-12-03", "09:00", model.LinkedPatient{ProfileID: &profileID})
	other := appointment(t, doc, "2025-12-04", "09:00", model.GuestContact{Email: "other@example.com"})
	for _, a := range []*model.Appointment{byEmail, byUser, byProfile, other} {
		require.NoError(t, store.Appointments.Create(ctx, a))
	}

	list, err := store.Appointments.ListForPatient(ctx, model.AppointmentFilter{
		Email:     "jane@example.com",
		UserID:    &userID,
		ProfileID: &profileID,
	})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, byEmail.ID, list[0].ID)
	assert.Equal(t, byProfile.ID, list[2].ID)
}

func TestNotFoundAndDuplicate(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	_, err := store.Doctors.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, store.Users.Create(ctx, &model.User{Username: "jdoe", Role: model.RolePatient}))
	err = store.Users.Create(ctx, &model.User{Username: "jdoe", Role: model.RolePatient})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	require.NoError(t, store.LabSamples.Create(ctx, &model.LabSample{SampleID: "SAMPLE123"}))
	s, err := store.LabSamples.GetBySampleID(ctx, "sample123")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultLabSampleStatus, s.Status)

	_, err = store.Facility.Get(ctx)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
