package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

// EnvTestDSN points the store tests at a disposable database. Every table
// is truncated before each test.
const EnvTestDSN = "HOSPITAL_TEST_DATABASE_DSN"

func testStore(t *testing.T) *repository.Store {
	t.Helper()
	dsn := os.Getenv(EnvTestDSN)
	if dsn == "" {
		t.Skipf("%s not set, skipping postgres store test", EnvTestDSN)
	}

	ctx := context.Background()
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = NewMigrator(db, zerolog.Nop()).Up(ctx)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `TRUNCATE users, patient_profiles, services, doctors, doctor_services,
		appointments, patients, contacts, lab_samples, facility, notifications CASCADE`)
	require.NoError(t, err)

	return NewStore(db)
}

func createDoctor(t *testing.T, store *repository.Store, name string) *model.Doctor {
	t.Helper()
	d := &model.Doctor{Name: name, Specialty: "General Physician"}
	require.NoError(t, store.Doctors.Create(context.Background(), d))
	return d
}

func createUser(t *testing.T, store *repository.Store, username string) *model.User {
	t.Helper()
	u := &model.User{
		Base:         model.NewBase(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         model.RolePatient,
	}
	require.NoError(t, store.Users.Create(context.Background(), u))
	return u
}

func newAppointment(t *testing.T, doctorID uuid.UUID, date, clock string, ref model.PatientRef) *model.Appointment {
	t.Helper()
	d, err := model.ParseDate(date)
	require.NoError(t, err)
	tm, err := model.ParseClockTime(clock)
	require.NoError(t, err)
	return &model.Appointment{DoctorID: doctorID, Date: d, Time: tm, Patient: ref, Reason: "Checkup"}
}

func TestStore_AppointmentRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	doc := createDoctor(t, store, "John Mwangi")
	u := createUser(t, store, "jane")

	guest := newAppointment(t, doc.ID, "2025-12-01", "09:00", model.GuestContact{
		Name: "Test User", Email: "test@example.com", Phone: "+254712345678",
	})
	require.NoError(t, store.Appointments.Create(ctx, guest))
	assert.Equal(t, model.AppointmentStatusPending, guest.Status)

	got, err := store.Appointments.Get(ctx, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.DoctorID)
	assert.Equal(t, "2025-12-01", got.Date.Format(model.DateLayout))
	assert.Equal(t, "09:00", got.Time.Format(model.TimeLayout))
	assert.Equal(t, model.AppointmentStatusPending, got.Status)
	assert.Equal(t, model.GuestContact{Name: "Test User", Email: "test@example.com", Phone: "+254712345678"}, got.Patient)

	linked := newAppointment(t, doc.ID, "2025-12-02", "14:30:15", model.LinkedPatient{UserID: &u.ID})
	require.NoError(t, store.Appointments.Create(ctx, linked))
	got, err = store.Appointments.Get(ctx, linked.ID)
	require.NoError(t, err)
	ref, ok := got.Patient.(model.LinkedPatient)
	require.True(t, ok, "expected a linked patient, got %T", got.Patient)
	require.NotNil(t, ref.UserID)
	assert.Equal(t, u.ID, *ref.UserID)
	assert.Nil(t, ref.ProfileID)
	assert.Equal(t, "14:30", got.Time.Format(model.TimeLayout))

	_, err = store.Appointments.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStore_AppointmentSetStatus(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	doc := createDoctor(t, store, "Sarah Achieng")

	a1 := newAppointment(t, doc.ID, "2025-12-01", "09:00", model.GuestContact{Name: "A", Email: "a@example.com"})
	a2 := newAppointment(t, doc.ID, "2025-12-01", "10:00", model.GuestContact{Name: "B", Email: "b@example.com"})
	a3 := newAppointment(t, doc.ID, "2025-12-01", "11:00", model.GuestContact{Name: "C", Email: "c@example.com"})
	for _, a := range []*model.Appointment{a1, a2, a3} {
		require.NoError(t, store.Appointments.Create(ctx, a))
	}

	n, err := store.Appointments.SetStatus(ctx, []uuid.UUID{a1.ID, a3.ID, a1.ID, uuid.New()}, model.AppointmentStatusConfirmed)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	want := map[uuid.UUID]model.AppointmentStatus{
		a1.ID: model.AppointmentStatusConfirmed,
		a2.ID: model.AppointmentStatusPending,
		a3.ID: model.AppointmentStatusConfirmed,
	}
	for id, status := range want {
		got, err := store.Appointments.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, status, got.Status)
	}

	n, err = store.Appointments.SetStatus(ctx, nil, model.AppointmentStatusCancelled)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_AppointmentListForPatient(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	doc := createDoctor(t, store, "Kelvin Otieno")
	u := createUser(t, store, "jane")
	other := createUser(t, store, "bob")
	profile := model.NewPatientProfile(other.ID)
	require.NoError(t, store.Profiles.Create(ctx, profile))

	byEmail := newAppointment(t, doc.ID, "2025-12-01", "09:00", model.GuestContact{Name: "Jane", Email: "Jane@Example.com"})
	byUser := newAppointment(t, doc.ID, "2025-12-02", "09:00", model.LinkedPatient{UserID: &u.ID})
	byProfile := newAppointment(t, doc.ID, "2025-12-03", "09:00", model.LinkedPatient{ProfileID: &profile.ID})
	unrelated := newAppointment(t, doc.ID, "2025-12-04", "09:00", model.GuestContact{Name: "X", Email: "x@example.com"})
	for _, a := range []*model.Appointment{unrelated, byProfile, byUser, byEmail} {
		require.NoError(t, store.Appointments.Create(ctx, a))
	}

	list, err := store.Appointments.ListForPatient(ctx, model.AppointmentFilter{
		Email:     "jane@example.com",
		UserID:    &u.ID,
		ProfileID: &profile.ID,
	})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []uuid.UUID{byEmail.ID, byUser.ID, byProfile.ID}, []uuid.UUID{list[0].ID, list[1].ID, list[2].ID})

	list, err = store.Appointments.ListForPatient(ctx, model.AppointmentFilter{Email: "jane@example.com"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, byEmail.ID, list[0].ID)

	// An empty email must not match rows stored without one.
	list, err = store.Appointments.ListForPatient(ctx, model.AppointmentFilter{UserID: &u.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, byUser.ID, list[0].ID)
}

func TestStore_ServiceSlugs(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	svc := &model.Service{Title: "Cardiology", Slug: "cardiology", Active: true}
	require.NoError(t, store.Services.Create(ctx, svc))

	exists, err := store.Services.SlugExists(ctx, "cardiology")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = store.Services.SlugExists(ctx, "cardiology-1")
	require.NoError(t, err)
	assert.False(t, exists)

	err = store.Services.Create(ctx, &model.Service{Title: "Cardiology", Slug: "cardiology", Active: true})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	hidden := &model.Service{Title: "Hidden", Slug: "hidden", Active: false}
	require.NoError(t, store.Services.Create(ctx, hidden))
	_, err = store.Services.GetActiveBySlug(ctx, "hidden")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	got, err := store.Services.GetActiveBySlug(ctx, "cardiology")
	require.NoError(t, err)
	assert.Equal(t, svc.ID, got.ID)
}

func TestStore_DoctorServices(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	s1 := &model.Service{Title: "Dental", Slug: "dental", Active: true}
	s2 := &model.Service{Title: "Cardiac", Slug: "cardiac", Active: true}
	require.NoError(t, store.Services.Create(ctx, s1))
	require.NoError(t, store.Services.Create(ctx, s2))

	d := &model.Doctor{Name: "Sarah Achieng", ServiceIDs: []uuid.UUID{s1.ID, s2.ID, s1.ID}}
	require.NoError(t, store.Doctors.Create(ctx, d))

	got, err := store.Doctors.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{s1.ID, s2.ID}, got.ServiceIDs)

	got.ServiceIDs = []uuid.UUID{s2.ID}
	got.Specialty = "Dentist"
	require.NoError(t, store.Doctors.Update(ctx, got))

	got, err = store.Doctors.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{s2.ID}, got.ServiceIDs)
	assert.Equal(t, "Dentist", got.Specialty)

	err = store.Doctors.Update(ctx, &model.Doctor{ID: uuid.New(), Name: "Ghost"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
