package booking

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
	"github.com/jwalitptl/hospital-api/pkg/validator"
)

type recordingNotifier struct {
	booked []*model.Appointment
}

func (n *recordingNotifier) AppointmentBooked(_ context.Context, a *model.Appointment, d *model.Doctor) []model.DeliveryResult {
	n.booked = append(n.booked, a)
	return []model.DeliveryResult{{Recipient: "ops@hospital.test", Kind: "appointment_admin", Channel: "email", Status: model.DeliverySent}}
}

type fixture struct {
	svc      *Service
	store    *repository.Store
	notifier *recordingNotifier
	metrics  *metrics.Metrics
	doctor   *model.Doctor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	doctor := &model.Doctor{Name: "John Mwangi", Specialty: "General Physician"}
	require.NoError(t, store.Doctors.Create(context.Background(), doctor))
	n := &recordingNotifier{}
	m := metrics.New("test")
	return &fixture{svc: NewService(store, n, m), store: store, notifier: n, metrics: m, doctor: doctor}
}

func (f *fixture) count(t *testing.T) int {
	t.Helper()
	all, err := f.store.Appointments.ListAll(context.Background())
	require.NoError(t, err)
	return len(all)
}

func doctorForm() model.AppointmentForm {
	return model.AppointmentForm{
		PatientName:     "Jane Doe",
		PatientEmail:    "jane@example.com",
		PatientPhone:    "+254700000000",
		AppointmentDate: "2025-12-01",
		AppointmentTime: "10:30",
		Reason:          "Checkup",
	}
}

func TestBook_DoctorForm(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Book(context.Background(), &f.doctor.ID, doctorForm())
	require.NoError(t, err)
	assert.Equal(t, RedirectDoctorForm, res.RedirectTo)
	assert.Equal(t, MsgDoctorBooked, res.Message)
	assert.Len(t, res.Notifications, 1)

	a := res.Appointment
	assert.Equal(t, f.doctor.ID, a.DoctorID)
	assert.Equal(t, model.AppointmentStatusPending, a.Status)
	assert.Equal(t, model.GuestContact{Name: "Jane Doe", Email: "jane@example.com", Phone: "+254700000000"}, a.Patient)
	assert.Equal(t, 1, f.count(t))
	assert.Len(t, f.notifier.booked, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AppointmentsBooked.WithLabelValues("doctor")))
}

func TestBook_DoctorFormAllOrNothing(t *testing.T) {
	f := newFixture(t)
	blanks := []func(*model.AppointmentForm){
		func(fm *model.AppointmentForm) { fm.PatientName = "" },
		func(fm *model.AppointmentForm) { fm.PatientEmail = " " },
		func(fm *model.AppointmentForm) { fm.PatientPhone = "" },
		func(fm *model.AppointmentForm) { fm.AppointmentDate = "" },
		func(fm *model.AppointmentForm) { fm.AppointmentTime = "" },
		func(fm *model.AppointmentForm) { fm.Reason = "" },
	}
	for _, blank := range blanks {
		form := doctorForm()
		blank(&form)
		_, err := f.svc.Book(context.Background(), &f.doctor.ID, form)
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
		assert.Equal(t, MsgFillAllFields, appErr.Message)
	}
	assert.Zero(t, f.count(t))
	assert.Empty(t, f.notifier.booked)
}

func TestBook_DoctorFormMalformedDateTime(t *testing.T) {
	f := newFixture(t)
	form := doctorForm()
	form.AppointmentDate = "01/12/2025"
	form.AppointmentTime = "25:99"

	_, err := f.svc.Book(context.Background(), &f.doctor.ID, form)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	fields, ok := appErr.Details.([]validator.FieldError)
	require.True(t, ok)
	assert.Len(t, fields, 2)
	assert.Zero(t, f.count(t))
}

func TestBook_UnknownDoctor(t *testing.T) {
	f := newFixture(t)
	missing := uuid.New()
	_, err := f.svc.Book(context.Background(), &missing, doctorForm())
	assert.True(t, apperrors.HasCode(err, apperrors.ErrNotFound))
}

func TestBook_GenericGuest(t *testing.T) {
	f := newFixture(t)
	form := doctorForm()
	form.Doctor = f.doctor.ID.String()
	form.PatientPhone = ""
	form.Reason = ""

	res, err := f.svc.Book(context.Background(), nil, form)
	require.NoError(t, err)
	assert.Equal(t, RedirectGenericForm, res.RedirectTo)
	assert.Equal(t, MsgGenericBooked, res.Message)
	assert.IsType(t, model.GuestContact{}, res.Appointment.Patient)
}

func TestBook_GenericLinkedPatientWithStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := &model.User{Username: "jane", Email: "jane@example.com", Role: model.RolePatient}
	require.NoError(t, f.store.Users.Create(ctx, u))

	res, err := f.svc.Book(ctx, nil, model.AppointmentForm{
		Doctor:          f.doctor.ID.String(),
		PatientUser:     u.ID.String(),
		AppointmentDate: "2025-12-01",
		AppointmentTime: "09:15:00",
		Status:          "confirmed",
	})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, res.Appointment.Status)
	linked, ok := res.Appointment.Patient.(model.LinkedPatient)
	require.True(t, ok)
	assert.Equal(t, u.ID, *linked.UserID)
	assert.Equal(t, "09:15", res.Appointment.Time.Format(model.TimeLayout))
}

func TestBook_GenericRequiresPatient(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Book(context.Background(), nil, model.AppointmentForm{
		Doctor:          f.doctor.ID.String(),
		PatientName:     "No Email",
		AppointmentDate: "2025-12-01",
		AppointmentTime: "09:00",
	})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, MsgPatientRequired, appErr.Message)
	assert.Zero(t, f.count(t))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.BookingsRejected.WithLabelValues("generic", "invalid")))
}

func TestBook_GenericFieldErrors(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Book(context.Background(), nil, model.AppointmentForm{
		Doctor:          uuid.NewString(),
		PatientUser:     "not-a-uuid",
		PatientName:     "Jane",
		PatientEmail:    "not-an-email",
		PatientPhone:    "12",
		AppointmentDate: "2025-02-30",
		AppointmentTime: "",
		Status:          "archived",
	})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, MsgCorrectErrors, appErr.Message)

	fields := appErr.Details.([]validator.FieldError)
	got := map[string]bool{}
	for _, fe := range fields {
		got[fe.Field] = true
	}
	for _, want := range []string{"doctor", "patient_user", "patient_email", "patient_phone", "appointment_date", "appointment_time", "status"} {
		assert.True(t, got[want], want)
	}
	assert.Zero(t, f.count(t))
}

func TestBook_RejectsValuesWiderThanColumns(t *testing.T) {
	f := newFixture(t)
	long := strings.Repeat("a", validator.MaxNameLen+1)

	form := doctorForm()
	form.PatientName = long
	form.PatientPhone = "+1123456789012345"
	_, err := f.svc.Book(context.Background(), &f.doctor.ID, form)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
	fields := appErr.Details.([]validator.FieldError)
	require.Len(t, fields, 2)
	assert.Equal(t, "patient_name", fields[0].Field)
	assert.Equal(t, "patient_phone", fields[1].Field)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.BookingsRejected.WithLabelValues("doctor", "too_long")))

	generic := doctorForm()
	generic.Doctor = f.doctor.ID.String()
	generic.PatientEmail = strings.Repeat("a", validator.MaxEmailLen) + "@example.com"
	generic.PatientPhone = "+1123456789012345"
	_, err = f.svc.Book(context.Background(), nil, generic)
	appErr, ok = apperrors.As(err)
	require.True(t, ok)
	fields = appErr.Details.([]validator.FieldError)
	require.Len(t, fields, 2)
	assert.Equal(t, "patient_email", fields[0].Field)
	assert.Contains(t, fields[0].Message, "at most 254 characters")
	assert.Equal(t, validator.FieldError{Field: "patient_phone", Message: validator.PhoneMessage}, fields[1])

	assert.Zero(t, f.count(t))
	assert.Empty(t, f.notifier.booked)
}

func TestBook_MultibyteNameAtLimit(t *testing.T) {
	f := newFixture(t)
	form := doctorForm()
	form.PatientName = strings.Repeat("é", validator.MaxNameLen)

	res, err := f.svc.Book(context.Background(), &f.doctor.ID, form)
	require.NoError(t, err)
	assert.Equal(t, form.PatientName, res.Appointment.Contact().Name)
}

func TestBulkSetStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		res, err := f.svc.Book(ctx, &f.doctor.ID, doctorForm())
		require.NoError(t, err)
		ids = append(ids, res.Appointment.ID)
	}

	n, err := f.svc.BulkSetStatus(ctx, ids[:2], model.AppointmentStatusConfirmed)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	untouched, err := f.store.Appointments.Get(ctx, ids[2])
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusPending, untouched.Status)

	_, err = f.svc.BulkSetStatus(ctx, ids, "archived")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))
	_, err = f.svc.BulkSetStatus(ctx, nil, model.AppointmentStatusCancelled)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))
}

func TestForPatient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := &model.User{Username: "jane", Email: "jane@example.com", Role: model.RolePatient}
	require.NoError(t, f.store.Users.Create(ctx, u))
	p := model.NewPatientProfile(u.ID)
	require.NoError(t, f.store.Profiles.Create(ctx, p))

	early := doctorForm()
	early.AppointmentDate = "2025-11-01"
	_, err := f.svc.Book(ctx, &f.doctor.ID, early)
	require.NoError(t, err)
	_, err = f.svc.Book(ctx, nil, model.AppointmentForm{
		Doctor: f.doctor.ID.String(), PatientProfile: p.ID.String(),
		AppointmentDate: "2025-12-05", AppointmentTime: "08:00",
	})
	require.NoError(t, err)
	other := doctorForm()
	other.PatientEmail = "someone@example.com"
	_, err = f.svc.Book(ctx, &f.doctor.ID, other)
	require.NoError(t, err)

	list, err := f.svc.ForPatient(ctx, u)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2025-11-01", list[0].Date.Format(model.DateLayout))

	latest, err := f.svc.ForPatientLatestFirst(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, "2025-12-05", latest[0].Date.Format(model.DateLayout))
}
