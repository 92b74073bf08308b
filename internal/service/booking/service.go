// Package booking turns booking form submissions into appointment rows.
package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
	"github.com/jwalitptl/hospital-api/pkg/validator"
)

const (
	MsgFillAllFields   = "Please fill in all fields."
	MsgCorrectErrors   = "Please correct the errors below."
	MsgPatientRequired = "Provide either a patient account/profile or guest name and email."

	MsgDoctorBooked  = "Your appointment has been booked successfully! We will confirm it shortly."
	MsgGenericBooked = "Your appointment has been booked successfully!"

	RedirectDoctorForm  = "/doctors/"
	RedirectGenericForm = "/"

	formDoctor  = "doctor"
	formGeneric = "generic"
)

var formValidator = validator.New()

// Notifier is told about every stored appointment.
type Notifier interface {
	AppointmentBooked(ctx context.Context, a *model.Appointment, d *model.Doctor) []model.DeliveryResult
}

// Result describes a successful booking.
type Result struct {
	Appointment   *model.Appointment     `json:"appointment"`
	Notifications []model.DeliveryResult `json:"notifications"`
	Message       string                 `json:"message"`
	RedirectTo    string                 `json:"redirect_to"`
}

type Service struct {
	doctors      repository.DoctorRepository
	appointments repository.AppointmentRepository
	users        repository.UserRepository
	profiles     repository.ProfileRepository
	notifier     Notifier
	metrics      *metrics.Metrics
}

func NewService(store *repository.Store, notifier Notifier, m *metrics.Metrics) *Service {
	return &Service{
		doctors:      store.Doctors,
		appointments: store.Appointments,
		users:        store.Users,
		profiles:     store.Profiles,
		notifier:     notifier,
		metrics:      m,
	}
}

// Doctor loads the doctor a booking page is for.
func (s *Service) Doctor(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	d, err := s.doctors.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("doctor", err)
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return d, nil
}

// Book stores one appointment. With a doctor id every contact field is
// required and the patient is always stored as a guest. Without one the
// doctor comes from the form and the patient may be a linked account.
func (s *Service) Book(ctx context.Context, doctorID *uuid.UUID, form model.AppointmentForm) (*Result, error) {
	if doctorID != nil {
		return s.bookWithDoctor(ctx, *doctorID, form)
	}
	return s.bookGeneric(ctx, form)
}

func (s *Service) bookWithDoctor(ctx context.Context, doctorID uuid.UUID, form model.AppointmentForm) (*Result, error) {
	doctor, err := s.Doctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	required := []string{
		form.PatientName, form.PatientEmail, form.PatientPhone,
		form.AppointmentDate, form.AppointmentTime, form.Reason,
	}
	for _, v := range required {
		if strings.TrimSpace(v) == "" {
			return nil, s.reject(formDoctor, "missing_fields", apperrors.BadRequest(MsgFillAllFields, nil))
		}
	}
	contact := model.GuestContact{
		Name:  strings.TrimSpace(form.PatientName),
		Email: strings.TrimSpace(form.PatientEmail),
		Phone: strings.TrimSpace(form.PatientPhone),
	}
	if fields := contactLengths(contact, true); len(fields) > 0 {
		return nil, s.reject(formDoctor, "too_long", apperrors.BadRequest(fields[0].Message, nil).WithDetails(fields))
	}
	date, clock, fields := parseWhen(form)
	if len(fields) > 0 {
		return nil, s.reject(formDoctor, "invalid_datetime", apperrors.BadRequest(fields[0].Message, nil).WithDetails(fields))
	}

	appt := &model.Appointment{
		DoctorID: doctor.ID,
		Patient:  contact,
		Date:   date,
		Time:   clock,
		Reason: form.Reason,
		Status: model.AppointmentStatusPending,
	}
	return s.store(ctx, formDoctor, appt, doctor, MsgDoctorBooked, RedirectDoctorForm)
}

func (s *Service) bookGeneric(ctx context.Context, form model.AppointmentForm) (*Result, error) {
	var fields []validator.FieldError
	add := func(field, msg string) {
		fields = append(fields, validator.FieldError{Field: field, Message: msg})
	}

	var doctor *model.Doctor
	switch id, err := uuid.Parse(strings.TrimSpace(form.Doctor)); {
	case strings.TrimSpace(form.Doctor) == "":
		add("doctor", "This field is required.")
	case err != nil:
		add("doctor", "Select a valid choice.")
	default:
		d, err := s.doctors.Get(ctx, id)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			add("doctor", "Select a valid choice.")
		case err != nil:
			return nil, fmt.Errorf("failed to get doctor: %w", err)
		default:
			doctor = d
		}
	}

	userID, err := s.optionalUser(ctx, form.PatientUser)
	if err != nil {
		if !apperrors.HasCode(err, apperrors.ErrBadRequest) {
			return nil, err
		}
		add("patient_user", "Select a valid choice.")
	}
	profileID, err := s.optionalProfile(ctx, form.PatientProfile)
	if err != nil {
		if !apperrors.HasCode(err, apperrors.ErrBadRequest) {
			return nil, err
		}
		add("patient_profile", "Select a valid choice.")
	}

	contact := model.GuestContact{
		Name:  strings.TrimSpace(form.PatientName),
		Email: strings.TrimSpace(form.PatientEmail),
		Phone: strings.TrimSpace(form.PatientPhone),
	}
	fields = append(fields, contactLengths(contact, false)...)
	if contact.Email != "" && !hasField(fields, "patient_email") && formValidator.Var(contact.Email, "email") != nil {
		add("patient_email", "Enter a valid email address.")
	}
	if contact.Phone != "" && !validator.IsPhone(contact.Phone) {
		add("patient_phone", validator.PhoneMessage)
	}

	date, clock, whenFields := parseWhen(form)
	fields = append(fields, whenFields...)

	status := model.AppointmentStatusPending
	if strings.TrimSpace(form.Status) != "" {
		st, err := model.ParseAppointmentStatus(form.Status)
		if err != nil {
			add("status", "Select a valid choice.")
		} else {
			status = st
		}
	}

	linked := userID != nil || profileID != nil
	if !linked && (contact.Name == "" || contact.Email == "") {
		add("", MsgPatientRequired)
	}

	if len(fields) > 0 {
		msg := MsgCorrectErrors
		if len(fields) == 1 && fields[0].Field == "" {
			msg = fields[0].Message
		}
		return nil, s.reject(formGeneric, "invalid", apperrors.BadRequest(msg, nil).WithDetails(fields))
	}

	appt := &model.Appointment{
		DoctorID: doctor.ID,
		Patient:  model.NewPatientRef(userID, profileID, contact),
		Date:     date,
		Time:     clock,
		Reason:   form.Reason,
		Status:   status,
	}
	return s.store(ctx, formGeneric, appt, doctor, MsgGenericBooked, RedirectGenericForm)
}

func (s *Service) optionalUser(ctx context.Context, raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperrors.BadRequest("invalid patient user", err)
	}
	if _, err := s.users.Get(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.BadRequest("invalid patient user", err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &id, nil
}

func (s *Service) optionalProfile(ctx context.Context, raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperrors.BadRequest("invalid patient profile", err)
	}
	if _, err := s.profiles.Get(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.BadRequest("invalid patient profile", err)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &id, nil
}

// contactLengths checks the guest fields against their column widths.
// The generic form validates the phone format separately, which already
// bounds its length.
func contactLengths(c model.GuestContact, withPhone bool) []validator.FieldError {
	limits := []validator.Limit{
		{Field: "patient_name", Value: c.Name, Max: validator.MaxNameLen},
		{Field: "patient_email", Value: c.Email, Max: validator.MaxEmailLen},
	}
	if withPhone {
		limits = append(limits, validator.Limit{Field: "patient_phone", Value: c.Phone, Max: validator.MaxPhoneLen})
	}
	return validator.Lengths(limits...)
}

func hasField(fields []validator.FieldError, name string) bool {
	for _, f := range fields {
		if f.Field == name {
			return true
		}
	}
	return false
}

func parseWhen(form model.AppointmentForm) (date, clock time.Time, fields []validator.FieldError) {
	var err error
	switch raw := strings.TrimSpace(form.AppointmentDate); {
	case raw == "":
		fields = append(fields, validator.FieldError{Field: "appointment_date", Message: "This field is required."})
	default:
		if date, err = model.ParseDate(raw); err != nil {
			fields = append(fields, validator.FieldError{Field: "appointment_date", Message: "Enter a valid date."})
		}
	}
	switch raw := strings.TrimSpace(form.AppointmentTime); {
	case raw == "":
		fields = append(fields, validator.FieldError{Field: "appointment_time", Message: "This field is required."})
	default:
		if clock, err = model.ParseClockTime(raw); err != nil {
			fields = append(fields, validator.FieldError{Field: "appointment_time", Message: "Enter a valid time."})
		}
	}
	return date, clock, fields
}

func (s *Service) store(ctx context.Context, form string, appt *model.Appointment, doctor *model.Doctor, msg, redirect string) (*Result, error) {
	if err := s.appointments.Create(ctx, appt); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}
	if s.metrics != nil {
		s.metrics.AppointmentsBooked.WithLabelValues(form).Inc()
	}

	var results []model.DeliveryResult
	if s.notifier != nil {
		results = s.notifier.AppointmentBooked(ctx, appt, doctor)
	}
	return &Result{
		Appointment:   appt,
		Notifications: results,
		Message:       msg,
		RedirectTo:    redirect,
	}, nil
}

func (s *Service) reject(form, reason string, err *apperrors.AppError) error {
	if s.metrics != nil {
		s.metrics.BookingsRejected.WithLabelValues(form, reason).Inc()
	}
	return err
}

// BulkSetStatus overwrites the status of the selected appointments and
// returns how many rows changed.
func (s *Service) BulkSetStatus(ctx context.Context, ids []uuid.UUID, status model.AppointmentStatus) (int64, error) {
	if _, err := model.ParseAppointmentStatus(string(status)); err != nil {
		return 0, apperrors.BadRequest("Select a valid status.", err)
	}
	if len(ids) == 0 {
		return 0, apperrors.BadRequest("Select at least one appointment.", nil)
	}
	n, err := s.appointments.SetStatus(ctx, ids, status)
	if err != nil {
		return 0, fmt.Errorf("failed to update appointment status: %w", err)
	}
	if s.metrics != nil {
		s.metrics.AppointmentsUpdated.WithLabelValues(string(status)).Add(float64(n))
	}
	return n, nil
}

// ListAll returns every appointment, latest first.
func (s *Service) ListAll(ctx context.Context) ([]*model.Appointment, error) {
	list, err := s.appointments.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return list, nil
}

// ForPatient returns appointments booked under the user's email, linked
// to the user, or linked to the user's profile. Ordered by date and time.
func (s *Service) ForPatient(ctx context.Context, u *model.User) ([]*model.Appointment, error) {
	filter := model.AppointmentFilter{Email: u.Email, UserID: &u.ID}
	p, err := s.profiles.GetByUserID(ctx, u.ID)
	switch {
	case err == nil:
		filter.ProfileID = &p.ID
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	list, err := s.appointments.ListForPatient(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return list, nil
}

// ForPatientLatestFirst is ForPatient with the newest slot first.
func (s *Service) ForPatientLatestFirst(ctx context.Context, u *model.User) ([]*model.Appointment, error) {
	list, err := s.ForPatient(ctx, u)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return later(list[i], list[j]) })
	return list, nil
}

// ForDoctor lists a doctor's appointments by date then time.
func (s *Service) ForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error) {
	list, err := s.appointments.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return list, nil
}

func later(a, b *model.Appointment) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.After(b.Date)
	}
	return a.Time.After(b.Time)
}
