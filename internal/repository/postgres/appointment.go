package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(base BaseRepository) repository.AppointmentRepository {
	return &appointmentRepository{base}
}

// appointmentRow is the flat storage shape of model.Appointment.
type appointmentRow struct {
	ID               uuid.UUID  `db:"id"`
	DoctorID         uuid.UUID  `db:"doctor_id"`
	PatientUserID    *uuid.UUID `db:"patient_user_id"`
	PatientProfileID *uuid.UUID `db:"patient_profile_id"`
	PatientName      string     `db:"patient_name"`
	PatientEmail     string     `db:"patient_email"`
	PatientPhone     string     `db:"patient_phone"`
	Date             time.Time  `db:"appointment_date"`
	Time             string     `db:"appointment_time"` // selected as text
	Reason           string     `db:"reason"`
	Status           string     `db:"status"`
	CreatedAt        time.Time  `db:"created_at"`
}

func toRow(a *model.Appointment) appointmentRow {
	userID, profileID, contact := model.SplitPatientRef(a.Patient)
	return appointmentRow{
		ID:               a.ID,
		DoctorID:         a.DoctorID,
		PatientUserID:    userID,
		PatientProfileID: profileID,
		PatientName:      contact.Name,
		PatientEmail:     contact.Email,
		PatientPhone:     contact.Phone,
		Date:             a.Date,
		Time:             a.Time.Format("15:04:05"),
		Reason:           a.Reason,
		Status:           string(a.Status),
		CreatedAt:        a.CreatedAt,
	}
}

func (row appointmentRow) toModel() (*model.Appointment, error) {
	clock, err := model.ParseClockTime(row.Time)
	if err != nil {
		return nil, err
	}
	return &model.Appointment{
		ID:       row.ID,
		DoctorID: row.DoctorID,
		Patient: model.NewPatientRef(row.PatientUserID, row.PatientProfileID, model.GuestContact{
			Name:  row.PatientName,
			Email: row.PatientEmail,
			Phone: row.PatientPhone,
		}),
		Date:      row.Date,
		Time:      clock,
		Reason:    row.Reason,
		Status:    model.AppointmentStatus(row.Status),
		CreatedAt: row.CreatedAt,
	}, nil
}

const appointmentColumns = `id, doctor_id, patient_user_id, patient_profile_id, patient_name,
	patient_email, patient_phone, appointment_date, appointment_time::text AS appointment_time,
	reason, status, created_at`

func (r *appointmentRepository) Create(ctx context.Context, a *model.Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if a.Status == "" {
		a.Status = model.AppointmentStatusPending
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO appointments (
			id, doctor_id, patient_user_id, patient_profile_id, patient_name,
			patient_email, patient_phone, appointment_date, appointment_time,
			reason, status, created_at
		) VALUES (
			:id, :doctor_id, :patient_user_id, :patient_profile_id, :patient_name,
			:patient_email, :patient_phone, :appointment_date, :appointment_time,
			:reason, :status, :created_at
		)`, toRow(a))
	if err != nil {
		return wrapErr("create appointment", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	var row appointmentRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id); err != nil {
		return nil, wrapErr("get appointment", err)
	}
	return row.toModel()
}

func (r *appointmentRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error) {
	return r.list(ctx, "list doctor appointments", `
		SELECT `+appointmentColumns+` FROM appointments
		WHERE doctor_id = $1
		ORDER BY appointment_date, appointment_time`, doctorID)
}

func (r *appointmentRepository) ListForPatient(ctx context.Context, f model.AppointmentFilter) ([]*model.Appointment, error) {
	var userID, profileID interface{}
	if f.UserID != nil {
		userID = *f.UserID
	}
	if f.ProfileID != nil {
		profileID = *f.ProfileID
	}
	return r.list(ctx, "list patient appointments", `
		SELECT `+appointmentColumns+` FROM appointments
		WHERE ($1 <> '' AND LOWER(patient_email) = LOWER($1))
		   OR patient_user_id = $2
		   OR patient_profile_id = $3
		ORDER BY appointment_date, appointment_time`, f.Email, userID, profileID)
}

func (r *appointmentRepository) ListAll(ctx context.Context) ([]*model.Appointment, error) {
	return r.list(ctx, "list appointments", `
		SELECT `+appointmentColumns+` FROM appointments
		ORDER BY appointment_date DESC, appointment_time DESC`)
}

func (r *appointmentRepository) list(ctx context.Context, op, query string, args ...interface{}) ([]*model.Appointment, error) {
	var rows []appointmentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, wrapErr(op, err)
	}
	out := make([]*model.Appointment, 0, len(rows))
	for _, row := range rows {
		a, err := row.toModel()
		if err != nil {
			return nil, wrapErr(op, err)
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *appointmentRepository) SetStatus(ctx context.Context, ids []uuid.UUID, status model.AppointmentStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE appointments SET status = $1 WHERE id = ANY($2::uuid[])`,
		status, pq.Array(uuidStrings(ids)))
	if err != nil {
		return 0, wrapErr("set appointment status", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, wrapErr("set appointment status", err)
	}
	return n, nil
}
