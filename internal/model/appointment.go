package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	switch st := AppointmentStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusCompleted, AppointmentStatusCancelled:
		return st, nil
	default:
		return "", fmt.Errorf("unknown appointment status %q", s)
	}
}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// ParseDate parses a calendar date in YYYY-MM-DD form.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// ParseClockTime accepts HH:MM and HH:MM:SS.
func ParseClockTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(TimeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse("15:04:05", s)
}

// PatientRef identifies who an appointment is for. It is either a
// LinkedPatient or a GuestContact.
type PatientRef interface {
	patientRef()
}

// GuestContact holds free-text contact details for unregistered patients.
type GuestContact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// LinkedPatient points at a registered user and/or profile. Contact keeps
// any details submitted alongside the link.
type LinkedPatient struct {
	UserID    *uuid.UUID   `json:"user_id,omitempty"`
	ProfileID *uuid.UUID   `json:"profile_id,omitempty"`
	Contact   GuestContact `json:"contact"`
}

func (GuestContact) patientRef()  {}
func (LinkedPatient) patientRef() {}

// NewPatientRef rebuilds the union from flat columns. Rows with no link
// decode as a guest, even when the guest fields are empty.
func NewPatientRef(userID, profileID *uuid.UUID, contact GuestContact) PatientRef {
	if userID != nil || profileID != nil {
		return LinkedPatient{UserID: userID, ProfileID: profileID, Contact: contact}
	}
	return contact
}

// SplitPatientRef flattens the union back into columns.
func SplitPatientRef(ref PatientRef) (userID, profileID *uuid.UUID, contact GuestContact) {
	switch p := ref.(type) {
	case LinkedPatient:
		return p.UserID, p.ProfileID, p.Contact
	case GuestContact:
		return nil, nil, p
	case nil:
		return nil, nil, GuestContact{}
	default:
		panic(fmt.Sprintf("unexpected patient ref %T", ref))
	}
}

type Appointment struct {
	ID        uuid.UUID         `json:"id"`
	DoctorID  uuid.UUID         `json:"doctor_id"`
	Patient   PatientRef        `json:"-"`
	Date      time.Time         `json:"-"`
	Time      time.Time         `json:"-"`
	Reason    string            `json:"reason"`
	Status    AppointmentStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

// Contact returns the contact details carried by either variant.
func (a *Appointment) Contact() GuestContact {
	_, _, c := SplitPatientRef(a.Patient)
	return c
}

func (a *Appointment) MarshalJSON() ([]byte, error) {
	userID, profileID, contact := SplitPatientRef(a.Patient)
	kind := "guest"
	if _, ok := a.Patient.(LinkedPatient); ok {
		kind = "linked"
	}
	return json.Marshal(struct {
		ID               uuid.UUID         `json:"id"`
		DoctorID         uuid.UUID         `json:"doctor_id"`
		PatientKind      string            `json:"patient_kind"`
		PatientUserID    *uuid.UUID        `json:"patient_user_id"`
		PatientProfileID *uuid.UUID        `json:"patient_profile_id"`
		PatientName      string            `json:"patient_name"`
		PatientEmail     string            `json:"patient_email"`
		PatientPhone     string            `json:"patient_phone"`
		AppointmentDate  string            `json:"appointment_date"`
		AppointmentTime  string            `json:"appointment_time"`
		Reason           string            `json:"reason"`
		Status           AppointmentStatus `json:"status"`
		CreatedAt        time.Time         `json:"created_at"`
	}{
		ID:               a.ID,
		DoctorID:         a.DoctorID,
		PatientKind:      kind,
		PatientUserID:    userID,
		PatientProfileID: profileID,
		PatientName:      contact.Name,
		PatientEmail:     contact.Email,
		PatientPhone:     contact.Phone,
		AppointmentDate:  a.Date.Format(DateLayout),
		AppointmentTime:  a.Time.Format(TimeLayout),
		Reason:           a.Reason,
		Status:           a.Status,
		CreatedAt:        a.CreatedAt,
	})
}

// AppointmentForm carries a booking submission. When booking against a
// specific doctor only the patient contact, date, time and reason fields
// are read, and all of them are required.
type AppointmentForm struct {
	Doctor          string `json:"doctor" form:"doctor"`
	PatientUser     string `json:"patient_user" form:"patient_user"`
	PatientProfile  string `json:"patient_profile" form:"patient_profile"`
	PatientName     string `json:"patient_name" form:"patient_name"`
	PatientEmail    string `json:"patient_email" form:"patient_email"`
	PatientPhone    string `json:"patient_phone" form:"patient_phone"`
	AppointmentDate string `json:"appointment_date" form:"appointment_date"`
	AppointmentTime string `json:"appointment_time" form:"appointment_time"`
	Reason          string `json:"reason" form:"reason"`
	Status          string `json:"status" form:"status"`
}

type BulkStatusRequest struct {
	Status string   `json:"status" form:"status" binding:"required,oneof=pending confirmed completed cancelled"`
	IDs    []string `json:"ids" form:"ids" binding:"required,min=1,dive,uuid"`
}

// AppointmentFilter selects appointments belonging to a patient.
type AppointmentFilter struct {
	Email     string
	UserID    *uuid.UUID
	ProfileID *uuid.UUID
}
