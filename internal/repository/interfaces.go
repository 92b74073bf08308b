package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique column already holds the value.
	ErrDuplicate = errors.New("duplicate record")
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByUsername(ctx context.Context, username string) (*model.User, error)
		UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
		UpdateNotificationSettings(ctx context.Context, id uuid.UUID, email string, method model.NotificationMethod) error
		ListByRole(ctx context.Context, role model.Role) ([]*model.User, error)
	}

	ProfileRepository interface {
		Create(ctx context.Context, profile *model.PatientProfile) error
		Get(ctx context.Context, id uuid.UUID) (*model.PatientProfile, error)
		GetByUserID(ctx context.Context, userID uuid.UUID) (*model.PatientProfile, error)
		Update(ctx context.Context, profile *model.PatientProfile) error
	}

	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Doctor, error)
		List(ctx context.Context) ([]*model.Doctor, error)
		// Update saves the doctor and replaces its service set.
		Update(ctx context.Context, doctor *model.Doctor) error
	}

	ServiceRepository interface {
		Create(ctx context.Context, service *model.Service) error
		GetActiveBySlug(ctx context.Context, slug string) (*model.Service, error)
		SlugExists(ctx context.Context, slug string) (bool, error)
		// ListActive orders by most recently updated first.
		ListActive(ctx context.Context) ([]*model.Service, error)
		// ListNewest returns up to limit active services, newest first.
		ListNewest(ctx context.Context, limit int) ([]*model.Service, error)
		List(ctx context.Context) ([]*model.Service, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		// ListByDoctor orders by date then time.
		ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error)
		// ListForPatient matches any filter field; email is compared
		// case-insensitively. Ordered by date then time.
		ListForPatient(ctx context.Context, filter model.AppointmentFilter) ([]*model.Appointment, error)
		// ListAll orders by date then time, newest first.
		ListAll(ctx context.Context) ([]*model.Appointment, error)
		// SetStatus overwrites the status of every listed row and returns
		// how many rows changed.
		SetStatus(ctx context.Context, ids []uuid.UUID, status model.AppointmentStatus) (int64, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
		// List returns newest first.
		List(ctx context.Context) ([]*model.Patient, error)
	}

	ContactRepository interface {
		Create(ctx context.Context, contact *model.Contact) error
		Get(ctx context.Context, id uuid.UUID) (*model.Contact, error)
		Delete(ctx context.Context, id uuid.UUID) error
		// List returns newest first.
		List(ctx context.Context) ([]*model.Contact, error)
	}

	LabSampleRepository interface {
		Create(ctx context.Context, sample *model.LabSample) error
		// GetBySampleID matches case-insensitively.
		GetBySampleID(ctx context.Context, sampleID string) (*model.LabSample, error)
	}

	FacilityRepository interface {
		// Get returns ErrNotFound until a facility is saved.
		Get(ctx context.Context) (*model.Facility, error)
		Save(ctx context.Context, facility *model.Facility) error
	}

	NotificationRepository interface {
		Create(ctx context.Context, notification *model.Notification) error
		ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Notification, error)
	}
)

// Store bundles every repository the services need.
type Store struct {
	Users         UserRepository
	Profiles      ProfileRepository
	Doctors       DoctorRepository
	Services      ServiceRepository
	Appointments  AppointmentRepository
	Patients      PatientRepository
	Contacts      ContactRepository
	LabSamples    LabSampleRepository
	Facility      FacilityRepository
	Notifications NotificationRepository
}
