// Package app wires repositories, mail and the broker into the service
// graph shared by the HTTP server, the seeder and the handler tests.
package app

import (
	"github.com/jwalitptl/hospital-api/internal/email"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/internal/service/auth"
	"github.com/jwalitptl/hospital-api/internal/service/booking"
	"github.com/jwalitptl/hospital-api/internal/service/catalog"
	"github.com/jwalitptl/hospital-api/internal/service/contact"
	"github.com/jwalitptl/hospital-api/internal/service/doctor"
	"github.com/jwalitptl/hospital-api/internal/service/export"
	"github.com/jwalitptl/hospital-api/internal/service/facility"
	"github.com/jwalitptl/hospital-api/internal/service/notification"
	"github.com/jwalitptl/hospital-api/internal/service/patient"
	"github.com/jwalitptl/hospital-api/internal/service/profile"
	"github.com/jwalitptl/hospital-api/internal/service/user"
	jwtauth "github.com/jwalitptl/hospital-api/pkg/auth"
	"github.com/jwalitptl/hospital-api/pkg/messaging"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
	"github.com/jwalitptl/hospital-api/pkg/security"
)

// Deps are the outside collaborators of the service graph. Broker may be
// nil, in which case in-app alerts are reported as failed deliveries.
type Deps struct {
	Store        *repository.Store
	Sender       email.Sender
	Renderer     *email.Renderer
	Broker       messaging.Broker
	Metrics      *metrics.Metrics
	Hasher       security.PasswordHasher
	JWT          jwtauth.JWTService
	Notification notification.Config
}

type Services struct {
	Users         *user.Service
	Profiles      *profile.Service
	Auth          *auth.Service
	Notifications *notification.Service
	Inbox         *notification.Inbox
	Booking       *booking.Service
	Catalog       *catalog.Service
	Doctors       *doctor.Service
	Patients      *patient.Service
	Contacts      *contact.Service
	Facility      *facility.Service
	Export        *export.Service
}

func NewServices(d Deps) *Services {
	profiles := profile.NewService(d.Store.Profiles)
	users := user.NewService(d.Store.Users, d.Hasher, profiles)
	notifications := notification.NewService(
		d.Sender, d.Renderer, d.Store.Users, d.Store.Profiles, d.Broker, d.Metrics, d.Notification,
	)
	patients := patient.NewService(d.Store.Patients)

	return &Services{
		Users:         users,
		Profiles:      profiles,
		Auth:          auth.NewService(users, d.JWT),
		Notifications: notifications,
		Inbox:         notification.NewInbox(d.Store.Notifications),
		Booking:       booking.NewService(d.Store, notifications, d.Metrics),
		Catalog:       catalog.NewService(d.Store.Services, d.Store.LabSamples),
		Doctors:       doctor.NewService(d.Store.Doctors, d.Store.Services),
		Patients:      patients,
		Contacts:      contact.NewService(d.Store.Contacts, notifications),
		Facility:      facility.NewService(d.Store.Facility),
		Export:        export.NewService(patients),
	}
}
