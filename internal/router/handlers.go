package router

import (
	"github.com/rs/zerolog"

	"github.com/jwalitptl/hospital-api/internal/app"
	"github.com/jwalitptl/hospital-api/internal/handler/account"
	"github.com/jwalitptl/hospital-api/internal/handler/admin"
	"github.com/jwalitptl/hospital-api/internal/handler/appointment"
	authhandler "github.com/jwalitptl/hospital-api/internal/handler/auth"
	"github.com/jwalitptl/hospital-api/internal/handler/doctor"
	"github.com/jwalitptl/hospital-api/internal/handler/patient"
	"github.com/jwalitptl/hospital-api/internal/handler/public"
)

// SiteHandlers builds every page handler of the site.
func SiteHandlers(
	s *app.Services,
	cookie authhandler.CookieConfig,
	logger zerolog.Logger,
) []Handler {
	return []Handler{
		public.NewHandler(s.Catalog, s.Contacts, s.Doctors, s.Facility, logger),
		appointment.NewHandler(s.Booking, s.Doctors, logger),
		authhandler.NewHandler(s.Auth, cookie),
		account.NewHandler(s.Users, s.Profiles, s.Booking, s.Catalog),
		admin.NewHandler(s.Users, s.Contacts, s.Patients, s.Catalog, s.Facility, s.Export, s.Inbox),
		patient.NewHandler(s.Patients),
		doctor.NewHandler(s.Users, s.Doctors, s.Booking, s.Catalog),
	}
}
