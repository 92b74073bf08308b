// Package dispatch maps an authenticated identity to its landing page.
package dispatch

import (
	"github.com/jwalitptl/hospital-api/internal/model"
)

const (
	PathIndex            = "/"
	PathLogin            = "/login/"
	PathAdminDashboard   = "/admin_dashboard/"
	PathDoctorDashboard  = "/doctor_dashboard/"
	PathPatientDashboard = "/patient_dashboard/"
)

// Destination returns the dashboard for id's role. A nil identity or a role
// outside the closed set goes to the index page.
func Destination(id *model.Identity) string {
	if id == nil {
		return PathIndex
	}
	switch id.Role {
	case model.RoleAdmin:
		return PathAdminDashboard
	case model.RoleDoctor:
		return PathDoctorDashboard
	case model.RolePatient:
		return PathPatientDashboard
	default:
		return PathIndex
	}
}
