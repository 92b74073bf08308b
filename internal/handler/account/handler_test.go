package account

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/handler/handlertest"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/service/profile"
)

func setup(t *testing.T) *handlertest.Env {
	t.Helper()
	env := handlertest.New(t)
	s := env.Services
	NewHandler(s.Users, s.Profiles, s.Booking, s.Catalog).RegisterRoutes(env.Routes())
	return env
}

func TestRequiresLogin(t *testing.T) {
	env := setup(t)
	for _, path := range []string{"/profile/", "/appointments/", "/medical-history/", "/emergency-contact/", "/patient_dashboard/"} {
		w := env.Get(t, path, "")
		assert.Equal(t, http.StatusFound, w.Code, path)
		assert.Equal(t, "/login/", w.Header().Get("Location"), path)
	}
}

func TestProfile_GetOrCreateAndUpdate(t *testing.T) {
	env := setup(t)
	u, token := env.SignUp(t, "doc", model.RoleDoctor)

	w := env.Get(t, "/profile/", token)
	require.Equal(t, http.StatusOK, w.Code)
	var p model.PatientProfile
	handlertest.DecodeData(t, w, &p)
	assert.Equal(t, u.ID, p.UserID)
	assert.Equal(t, model.DefaultCountry, p.Country)

	w = env.Post(t, "/profile/", token, url.Values{
		"city":       {"Nairobi"},
		"blood_type": {"O+"},
		"allergies":  {"Penicillin"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, MsgProfileUpdated, handlertest.Decode(t, w).Message)

	w = env.Get(t, "/medical-history/", token)
	var history model.MedicalHistory
	handlertest.DecodeData(t, w, &history)
	assert.Equal(t, "O+", history.BloodType)
	assert.Equal(t, "Penicillin", history.Allergies)
}

func TestProfile_InvalidField(t *testing.T) {
	env := setup(t)
	_, token := env.SignUp(t, "pat", model.RolePatient)

	w := env.Post(t, "/profile/", token, url.Values{"blood_type": {"Z"}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	var data handlertest.FormErrors
	handlertest.DecodeData(t, w, &data)
	require.Len(t, data.Errors, 1)
	assert.Equal(t, "blood_type", data.Errors[0].Field)
}

func TestEmergencyContact(t *testing.T) {
	env := setup(t)
	u, token := env.SignUp(t, "pat", model.RolePatient)

	w := env.Post(t, "/emergency-contact/", token, url.Values{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, profile.MsgEmergencyContactRequired, handlertest.Decode(t, w).Message)

	w = env.Post(t, "/emergency-contact/", token, url.Values{"emergency_contact_name": {"Mary"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, MsgEmergencyUpdated, handlertest.Decode(t, w).Message)

	p, err := env.Services.Profiles.FindByUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mary", p.EmergencyName)

	w = env.Get(t, "/emergency-contact/", token)
	var form model.EmergencyContactForm
	handlertest.DecodeData(t, w, &form)
	assert.Equal(t, "Mary", form.Name)
}

func TestChangePassword(t *testing.T) {
	env := setup(t)
	_, token := env.SignUp(t, "pat", model.RolePatient)

	w := env.Post(t, "/change-password/", token, url.Values{
		"old_password":  {"not-it"},
		"new_password1": {"brand-new-pass"},
		"new_password2": {"brand-new-pass"},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Your old password was entered incorrectly.", handlertest.Decode(t, w).Message)

	w = env.Post(t, "/change-password/", token, url.Values{
		"old_password":  {"password123"},
		"new_password1": {"brand-new-pass"},
		"new_password2": {"brand-new-pass"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, MsgPasswordUpdated, handlertest.Decode(t, w).Message)

	_, err := env.Services.Users.Authenticate(context.Background(), "pat", "brand-new-pass")
	assert.NoError(t, err)
}

func TestAppointmentsAndPatientDashboard(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	u, token := env.SignUp(t, "pat", model.RolePatient)
	_, doctorToken := env.SignUp(t, "doc", model.RoleDoctor)

	doc := &model.Doctor{Name: "Jane Smith"}
	require.NoError(t, env.Store.Doctors.Create(ctx, doc))
	for _, date := range []string{"2025-12-01", "2025-12-03"} {
		_, err := env.Services.Booking.Book(ctx, &doc.ID, model.AppointmentForm{
			PatientName:     "Pat",
			PatientEmail:    u.Email,
			PatientPhone:    "+254700000000",
			AppointmentDate: date,
			AppointmentTime: "09:00",
			Reason:          "Checkup",
		})
		require.NoError(t, err)
	}

	w := env.Get(t, "/appointments/", token)
	require.Equal(t, http.StatusOK, w.Code)
	var latestFirst []map[string]interface{}
	handlertest.DecodeData(t, w, &latestFirst)
	require.Len(t, latestFirst, 2)
	assert.Equal(t, "2025-12-03", latestFirst[0]["appointment_date"])

	w = env.Get(t, "/patient_dashboard/", token)
	require.Equal(t, http.StatusOK, w.Code)
	var dash struct {
		Appointments []map[string]interface{} `json:"appointments"`
	}
	handlertest.DecodeData(t, w, &dash)
	require.Len(t, dash.Appointments, 2)
	assert.Equal(t, "2025-12-01", dash.Appointments[0]["appointment_date"])

	w = env.Get(t, "/patient_dashboard/", doctorToken)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}
