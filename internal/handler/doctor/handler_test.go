package doctor

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/handler/handlertest"
	"github.com/jwalitptl/hospital-api/internal/model"
)

func setup(t *testing.T) *handlertest.Env {
	t.Helper()
	env := handlertest.New(t)
	s := env.Services
	NewHandler(s.Users, s.Doctors, s.Booking, s.Catalog).RegisterRoutes(env.Routes())
	return env
}

func TestDashboard_CreatesDoctorAndListsAppointments(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	u, token := env.SignUp(t, "house", model.RoleDoctor)

	w := env.Get(t, "/doctor_dashboard/", token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var dash struct {
		Doctor       model.Doctor             `json:"doctor"`
		Appointments []map[string]interface{} `json:"appointments"`
	}
	handlertest.DecodeData(t, w, &dash)
	assert.Equal(t, "House", dash.Doctor.Name)
	require.NotNil(t, dash.Doctor.UserID)
	assert.Equal(t, u.ID, *dash.Doctor.UserID)
	assert.Empty(t, dash.Appointments)

	for _, clock := range []string{"14:00", "09:00"} {
		_, err := env.Services.Booking.Book(ctx, &dash.Doctor.ID, model.AppointmentForm{
			PatientName:     "Pat",
			PatientEmail:    "pat@example.com",
			PatientPhone:    "+254700000000",
			AppointmentDate: "2025-12-01",
			AppointmentTime: clock,
			Reason:          "Checkup",
		})
		require.NoError(t, err)
	}

	w = env.Get(t, "/doctor_dashboard/", token)
	handlertest.DecodeData(t, w, &dash)
	require.Len(t, dash.Appointments, 2)
	assert.Equal(t, "09:00", dash.Appointments[0]["appointment_time"])

	doctors, err := env.Services.Doctors.List(ctx)
	require.NoError(t, err)
	assert.Len(t, doctors, 1)
}

func TestUpdateProfile(t *testing.T) {
	env := setup(t)
	_, token := env.SignUp(t, "house", model.RoleDoctor)
	svc, err := env.Services.Catalog.Create(context.Background(), model.CreateServiceRequest{Title: "Cardiology"})
	require.NoError(t, err)

	w := env.Post(t, "/doctor/profile/", token, url.Values{
		"name":      {"Gregory House"},
		"specialty": {"Diagnostics"},
		"services":  {svc.ID.String(), svc.ID.String()},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		RedirectTo string       `json:"redirect_to"`
		Result     model.Doctor `json:"result"`
	}
	resp := handlertest.DecodeData(t, w, &res)
	assert.Equal(t, MsgProfileUpdated, resp.Message)
	assert.Equal(t, "/doctor_dashboard/", res.RedirectTo)
	assert.Equal(t, "Diagnostics", res.Result.Specialty)
	assert.Len(t, res.Result.ServiceIDs, 1)

	w = env.Post(t, "/doctor/profile/", token, url.Values{"specialty": {"Diagnostics"}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	var data handlertest.FormErrors
	handlertest.DecodeData(t, w, &data)
	assert.Equal(t, "Diagnostics", data.Form["specialty"])
}

func TestRequiresDoctor(t *testing.T) {
	env := setup(t)
	_, token := env.SignUp(t, "pat", model.RolePatient)

	w := env.Get(t, "/doctor_dashboard/", token)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}
