package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_CountersAndHandler(t *testing.T) {
	m := New("hospital")

	m.AppointmentsBooked.WithLabelValues("doctor").Inc()
	m.AppointmentsBooked.WithLabelValues("doctor").Inc()
	m.NotificationsHandled.WithLabelValues("appointment_admin", "email", "failed").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AppointmentsBooked.WithLabelValues("doctor")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hospital_appointments_booked_total")
	assert.Contains(t, rec.Body.String(), "hospital_notifications_total")
}

func TestNew_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New("hospital")
		New("hospital")
	})
}
