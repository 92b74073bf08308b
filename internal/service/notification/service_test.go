package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/email"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/internal/repository/memory"
	"github.com/jwalitptl/hospital-api/pkg/messaging"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
)

type fixture struct {
	svc     *Service
	store   *repository.Store
	outbox  *email.Outbox
	broker  *messaging.MemoryBroker
	metrics *metrics.Metrics
}

func newFixture(t *testing.T, admins ...string) *fixture {
	t.Helper()
	store := memory.NewStore()
	outbox := email.NewOutbox()
	broker := messaging.NewMemoryBroker()
	t.Cleanup(func() { _ = broker.Close() })
	m := metrics.New("test")
	svc := NewService(outbox, email.MustRenderer(), store.Users, store.Profiles, broker, m, Config{
		From:     "noreply@hospital.test",
		SiteName: "HospitalCare",
		Admins:   admins,
	})
	return &fixture{svc: svc, store: store, outbox: outbox, broker: broker, metrics: m}
}

func (f *fixture) addUser(t *testing.T, u *model.User) *model.User {
	t.Helper()
	require.NoError(t, f.store.Users.Create(context.Background(), u))
	return u
}

func contact() *model.Contact {
	return &model.Contact{
		Base:     model.NewBase(),
		FullName: "Test User",
		Email:    "test@example.com",
		Message:  "Hello",
	}
}

func TestContactReceived(t *testing.T) {
	f := newFixture(t, "ops@hospital.test")

	results := f.svc.ContactReceived(context.Background(), contact())
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, model.DeliverySent, r.Status)
	}

	msgs := f.outbox.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, []string{"ops@hospital.test"}, msgs[0].To)
	assert.Equal(t, "New contact message from Test User", msgs[0].Subject)
	assert.Contains(t, msgs[0].Text, "Hello")
	assert.Contains(t, msgs[0].HTML, "Test User")
	assert.Equal(t, []string{"test@example.com"}, msgs[1].To)
	assert.Equal(t, "Thanks for contacting HospitalCare", msgs[1].Subject)
	assert.Equal(t, "noreply@hospital.test", msgs[1].From)

	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.NotificationsHandled.WithLabelValues(KindContactAdmin, "email", "sent"))+
		testutil.ToFloat64(f.metrics.NotificationsHandled.WithLabelValues(KindContactUser, "email", "sent")))
}

func TestContactReceived_NoAdminsSkipsAdminMail(t *testing.T) {
	f := newFixture(t)

	results := f.svc.ContactReceived(context.Background(), contact())
	require.Len(t, results, 1)
	assert.Equal(t, KindContactUser, results[0].Kind)
	assert.Equal(t, 1, f.outbox.Len())
}

func TestContactReceived_FailureIsReported(t *testing.T) {
	f := newFixture(t, "ops@hospital.test")
	f.outbox.Fail = func(to []string) error {
		if to[0] == "test@example.com" {
			return errors.New("mailbox unavailable")
		}
		return nil
	}

	results := f.svc.ContactReceived(context.Background(), contact())
	require.Len(t, results, 2)
	assert.False(t, results[0].Failed())
	assert.True(t, results[1].Failed())
	assert.Equal(t, "mailbox unavailable", results[1].Reason)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.NotificationsHandled.WithLabelValues(KindContactUser, "email", "failed")))
}

func TestAdminRecipients_PreferencesAndDedupe(t *testing.T) {
	f := newFixture(t, "ops@hospital.test")
	f.addUser(t, &model.User{Username: "mailer", Email: "Ops@Hospital.test", Role: model.RoleAdmin, NotificationMethod: model.NotifyEmail})
	f.addUser(t, &model.User{Username: "alerts", Email: "boss@hospital.test", NotificationEmail: "pager@hospital.test", Role: model.RoleAdmin, NotificationMethod: model.NotifyBoth})
	inbox := f.addUser(t, &model.User{Username: "quiet", Email: "quiet@hospital.test", Role: model.RoleAdmin, NotificationMethod: model.NotifyInApp})
	f.addUser(t, &model.User{Username: "doc", Email: "doc@hospital.test", Role: model.RoleDoctor})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := f.broker.Subscribe(ctx, messaging.ChannelNotifications)
	require.NoError(t, err)

	results := f.svc.ContactReceived(context.Background(), contact())

	msgs := f.outbox.Messages()
	require.Len(t, msgs, 2)
	assert.ElementsMatch(t, []string{"ops@hospital.test", "pager@hospital.test"}, msgs[0].To)

	var inApp []model.DeliveryResult
	for _, r := range results {
		if r.Channel == "in_app" {
			inApp = append(inApp, r)
		}
	}
	assert.Len(t, inApp, 2)

	received := map[uuid.UUID]bool{}
	for i := 0; i < 2; i++ {
		select {
		case raw := <-events:
			var ev model.NotificationEvent
			require.NoError(t, json.Unmarshal(raw, &ev))
			assert.Equal(t, KindContactAdmin, ev.Kind)
			assert.Contains(t, ev.Body, "Hello")
			received[ev.UserID] = true
		case <-time.After(time.Second):
			t.Fatal("expected in-app event")
		}
	}
	assert.True(t, received[inbox.ID])
}

func TestPublish_FullBrokerMarksInAppFailed(t *testing.T) {
	store := memory.NewStore()
	broker := messaging.NewMemoryBrokerSize(1)
	t.Cleanup(func() { _ = broker.Close() })
	m := metrics.New("test")
	svc := NewService(email.NewOutbox(), email.MustRenderer(), store.Users, store.Profiles, broker, m, Config{})
	require.NoError(t, store.Users.Create(context.Background(), &model.User{
		Username: "quiet", Email: "quiet@hospital.test", Role: model.RoleAdmin, NotificationMethod: model.NotifyInApp,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, err := broker.Subscribe(ctx, messaging.ChannelNotifications)
	require.NoError(t, err)

	inApp := func(results []model.DeliveryResult) model.DeliveryResult {
		for _, r := range results {
			if r.Channel == "in_app" {
				return r
			}
		}
		t.Fatal("no in-app result")
		return model.DeliveryResult{}
	}

	first := inApp(svc.ContactReceived(context.Background(), contact()))
	assert.Equal(t, model.DeliverySent, first.Status)

	second := inApp(svc.ContactReceived(context.Background(), contact()))
	assert.True(t, second.Failed())
	assert.Equal(t, "quiet", second.Recipient)
	assert.Contains(t, second.Reason, messaging.ErrSubscriberFull.Error())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsHandled.WithLabelValues(KindContactAdmin, "in_app", "failed")))
}

func appointmentFor(ref model.PatientRef) *model.Appointment {
	d, _ := model.ParseDate("2025-12-01")
	tm, _ := model.ParseClockTime("10:30")
	return &model.Appointment{
		ID:       uuid.New(),
		DoctorID: uuid.New(),
		Patient:  ref,
		Date:     d,
		Time:     tm,
		Reason:   "Checkup",
		Status:   model.AppointmentStatusPending,
	}
}

func TestAppointmentBooked_GuestContact(t *testing.T) {
	f := newFixture(t, "ops@hospital.test")
	doctor := &model.Doctor{Name: "John Mwangi"}

	results := f.svc.AppointmentBooked(context.Background(), appointmentFor(model.GuestContact{
		Name: "Jane Doe", Email: "jane@example.com", Phone: "+254700000000",
	}), doctor)
	require.Len(t, results, 2)

	msgs := f.outbox.Messages()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].Text, "Dr. John Mwangi")
	assert.Contains(t, msgs[0].Text, "2025-12-01 at 10:30")
	assert.Equal(t, []string{"jane@example.com"}, msgs[1].To)
	assert.Contains(t, msgs[1].Text, "Hi Jane Doe")
}

func TestAppointmentBooked_LinkedPatientResolvesEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.addUser(t, &model.User{Username: "jane", Email: "jane@example.com", FirstName: "Jane", Role: model.RolePatient})
	p := model.NewPatientProfile(u.ID)
	require.NoError(t, f.store.Profiles.Create(ctx, p))

	results := f.svc.AppointmentBooked(ctx, appointmentFor(model.LinkedPatient{ProfileID: &p.ID}), &model.Doctor{Name: "Sarah Achieng"})
	require.Len(t, results, 1)
	assert.Equal(t, KindAppointmentUser, results[0].Kind)
	assert.Equal(t, "jane@example.com", results[0].Recipient)
	assert.Contains(t, f.outbox.Messages()[0].Text, "Hi Jane")
}

func TestAppointmentBooked_NoPatientEmail(t *testing.T) {
	f := newFixture(t)
	results := f.svc.AppointmentBooked(context.Background(), appointmentFor(model.GuestContact{Name: "Walk-in"}), &model.Doctor{Name: "Kelvin Otieno"})
	assert.Empty(t, results)
	assert.Zero(t, f.outbox.Len())
}
