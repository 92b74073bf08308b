package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/email"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/pkg/messaging"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
)

const (
	channelEmail = "email"
	channelInApp = "in_app"
)

// Message kinds double as template names.
const (
	KindContactAdmin     = email.TemplateContactAdmin
	KindContactUser      = email.TemplateContactUser
	KindAppointmentAdmin = email.TemplateAppointmentAdmin
	KindAppointmentUser  = email.TemplateAppointmentUser
)

type Config struct {
	From     string
	SiteName string
	// Admins always receive admin notifications by email.
	Admins []string
}

type Service struct {
	sender   email.Sender
	renderer *email.Renderer
	users    repository.UserRepository
	profiles repository.ProfileRepository
	broker   messaging.Broker
	metrics  *metrics.Metrics
	cfg      Config
	now      func() time.Time
}

// NewService wires the sender. broker and m may be nil, in which case
// in-app delivery and counting are skipped.
func NewService(
	sender email.Sender,
	renderer *email.Renderer,
	users repository.UserRepository,
	profiles repository.ProfileRepository,
	broker messaging.Broker,
	m *metrics.Metrics,
	cfg Config,
) *Service {
	return &Service{
		sender:   sender,
		renderer: renderer,
		users:    users,
		profiles: profiles,
		broker:   broker,
		metrics:  m,
		cfg:      cfg,
		now:      time.Now,
	}
}

type contactData struct {
	SiteName string
	Contact  *model.Contact
}

// ContactReceived alerts the admins and thanks the sender.
func (s *Service) ContactReceived(ctx context.Context, c *model.Contact) []model.DeliveryResult {
	data := contactData{SiteName: s.cfg.SiteName, Contact: c}

	results := s.notifyAdmins(ctx, KindContactAdmin, fmt.Sprintf("New contact message from %s", c.FullName), data)
	results = append(results, s.send(ctx, KindContactUser, fmt.Sprintf("Thanks for contacting %s", s.cfg.SiteName), []string{c.Email}, data))
	return s.record(results)
}

type appointmentData struct {
	SiteName     string
	DoctorName   string
	PatientName  string
	PatientEmail string
	PatientPhone string
	Date         string
	Time         string
	Status       string
	Reason       string
}

// AppointmentBooked alerts the admins and confirms to the patient when an
// address for them is known.
func (s *Service) AppointmentBooked(ctx context.Context, a *model.Appointment, d *model.Doctor) []model.DeliveryResult {
	contact := a.Contact()
	patientEmail, patientName := s.patientAddress(ctx, a)
	if contact.Name != "" {
		patientName = contact.Name
	}
	data := appointmentData{
		SiteName:     s.cfg.SiteName,
		DoctorName:   d.Name,
		PatientName:  patientName,
		PatientEmail: patientEmail,
		PatientPhone: contact.Phone,
		Date:         a.Date.Format(model.DateLayout),
		Time:         a.Time.Format(model.TimeLayout),
		Status:       string(a.Status),
		Reason:       a.Reason,
	}

	subject := fmt.Sprintf("New appointment: %s with Dr. %s on %s", orDefault(patientName, "a patient"), d.Name, data.Date)
	results := s.notifyAdmins(ctx, KindAppointmentAdmin, subject, data)
	if patientEmail != "" {
		userSubject := fmt.Sprintf("Your appointment with Dr. %s", d.Name)
		results = append(results, s.send(ctx, KindAppointmentUser, userSubject, []string{patientEmail}, data))
	}
	return s.record(results)
}

// patientAddress prefers the submitted email, then the linked user, then
// the user owning the linked profile.
func (s *Service) patientAddress(ctx context.Context, a *model.Appointment) (addr, name string) {
	contact := a.Contact()
	if contact.Email != "" {
		return contact.Email, ""
	}
	linked, ok := a.Patient.(model.LinkedPatient)
	if !ok {
		return "", ""
	}
	userID := linked.UserID
	if userID == nil && linked.ProfileID != nil {
		if p, err := s.profiles.Get(ctx, *linked.ProfileID); err == nil {
			userID = &p.UserID
		}
	}
	if userID == nil {
		return "", ""
	}
	u, err := s.users.Get(ctx, *userID)
	if err != nil {
		return "", ""
	}
	return u.Email, u.DisplayName()
}

func (s *Service) notifyAdmins(ctx context.Context, kind, subject string, data interface{}) []model.DeliveryResult {
	var results []model.DeliveryResult
	recipients := append([]string(nil), s.cfg.Admins...)

	admins, err := s.users.ListByRole(ctx, model.RoleAdmin)
	if err != nil {
		results = append(results, failed("admins", kind, channelEmail, fmt.Errorf("failed to list admins: %w", err)))
	}
	var inApp []*model.User
	for _, a := range admins {
		if a.NotificationMethod.WantsEmail() {
			recipients = append(recipients, a.AlertAddress())
		}
		if a.NotificationMethod.WantsInApp() {
			inApp = append(inApp, a)
		}
	}

	if recipients = dedupe(recipients); len(recipients) > 0 {
		results = append(results, s.send(ctx, kind, subject, recipients, data))
	}
	if len(inApp) > 0 {
		results = append(results, s.publish(ctx, kind, subject, inApp, data)...)
	}
	return results
}

func (s *Service) send(ctx context.Context, kind, subject string, to []string, data interface{}) model.DeliveryResult {
	recipient := strings.Join(to, ", ")
	text, html, err := s.renderer.Render(kind, data)
	if err != nil {
		return failed(recipient, kind, channelEmail, err)
	}
	msg := &email.Message{
		From:    s.cfg.From,
		To:      to,
		Subject: subject,
		Text:    text,
		HTML:    html,
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return failed(recipient, kind, channelEmail, err)
	}
	return model.DeliveryResult{Recipient: recipient, Kind: kind, Channel: channelEmail, Status: model.DeliverySent}
}

func (s *Service) publish(ctx context.Context, kind, subject string, admins []*model.User, data interface{}) []model.DeliveryResult {
	results := make([]model.DeliveryResult, 0, len(admins))
	if s.broker == nil {
		return results
	}
	body, _, err := s.renderer.Render(kind, data)
	for _, a := range admins {
		if err != nil {
			results = append(results, failed(a.Username, kind, channelInApp, err))
			continue
		}
		event := model.NotificationEvent{
			ID:         uuid.New(),
			UserID:     a.ID,
			Kind:       kind,
			Subject:    subject,
			Body:       body,
			OccurredAt: s.now().UTC(),
		}
		if perr := s.broker.Publish(ctx, messaging.ChannelNotifications, event); perr != nil {
			results = append(results, failed(a.Username, kind, channelInApp, perr))
			continue
		}
		results = append(results, model.DeliveryResult{Recipient: a.Username, Kind: kind, Channel: channelInApp, Status: model.DeliverySent})
	}
	return results
}

func (s *Service) record(results []model.DeliveryResult) []model.DeliveryResult {
	if s.metrics == nil {
		return results
	}
	for _, r := range results {
		s.metrics.NotificationsHandled.WithLabelValues(r.Kind, r.Channel, string(r.Status)).Inc()
	}
	return results
}

func failed(recipient, kind, channel string, err error) model.DeliveryResult {
	return model.DeliveryResult{
		Recipient: recipient,
		Kind:      kind,
		Channel:   channel,
		Status:    model.DeliveryFailed,
		Reason:    err.Error(),
	}
}

// dedupe drops blanks and case-insensitive repeats, keeping order.
func dedupe(addrs []string) []string {
	seen := make(map[string]struct{}, len(addrs))
	out := addrs[:0]
	for _, a := range addrs {
		a = strings.TrimSpace(a)
		key := strings.ToLower(a)
		if a == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
