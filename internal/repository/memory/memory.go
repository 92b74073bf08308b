// Package memory is an in-process implementation of the repository
// interfaces, used by the memory database driver and by tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

type db struct {
	mu            sync.RWMutex
	users         map[uuid.UUID]model.User
	profiles      map[uuid.UUID]model.PatientProfile
	doctors       map[uuid.UUID]model.Doctor
	services      map[uuid.UUID]model.Service
	appointments  map[uuid.UUID]model.Appointment
	patients      map[uuid.UUID]model.Patient
	contacts      map[uuid.UUID]model.Contact
	labSamples    map[uuid.UUID]model.LabSample
	facility      *model.Facility
	notifications map[uuid.UUID]model.Notification
}

// NewStore returns an empty in-memory store.
func NewStore() *repository.Store {
	d := &db{
		users:         map[uuid.UUID]model.User{},
		profiles:      map[uuid.UUID]model.PatientProfile{},
		doctors:       map[uuid.UUID]model.Doctor{},
		services:      map[uuid.UUID]model.Service{},
		appointments:  map[uuid.UUID]model.Appointment{},
		patients:      map[uuid.UUID]model.Patient{},
		contacts:      map[uuid.UUID]model.Contact{},
		labSamples:    map[uuid.UUID]model.LabSample{},
		notifications: map[uuid.UUID]model.Notification{},
	}
	return &repository.Store{
		Users:         &userRepository{d},
		Profiles:      &profileRepository{d},
		Doctors:       &doctorRepository{d},
		Services:      &serviceRepository{d},
		Appointments:  &appointmentRepository{d},
		Patients:      &patientRepository{d},
		Contacts:      &contactRepository{d},
		LabSamples:    &labSampleRepository{d},
		Facility:      &facilityRepository{d},
		Notifications: &notificationRepository{d},
	}
}

func notFound(op string) error {
	return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
}

func duplicate(op string) error {
	return fmt.Errorf("%s: %w", op, repository.ErrDuplicate)
}

func now() time.Time { return time.Now().UTC() }

// users

type userRepository struct{ *db }

func (r *userRepository) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return duplicate("create user")
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now()
	}
	if u.NotificationMethod == "" {
		u.NotificationMethod = model.NotifyEmail
	}
	r.users[u.ID] = *u
	return nil
}

func (r *userRepository) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, notFound("get user")
	}
	return &u, nil
}

func (r *userRepository) GetByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, notFound("get user by username")
}

func (r *userRepository) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return notFound("update password")
	}
	u.PasswordHash = hash
	r.users[id] = u
	return nil
}

func (r *userRepository) UpdateNotificationSettings(_ context.Context, id uuid.UUID, email string, method model.NotificationMethod) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return notFound("update notification settings")
	}
	u.NotificationEmail = email
	u.NotificationMethod = method
	r.users[id] = u
	return nil
}

func (r *userRepository) ListByRole(_ context.Context, role model.Role) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.User
	for _, u := range r.users {
		if u.Role == role {
			u := u
			out = append(out, &u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// profiles

type profileRepository struct{ *db }

func (r *profileRepository) Create(_ context.Context, p *model.PatientProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.profiles {
		if existing.UserID == p.UserID {
			return duplicate("create patient profile")
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	t := now()
	if p.DateRegistered.IsZero() {
		p.DateRegistered = t
	}
	p.LastUpdated = t
	r.profiles[p.ID] = *p
	return nil
}

func (r *profileRepository) Get(_ context.Context, id uuid.UUID) (*model.PatientProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, notFound("get patient profile")
	}
	return &p, nil
}

func (r *profileRepository) GetByUserID(_ context.Context, userID uuid.UUID) (*model.PatientProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.profiles {
		if p.UserID == userID {
			p := p
			return &p, nil
		}
	}
	return nil, notFound("get patient profile by user")
}

func (r *profileRepository) Update(_ context.Context, p *model.PatientProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[p.ID]; !ok {
		return notFound("update patient profile")
	}
	p.LastUpdated = now()
	r.profiles[p.ID] = *p
	return nil
}

// doctors

type doctorRepository struct{ *db }

func copyDoctor(d model.Doctor) *model.Doctor {
	d.ServiceIDs = append([]uuid.UUID{}, d.ServiceIDs...)
	return &d
}

func (r *doctorRepository) Create(_ context.Context, d *model.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.UserID != nil {
		for _, existing := range r.doctors {
			if existing.UserID != nil && *existing.UserID == *d.UserID {
				return duplicate("create doctor")
			}
		}
	}
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	t := now()
	d.CreatedAt, d.UpdatedAt = t, t
	r.doctors[d.ID] = *copyDoctor(*d)
	return nil
}

func (r *doctorRepository) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.doctors[id]
	if !ok {
		return nil, notFound("get doctor")
	}
	return copyDoctor(d), nil
}

func (r *doctorRepository) GetByUserID(_ context.Context, userID uuid.UUID) (*model.Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.doctors {
		if d.UserID != nil && *d.UserID == userID {
			return copyDoctor(d), nil
		}
	}
	return nil, notFound("get doctor by user")
}

func (r *doctorRepository) List(_ context.Context) ([]*model.Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Doctor, 0, len(r.doctors))
	for _, d := range r.doctors {
		out = append(out, copyDoctor(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *doctorRepository) Update(_ context.Context, d *model.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.doctors[d.ID]; !ok {
		return notFound("update doctor")
	}
	d.UpdatedAt = now()
	r.doctors[d.ID] = *copyDoctor(*d)
	return nil
}

// services

type serviceRepository struct{ *db }

func (r *serviceRepository) Create(_ context.Context, s *model.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.services {
		if existing.Slug == s.Slug {
			return duplicate("create service")
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	t := now()
	s.CreatedAt, s.UpdatedAt = t, t
	r.services[s.ID] = *s
	return nil
}

func (r *serviceRepository) GetActiveBySlug(_ context.Context, slug string) (*model.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.services {
		if s.Slug == slug && s.Active {
			s := s
			return &s, nil
		}
	}
	return nil, notFound("get service by slug")
}

func (r *serviceRepository) SlugExists(_ context.Context, slug string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.services {
		if s.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *serviceRepository) filter(keep func(model.Service) bool, less func(a, b *model.Service) bool) []*model.Service {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Service
	for _, s := range r.services {
		if keep(s) {
			s := s
			out = append(out, &s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func active(s model.Service) bool { return s.Active }

func (r *serviceRepository) ListActive(_ context.Context) ([]*model.Service, error) {
	return r.filter(active, func(a, b *model.Service) bool { return a.UpdatedAt.After(b.UpdatedAt) }), nil
}

func (r *serviceRepository) ListNewest(_ context.Context, limit int) ([]*model.Service, error) {
	out := r.filter(active, func(a, b *model.Service) bool { return a.CreatedAt.After(b.CreatedAt) })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *serviceRepository) List(_ context.Context) ([]*model.Service, error) {
	return r.filter(func(model.Service) bool { return true },
		func(a, b *model.Service) bool { return a.Title < b.Title }), nil
}

// appointments

type appointmentRepository struct{ *db }

func (r *appointmentRepository) Create(_ context.Context, a *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now()
	}
	if a.Status == "" {
		a.Status = model.AppointmentStatusPending
	}
	r.appointments[a.ID] = *a
	return nil
}

func (r *appointmentRepository) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil, notFound("get appointment")
	}
	return &a, nil
}

func clockOf(a *model.Appointment) string { return a.Time.Format("15:04:05") }

func byDateTime(out []*model.Appointment, desc bool) {
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date) != desc
		}
		return (clockOf(a) < clockOf(b)) != desc
	})
}

func (r *appointmentRepository) collect(keep func(*model.Appointment) bool) []*model.Appointment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Appointment
	for _, a := range r.appointments {
		a := a
		if keep(&a) {
			out = append(out, &a)
		}
	}
	return out
}

func (r *appointmentRepository) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]*model.Appointment, error) {
	out := r.collect(func(a *model.Appointment) bool { return a.DoctorID == doctorID })
	byDateTime(out, false)
	return out, nil
}

func (r *appointmentRepository) ListForPatient(_ context.Context, f model.AppointmentFilter) ([]*model.Appointment, error) {
	out := r.collect(func(a *model.Appointment) bool {
		userID, profileID, contact := model.SplitPatientRef(a.Patient)
		switch {
		case f.Email != "" && strings.EqualFold(contact.Email, f.Email):
			return true
		case f.UserID != nil && userID != nil && *userID == *f.UserID:
			return true
		case f.ProfileID != nil && profileID != nil && *profileID == *f.ProfileID:
			return true
		}
		return false
	})
	byDateTime(out, false)
	return out, nil
}

func (r *appointmentRepository) ListAll(_ context.Context) ([]*model.Appointment, error) {
	out := r.collect(func(*model.Appointment) bool { return true })
	byDateTime(out, true)
	return out, nil
}

func (r *appointmentRepository) SetStatus(_ context.Context, ids []uuid.UUID, status model.AppointmentStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		a, ok := r.appointments[id]
		if !ok {
			continue
		}
		a.Status = status
		r.appointments[id] = a
		n++
	}
	return n, nil
}

// patients

type patientRepository struct{ *db }

func (r *patientRepository) Create(_ context.Context, p *model.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now()
	}
	r.patients[p.ID] = *p
	return nil
}

func (r *patientRepository) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, notFound("get patient")
	}
	return &p, nil
}

func (r *patientRepository) Update(_ context.Context, p *model.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.patients[p.ID]
	if !ok {
		return notFound("update patient")
	}
	p.CreatedAt = existing.CreatedAt
	r.patients[p.ID] = *p
	return nil
}

func (r *patientRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[id]; !ok {
		return notFound("delete patient")
	}
	delete(r.patients, id)
	return nil
}

func (r *patientRepository) List(_ context.Context) ([]*model.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Patient, 0, len(r.patients))
	for _, p := range r.patients {
		p := p
		out = append(out, &p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// contacts

type contactRepository struct{ *db }

func (r *contactRepository) Create(_ context.Context, c *model.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now()
	}
	r.contacts[c.ID] = *c
	return nil
}

func (r *contactRepository) Get(_ context.Context, id uuid.UUID) (*model.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.contacts[id]
	if !ok {
		return nil, notFound("get contact")
	}
	return &c, nil
}

func (r *contactRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.contacts[id]; !ok {
		return notFound("delete contact")
	}
	delete(r.contacts, id)
	return nil
}

func (r *contactRepository) List(_ context.Context) ([]*model.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Contact, 0, len(r.contacts))
	for _, c := range r.contacts {
		c := c
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// lab samples

type labSampleRepository struct{ *db }

func (r *labSampleRepository) Create(_ context.Context, s *model.LabSample) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.labSamples {
		if strings.EqualFold(existing.SampleID, s.SampleID) {
			return duplicate("create lab sample")
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now()
	}
	if s.Status == "" {
		s.Status = model.DefaultLabSampleStatus
	}
	r.labSamples[s.ID] = *s
	return nil
}

func (r *labSampleRepository) GetBySampleID(_ context.Context, sampleID string) (*model.LabSample, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.labSamples {
		if strings.EqualFold(s.SampleID, sampleID) {
			s := s
			return &s, nil
		}
	}
	return nil, notFound("get lab sample")
}

// facility

type facilityRepository struct{ *db }

func (r *facilityRepository) Get(_ context.Context) (*model.Facility, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.facility == nil {
		return nil, notFound("get facility")
	}
	f := *r.facility
	return &f, nil
}

func (r *facilityRepository) Save(_ context.Context, f *model.Facility) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f.ID = 1
	f.UpdatedAt = now()
	saved := *f
	r.facility = &saved
	return nil
}

// notifications

type notificationRepository struct{ *db }

func (r *notificationRepository) Create(_ context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if _, ok := r.notifications[n.ID]; ok {
		return nil
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now()
	}
	r.notifications[n.ID] = *n
	return nil
}

func (r *notificationRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]*model.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			n := n
			out = append(out, &n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
