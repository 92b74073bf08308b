// Package doctor runs the public directory and the doctor-facing pages.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
)

type Service struct {
	doctors  repository.DoctorRepository
	services repository.ServiceRepository
}

func NewService(doctors repository.DoctorRepository, services repository.ServiceRepository) *Service {
	return &Service{doctors: doctors, services: services}
}

func (s *Service) List(ctx context.Context) ([]*model.Doctor, error) {
	list, err := s.doctors.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	d, err := s.doctors.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("doctor", err)
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return d, nil
}

// ForUser returns the doctor record linked to u, creating one named after
// the user on first access.
func (s *Service) ForUser(ctx context.Context, u *model.User) (*model.Doctor, error) {
	d, err := s.doctors.GetByUserID(ctx, u.ID)
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}

	userID := u.ID
	d = &model.Doctor{ID: uuid.New(), UserID: &userID, Name: u.DisplayName()}
	if err := s.doctors.Create(ctx, d); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return s.doctors.GetByUserID(ctx, u.ID)
		}
		return nil, fmt.Errorf("failed to create doctor: %w", err)
	}
	return d, nil
}

// UpdateProfile overwrites the doctor's public details and replaces the
// set of services offered. Only active services may be picked.
func (s *Service) UpdateProfile(ctx context.Context, u *model.User, form model.DoctorProfileForm) (*model.Doctor, error) {
	name := strings.TrimSpace(form.Name)
	if name == "" {
		return nil, apperrors.BadRequest("Name is required.", nil)
	}
	serviceIDs, err := s.activeServiceIDs(ctx, form.Services)
	if err != nil {
		return nil, err
	}

	d, err := s.ForUser(ctx, u)
	if err != nil {
		return nil, err
	}
	d.Name = name
	d.Specialty = strings.TrimSpace(form.Specialty)
	d.Description = form.Description
	d.ImageURL = strings.TrimSpace(form.ImageURL)
	d.ServiceIDs = serviceIDs
	if err := s.doctors.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to update doctor: %w", err)
	}
	return d, nil
}

func (s *Service) activeServiceIDs(ctx context.Context, raw []string) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	active, err := s.services.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	known := make(map[uuid.UUID]struct{}, len(active))
	for _, svc := range active {
		known[svc.ID] = struct{}{}
	}

	ids := make([]uuid.UUID, 0, len(raw))
	seen := map[uuid.UUID]struct{}{}
	for _, r := range raw {
		id, err := uuid.Parse(strings.TrimSpace(r))
		if err != nil {
			return nil, apperrors.BadRequest(fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", r), err)
		}
		if _, ok := known[id]; !ok {
			return nil, apperrors.BadRequest(fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", r), nil)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}
