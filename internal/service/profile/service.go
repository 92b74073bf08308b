// Package profile manages the one-to-one patient profile of a user.
package profile

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

const MsgEmergencyContactRequired = "Please provide at least one emergency contact field."

type Service struct {
	repo repository.ProfileRepository
}

func NewService(repo repository.ProfileRepository) *Service {
	return &Service{repo: repo}
}

// GetOrCreate returns the profile for userID, creating an empty one on
// first access. A concurrent create is resolved by re-reading.
func (s *Service) GetOrCreate(ctx context.Context, userID uuid.UUID) (*model.PatientProfile, bool, error) {
	p, err := s.repo.GetByUserID(ctx, userID)
	if err == nil {
		return p, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to get profile: %w", err)
	}

	p = model.NewPatientProfile(userID)
	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			existing, getErr := s.repo.GetByUserID(ctx, userID)
			if getErr != nil {
				return nil, false, fmt.Errorf("failed to get profile: %w", getErr)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("failed to create profile: %w", err)
	}
	return p, true, nil
}

// AfterCreate gives every new patient exactly one profile.
func (s *Service) AfterCreate(ctx context.Context, user *model.User) error {
	if user.Role != model.RolePatient {
		return nil
	}
	_, _, err := s.GetOrCreate(ctx, user.ID)
	return err
}

// Get looks a profile up by its own id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.PatientProfile, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient profile", err)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// FindByUser returns nil without error when the user has no profile.
func (s *Service) FindByUser(ctx context.Context, userID uuid.UUID) (*model.PatientProfile, error) {
	p, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, userID uuid.UUID, form model.ProfileForm) (*model.PatientProfile, error) {
	if form.DateOfBirth != "" {
		if _, err := model.ParseDate(form.DateOfBirth); err != nil {
			return nil, apperrors.BadRequest("Enter a valid date.", err)
		}
	}
	p, _, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	form.Apply(p)
	if p.Country == "" {
		p.Country = model.DefaultCountry
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return p, nil
}

// UpdateEmergencyContact requires at least one of the three fields.
func (s *Service) UpdateEmergencyContact(ctx context.Context, userID uuid.UUID, form model.EmergencyContactForm) (*model.PatientProfile, error) {
	name := strings.TrimSpace(form.Name)
	relation := strings.TrimSpace(form.Relation)
	phone := strings.TrimSpace(form.Phone)
	if name == "" && relation == "" && phone == "" {
		return nil, apperrors.BadRequest(MsgEmergencyContactRequired, nil)
	}

	p, _, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.EmergencyName = name
	p.EmergencyRelation = relation
	p.EmergencyPhone = phone
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update emergency contact: %w", err)
	}
	return p, nil
}

func (s *Service) MedicalHistory(ctx context.Context, userID uuid.UUID) (model.MedicalHistory, error) {
	p, _, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return model.MedicalHistory{}, err
	}
	return p.MedicalHistory(), nil
}
