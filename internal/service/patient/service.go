package patient

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

// Service manages the admin-kept patient records.
type Service struct {
	repo repository.PatientRepository
}

func NewService(repo repository.PatientRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, form model.PatientForm) (*model.Patient, error) {
	if err := validate(form); err != nil {
		return nil, err
	}
	p := &model.Patient{Base: model.NewBase()}
	form.Apply(p)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, form model.PatientForm) (*model.Patient, error) {
	if err := validate(form); err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	form.Apply(p)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("patient", err)
		}
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	return nil
}

// List returns newest first.
func (s *Service) List(ctx context.Context) ([]*model.Patient, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return list, nil
}

func validate(form model.PatientForm) error {
	if strings.TrimSpace(form.FirstName) == "" || strings.TrimSpace(form.LastName) == "" {
		return apperrors.BadRequest("First and last name are required.", nil)
	}
	if form.Age != nil && *form.Age < 0 {
		return apperrors.BadRequest("Age cannot be negative.", nil)
	}
	return nil
}
