// Package facility manages the single facility record.
package facility

import (
	"context"
	"errors"
	"fmt"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
)

type Service struct {
	repo repository.FacilityRepository
}

func NewService(repo repository.FacilityRepository) *Service {
	return &Service{repo: repo}
}

// Get returns nil when no facility has been saved yet.
func (s *Service) Get(ctx context.Context) (*model.Facility, error) {
	f, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get facility: %w", err)
	}
	return f, nil
}

// GetOrCreate returns the facility, saving a default one first if needed.
func (s *Service) GetOrCreate(ctx context.Context) (*model.Facility, error) {
	f, err := s.Get(ctx)
	if err != nil || f != nil {
		return f, err
	}
	f = &model.Facility{ID: 1, Name: model.DefaultFacilityName}
	if err := s.repo.Save(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to save facility: %w", err)
	}
	return f, nil
}

func (s *Service) Update(ctx context.Context, form model.FacilityForm) (*model.Facility, error) {
	if form.Name == "" {
		return nil, apperrors.BadRequest("Name is required.", nil)
	}
	f, err := s.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}
	form.Apply(f)
	if err := s.repo.Save(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to save facility: %w", err)
	}
	return f, nil
}
