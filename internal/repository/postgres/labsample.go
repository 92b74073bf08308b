package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

type labSampleRepository struct {
	BaseRepository
}

func NewLabSampleRepository(base BaseRepository) repository.LabSampleRepository {
	return &labSampleRepository{base}
}

func (r *labSampleRepository) Create(ctx context.Context, s *model.LabSample) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	if s.Status == "" {
		s.Status = model.DefaultLabSampleStatus
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO lab_samples (id, sample_id, status, notes, created_at) VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.SampleID, s.Status, s.Notes, s.CreatedAt)
	if err != nil {
		return wrapErr("create lab sample", err)
	}
	return nil
}

func (r *labSampleRepository) GetBySampleID(ctx context.Context, sampleID string) (*model.LabSample, error) {
	var s model.LabSample
	if err := r.db.GetContext(ctx, &s, `
		SELECT id, sample_id, status, notes, created_at FROM lab_samples
		WHERE LOWER(sample_id) = LOWER($1)`, sampleID); err != nil {
		return nil, wrapErr("get lab sample", err)
	}
	return &s, nil
}
