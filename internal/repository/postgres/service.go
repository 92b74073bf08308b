package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

type serviceRepository struct {
	BaseRepository
}

func NewServiceRepository(base BaseRepository) repository.ServiceRepository {
	return &serviceRepository{base}
}

const serviceColumns = `id, title, slug, short_description, description, image_url, active, created_at, updated_at`

func (r *serviceRepository) Create(ctx context.Context, s *model.Service) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	now := time.Now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO services (`+serviceColumns+`)
		VALUES (:id, :title, :slug, :short_description, :description, :image_url, :active, :created_at, :updated_at)`, s)
	if err != nil {
		return wrapErr("create service", err)
	}
	return nil
}

func (r *serviceRepository) GetActiveBySlug(ctx context.Context, slug string) (*model.Service, error) {
	var s model.Service
	if err := r.db.GetContext(ctx, &s,
		`SELECT `+serviceColumns+` FROM services WHERE slug = $1 AND active`, slug); err != nil {
		return nil, wrapErr("get service by slug", err)
	}
	return &s, nil
}

func (r *serviceRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM services WHERE slug = $1)`, slug); err != nil {
		return false, wrapErr("check service slug", err)
	}
	return exists, nil
}

func (r *serviceRepository) ListActive(ctx context.Context) ([]*model.Service, error) {
	var services []*model.Service
	if err := r.db.SelectContext(ctx, &services,
		`SELECT `+serviceColumns+` FROM services WHERE active ORDER BY updated_at DESC`); err != nil {
		return nil, wrapErr("list active services", err)
	}
	return services, nil
}

func (r *serviceRepository) ListNewest(ctx context.Context, limit int) ([]*model.Service, error) {
	var services []*model.Service
	if err := r.db.SelectContext(ctx, &services,
		`SELECT `+serviceColumns+` FROM services WHERE active ORDER BY created_at DESC LIMIT $1`, limit); err != nil {
		return nil, wrapErr("list newest services", err)
	}
	return services, nil
}

func (r *serviceRepository) List(ctx context.Context) ([]*model.Service, error) {
	var services []*model.Service
	if err := r.db.SelectContext(ctx, &services,
		`SELECT `+serviceColumns+` FROM services ORDER BY title`); err != nil {
		return nil, wrapErr("list services", err)
	}
	return services, nil
}
