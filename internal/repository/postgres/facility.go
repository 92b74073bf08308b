package postgres

import (
	"context"
	"time"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

type facilityRepository struct {
	BaseRepository
}

func NewFacilityRepository(base BaseRepository) repository.FacilityRepository {
	return &facilityRepository{base}
}

// The facility table holds at most one row, id 1.
const facilityID = 1

func (r *facilityRepository) Get(ctx context.Context) (*model.Facility, error) {
	var f model.Facility
	if err := r.db.GetContext(ctx, &f, `
		SELECT id, name, address, phone, email, emergency_phone, description, logo_url, updated_at
		FROM facility WHERE id = $1`, facilityID); err != nil {
		return nil, wrapErr("get facility", err)
	}
	return &f, nil
}

func (r *facilityRepository) Save(ctx context.Context, f *model.Facility) error {
	f.ID = facilityID
	f.UpdatedAt = time.Now().UTC()
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO facility (id, name, address, phone, email, emergency_phone, description, logo_url, updated_at)
		VALUES (:id, :name, :address, :phone, :email, :emergency_phone, :description, :logo_url, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, address = EXCLUDED.address, phone = EXCLUDED.phone,
			email = EXCLUDED.email, emergency_phone = EXCLUDED.emergency_phone,
			description = EXCLUDED.description, logo_url = EXCLUDED.logo_url,
			updated_at = EXCLUDED.updated_at`, f)
	if err != nil {
		return wrapErr("save facility", err)
	}
	return nil
}
