package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

type doctorRepository struct {
	BaseRepository
}

func NewDoctorRepository(base BaseRepository) repository.DoctorRepository {
	return &doctorRepository{base}
}

const doctorColumns = `id, user_id, name, specialty, description, image_url, created_at, updated_at`

func (r *doctorRepository) Create(ctx context.Context, d *model.Doctor) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	now := time.Now().UTC()
	d.CreatedAt, d.UpdatedAt = now, now

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO doctors (`+doctorColumns+`)
			VALUES (:id, :user_id, :name, :specialty, :description, :image_url, :created_at, :updated_at)`, d)
		if err != nil {
			return wrapErr("create doctor", err)
		}
		return replaceServices(ctx, tx, d.ID, d.ServiceIDs)
	})
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	var d model.Doctor
	if err := r.db.GetContext(ctx, &d, `SELECT `+doctorColumns+` FROM doctors WHERE id = $1`, id); err != nil {
		return nil, wrapErr("get doctor", err)
	}
	if err := r.loadServices(ctx, []*model.Doctor{&d}); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *doctorRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Doctor, error) {
	var d model.Doctor
	if err := r.db.GetContext(ctx, &d, `SELECT `+doctorColumns+` FROM doctors WHERE user_id = $1`, userID); err != nil {
		return nil, wrapErr("get doctor by user", err)
	}
	if err := r.loadServices(ctx, []*model.Doctor{&d}); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *doctorRepository) List(ctx context.Context) ([]*model.Doctor, error) {
	var doctors []*model.Doctor
	if err := r.db.SelectContext(ctx, &doctors, `SELECT `+doctorColumns+` FROM doctors ORDER BY name`); err != nil {
		return nil, wrapErr("list doctors", err)
	}
	if err := r.loadServices(ctx, doctors); err != nil {
		return nil, err
	}
	return doctors, nil
}

func (r *doctorRepository) Update(ctx context.Context, d *model.Doctor) error {
	d.UpdatedAt = time.Now().UTC()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.NamedExecContext(ctx, `
			UPDATE doctors SET
				user_id = :user_id, name = :name, specialty = :specialty,
				description = :description, image_url = :image_url, updated_at = :updated_at
			WHERE id = :id`, d)
		if err != nil {
			return wrapErr("update doctor", err)
		}
		if err := expectRows("update doctor", res); err != nil {
			return err
		}
		return replaceServices(ctx, tx, d.ID, d.ServiceIDs)
	})
}

func replaceServices(ctx context.Context, tx *sqlx.Tx, doctorID uuid.UUID, serviceIDs []uuid.UUID) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM doctor_services WHERE doctor_id = $1`, doctorID); err != nil {
		return fmt.Errorf("failed to clear doctor services: %w", err)
	}
	if len(serviceIDs) == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO doctor_services (doctor_id, service_id)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT DO NOTHING`, doctorID, pq.Array(uuidStrings(serviceIDs)))
	if err != nil {
		return fmt.Errorf("failed to set doctor services: %w", err)
	}
	return nil
}

func (r *doctorRepository) loadServices(ctx context.Context, doctors []*model.Doctor) error {
	if len(doctors) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*model.Doctor, len(doctors))
	ids := make([]uuid.UUID, 0, len(doctors))
	for _, d := range doctors {
		d.ServiceIDs = []uuid.UUID{}
		byID[d.ID] = d
		ids = append(ids, d.ID)
	}

	var links []struct {
		DoctorID  uuid.UUID `db:"doctor_id"`
		ServiceID uuid.UUID `db:"service_id"`
	}
	if err := r.db.SelectContext(ctx, &links, `
		SELECT doctor_id, service_id FROM doctor_services
		WHERE doctor_id = ANY($1::uuid[])
		ORDER BY service_id`, pq.Array(uuidStrings(ids))); err != nil {
		return wrapErr("load doctor services", err)
	}
	for _, l := range links {
		if d, ok := byID[l.DoctorID]; ok {
			d.ServiceIDs = append(d.ServiceIDs, l.ServiceID)
		}
	}
	return nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
