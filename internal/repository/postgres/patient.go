package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(base BaseRepository) repository.PatientRepository {
	return &patientRepository{base}
}

const patientColumns = `id, first_name, last_name, age, email, phone_number, location, created_at`

func (r *patientRepository) Create(ctx context.Context, p *model.Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO patients (`+patientColumns+`)
		VALUES (:id, :first_name, :last_name, :age, :email, :phone_number, :location, :created_at)`, p)
	if err != nil {
		return wrapErr("create patient", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	var p model.Patient
	if err := r.db.GetContext(ctx, &p, `SELECT `+patientColumns+` FROM patients WHERE id = $1`, id); err != nil {
		return nil, wrapErr("get patient", err)
	}
	return &p, nil
}

func (r *patientRepository) Update(ctx context.Context, p *model.Patient) error {
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE patients SET
			first_name = :first_name, last_name = :last_name, age = :age,
			email = :email, phone_number = :phone_number, location = :location
		WHERE id = :id`, p)
	if err != nil {
		return wrapErr("update patient", err)
	}
	return expectRows("update patient", res)
}

func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete patient", err)
	}
	return expectRows("delete patient", res)
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	var patients []*model.Patient
	if err := r.db.SelectContext(ctx, &patients,
		`SELECT `+patientColumns+` FROM patients ORDER BY created_at DESC`); err != nil {
		return nil, wrapErr("list patients", err)
	}
	return patients, nil
}
