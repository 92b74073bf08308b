package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

type profileRepository struct {
	BaseRepository
}

func NewProfileRepository(base BaseRepository) repository.ProfileRepository {
	return &profileRepository{base}
}

const profileColumns = `id, user_id, date_of_birth, gender, phone, address_line1, address_line2,
	city, state_province, postal_code, country, emergency_contact_name,
	emergency_contact_relation, emergency_contact_phone, blood_type, allergies,
	medications, medical_conditions, insurance_provider, insurance_number,
	profile_photo_url, date_registered, last_updated`

func (r *profileRepository) Create(ctx context.Context, p *model.PatientProfile) error {
	query := `INSERT INTO patient_profiles (` + profileColumns + `)
		VALUES (:id, :user_id, :date_of_birth, :gender, :phone, :address_line1, :address_line2,
			:city, :state_province, :postal_code, :country, :emergency_contact_name,
			:emergency_contact_relation, :emergency_contact_phone, :blood_type, :allergies,
			:medications, :medical_conditions, :insurance_provider, :insurance_number,
			:profile_photo_url, :date_registered, :last_updated)`

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC()
	if p.DateRegistered.IsZero() {
		p.DateRegistered = now
	}
	p.LastUpdated = now

	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return wrapErr("create patient profile", err)
	}
	return nil
}

func (r *profileRepository) Get(ctx context.Context, id uuid.UUID) (*model.PatientProfile, error) {
	var p model.PatientProfile
	if err := r.db.GetContext(ctx, &p, `SELECT `+profileColumns+` FROM patient_profiles WHERE id = $1`, id); err != nil {
		return nil, wrapErr("get patient profile", err)
	}
	return &p, nil
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.PatientProfile, error) {
	var p model.PatientProfile
	if err := r.db.GetContext(ctx, &p, `SELECT `+profileColumns+` FROM patient_profiles WHERE user_id = $1`, userID); err != nil {
		return nil, wrapErr("get patient profile by user", err)
	}
	return &p, nil
}

func (r *profileRepository) Update(ctx context.Context, p *model.PatientProfile) error {
	query := `
		UPDATE patient_profiles SET
			date_of_birth = :date_of_birth, gender = :gender, phone = :phone,
			address_line1 = :address_line1, address_line2 = :address_line2, city = :city,
			state_province = :state_province, postal_code = :postal_code, country = :country,
			emergency_contact_name = :emergency_contact_name,
			emergency_contact_relation = :emergency_contact_relation,
			emergency_contact_phone = :emergency_contact_phone,
			blood_type = :blood_type, allergies = :allergies, medications = :medications,
			medical_conditions = :medical_conditions, insurance_provider = :insurance_provider,
			insurance_number = :insurance_number, profile_photo_url = :profile_photo_url,
			last_updated = :last_updated
		WHERE id = :id`

	p.LastUpdated = time.Now().UTC()
	res, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return wrapErr("update patient profile", err)
	}
	return expectRows("update patient profile", res)
}
