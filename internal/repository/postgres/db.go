package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/jwalitptl/hospital-api/internal/config"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

func NewDB(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return db, nil
}

// NewStore wires every postgres repository onto db.
func NewStore(db *sqlx.DB) *repository.Store {
	base := NewBaseRepository(db)
	return &repository.Store{
		Users:         NewUserRepository(base),
		Profiles:      NewProfileRepository(base),
		Doctors:       NewDoctorRepository(base),
		Services:      NewServiceRepository(base),
		Appointments:  NewAppointmentRepository(base),
		Patients:      NewPatientRepository(base),
		Contacts:      NewContactRepository(base),
		LabSamples:    NewLabSampleRepository(base),
		Facility:      NewFacilityRepository(base),
		Notifications: NewNotificationRepository(base),
	}
}
