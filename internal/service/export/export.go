// Package export writes patient records as CSV.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jwalitptl/hospital-api/internal/model"
)

const PatientsFilename = "patients.csv"

var PatientsHeader = []string{"id", "first_name", "last_name", "age", "email", "phone_number", "location", "created_at"}

// PatientLister is satisfied by the patient service.
type PatientLister interface {
	List(ctx context.Context) ([]*model.Patient, error)
}

type Service struct {
	patients PatientLister
}

func NewService(patients PatientLister) *Service {
	return &Service{patients: patients}
}

// WritePatients writes the header and one row per patient, newest first.
// Missing values are written as empty cells.
func (s *Service) WritePatients(ctx context.Context, w io.Writer) error {
	patients, err := s.patients.List(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(PatientsHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, p := range patients {
		if err := cw.Write(patientRow(p)); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func patientRow(p *model.Patient) []string {
	age := ""
	if p.Age != nil {
		age = strconv.Itoa(*p.Age)
	}
	created := ""
	if !p.CreatedAt.IsZero() {
		created = p.CreatedAt.UTC().Format(time.RFC3339)
	}
	return []string{
		p.ID.String(),
		p.FirstName,
		p.LastName,
		age,
		p.Email,
		p.PhoneNumber,
		p.Location,
		created,
	}
}
