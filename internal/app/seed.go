package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

var seedDoctors = []model.Doctor{
	{Name: "John Mwangi", Specialty: "General Physician", Description: "Experienced in routine check-ups, diagnosis, and preventive care."},
	{Name: "Sarah Achieng", Specialty: "Dentist", Description: "Specialist in dental check-ups, cleaning, and oral health treatment."},
	{Name: "Kelvin Otieno", Specialty: "Cardiologist", Description: "Expert in heart health, cardiovascular diagnosis, and treatment."},
}

var seedServices = []model.CreateServiceRequest{
	{
		Slug:             "general-consultation",
		Title:            "General Consultation",
		ShortDescription: "Professional health check-ups and diagnosis.",
		Description:      "Meet our general physicians for routine check-ups, diagnosis and primary care.",
	},
	{
		Slug:             "emergency-care",
		Title:            "Emergency Care",
		ShortDescription: "24/7 emergency services with rapid response.",
		Description:      "24/7 emergency department with rapid response and ambulance services.",
	},
	{
		Slug:             "lab-services",
		Title:            "Laboratory Services",
		ShortDescription: "Accurate lab tests and medical diagnostics.",
		Description:      "Comprehensive lab testing including blood tests, urine, microbiology and imaging.",
	},
}

var seedSample = model.CreateLabSampleRequest{
	SampleID: "SAMPLE123",
	Status:   "Processing",
	Notes:    "Example sample created for testing.",
}

// SeedReport counts what Seed created. Existing rows are left alone.
type SeedReport struct {
	Doctors    int `json:"doctors"`
	Services   int `json:"services"`
	LabSamples int `json:"lab_samples"`
}

// Seed loads the sample directory, services and lab sample. It can be run
// repeatedly.
func Seed(ctx context.Context, store *repository.Store, svcs *Services, logger zerolog.Logger) (SeedReport, error) {
	var report SeedReport

	existing, err := svcs.Doctors.List(ctx)
	if err != nil {
		return report, err
	}
	names := make(map[string]struct{}, len(existing))
	for _, d := range existing {
		names[d.Name] = struct{}{}
	}
	for _, d := range seedDoctors {
		if _, ok := names[d.Name]; ok {
			logger.Info().Str("doctor", d.Name).Msg("doctor already exists")
			continue
		}
		d := d
		if err := store.Doctors.Create(ctx, &d); err != nil {
			return report, fmt.Errorf("failed to seed doctor %s: %w", d.Name, err)
		}
		report.Doctors++
		logger.Info().Str("doctor", d.Name).Msg("created doctor")
	}

	for _, req := range seedServices {
		exists, err := store.Services.SlugExists(ctx, req.Slug)
		if err != nil {
			return report, fmt.Errorf("failed to check service %s: %w", req.Slug, err)
		}
		if exists {
			continue
		}
		if _, err := svcs.Catalog.Create(ctx, req); err != nil {
			return report, err
		}
		report.Services++
		logger.Info().Str("slug", req.Slug).Msg("created service")
	}

	_, err = store.LabSamples.GetBySampleID(ctx, seedSample.SampleID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		if _, err := svcs.Catalog.CreateLabSample(ctx, seedSample); err != nil {
			return report, err
		}
		report.LabSamples++
	case err != nil:
		return report, fmt.Errorf("failed to check lab sample: %w", err)
	}

	if _, err := svcs.Facility.GetOrCreate(ctx); err != nil {
		return report, err
	}
	return report, nil
}
