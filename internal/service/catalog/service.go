// Package catalog serves the public service pages, symptom triage and lab
// sample tracking.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
)

const (
	LandingServiceCount = 6

	SlugGeneralConsultation = "general-consultation"
	SlugEmergencyCare       = "emergency-care"
	SlugLabServices         = "lab-services"

	MsgNoSymptoms = "No symptoms selected; please select at least one symptom."
)

// TriageOptions maps symptom groups to departments, in display order.
var TriageOptions = []model.TriageOption{
	{Key: "respiratory", Label: "Fever, cough, sore throat", Department: "Respiratory / General Physician"},
	{Key: "dental", Label: "Tooth pain or bleeding gums", Department: "Dentistry"},
	{Key: "cardiac", Label: "Chest pain or shortness of breath", Department: "Cardiology / Emergency"},
	{Key: "abdominal", Label: "Abdominal pain, nausea", Department: "General Surgery / Gastroenterology"},
}

// fallbacks back the detail page for well-known slugs until a matching
// service is published.
var fallbacks = map[string]model.ServiceDetail{
	SlugGeneralConsultation: {
		Slug:        SlugGeneralConsultation,
		Title:       "General Consultation",
		Description: "Meet our general physicians for routine check-ups, diagnosis and primary care.",
		Content: []string{
			"If you have symptoms such as fever, cough, persistent pain, or general unwell feeling, book a general consultation.",
			"Our physicians will assess symptoms and refer you to specialists when necessary.",
		},
		TriageOptions: TriageOptions,
	},
	SlugEmergencyCare: {
		Slug:        SlugEmergencyCare,
		Title:       "Emergency Care",
		Description: "24/7 emergency department with rapid response and ambulance services.",
		Content: []string{
			"For life-threatening emergencies call our ambulance immediately.",
			"Our emergency team stabilizes and routes patients to the correct specialty.",
		},
		Phone: "+1234567890",
	},
	SlugLabServices: {
		Slug:        SlugLabServices,
		Title:       "Laboratory Services",
		Description: "Comprehensive lab testing with fast turnaround times.",
		Content: []string{
			"We provide blood tests, urine tests, microbiology, and imaging support.",
			"Use the sample tracking box below to check a sample status (sample tracking is a placeholder).",
		},
	},
}

type Service struct {
	services   repository.ServiceRepository
	labSamples repository.LabSampleRepository
}

func NewService(services repository.ServiceRepository, labSamples repository.LabSampleRepository) *Service {
	return &Service{
		services:   services,
		labSamples: labSamples,
	}
}

// ListActive returns published services, most recently updated first.
func (s *Service) ListActive(ctx context.Context) ([]*model.Service, error) {
	list, err := s.services.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return list, nil
}

// ListAll includes inactive services.
func (s *Service) ListAll(ctx context.Context) ([]*model.Service, error) {
	list, err := s.services.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return list, nil
}

// Newest returns the services featured on the landing page.
func (s *Service) Newest(ctx context.Context) ([]*model.Service, error) {
	list, err := s.services.ListNewest(ctx, LandingServiceCount)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return list, nil
}

// Create stores a service. An empty slug is derived from the title and
// suffixed -1, -2, ... until it is unique.
func (s *Service) Create(ctx context.Context, req model.CreateServiceRequest) (*model.Service, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.BadRequest("Title is required.", nil)
	}
	svc := &model.Service{
		Title:            title,
		Slug:             strings.TrimSpace(req.Slug),
		ShortDescription: req.ShortDescription,
		Description:      req.Description,
		ImageURL:         req.ImageURL,
		Active:           true,
	}
	if req.Active != nil {
		svc.Active = *req.Active
	}
	if svc.Slug == "" {
		slug, err := s.uniqueSlug(ctx, title)
		if err != nil {
			return nil, err
		}
		svc.Slug = slug
	}

	if err := s.services.Create(ctx, svc); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict(fmt.Sprintf(`Service with slug "%s" already exists.`, svc.Slug), err)
		}
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return svc, nil
}

func (s *Service) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := Slugify(title)
	if base == "" {
		base = "service"
	}
	slug := base
	for n := 1; ; n++ {
		exists, err := s.services.SlugExists(ctx, slug)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
}

// Detail resolves a slug to a published service or a built-in fallback.
func (s *Service) Detail(ctx context.Context, slug string) (*model.ServiceDetail, error) {
	svc, err := s.services.GetActiveBySlug(ctx, slug)
	switch {
	case err == nil:
		return fromService(svc), nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("failed to get service: %w", err)
	}

	fb, ok := fallbacks[slug]
	if !ok {
		return nil, apperrors.NotFound("service", err)
	}
	fb.Fallback = true
	fb.Content = append([]string(nil), fb.Content...)
	return &fb, nil
}

func fromService(svc *model.Service) *model.ServiceDetail {
	d := &model.ServiceDetail{
		Slug:          svc.Slug,
		Title:         svc.Title,
		Description:   svc.ShortDescription,
		Service:       svc,
		TriageOptions: TriageOptions,
	}
	if d.Description == "" {
		d.Description = svc.Description
	}
	if svc.Description != "" {
		d.Content = []string{svc.Description}
	}
	return d
}

// Submit handles the interactive widgets on a detail page: the symptom
// checker on general consultation and sample tracking on lab services.
func (s *Service) Submit(ctx context.Context, slug string, req model.TriageRequest) (*model.ServiceDetail, error) {
	d, err := s.Detail(ctx, slug)
	if err != nil {
		return nil, err
	}
	switch slug {
	case SlugGeneralConsultation:
		if req.TriageSubmit != "" {
			d.TriageResult = Triage(req.Symptoms)
		}
	case SlugLabServices:
		id := strings.TrimSpace(req.SampleID)
		if id == "" {
			break
		}
		if d.Fallback {
			d.SampleResult = fmt.Sprintf(`No tracking record found for sample id "%s" (placeholder).`, id)
			break
		}
		res, err := s.LookupSample(ctx, id)
		if err != nil {
			return nil, err
		}
		d.SampleResult = res
	}
	return d, nil
}

// Triage recommends departments for the selected symptom keys. Unknown
// keys are ignored.
func Triage(symptoms []string) string {
	seen := map[string]struct{}{}
	for _, key := range symptoms {
		for _, opt := range TriageOptions {
			if opt.Key == key {
				seen[opt.Department] = struct{}{}
			}
		}
	}
	if len(seen) == 0 {
		return MsgNoSymptoms
	}
	depts := make([]string, 0, len(seen))
	for d := range seen {
		depts = append(depts, d)
	}
	sort.Strings(depts)
	return "Recommended departments: " + strings.Join(depts, ", ")
}

// LookupSample reports the tracking status of a lab sample.
func (s *Service) LookupSample(ctx context.Context, sampleID string) (string, error) {
	sample, err := s.labSamples.GetBySampleID(ctx, sampleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Sprintf(`No tracking record found for sample id "%s".`, sampleID), nil
		}
		return "", fmt.Errorf("failed to get lab sample: %w", err)
	}
	return fmt.Sprintf("Sample %s: status=%s. Notes: %s", sample.SampleID, sample.Status, sample.Notes), nil
}

func (s *Service) CreateLabSample(ctx context.Context, req model.CreateLabSampleRequest) (*model.LabSample, error) {
	sample := &model.LabSample{
		Base:     model.NewBase(),
		SampleID: strings.TrimSpace(req.SampleID),
		Status:   strings.TrimSpace(req.Status),
		Notes:    req.Notes,
	}
	if sample.SampleID == "" {
		return nil, apperrors.BadRequest("Sample id is required.", nil)
	}
	if sample.Status == "" {
		sample.Status = model.DefaultLabSampleStatus
	}
	if err := s.labSamples.Create(ctx, sample); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict(fmt.Sprintf(`Lab sample "%s" already exists.`, sample.SampleID), err)
		}
		return nil, fmt.Errorf("failed to create lab sample: %w", err)
	}
	return sample, nil
}
