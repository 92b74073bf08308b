package model

import (
	"github.com/google/uuid"
)

// Service is a hospital offering listed on the public site.
type Service struct {
	ID               uuid.UUID `json:"id" db:"id"`
	Title            string    `json:"title" db:"title"`
	Slug             string    `json:"slug" db:"slug"`
	ShortDescription string    `json:"short_description" db:"short_description"`
	Description      string    `json:"description" db:"description"`
	ImageURL         string    `json:"image_url" db:"image_url"`
	Active           bool      `json:"active" db:"active"`
	Timestamps
}

type CreateServiceRequest struct {
	Title            string `json:"title" form:"title" binding:"required,max=200"`
	Slug             string `json:"slug" form:"slug" binding:"omitempty,max=200"`
	ShortDescription string `json:"short_description" form:"short_description"`
	Description      string `json:"description" form:"description"`
	ImageURL         string `json:"image_url" form:"image_url" binding:"omitempty,url"`
	Active           *bool  `json:"active" form:"active"`
}

// ServiceDetail is what the public detail page shows. Fallback entries
// carry no id.
type ServiceDetail struct {
	Slug          string         `json:"slug"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Content       []string       `json:"content"`
	Phone         string         `json:"phone,omitempty"`
	TriageOptions []TriageOption `json:"triage_options,omitempty"`
	Service       *Service       `json:"service,omitempty"`
	Fallback      bool           `json:"fallback"`
	TriageResult  string         `json:"triage_result,omitempty"`
	SampleResult  string         `json:"sample_result,omitempty"`
}

// TriageOption maps a symptom group to recommended departments.
type TriageOption struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	Department string `json:"department"`
}

type TriageRequest struct {
	TriageSubmit string   `form:"triage_submit" json:"triage_submit"`
	Symptoms     []string `form:"symptoms" json:"symptoms"`
	SampleID     string   `form:"sample_id" json:"sample_id"`
}
