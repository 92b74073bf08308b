package model

import (
	"time"

	"github.com/google/uuid"
)

type PatientProfile struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserID     uuid.UUID  `json:"user_id" db:"user_id"`
	BirthDate  *time.Time `json:"date_of_birth" db:"date_of_birth"`
	Gender     string     `json:"gender" db:"gender"`
	Phone      string     `json:"phone" db:"phone"`
	Address1   string     `json:"address_line1" db:"address_line1"`
	Address2   string     `json:"address_line2" db:"address_line2"`
	City       string     `json:"city" db:"city"`
	State      string     `json:"state_province" db:"state_province"`
	PostalCode string     `json:"postal_code" db:"postal_code"`
	Country    string     `json:"country" db:"country"`

	EmergencyName     string `json:"emergency_contact_name" db:"emergency_contact_name"`
	EmergencyRelation string `json:"emergency_contact_relation" db:"emergency_contact_relation"`
	EmergencyPhone    string `json:"emergency_contact_phone" db:"emergency_contact_phone"`

	BloodType         string `json:"blood_type" db:"blood_type"`
	Allergies         string `json:"allergies" db:"allergies"`
	Medications       string `json:"medications" db:"medications"`
	MedicalConditions string `json:"medical_conditions" db:"medical_conditions"`

	InsuranceProvider string `json:"insurance_provider" db:"insurance_provider"`
	InsuranceNumber   string `json:"insurance_number" db:"insurance_number"`
	PhotoURL          string `json:"profile_photo_url" db:"profile_photo_url"`

	DateRegistered time.Time `json:"date_registered" db:"date_registered"`
	LastUpdated    time.Time `json:"last_updated" db:"last_updated"`
}

const DefaultCountry = "USA"

// NewPatientProfile returns an empty profile for userID.
func NewPatientProfile(userID uuid.UUID) *PatientProfile {
	now := time.Now().UTC()
	return &PatientProfile{
		ID:             uuid.New(),
		UserID:         userID,
		Country:        DefaultCountry,
		DateRegistered: now,
		LastUpdated:    now,
	}
}

type ProfileForm struct {
	DateOfBirth       string `json:"date_of_birth" form:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	Gender            string `json:"gender" form:"gender" binding:"omitempty,oneof=M F O P"`
	Phone             string `json:"phone" form:"phone" binding:"omitempty,phone"`
	Address1          string `json:"address_line1" form:"address_line1" binding:"max=255"`
	Address2          string `json:"address_line2" form:"address_line2" binding:"max=255"`
	City              string `json:"city" form:"city" binding:"max=100"`
	State             string `json:"state_province" form:"state_province" binding:"max=100"`
	PostalCode        string `json:"postal_code" form:"postal_code" binding:"max=20"`
	Country           string `json:"country" form:"country" binding:"max=100"`
	EmergencyName     string `json:"emergency_contact_name" form:"emergency_contact_name" binding:"max=150"`
	EmergencyRelation string `json:"emergency_contact_relation" form:"emergency_contact_relation" binding:"omitempty,oneof=spouse parent child sibling friend other"`
	EmergencyPhone    string `json:"emergency_contact_phone" form:"emergency_contact_phone" binding:"omitempty,phone"`
	BloodType         string `json:"blood_type" form:"blood_type" binding:"omitempty,oneof=O+ O- A+ A- B+ B- AB+ AB-"`
	Allergies         string `json:"allergies" form:"allergies"`
	Medications       string `json:"medications" form:"medications"`
	MedicalConditions string `json:"medical_conditions" form:"medical_conditions"`
	InsuranceProvider string `json:"insurance_provider" form:"insurance_provider" binding:"max=150"`
	InsuranceNumber   string `json:"insurance_number" form:"insurance_number" binding:"max=150"`
	PhotoURL          string `json:"profile_photo_url" form:"profile_photo_url" binding:"omitempty,url"`
}

// Apply copies the form onto p. The date must already be validated.
func (f *ProfileForm) Apply(p *PatientProfile) {
	p.BirthDate = nil
	if f.DateOfBirth != "" {
		if d, err := ParseDate(f.DateOfBirth); err == nil {
			p.BirthDate = &d
		}
	}
	p.Gender = f.Gender
	p.Phone = f.Phone
	p.Address1 = f.Address1
	p.Address2 = f.Address2
	p.City = f.City
	p.State = f.State
	p.PostalCode = f.PostalCode
	p.Country = f.Country
	p.EmergencyName = f.EmergencyName
	p.EmergencyRelation = f.EmergencyRelation
	p.EmergencyPhone = f.EmergencyPhone
	p.BloodType = f.BloodType
	p.Allergies = f.Allergies
	p.Medications = f.Medications
	p.MedicalConditions = f.MedicalConditions
	p.InsuranceProvider = f.InsuranceProvider
	p.InsuranceNumber = f.InsuranceNumber
	p.PhotoURL = f.PhotoURL
}

type EmergencyContactForm struct {
	Name     string `json:"emergency_contact_name" form:"emergency_contact_name" binding:"max=150"`
	Relation string `json:"emergency_contact_relation" form:"emergency_contact_relation" binding:"omitempty,oneof=spouse parent child sibling friend other"`
	Phone    string `json:"emergency_contact_phone" form:"emergency_contact_phone" binding:"omitempty,phone"`
}

// MedicalHistory is the read-only medical slice of a profile.
type MedicalHistory struct {
	BloodType         string `json:"blood_type"`
	Allergies         string `json:"allergies"`
	Medications       string `json:"medications"`
	MedicalConditions string `json:"medical_conditions"`
}

func (p *PatientProfile) MedicalHistory() MedicalHistory {
	return MedicalHistory{
		BloodType:         p.BloodType,
		Allergies:         p.Allergies,
		Medications:       p.Medications,
		MedicalConditions: p.MedicalConditions,
	}
}
