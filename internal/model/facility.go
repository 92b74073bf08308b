package model

import "time"

const DefaultFacilityName = "Our Facility"

// Facility is the single hospital record shown on public pages.
type Facility struct {
	ID             int       `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Address        string    `json:"address" db:"address"`
	Phone          string    `json:"phone" db:"phone"`
	Email          string    `json:"email" db:"email"`
	EmergencyPhone string    `json:"emergency_phone" db:"emergency_phone"`
	Description    string    `json:"description" db:"description"`
	LogoURL        string    `json:"logo_url" db:"logo_url"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

type FacilityForm struct {
	Name           string `json:"name" form:"name" binding:"required,max=200"`
	Address        string `json:"address" form:"address"`
	Phone          string `json:"phone" form:"phone" binding:"omitempty,phone"`
	Email          string `json:"email" form:"email" binding:"omitempty,email,max=254"`
	EmergencyPhone string `json:"emergency_phone" form:"emergency_phone" binding:"omitempty,phone"`
	Description    string `json:"description" form:"description"`
	LogoURL        string `json:"logo_url" form:"logo_url" binding:"omitempty,url"`
}

func (f *FacilityForm) Apply(fac *Facility) {
	fac.Name = f.Name
	fac.Address = f.Address
	fac.Phone = f.Phone
	fac.Email = f.Email
	fac.EmergencyPhone = f.EmergencyPhone
	fac.Description = f.Description
	fac.LogoURL = f.LogoURL
}
