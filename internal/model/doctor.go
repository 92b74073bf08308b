package model

import (
	"github.com/google/uuid"
)

type Doctor struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	UserID      *uuid.UUID  `json:"user_id,omitempty" db:"user_id"`
	Name        string      `json:"name" db:"name"`
	Specialty   string      `json:"specialty" db:"specialty"`
	Description string      `json:"description" db:"description"`
	ImageURL    string      `json:"image_url" db:"image_url"`
	ServiceIDs  []uuid.UUID `json:"service_ids" db:"-"`
	Timestamps
}

func (d *Doctor) String() string {
	return "Dr. " + d.Name
}

type DoctorProfileForm struct {
	Name        string   `json:"name" form:"name" binding:"required,max=100"`
	Specialty   string   `json:"specialty" form:"specialty" binding:"max=100"`
	Description string   `json:"description" form:"description"`
	ImageURL    string   `json:"image_url" form:"image_url" binding:"omitempty,url"`
	Services    []string `json:"services" form:"services" binding:"dive,uuid"`
}
