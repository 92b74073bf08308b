package model

import (
	"fmt"
)

// Patient is an admin-managed record kept apart from user accounts.
type Patient struct {
	Base
	FirstName   string `json:"first_name" db:"first_name"`
	LastName    string `json:"last_name" db:"last_name"`
	Age         *int   `json:"age" db:"age"`
	Email       string `json:"email" db:"email"`
	PhoneNumber string `json:"phone_number" db:"phone_number"`
	Location    string `json:"location" db:"location"`
}

func (p *Patient) String() string {
	return fmt.Sprintf("%s %s", p.FirstName, p.LastName)
}

type PatientForm struct {
	FirstName   string `json:"first_name" form:"first_name" binding:"required,max=200"`
	LastName    string `json:"last_name" form:"last_name" binding:"required,max=200"`
	Age         *int   `json:"age" form:"age" binding:"omitempty,min=0"`
	Email       string `json:"email" form:"email" binding:"omitempty,email,max=254"`
	PhoneNumber string `json:"phone_number" form:"phone_number" binding:"omitempty,phone"`
	Location    string `json:"location" form:"location" binding:"max=200"`
}

func (f *PatientForm) Apply(p *Patient) {
	p.FirstName = f.FirstName
	p.LastName = f.LastName
	p.Age = f.Age
	p.Email = f.Email
	p.PhoneNumber = f.PhoneNumber
	p.Location = f.Location
}
