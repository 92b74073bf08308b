package model

// Contact is a message left through the public contact form.
type Contact struct {
	Base
	FullName string `json:"full_name" db:"full_name"`
	Email    string `json:"email" db:"email"`
	Message  string `json:"message" db:"message"`
}

type ContactForm struct {
	FullName string `json:"full_name" form:"full_name"`
	Email    string `json:"email" form:"email"`
	Message  string `json:"message" form:"message"`
}
