package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NotificationMethod controls how admins receive alerts.
type NotificationMethod string

const (
	NotifyEmail NotificationMethod = "email"
	NotifyInApp NotificationMethod = "in_app"
	NotifyBoth  NotificationMethod = "both"
)

func ParseNotificationMethod(s string) (NotificationMethod, error) {
	switch m := NotificationMethod(s); m {
	case NotifyEmail, NotifyInApp, NotifyBoth:
		return m, nil
	default:
		return "", fmt.Errorf("unknown notification method %q", s)
	}
}

func (m NotificationMethod) WantsEmail() bool { return m == NotifyEmail || m == NotifyBoth }
func (m NotificationMethod) WantsInApp() bool { return m == NotifyInApp || m == NotifyBoth }

type User struct {
	Base
	Username           string             `json:"username" db:"username"`
	Email              string             `json:"email" db:"email"`
	PasswordHash       string             `json:"-" db:"password_hash"`
	FirstName          string             `json:"first_name" db:"first_name"`
	LastName           string             `json:"last_name" db:"last_name"`
	Role               Role               `json:"role" db:"role"`
	Phone              string             `json:"phone" db:"phone"`
	NotificationEmail  string             `json:"notification_email" db:"notification_email"`
	NotificationMethod NotificationMethod `json:"notification_method" db:"notification_method"`
}

// FullName is empty when neither name part is set.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// DisplayName prefers the full name over the username.
func (u *User) DisplayName() string {
	if n := u.FullName(); n != "" {
		return n
	}
	return u.Username
}

// AlertAddress is where admin alerts are mailed.
func (u *User) AlertAddress() string {
	if u.NotificationEmail != "" {
		return u.NotificationEmail
	}
	return u.Email
}

func (u *User) String() string {
	return fmt.Sprintf("%s (%s)", u.Username, u.Role.Label())
}

type RegisterRequest struct {
	Username  string `json:"username" form:"username" binding:"required,max=150"`
	Email     string `json:"email" form:"email" binding:"required,email,max=254"`
	Role      string `json:"role" form:"role" binding:"required,oneof=admin doctor patient"`
	Password1 string `json:"password1" form:"password1" binding:"required,min=8"`
	Password2 string `json:"password2" form:"password2" binding:"required,eqfield=Password1"`
	FirstName string `json:"first_name" form:"first_name"`
	LastName  string `json:"last_name" form:"last_name"`
	Phone     string `json:"phone" form:"phone" binding:"omitempty,phone"`
}

type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	OldPassword  string `json:"old_password" form:"old_password" binding:"required"`
	NewPassword1 string `json:"new_password1" form:"new_password1" binding:"required,min=8"`
	NewPassword2 string `json:"new_password2" form:"new_password2" binding:"required,eqfield=NewPassword1"`
}

type NotificationSettingsRequest struct {
	NotificationEmail  string `json:"notification_email" form:"notification_email" binding:"omitempty,email,max=254"`
	NotificationMethod string `json:"notification_method" form:"notification_method" binding:"omitempty,oneof=email in_app both"`
}

// Identity is the authenticated principal attached to a request.
type Identity struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Role     Role      `json:"role"`
}
