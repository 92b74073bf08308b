package security

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLen = 8

// ErrWeakPassword matches every PolicyError under errors.Is.
var ErrWeakPassword = errors.New("weak password")

var (
	ErrPasswordTooShort = &PolicyError{msg: fmt.Sprintf("This password is too short. It must contain at least %d characters.", MinPasswordLen)}
	ErrPasswordNumeric  = &PolicyError{msg: "This password is entirely numeric."}
	ErrPasswordMismatch = errors.New("password mismatch")
	ErrHashingFailed    = errors.New("password hashing failed")
)

// PolicyError carries a message fit to show the user.
type PolicyError struct {
	msg string
}

func (e *PolicyError) Error() string { return e.msg }

func (e *PolicyError) Is(target error) bool { return target == ErrWeakPassword }

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hashedPassword, password string) error
}

// CheckPolicy reports the first rule password breaks.
func CheckPolicy(password string) error {
	if len([]rune(password)) < MinPasswordLen {
		return ErrPasswordTooShort
	}
	if strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
		return ErrPasswordNumeric
	}
	return nil
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher falls back to bcrypt.DefaultCost for out-of-range costs.
func NewBcryptHasher(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

// Hash enforces CheckPolicy before hashing.
func (b *bcryptHasher) Hash(password string) (string, error) {
	if err := CheckPolicy(password); err != nil {
		return "", err
	}
	out, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashingFailed, err)
	}
	return string(out), nil
}

func (b *bcryptHasher) Compare(hashedPassword, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)); err != nil {
		return ErrPasswordMismatch
	}
	return nil
}
