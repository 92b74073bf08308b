package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const PhoneMessage = "Phone number must be entered in the format: +999999999. Up to 15 digits allowed."

// Column widths shared by the name, email and phone fields.
const (
	MaxNameLen  = 100
	MaxEmailLen = 254
	MaxPhoneLen = 15
)

var phonePattern = regexp.MustCompile(`^\+?1?\d{9,15}$`)

// IsPhone reports whether s looks like an international phone number that
// fits a MaxPhoneLen column.
func IsPhone(s string) bool {
	return len(s) <= MaxPhoneLen && phonePattern.MatchString(s)
}

// Limit caps the character count of one field value.
type Limit struct {
	Field string
	Value string
	Max   int
}

// Lengths returns one error per value longer than its limit. Characters
// are counted as runes.
func Lengths(limits ...Limit) []FieldError {
	var out []FieldError
	for _, l := range limits {
		if n := utf8.RuneCountInString(l.Value); n > l.Max {
			out = append(out, FieldError{
				Field:   l.Field,
				Message: fmt.Sprintf("Ensure this value has at most %d characters (it has %d).", l.Max, n),
			})
		}
	}
	return out
}

// FieldError is a single, user-facing validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var messages = map[string]string{
	"required": "This field is required.",
	"email":    "Enter a valid email address.",
	"phone":    PhoneMessage,
	"min":      "Value is too short.",
	"max":      "Value is too long.",
	"oneof":    "Select a valid choice.",
	"url":      "Enter a valid URL.",
	"uuid":     "Enter a valid identifier.",
	"eqfield":  "The two fields didn't match.",
	"datetime": "Enter a valid date.",
}

// Validator wraps a configured validator/v10 instance.
type Validator struct {
	v *validator.Validate
}

// New returns a validator that reads the same `binding` tags gin uses.
func New() *Validator {
	v := validator.New()
	v.SetTagName("binding")
	configure(v)
	return &Validator{v: v}
}

func configure(v *validator.Validate) {
	if err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return IsPhone(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
}

func (x *Validator) Struct(s interface{}) error {
	return x.v.Struct(s)
}

// Var validates a single value against tag.
func (x *Validator) Var(field interface{}, tag string) error {
	return x.v.Var(field, tag)
}

var bindOnce sync.Once

// RegisterBinding installs the custom tags on gin's binding engine.
func RegisterBinding() {
	bindOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			configure(v)
		}
	})
}

// Fields converts validator errors into field messages. Other errors are
// returned as a single entry without a field name.
func Fields(err error) []FieldError {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, e := range verrs {
		msg, ok := messages[e.Tag()]
		if !ok {
			msg = fmt.Sprintf("failed on %s", e.Tag())
		}
		out = append(out, FieldError{Field: e.Field(), Message: msg})
	}
	return out
}
