// Package contact stores messages from the public contact form.
package contact

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/validator"
)

const (
	MsgFillAllFields = "Please fill in all fields."
	MsgThanks        = "Thank you for your message! We will get back to you soon."
)

// Notifier is told about every stored contact message.
type Notifier interface {
	ContactReceived(ctx context.Context, c *model.Contact) []model.DeliveryResult
}

type Result struct {
	Contact       *model.Contact         `json:"contact"`
	Notifications []model.DeliveryResult `json:"notifications"`
	Message       string                 `json:"message"`
}

type Service struct {
	repo     repository.ContactRepository
	notifier Notifier
}

func NewService(repo repository.ContactRepository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// Submit stores the message when every field is filled in and fits its
// column, then notifies.
func (s *Service) Submit(ctx context.Context, form model.ContactForm) (*Result, error) {
	c := &model.Contact{
		Base:     model.NewBase(),
		FullName: strings.TrimSpace(form.FullName),
		Email:    strings.TrimSpace(form.Email),
		Message:  strings.TrimSpace(form.Message),
	}
	if c.FullName == "" || c.Email == "" || c.Message == "" {
		return nil, apperrors.BadRequest(MsgFillAllFields, nil)
	}
	if fields := validator.Lengths(
		validator.Limit{Field: "full_name", Value: c.FullName, Max: validator.MaxNameLen},
		validator.Limit{Field: "email", Value: c.Email, Max: validator.MaxEmailLen},
	); len(fields) > 0 {
		return nil, apperrors.BadRequest(fields[0].Message, nil).WithDetails(fields)
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	res := &Result{Contact: c, Message: MsgThanks}
	if s.notifier != nil {
		res.Notifications = s.notifier.ContactReceived(ctx, c)
	}
	return res, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Contact, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("contact", err)
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("contact", err)
		}
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	return nil
}

// List returns newest first.
func (s *Service) List(ctx context.Context) ([]*model.Contact, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return list, nil
}
