package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

type contactRepository struct {
	BaseRepository
}

func NewContactRepository(base BaseRepository) repository.ContactRepository {
	return &contactRepository{base}
}

func (r *contactRepository) Create(ctx context.Context, c *model.Contact) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contacts (id, full_name, email, message, created_at) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.FullName, c.Email, c.Message, c.CreatedAt)
	if err != nil {
		return wrapErr("create contact", err)
	}
	return nil
}

func (r *contactRepository) Get(ctx context.Context, id uuid.UUID) (*model.Contact, error) {
	var c model.Contact
	if err := r.db.GetContext(ctx, &c,
		`SELECT id, full_name, email, message, created_at FROM contacts WHERE id = $1`, id); err != nil {
		return nil, wrapErr("get contact", err)
	}
	return &c, nil
}

func (r *contactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete contact", err)
	}
	return expectRows("delete contact", res)
}

func (r *contactRepository) List(ctx context.Context) ([]*model.Contact, error) {
	var contacts []*model.Contact
	if err := r.db.SelectContext(ctx, &contacts,
		`SELECT id, full_name, email, message, created_at FROM contacts ORDER BY created_at DESC`); err != nil {
		return nil, wrapErr("list contacts", err)
	}
	return contacts, nil
}
