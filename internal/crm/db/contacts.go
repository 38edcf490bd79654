package db

import (
	"context"

	"github.com/gartstein/crm/internal/crm/models"
	"gorm.io/gorm"
)

func (r *Repository) CreateContact(ctx context.Context, contact *models.Contact) error {
	return r.create(ctx, contact)
}

func (r *Repository) GetContact(ctx context.Context, id string) (*models.Contact, error) {
	return getByID[models.Contact](ctx, r.db, entityContact, id)
}

// GetContactDetail fetches a contact and resolves its company with one extra lookup.
func (r *Repository) GetContactDetail(ctx context.Context, id string) (*models.ContactDetail, error) {
	contact, err := r.GetContact(ctx, id)
	if err != nil {
		return nil, err
	}
	company, err := lookup[models.Company](ctx, r.db, contact.CompanyID)
	if err != nil {
		return nil, err
	}
	return &models.ContactDetail{Contact: *contact, Company: company}, nil
}

func (r *Repository) UpdateContact(ctx context.Context, update *models.ContactUpdate) error {
	return updateByID[models.Contact](ctx, r.db, entityContact, update.ID, update.Changes())
}

func (r *Repository) DeleteContact(ctx context.Context, id string) error {
	return deleteByID[models.Contact](ctx, r.db, entityContact, id)
}

func (r *Repository) ContactExists(ctx context.Context, id string) (bool, error) {
	return exists[models.Contact](ctx, r.db, id)
}

// ListContacts returns contacts newest first. The search term matches first
// name, last name or email.
func (r *Repository) ListContacts(ctx context.Context, filter models.ContactFilter, opts models.ListOptions) (*models.Page[models.Contact], error) {
	where := func(q *gorm.DB) *gorm.DB {
		if filter.Search != "" {
			pattern := containsPattern(filter.Search)
			q = q.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?",
				pattern, pattern, pattern)
		}
		return q
	}
	return paginate[models.Contact](ctx, r.db, where, "created_at DESC, id", opts)
}
