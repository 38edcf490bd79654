package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/gartstein/crm/internal/crm/db"
	e "github.com/gartstein/crm/internal/crm/errors"
	"github.com/gartstein/crm/internal/crm/events"
	"github.com/gartstein/crm/internal/crm/models"
	"github.com/google/uuid"
)

// CreateContact stores a new contact after checking its company reference.
func (s *CRMService) CreateContact(ctx context.Context, contact *models.Contact) (*models.ContactDetail, error) {
	if err := requireText("first_name", contact.FirstName); err != nil {
		return nil, err
	}
	if err := requireText("last_name", contact.LastName); err != nil {
		return nil, err
	}

	contact.ID = uuid.NewString()
	err := s.repo.WithTransaction(ctx, func(tx db.Store) error {
		if err := checkReferences(ctx, tx, references{CompanyID: contact.CompanyID}); err != nil {
			return err
		}
		return tx.CreateContact(ctx, contact)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	s.publish(events.EntityContact, events.Created, contact.ID, contact)
	return s.GetContact(ctx, contact.ID)
}

// GetContact retrieves a contact with its company resolved.
func (s *CRMService) GetContact(ctx context.Context, id string) (*models.ContactDetail, error) {
	contact, err := s.repo.GetContactDetail(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return contact, nil
}

func (s *CRMService) ListContacts(ctx context.Context, filter models.ContactFilter, opts models.ListOptions) (*models.Page[models.Contact], error) {
	page, err := s.repo.ListContacts(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return page, nil
}

// UpdateContact applies the supplied fields. A company_id in the payload is
// checked again; a missing contact is reported before a bad reference.
func (s *CRMService) UpdateContact(ctx context.Context, update *models.ContactUpdate) (*models.ContactDetail, error) {
	if err := requireOptionalText("first_name", update.FirstName); err != nil {
		return nil, err
	}
	if err := requireOptionalText("last_name", update.LastName); err != nil {
		return nil, err
	}

	err := s.repo.WithTransaction(ctx, func(tx db.Store) error {
		if _, err := tx.GetContact(ctx, update.ID); err != nil {
			return err
		}
		if err := checkReferences(ctx, tx, references{CompanyID: setRef(update.CompanyID)}); err != nil {
			return err
		}
		return tx.UpdateContact(ctx, update)
	})
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	updated, err := s.GetContact(ctx, update.ID)
	if err != nil {
		return nil, err
	}
	s.publish(events.EntityContact, events.Updated, updated.ID, &updated.Contact)
	return updated, nil
}

// DeleteContact removes a contact; deals and activities keep their contact_id.
func (s *CRMService) DeleteContact(ctx context.Context, id string) error {
	contact, err := s.repo.GetContact(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to get contact for deletion: %w", err)
	}

	if err := s.repo.DeleteContact(ctx, id); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	s.publish(events.EntityContact, events.Deleted, id, contact)
	return nil
}
