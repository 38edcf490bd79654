package controller

import (
	"context"
	"errors"
	"fmt"

	e "github.com/gartstein/crm/internal/crm/errors"
	"github.com/gartstein/crm/internal/crm/events"
	"github.com/gartstein/crm/internal/crm/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateCompany validates and stores a new company.
func (s *CRMService) CreateCompany(ctx context.Context, company *models.Company) (*models.Company, error) {
	if err := requireText("name", company.Name); err != nil {
		return nil, err
	}

	company.ID = uuid.NewString()
	if err := s.repo.CreateCompany(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	// Return the row as stored so timestamps match later reads.
	created, err := s.repo.GetCompany(ctx, company.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload company: %w", err)
	}
	s.publish(events.EntityCompany, events.Created, created.ID, created)
	return created, nil
}

// GetCompany retrieves a Company by ID, returning an error if not found.
func (s *CRMService) GetCompany(ctx context.Context, id string) (*models.Company, error) {
	company, err := s.repo.GetCompany(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return company, nil
}

func (s *CRMService) ListCompanies(ctx context.Context, filter models.CompanyFilter, opts models.ListOptions) (*models.Page[models.Company], error) {
	page, err := s.repo.ListCompanies(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return page, nil
}

// UpdateCompany applies the supplied fields, then fetches the updated
// version for returning and event production.
func (s *CRMService) UpdateCompany(ctx context.Context, update *models.CompanyUpdate) (*models.Company, error) {
	if err := requireOptionalText("name", update.Name); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateCompany(ctx, update); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update company: %w", err)
	}

	updated, err := s.repo.GetCompany(ctx, update.ID)
	if err != nil {
		s.logger.Error("Failed to reload company after update",
			zap.Error(err),
			zap.String("company_id", update.ID),
		)
		return nil, err
	}
	s.publish(events.EntityCompany, events.Updated, updated.ID, updated)
	return updated, nil
}

// DeleteCompany removes a Company by ID. Contacts and deals that reference it
// keep the now-dangling company_id.
func (s *CRMService) DeleteCompany(ctx context.Context, id string) error {
	company, err := s.repo.GetCompany(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to get company for deletion: %w", err)
	}

	if err := s.repo.DeleteCompany(ctx, id); err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}
	s.publish(events.EntityCompany, events.Deleted, id, company)
	return nil
}
