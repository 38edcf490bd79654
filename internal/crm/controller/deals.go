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
	"github.com/shopspring/decimal"
)

// maxDealValue is the first value that does not fit numeric(15,2).
var maxDealValue = decimal.New(1, 13)

// normalizeValue rounds v to cents and checks that it fits the column.
func normalizeValue(v decimal.Decimal) (decimal.Decimal, error) {
	rounded := v.Round(2)
	if rounded.Abs().GreaterThanOrEqual(maxDealValue) {
		return decimal.Decimal{}, fmt.Errorf("%w: value exceeds 13 integer digits", e.ErrInvalidInput)
	}
	return rounded, nil
}

func validateStage(stage models.DealStage) error {
	if !stage.Valid() {
		return fmt.Errorf("%w: unknown stage %q", e.ErrInvalidInput, stage)
	}
	return nil
}

// CreateDeal stores a new deal after checking its contact and company
// references. An empty stage defaults to lead.
func (s *CRMService) CreateDeal(ctx context.Context, deal *models.Deal) (*models.DealDetail, error) {
	if err := requireText("title", deal.Title); err != nil {
		return nil, err
	}
	if deal.Stage == "" {
		deal.Stage = models.StageLead
	}
	if err := validateStage(deal.Stage); err != nil {
		return nil, err
	}
	if deal.Value != nil {
		value, err := normalizeValue(*deal.Value)
		if err != nil {
			return nil, err
		}
		deal.Value = &value
	}

	deal.ID = uuid.NewString()
	err := s.repo.WithTransaction(ctx, func(tx db.Store) error {
		refs := references{ContactID: deal.ContactID, CompanyID: deal.CompanyID}
		if err := checkReferences(ctx, tx, refs); err != nil {
			return err
		}
		return tx.CreateDeal(ctx, deal)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create deal: %w", err)
	}
	s.publish(events.EntityDeal, events.Created, deal.ID, deal)
	return s.GetDeal(ctx, deal.ID)
}

// GetDeal retrieves a deal with its contact and company resolved.
func (s *CRMService) GetDeal(ctx context.Context, id string) (*models.DealDetail, error) {
	deal, err := s.repo.GetDealDetail(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}
	return deal, nil
}

func (s *CRMService) ListDeals(ctx context.Context, filter models.DealFilter, opts models.ListOptions) (*models.Page[models.Deal], error) {
	page, err := s.repo.ListDeals(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list deals: %w", err)
	}
	return page, nil
}

// UpdateDeal applies the supplied fields. Any stage may be set regardless of
// the current one.
func (s *CRMService) UpdateDeal(ctx context.Context, update *models.DealUpdate) (*models.DealDetail, error) {
	if err := requireOptionalText("title", update.Title); err != nil {
		return nil, err
	}
	if update.Stage.Set {
		if !update.Stage.Valid {
			return nil, fmt.Errorf("%w: stage may not be null", e.ErrInvalidInput)
		}
		if err := validateStage(update.Stage.Value); err != nil {
			return nil, err
		}
	}
	if update.Value.Valid {
		value, err := normalizeValue(update.Value.Value)
		if err != nil {
			return nil, err
		}
		update.Value.Value = value
	}

	err := s.repo.WithTransaction(ctx, func(tx db.Store) error {
		if _, err := tx.GetDeal(ctx, update.ID); err != nil {
			return err
		}
		refs := references{ContactID: setRef(update.ContactID), CompanyID: setRef(update.CompanyID)}
		if err := checkReferences(ctx, tx, refs); err != nil {
			return err
		}
		return tx.UpdateDeal(ctx, update)
	})
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update deal: %w", err)
	}

	updated, err := s.GetDeal(ctx, update.ID)
	if err != nil {
		return nil, err
	}
	s.publish(events.EntityDeal, events.Updated, updated.ID, &updated.Deal)
	return updated, nil
}

// DeleteDeal removes a deal; activities keep their deal_id.
func (s *CRMService) DeleteDeal(ctx context.Context, id string) error {
	deal, err := s.repo.GetDeal(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to get deal for deletion: %w", err)
	}

	if err := s.repo.DeleteDeal(ctx, id); err != nil {
		return fmt.Errorf("failed to delete deal: %w", err)
	}
	s.publish(events.EntityDeal, events.Deleted, id, deal)
	return nil
}
