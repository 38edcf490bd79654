package db

import (
	"context"

	"github.com/gartstein/crm/internal/crm/models"
	"gorm.io/gorm"
)

func (r *Repository) CreateDeal(ctx context.Context, deal *models.Deal) error {
	return r.create(ctx, deal)
}

func (r *Repository) GetDeal(ctx context.Context, id string) (*models.Deal, error) {
	return getByID[models.Deal](ctx, r.db, entityDeal, id)
}

// GetDealDetail fetches a deal and resolves its contact and company.
func (r *Repository) GetDealDetail(ctx context.Context, id string) (*models.DealDetail, error) {
	deal, err := r.GetDeal(ctx, id)
	if err != nil {
		return nil, err
	}
	contact, err := lookup[models.Contact](ctx, r.db, deal.ContactID)
	if err != nil {
		return nil, err
	}
	company, err := lookup[models.Company](ctx, r.db, deal.CompanyID)
	if err != nil {
		return nil, err
	}
	return &models.DealDetail{Deal: *deal, Contact: contact, Company: company}, nil
}

func (r *Repository) UpdateDeal(ctx context.Context, update *models.DealUpdate) error {
	return updateByID[models.Deal](ctx, r.db, entityDeal, update.ID, update.Changes())
}

func (r *Repository) DeleteDeal(ctx context.Context, id string) error {
	return deleteByID[models.Deal](ctx, r.db, entityDeal, id)
}

func (r *Repository) DealExists(ctx context.Context, id string) (bool, error) {
	return exists[models.Deal](ctx, r.db, id)
}

// ListDeals returns deals newest first, optionally restricted to one stage.
func (r *Repository) ListDeals(ctx context.Context, filter models.DealFilter, opts models.ListOptions) (*models.Page[models.Deal], error) {
	where := func(q *gorm.DB) *gorm.DB {
		if filter.Stage != nil {
			q = q.Where("stage = ?", string(*filter.Stage))
		}
		return q
	}
	return paginate[models.Deal](ctx, r.db, where, "created_at DESC, id", opts)
}
