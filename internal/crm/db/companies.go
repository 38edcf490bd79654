package db

import (
	"context"

	"github.com/gartstein/crm/internal/crm/models"
	"gorm.io/gorm"
)

func (r *Repository) CreateCompany(ctx context.Context, company *models.Company) error {
	return r.create(ctx, company)
}

func (r *Repository) GetCompany(ctx context.Context, id string) (*models.Company, error) {
	return getByID[models.Company](ctx, r.db, entityCompany, id)
}

func (r *Repository) UpdateCompany(ctx context.Context, update *models.CompanyUpdate) error {
	return updateByID[models.Company](ctx, r.db, entityCompany, update.ID, update.Changes())
}

// DeleteCompany removes the company only; contacts and deals keep their company_id.
func (r *Repository) DeleteCompany(ctx context.Context, id string) error {
	return deleteByID[models.Company](ctx, r.db, entityCompany, id)
}

func (r *Repository) CompanyExists(ctx context.Context, id string) (bool, error) {
	return exists[models.Company](ctx, r.db, id)
}

// ListCompanies returns companies newest first.
func (r *Repository) ListCompanies(ctx context.Context, filter models.CompanyFilter, opts models.ListOptions) (*models.Page[models.Company], error) {
	where := func(q *gorm.DB) *gorm.DB {
		if filter.Search != "" {
			q = q.Where("LOWER(name) LIKE ?", containsPattern(filter.Search))
		}
		return q
	}
	return paginate[models.Company](ctx, r.db, where, "created_at DESC, id", opts)
}
