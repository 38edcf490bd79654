package db

import (
	"context"

	"github.com/gartstein/crm/internal/crm/models"
	"gorm.io/gorm"
)

func (r *Repository) CreateActivity(ctx context.Context, activity *models.Activity) error {
	return r.create(ctx, activity)
}

func (r *Repository) GetActivity(ctx context.Context, id string) (*models.Activity, error) {
	return getByID[models.Activity](ctx, r.db, entityActivity, id)
}

// ListActivities returns activities by descending activity date.
func (r *Repository) ListActivities(ctx context.Context, filter models.ActivityFilter, opts models.ListOptions) (*models.Page[models.Activity], error) {
	where := func(q *gorm.DB) *gorm.DB {
		if filter.ContactID != nil {
			q = q.Where("contact_id = ?", *filter.ContactID)
		}
		if filter.DealID != nil {
			q = q.Where("deal_id = ?", *filter.DealID)
		}
		return q
	}
	return paginate[models.Activity](ctx, r.db, where, `"date" DESC, id`, opts)
}
