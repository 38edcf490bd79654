package db

import (
	"context"
	"errors"
	"strings"

	e "github.com/gartstein/crm/internal/crm/errors"
	"github.com/gartstein/crm/internal/crm/models"
	"gorm.io/gorm"
)

// Entity names used in error messages.
const (
	entityCompany  = "Company"
	entityContact  = "Contact"
	entityDeal     = "Deal"
	entityActivity = "Activity"
)

type scope func(*gorm.DB) *gorm.DB

func (r *Repository) create(ctx context.Context, row any) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func getByID[T any](ctx context.Context, db *gorm.DB, entity, id string) (*T, error) {
	var row T
	result := db.WithContext(ctx).First(&row, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.NotFound(entity)
		}
		return nil, result.Error
	}
	return &row, nil
}

// lookup resolves an optional reference, returning nil when the reference is
// unset or dangling.
func lookup[T any](ctx context.Context, db *gorm.DB, id *string) (*T, error) {
	if id == nil || *id == "" {
		return nil, nil
	}
	var rows []T
	if err := db.WithContext(ctx).Where("id = ?", *id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func updateByID[T any](ctx context.Context, db *gorm.DB, entity, id string, changes map[string]any) error {
	if len(changes) == 0 {
		var count int64
		if err := db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return e.NotFound(entity)
		}
		return nil
	}
	result := db.WithContext(ctx).Model(new(T)).
		Where("id = ?", id).
		Updates(changes)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.NotFound(entity)
	}
	return nil
}

func deleteByID[T any](ctx context.Context, db *gorm.DB, entity, id string) error {
	result := db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.NotFound(entity)
	}
	return nil
}

func exists[T any](ctx context.Context, db *gorm.DB, id string) (bool, error) {
	var count int64
	result := db.WithContext(ctx).Model(new(T)).
		Where("id = ?", id).
		Limit(1).
		Count(&count)
	return count > 0, result.Error
}

// paginate counts the rows matched by filter and fetches one page of them.
// Count and fetch are built from separate sessions so neither leaks clauses
// into the other.
func paginate[T any](ctx context.Context, db *gorm.DB, filter scope, order string, opts models.ListOptions) (*models.Page[T], error) {
	session := db.WithContext(ctx)

	var total int64
	if err := session.Model(new(T)).Scopes(filter).Count(&total).Error; err != nil {
		return nil, err
	}

	var items []T
	if !opts.PastEnd(total) {
		err := session.Scopes(filter).
			Order(order).
			Offset(opts.Offset()).
			Limit(opts.PerPage).
			Find(&items).Error
		if err != nil {
			return nil, err
		}
	}
	return models.NewPage(items, total, opts), nil
}

// containsPattern builds a LIKE pattern for a case-insensitive substring match
// against a LOWER()ed column.
func containsPattern(search string) string {
	return "%" + strings.ToLower(search) + "%"
}
