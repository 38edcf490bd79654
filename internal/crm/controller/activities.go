package controller

import (
	"context"
	"fmt"

	"github.com/gartstein/crm/internal/crm/db"
	e "github.com/gartstein/crm/internal/crm/errors"
	"github.com/gartstein/crm/internal/crm/events"
	"github.com/gartstein/crm/internal/crm/models"
	"github.com/google/uuid"
)

// CreateActivity logs an activity after checking its contact and deal references.
func (s *CRMService) CreateActivity(ctx context.Context, activity *models.Activity) (*models.Activity, error) {
	if !activity.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown activity type %q", e.ErrInvalidInput, activity.Type)
	}
	if err := requireText("description", activity.Description); err != nil {
		return nil, err
	}
	if activity.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", e.ErrInvalidInput)
	}

	activity.ID = uuid.NewString()
	err := s.repo.WithTransaction(ctx, func(tx db.Store) error {
		refs := references{ContactID: activity.ContactID, DealID: activity.DealID}
		if err := checkReferences(ctx, tx, refs); err != nil {
			return err
		}
		return tx.CreateActivity(ctx, activity)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	created, err := s.repo.GetActivity(ctx, activity.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload activity: %w", err)
	}
	s.publish(events.EntityActivity, events.Created, created.ID, created)
	return created, nil
}

// ListActivities lists activities, most recent activity date first.
func (s *CRMService) ListActivities(ctx context.Context, filter models.ActivityFilter, opts models.ListOptions) (*models.Page[models.Activity], error) {
	page, err := s.repo.ListActivities(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return page, nil
}
