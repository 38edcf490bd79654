// Package controller implements the core business logic (service layer) of
// the CRM: input checks, referential-integrity checks against the store,
// partial updates, and change events.
package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/gartstein/crm/internal/crm/db"
	e "github.com/gartstein/crm/internal/crm/errors"
	"github.com/gartstein/crm/internal/crm/events"
	"github.com/gartstein/crm/internal/pkg/utils"
	"go.uber.org/zap"
)

type EventProducer interface {
	Produce(event events.Event)
}

// WriteRecorder counts committed writes.
type WriteRecorder interface {
	RecordWrite(entity, action string)
}

// Repository defines the storage the service runs against.
type Repository interface {
	db.Store
}

// CRMService provides methods to manage companies, contacts, deals and
// activities via repository operations and event production.
type CRMService struct {
	repo     Repository
	producer EventProducer
	recorder WriteRecorder
	logger   *zap.Logger
}

// NewCRMService constructs a CRMService with a repository, an event producer,
// and a logger.
func NewCRMService(repo Repository, producer EventProducer, logger *zap.Logger) *CRMService {
	if producer == nil {
		producer = events.NopProducer{}
	}
	return &CRMService{
		repo:     repo,
		producer: producer,
		logger:   logger.Named("crm_service"),
	}
}

// WithRecorder makes the service count committed writes on r.
func (s *CRMService) WithRecorder(r WriteRecorder) *CRMService {
	s.recorder = r
	return s
}

func (s *CRMService) publish(entity string, action events.Action, id string, data any) {
	s.producer.Produce(events.NewEvent(entity, action, id, data))
	if s.recorder != nil {
		s.recorder.RecordWrite(entity, string(action))
	}
	s.logger.Debug("entity written",
		zap.String("entity", entity),
		zap.String("action", string(action)),
		zap.String("id", id),
	)
}

// references are the foreign keys carried by a write. Nil fields are not checked.
type references struct {
	ContactID *string
	CompanyID *string
	DealID    *string
}

// checkReferences verifies that every non-nil reference names an existing row.
func checkReferences(ctx context.Context, store db.Store, refs references) error {
	checks := []struct {
		id     *string
		entity string
		exists func(context.Context, string) (bool, error)
	}{
		{refs.ContactID, "Contact", store.ContactExists},
		{refs.CompanyID, "Company", store.CompanyExists},
		{refs.DealID, "Deal", store.DealExists},
	}
	for _, check := range checks {
		if check.id == nil {
			continue
		}
		ok, err := check.exists(ctx, *check.id)
		if err != nil {
			return fmt.Errorf("failed to check %s reference: %w", strings.ToLower(check.entity), err)
		}
		if !ok {
			return e.MissingReference(check.entity)
		}
	}
	return nil
}

// setRef returns the reference to check for an update field: only fields
// present with a non-null value are checked.
func setRef(field utils.Optional[string]) *string {
	if !field.Set {
		return nil
	}
	return field.Ptr()
}

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", e.ErrInvalidInput, field)
	}
	return nil
}

// requireOptionalText rejects an update that nulls or blanks a required column.
func requireOptionalText(field string, value utils.Optional[string]) error {
	if !value.Set {
		return nil
	}
	if !value.Valid {
		return fmt.Errorf("%w: %s may not be null", e.ErrInvalidInput, field)
	}
	return requireText(field, value.Value)
}
