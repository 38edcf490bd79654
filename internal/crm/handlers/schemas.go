package handlers

import (
	"github.com/gartstein/crm/internal/crm/models"
	"github.com/gartstein/crm/internal/pkg/utils"
	"github.com/shopspring/decimal"
)

type CompanyCreateRequest struct {
	Name     string  `json:"name" validate:"required,max=255"`
	Website  *string `json:"website" validate:"omitempty,max=255"`
	Industry *string `json:"industry" validate:"omitempty,max=255"`
	Notes    *string `json:"notes"`
}

// CompanyUpdateRequest carries only the fields present in the payload.
type CompanyUpdateRequest struct {
	Name     utils.Optional[string] `json:"name" validate:"omitempty,max=255"`
	Website  utils.Optional[string] `json:"website" validate:"omitempty,max=255"`
	Industry utils.Optional[string] `json:"industry" validate:"omitempty,max=255"`
	Notes    utils.Optional[string] `json:"notes"`
}

type ContactCreateRequest struct {
	FirstName string  `json:"first_name" validate:"required,max=255"`
	LastName  string  `json:"last_name" validate:"required,max=255"`
	Email     *string `json:"email" validate:"omitempty,max=255"`
	Phone     *string `json:"phone" validate:"omitempty,max=50"`
	CompanyID *string `json:"company_id"`
	Notes     *string `json:"notes"`
}

type ContactUpdateRequest struct {
	FirstName utils.Optional[string] `json:"first_name" validate:"omitempty,max=255"`
	LastName  utils.Optional[string] `json:"last_name" validate:"omitempty,max=255"`
	Email     utils.Optional[string] `json:"email" validate:"omitempty,max=255"`
	Phone     utils.Optional[string] `json:"phone" validate:"omitempty,max=50"`
	CompanyID utils.Optional[string] `json:"company_id"`
	Notes     utils.Optional[string] `json:"notes"`
}

type DealCreateRequest struct {
	Title string `json:"title" validate:"required,max=255"`
	// Value accepts a JSON number or a decimal string.
	Value *decimal.Decimal `json:"value"`
	// Stage defaults to lead when omitted; an explicit null is rejected.
	Stage         utils.Optional[models.DealStage] `json:"stage"`
	ContactID     *string                          `json:"contact_id"`
	CompanyID     *string                          `json:"company_id"`
	Notes         *string                          `json:"notes"`
	ExpectedClose *models.Date                     `json:"expected_close"`
}

type DealUpdateRequest struct {
	Title         utils.Optional[string]           `json:"title" validate:"omitempty,max=255"`
	Value         utils.Optional[decimal.Decimal]  `json:"value"`
	Stage         utils.Optional[models.DealStage] `json:"stage"`
	ContactID     utils.Optional[string]           `json:"contact_id"`
	CompanyID     utils.Optional[string]           `json:"company_id"`
	Notes         utils.Optional[string]           `json:"notes"`
	ExpectedClose utils.Optional[models.Date]      `json:"expected_close"`
}

type ActivityCreateRequest struct {
	Type        models.ActivityType `json:"type" validate:"required"`
	Description string              `json:"description" validate:"required"`
	ContactID   *string             `json:"contact_id"`
	DealID      *string             `json:"deal_id"`
	// Date is RFC 3339, or a zone-less timestamp taken as UTC.
	Date string `json:"date" validate:"required"`
}

// ContactResponse is the detail shape of a contact.
type ContactResponse struct {
	models.Contact
	Company *models.Company `json:"company"`
}

// DealListResponse is the list shape of a deal: its own fields, with the
// value rendered as a fixed two-decimal string.
type DealListResponse struct {
	models.Deal
	Value *string `json:"value"`
}

// DealResponse is the detail shape of a deal.
type DealResponse struct {
	DealListResponse
	Contact *models.Contact `json:"contact"`
	Company *models.Company `json:"company"`
}

type PageResponse[T any] struct {
	Items   []T   `json:"items"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Pages   int   `json:"pages"`
}
