package models

import (
	"time"

	"github.com/gartstein/crm/internal/pkg/utils"
	"github.com/shopspring/decimal"
)

// Deal is a sales opportunity moving through the pipeline.
type Deal struct {
	ID    string           `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title string           `gorm:"size:255;not null" json:"title"`
	Value *decimal.Decimal `gorm:"type:numeric(15,2)" json:"value"`
	// Stage defaults to StageLead when left empty on creation.
	Stage         DealStage `gorm:"size:20;not null;index" json:"stage"`
	ContactID     *string   `gorm:"type:varchar(36);index" json:"contact_id"`
	CompanyID     *string   `gorm:"type:varchar(36);index" json:"company_id"`
	Notes         *string   `gorm:"type:text" json:"notes"`
	ExpectedClose *Date     `gorm:"type:date" json:"expected_close"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DealDetail is a Deal with its contact and company resolved.
type DealDetail struct {
	Deal
	Contact *Contact
	Company *Company
}

// DealUpdate carries a partial update of a Deal.
type DealUpdate struct {
	ID            string
	Title         utils.Optional[string]
	Value         utils.Optional[decimal.Decimal]
	Stage         utils.Optional[DealStage]
	ContactID     utils.Optional[string]
	CompanyID     utils.Optional[string]
	Notes         utils.Optional[string]
	ExpectedClose utils.Optional[Date]
}

// Changes returns the column assignments carried by the update.
func (u *DealUpdate) Changes() map[string]any {
	changes := make(map[string]any)
	putIfSet(changes, "title", u.Title)
	putIfSet(changes, "value", u.Value)
	putIfSet(changes, "stage", u.Stage)
	putIfSet(changes, "contact_id", u.ContactID)
	putIfSet(changes, "company_id", u.CompanyID)
	putIfSet(changes, "notes", u.Notes)
	putIfSet(changes, "expected_close", u.ExpectedClose)
	return changes
}

// DealFilter narrows a deal listing.
type DealFilter struct {
	// Stage, when set, must match exactly.
	Stage *DealStage
}
