// Package models defines the core domain models of the CRM: companies,
// contacts, deals and activities, together with their partial-update
// payloads, enumerations and listing types.
package models

import (
	"time"

	"github.com/gartstein/crm/internal/pkg/utils"
)

// Company defines the domain model for a company entity.
type Company struct {
	// ID is the unique identifier for the company.
	ID string `gorm:"type:varchar(36);primaryKey" json:"id"`
	// Name is the company’s name.
	Name string `gorm:"size:255;not null" json:"name"`
	// Website is the company’s public web address.
	Website *string `gorm:"size:255" json:"website"`
	// Industry is a free-text sector label.
	Industry *string `gorm:"size:255" json:"industry"`
	// Notes holds arbitrary free text.
	Notes *string `gorm:"type:text" json:"notes"`
	// CreatedAt records the timestamp when the company was created.
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	// UpdatedAt records the timestamp when the company was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// CompanyUpdate represents the fields that can be updated for a Company.
// Only fields marked as set are written.
type CompanyUpdate struct {
	// ID is the unique identifier for the company to update.
	ID       string
	Name     utils.Optional[string]
	Website  utils.Optional[string]
	Industry utils.Optional[string]
	Notes    utils.Optional[string]
}

// Changes returns the column assignments carried by the update.
func (u *CompanyUpdate) Changes() map[string]any {
	changes := make(map[string]any)
	putIfSet(changes, "name", u.Name)
	putIfSet(changes, "website", u.Website)
	putIfSet(changes, "industry", u.Industry)
	putIfSet(changes, "notes", u.Notes)
	return changes
}

// CompanyFilter narrows a company listing.
type CompanyFilter struct {
	// Search is matched case-insensitively against the name.
	Search string
}

func putIfSet[T any](changes map[string]any, column string, value utils.Optional[T]) {
	if value.Set {
		changes[column] = value.Interface()
	}
}
