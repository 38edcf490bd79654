package models

import (
	"time"

	"github.com/gartstein/crm/internal/pkg/utils"
)

// Contact is a person, optionally attached to a company.
type Contact struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	FirstName string    `gorm:"size:255;not null" json:"first_name"`
	LastName  string    `gorm:"size:255;not null" json:"last_name"`
	Email     *string   `gorm:"size:255" json:"email"`
	Phone     *string   `gorm:"size:50" json:"phone"`
	CompanyID *string   `gorm:"type:varchar(36);index" json:"company_id"`
	Notes     *string   `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ContactDetail is a Contact with its company resolved. Company is nil when
// the contact has no company or the referenced company no longer exists.
type ContactDetail struct {
	Contact
	Company *Company
}

// ContactUpdate carries a partial update of a Contact.
type ContactUpdate struct {
	ID        string
	FirstName utils.Optional[string]
	LastName  utils.Optional[string]
	Email     utils.Optional[string]
	Phone     utils.Optional[string]
	CompanyID utils.Optional[string]
	Notes     utils.Optional[string]
}

// Changes returns the column assignments carried by the update.
func (u *ContactUpdate) Changes() map[string]any {
	changes := make(map[string]any)
	putIfSet(changes, "first_name", u.FirstName)
	putIfSet(changes, "last_name", u.LastName)
	putIfSet(changes, "email", u.Email)
	putIfSet(changes, "phone", u.Phone)
	putIfSet(changes, "company_id", u.CompanyID)
	putIfSet(changes, "notes", u.Notes)
	return changes
}

// ContactFilter narrows a contact listing.
type ContactFilter struct {
	// Search is matched case-insensitively against first name, last name and email.
	Search string
}
