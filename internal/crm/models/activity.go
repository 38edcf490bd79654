package models

import "time"

// Activity is an interaction logged against a contact and/or a deal.
// Activities are append-only and carry no update timestamp.
type Activity struct {
	ID          string       `gorm:"type:varchar(36);primaryKey" json:"id"`
	Type        ActivityType `gorm:"size:20;not null" json:"type"`
	Description string       `gorm:"type:text;not null" json:"description"`
	ContactID   *string      `gorm:"type:varchar(36);index" json:"contact_id"`
	DealID      *string      `gorm:"type:varchar(36);index" json:"deal_id"`
	// Date is when the activity happened, as opposed to when it was recorded.
	Date      time.Time `gorm:"not null;index" json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

// ActivityFilter narrows an activity listing. Both fields combine with AND.
type ActivityFilter struct {
	ContactID *string
	DealID    *string
}
