package models

import "time"

// PropertyStatus is the sale status of a listing. It is independent of the
// approved flag: a sold listing can still be awaiting approval.
type PropertyStatus string

const (
	StatusAvailable     PropertyStatus = "available"
	StatusPending       PropertyStatus = "pending"
	StatusUnderContract PropertyStatus = "under_contract"
	StatusSold          PropertyStatus = "sold"
)

var PropertyStatuses = []PropertyStatus{StatusAvailable, StatusPending, StatusUnderContract, StatusSold}

func (s PropertyStatus) Valid() bool {
	for _, v := range PropertyStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Property is a listing published by an agent. Every listing starts with
// Approved=false; only the listing approval gate flips it.
type Property struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	AgentID      uint           `gorm:"index;not null" json:"agent_id"`
	Agent        *Profile       `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
	Title        string         `gorm:"size:255;not null" json:"title"`
	Description  string         `gorm:"type:text" json:"description,omitempty"`
	Address      string         `gorm:"size:255;not null" json:"address"`
	City         string         `gorm:"size:120;not null;index" json:"city"`
	Price        float64        `gorm:"not null" json:"price"`
	Bedrooms     int            `gorm:"not null;default:0" json:"bedrooms"`
	Bathrooms    int            `gorm:"not null;default:0" json:"bathrooms"`
	SquareFeet   int            `gorm:"not null;default:0" json:"square_feet"`
	PropertyType string         `gorm:"size:50" json:"property_type,omitempty"`
	ImageURL     string         `gorm:"size:512" json:"image_url,omitempty"`
	Status       PropertyStatus `gorm:"size:20;not null;index;default:available" json:"status"`
	Approved     bool           `gorm:"not null;default:false;index" json:"approved"`
}

// GetUserID returns the owning agent for ownership policies.
func (p *Property) GetUserID() uint { return p.AgentID }

// Listed reports whether the property appears in public search.
func (p *Property) Listed() bool {
	return p.Approved && p.Status == StatusAvailable
}
