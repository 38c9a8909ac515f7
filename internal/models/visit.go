package models

import "time"

const VisitScheduled = "scheduled"

// ScheduledVisit is a customer's request to view a property. Status is free
// text with no transition rules.
type ScheduledVisit struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	User       *Profile  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	PropertyID uint      `gorm:"index;not null" json:"property_id"`
	Property   *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	VisitDate  time.Time `gorm:"not null;index" json:"visit_date"`
	Notes      string    `gorm:"type:text" json:"notes,omitempty"`
	Status     string    `gorm:"size:50;not null;default:scheduled" json:"status"`
}

func (v *ScheduledVisit) GetUserID() uint { return v.UserID }

// ListingAgentID is the agent of the visited property, or 0 when Property
// was not loaded.
func (v *ScheduledVisit) ListingAgentID() uint {
	if v.Property == nil {
		return 0
	}
	return v.Property.AgentID
}

// Favorite marks a property for a user. The composite key makes it unique.
type Favorite struct {
	UserID     uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	PropertyID uint      `gorm:"primaryKey;autoIncrement:false" json:"property_id"`
	Property   *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (f *Favorite) GetUserID() uint { return f.UserID }
