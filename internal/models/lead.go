package models

import "time"

// Lead is the persisted form of a buyer's interest in a property.
// Status values are owned by the leads package.
type Lead struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	PropertyID uint      `gorm:"index;not null" json:"property_id"`
	AgentID    uint      `gorm:"index;not null" json:"agent_id"`
	BuyerID    uint      `gorm:"index" json:"buyer_id"`
	BuyerName  string    `gorm:"size:255;not null" json:"buyer_name"`
	BuyerEmail string    `gorm:"size:255;not null" json:"buyer_email"`
	BuyerPhone string    `gorm:"size:50" json:"buyer_phone,omitempty"`
	Message    string    `gorm:"type:text" json:"message,omitempty"`
	Status     string    `gorm:"size:20;not null;default:new;index" json:"status"`
}

func (l *Lead) GetUserID() uint { return l.AgentID }
