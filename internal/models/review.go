package models

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Review is hidden from the public property page until approved.
type Review struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	User       *Profile  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	PropertyID uint      `gorm:"index;not null" json:"property_id"`
	Property   *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	Rating     int       `gorm:"not null;check:chk_reviews_rating,rating >= 1 AND rating <= 5" json:"rating"`
	Comment    string    `gorm:"type:text" json:"comment,omitempty"`
	Approved   bool      `gorm:"not null;default:false;index" json:"approved"`
}

func (r *Review) GetUserID() uint { return r.UserID }

// ListingAgentID is the agent of the reviewed property, or 0 when Property
// was not loaded.
func (r *Review) ListingAgentID() uint {
	if r.Property == nil {
		return 0
	}
	return r.Property.AgentID
}

// ValidRating reports whether rating is within [MinRating, MaxRating].
func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}
