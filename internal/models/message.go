package models

import "time"

// Message is a chat line about a property. Messages are never edited or
// deleted. ClientID is generated by the sender and makes resubmission
// idempotent.
type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ClientID   string    `gorm:"size:36;not null;uniqueIndex" json:"client_id"`
	PropertyID uint      `gorm:"not null;index:idx_messages_property_created" json:"property_id"`
	SenderID   uint      `gorm:"not null;index" json:"sender_id"`
	ReceiverID uint      `gorm:"not null;index" json:"receiver_id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `gorm:"index:idx_messages_property_created" json:"created_at"`
}

// Involves reports whether userID is the sender or the receiver.
func (m *Message) Involves(userID uint) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}
