package models

import (
	"time"
)

// Role is fixed at sign-up. There is no update path for it.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAgent    Role = "agent"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

// SelfAssignable reports whether the role may be chosen at sign-up.
// Admins are only created by seeding.
func (r Role) SelfAssignable() bool {
	return r == RoleCustomer || r == RoleAgent
}

// Profile is a marketplace user. Agents start unverified and are approved by
// an admin through the agent verification queue.
type Profile struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"` // never exposed in JSON
	FullName     string    `gorm:"size:255" json:"full_name"`
	Phone        string    `gorm:"size:50" json:"phone,omitempty"`
	Bio          string    `gorm:"type:text" json:"bio,omitempty"`
	AvatarURL    string    `gorm:"size:512" json:"avatar_url,omitempty"`
	Role         Role      `gorm:"size:20;not null;index;default:customer" json:"role"`
	Verified     bool      `gorm:"not null;default:false" json:"verified"`
}

func (p *Profile) IsAgent() bool { return p.Role == RoleAgent }
func (p *Profile) IsAdmin() bool { return p.Role == RoleAdmin }

// GetUserID makes a profile owned by itself.
func (p *Profile) GetUserID() uint { return p.ID }

// DisplayName falls back to the email when no name was given.
func (p *Profile) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Email
}

// Permission grants a role one action on a resource type.
// Format: "resource:action" (e.g., "property:create", "review:approve").
type Permission struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Role         Role      `gorm:"size:20;not null;uniqueIndex:idx_perm_role_resource_action" json:"role"`
	ResourceType string    `gorm:"size:50;not null;uniqueIndex:idx_perm_role_resource_action" json:"resource_type"`
	Action       string    `gorm:"size:50;not null;uniqueIndex:idx_perm_role_resource_action" json:"action"`
	Description  string    `gorm:"size:200" json:"description,omitempty"`
}

// Code returns the permission in "resource:action" format for matching.
func (p Permission) Code() string {
	return p.ResourceType + ":" + p.Action
}
