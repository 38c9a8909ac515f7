package db

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/go-rems/auth"
	"github.com/diewo77/go-rems/internal/models"
)

type rolePermission struct {
	ResourceType string
	Action       string
	Description  string
}

// RolePermissions is the grant table loaded into the permissions table.
var RolePermissions = map[models.Role][]rolePermission{
	models.RoleCustomer: {
		{"property", "list", "Search listings"},
		{"property", "view", "View listing details"},
		{"review", "create", "Review a property"},
		{"favorite", "*", "Manage favorites"},
		{"visit", "create", "Schedule visits"},
		{"visit", "list", "List own visits"},
		{"visit", "view", "View own visits"},
		{"lead", "create", "Show interest in a property"},
		{"message", "*", "Chat with agents"},
		{"profile", "view", "View own profile"},
		{"profile", "update", "Edit own profile"},
	},
	models.RoleAgent: {
		{"property", "*", "Manage own listings"},
		{"favorite", "*", "Manage favorites"},
		{"visit", "create", "Schedule visits"},
		{"visit", "list", "List visits on own listings"},
		{"visit", "view", "View visits on own listings"},
		{"lead", "*", "Track leads"},
		{"message", "*", "Chat with buyers"},
		{"profile", "view", "View own profile"},
		{"profile", "update", "Edit own profile"},
	},
	models.RoleAdmin: {
		{"*", "*", "Full system access"},
		{"property", "moderate", "See the listing approval queue"},
		{"property", "approve", "Publish listings"},
		{"property", "reject", "Delete listings"},
		{"review", "moderate", "See the review approval queue"},
		{"review", "approve", "Publish reviews"},
		{"review", "reject", "Delete reviews"},
		{"profile", "moderate", "List agents"},
		{"profile", "approve", "Verify agents"},
		{"profile", "reject", "Remove agents"},
	},
}

// SeedPermissions writes RolePermissions. It is idempotent.
func SeedPermissions(db *gorm.DB) error {
	for role, perms := range RolePermissions {
		for _, p := range perms {
			perm := models.Permission{Role: role, ResourceType: p.ResourceType, Action: p.Action, Description: p.Description}
			// Use FirstOrCreate to avoid duplicates
			result := db.Where("role = ? AND resource_type = ? AND action = ?", role, p.ResourceType, p.Action).
				FirstOrCreate(&perm)
			if result.Error != nil {
				return fmt.Errorf("seed permission %s:%s for %s: %w", p.ResourceType, p.Action, role, result.Error)
			}
		}
	}
	return nil
}

// SeedAdmin creates the admin account when missing. An empty password skips it.
func SeedAdmin(db *gorm.DB, email, password string) (*models.Profile, error) {
	if email == "" || password == "" {
		return nil, nil
	}
	var admin models.Profile
	err := db.Where("email = ?", email).First(&admin).Error
	if err == nil {
		return &admin, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	admin = models.Profile{Email: email, PasswordHash: hash, FullName: "Administrator", Role: models.RoleAdmin, Verified: true}
	if err := db.Create(&admin).Error; err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}
	return &admin, nil
}

// SeedDemo inserts a small data set: one verified agent, one pending agent,
// a customer, approved and pending listings and reviews. Running it twice
// does nothing the second time.
func SeedDemo(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Property{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := auth.HashPassword("demo1234")
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		agent := models.Profile{Email: "agent@rems.local", PasswordHash: hash, FullName: "Alice Martin", Role: models.RoleAgent, Verified: true}
		pending := models.Profile{Email: "newagent@rems.local", PasswordHash: hash, FullName: "Bruno Petit", Role: models.RoleAgent}
		customer := models.Profile{Email: "customer@rems.local", PasswordHash: hash, FullName: "Chloé Durand", Role: models.RoleCustomer}
		for _, p := range []*models.Profile{&agent, &pending, &customer} {
			if err := tx.Where("email = ?", p.Email).FirstOrCreate(p).Error; err != nil {
				return err
			}
		}

		listings := []models.Property{
			{AgentID: agent.ID, Title: "Bright loft near the canal", Address: "12 quai de Valmy", City: "Paris", Price: 540000, Bedrooms: 2, Bathrooms: 1, SquareFeet: 760, PropertyType: "apartment", Status: models.StatusAvailable},
			{AgentID: agent.ID, Title: "Family house with garden", Address: "4 rue des Lilas", City: "Lyon", Price: 695000, Bedrooms: 4, Bathrooms: 2, SquareFeet: 1800, PropertyType: "house", Status: models.StatusAvailable},
			{AgentID: agent.ID, Title: "Studio close to campus", Address: "88 cours Victor Hugo", City: "Bordeaux", Price: 149000, Bedrooms: 1, Bathrooms: 1, SquareFeet: 320, PropertyType: "apartment", Status: models.StatusUnderContract},
		}
		for i := range listings {
			if err := tx.Create(&listings[i]).Error; err != nil {
				return err
			}
		}
		// Only the first two go live; the studio stays in the moderation queue.
		if err := tx.Model(&models.Property{}).Where("id IN ?", []uint{listings[0].ID, listings[1].ID}).
			Update("approved", true).Error; err != nil {
			return err
		}

		reviews := []models.Review{
			{UserID: customer.ID, PropertyID: listings[0].ID, Rating: 5, Comment: "Lovely light, great agent."},
			{UserID: customer.ID, PropertyID: listings[1].ID, Rating: 3, Comment: "Garden smaller than in the photos."},
		}
		for i := range reviews {
			if err := tx.Create(&reviews[i]).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&reviews[0]).Update("approved", true).Error; err != nil {
			return err
		}

		visit := models.ScheduledVisit{UserID: customer.ID, PropertyID: listings[0].ID, VisitDate: time.Now().Add(72 * time.Hour), Status: models.VisitScheduled}
		return tx.Create(&visit).Error
	})
}
