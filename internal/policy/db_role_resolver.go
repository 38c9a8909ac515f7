package policy

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/diewo77/go-rems/gate"
	"github.com/diewo77/go-rems/internal/models"
)

// DBRoleResolver loads a profile's role and the grants seeded for it.
type DBRoleResolver struct {
	DB *gorm.DB
}

func NewDBRoleResolver(db *gorm.DB) *DBRoleResolver {
	return &DBRoleResolver{DB: db}
}

// Resolve returns nil, nil for unknown users so a deleted agent simply has
// no grants.
func (r *DBRoleResolver) Resolve(ctx context.Context, userID uint) (gate.Role, error) {
	var profile models.Profile
	err := r.DB.WithContext(ctx).Select("id", "role").First(&profile, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var perms []models.Permission
	if err := r.DB.WithContext(ctx).Where("role = ?", profile.Role).Find(&perms).Error; err != nil {
		return nil, err
	}
	grants := make([]gate.Permission, len(perms))
	for i, p := range perms {
		grants[i] = gate.NewPermission(p.ResourceType, gate.Action(p.Action))
	}
	return gate.NewStaticRole(string(profile.Role), grants...), nil
}
