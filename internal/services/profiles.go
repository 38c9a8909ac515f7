package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/go-rems/auth"
	"github.com/diewo77/go-rems/internal/models"
	"github.com/diewo77/go-rems/internal/store"
	"github.com/diewo77/go-rems/validation"
)

type SignUpInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"max=255"`
	Role     string `json:"role" validate:"oneof=customer agent"`
}

// ProfileInput holds the editable profile fields. Role and verification
// cannot be changed here.
type ProfileInput struct {
	FullName  string `json:"full_name" validate:"max=255"`
	Phone     string `json:"phone" validate:"max=50"`
	Bio       string `json:"bio" validate:"max=2000"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url,max=512"`
}

type Profiles struct {
	db *gorm.DB
}

func NewProfiles(db *gorm.DB) *Profiles {
	return &Profiles{db: db}
}

// SignUp creates a customer or agent. Agents start unverified.
func (s *Profiles) SignUp(ctx context.Context, in SignUpInput) (*models.Profile, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)
	if in.Role == "" {
		in.Role = string(models.RoleCustomer)
	}
	if v := validation.Struct(in); !v.Empty() {
		return nil, v
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	p := &models.Profile{Email: in.Email, PasswordHash: hash, FullName: in.FullName, Role: models.Role(in.Role), Verified: false}
	if err := store.Insert(ctx, s.db, p); err != nil {
		if store.IsUniqueViolation(err) {
			return nil, validation.Violations{"email": "email_taken"}
		}
		return nil, err
	}
	return p, nil
}

// Authenticate returns the profile matching email and password.
func (s *Profiles) Authenticate(ctx context.Context, email, password string) (*models.Profile, error) {
	var p models.Profile
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, auth.ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := auth.CheckPassword(p.PasswordHash, password); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Profiles) Get(ctx context.Context, id uint) (*models.Profile, error) {
	return store.Get[models.Profile](ctx, s.db, id)
}

// Exists backs the session verifier.
func (s *Profiles) Exists(ctx context.Context, id uint) bool {
	n, err := store.Count[models.Profile](ctx, s.db, func(q *gorm.DB) *gorm.DB { return q.Where("id = ?", id) })
	return err == nil && n > 0
}

func (s *Profiles) Update(ctx context.Context, id uint, in ProfileInput) (*models.Profile, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.AvatarURL = strings.TrimSpace(in.AvatarURL)
	if v := validation.Struct(in); !v.Empty() {
		return nil, v
	}
	err := store.Update[models.Profile](ctx, s.db, id, map[string]any{
		"full_name":  in.FullName,
		"phone":      in.Phone,
		"bio":        in.Bio,
		"avatar_url": in.AvatarURL,
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Directory is the admin user list with a count per role.
type Directory struct {
	Profiles []models.Profile    `json:"profiles"`
	Counts   map[models.Role]int `json:"counts"`
	Total    int                 `json:"total"`
}

// List returns every profile, newest first, with per-role counts. Each
// known role is present in Counts even when zero.
func (s *Profiles) List(ctx context.Context) (*Directory, error) {
	profiles, err := store.List[models.Profile](ctx, s.db, func(q *gorm.DB) *gorm.DB {
		return q.Order("created_at DESC, id DESC")
	})
	if err != nil {
		return nil, err
	}
	d := &Directory{
		Profiles: profiles,
		Counts:   map[models.Role]int{models.RoleCustomer: 0, models.RoleAgent: 0, models.RoleAdmin: 0},
		Total:    len(profiles),
	}
	for _, p := range profiles {
		d.Counts[p.Role]++
	}
	return d, nil
}
