package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/ariebrainware/nutritrack/model"
	"gorm.io/gorm"
)

// DefaultProfileName is used when an e-mail has no usable local part.
const DefaultProfileName = "Nutricionista"

// Users manages the owning profile document of each clinician.
type Users struct {
	base
}

// NewUsers creates a user store.
func NewUsers(db *gorm.DB) *Users {
	return &Users{base: newBase(db, nil)}
}

// Get loads a profile.
func (s *Users) Get(ctx context.Context, uid string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Where("uid = ?", uid).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// ProfileName derives a display name from an e-mail address.
func ProfileName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local = strings.TrimSpace(local); local == "" {
		return DefaultProfileName
	}
	return local
}

// EnsureProfile fills absent profile fields after a sign-in. Fields that are
// already set are never overwritten.
func (s *Users) EnsureProfile(ctx context.Context, uid, email string) (*model.User, error) {
	db := s.db.WithContext(ctx)
	var u model.User
	if err := db.Where("uid = ?", uid).First(&u).Error; err != nil {
		return nil, notFound(err)
	}

	if err := db.Model(&model.User{}).
		Where("uid = ? AND (name = '' OR name IS NULL)", uid).
		Update("name", ProfileName(email)).Error; err != nil {
		return nil, fmt.Errorf("merge profile name: %w", err)
	}
	if email != "" {
		if err := db.Model(&model.User{}).
			Where("uid = ? AND (email = '' OR email IS NULL)", uid).
			Update("email", email).Error; err != nil {
			return nil, fmt.Errorf("merge profile email: %w", err)
		}
	}
	return s.Get(ctx, uid)
}

// Create inserts a user row. Used by sign-up.
func (s *Users) Create(ctx context.Context, u *model.User) error {
	return s.db.WithContext(ctx).Create(u).Error
}
