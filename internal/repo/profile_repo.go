// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Profile
// model and the username registry it carries.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition. Uniqueness of usernames and of the
// one-profile-per-address rule is enforced by unique indexes; callers that
// need a stable typed error perform an explicit existence check first and
// rely on the index only as a backstop against concurrent writers.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-suits-backend/internal/domain"
)

// CreateProfile inserts a new Profile row owned by owner. The profile ID is
// a randomly generated UUID (string), and CreatedAt is set to UTC.
//
// On success, it returns the persisted Profile. On failure, it returns a DB
// error; unique-index violations surface as raw driver errors and are mapped
// by the service layer.
func CreateProfile(ctx context.Context, db *gorm.DB, owner, username, bio, avatarURL string) (*domain.Profile, error) {
	p := &domain.Profile{
		ID:        uuid.NewString(),
		Owner:     owner,
		Username:  username,
		Bio:       bio,
		AvatarURL: avatarURL,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// GetProfile fetches a profile by its ID, or ErrNotFound if missing.
func GetProfile(ctx context.Context, db *gorm.DB, id string) (*domain.Profile, error) {
	var p domain.Profile
	if err := db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProfileByOwner fetches the profile controlled by the given address,
// or ErrNotFound if the address has not created one.
func GetProfileByOwner(ctx context.Context, db *gorm.DB, owner string) (*domain.Profile, error) {
	var p domain.Profile
	if err := db.WithContext(ctx).Where("owner = ?", owner).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProfileByUsername resolves the username registry: it returns the
// profile currently holding the name, or ErrNotFound if the name is free.
func GetProfileByUsername(ctx context.Context, db *gorm.DB, username string) (*domain.Profile, error) {
	var p domain.Profile
	if err := db.WithContext(ctx).Where("username = ?", username).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// UsernameExists reports whether a username is currently registered.
func UsernameExists(ctx context.Context, db *gorm.DB, username string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Profile{}).
		Where("username = ?", username).
		Count(&n).Error
	return n > 0, err
}

// UpdateProfile persists new username/bio/avatar values on the profile row.
// Renaming is a single-row UPDATE, so the old username mapping disappears
// and the new one appears in the same statement; there is no window where
// the registry holds both or neither.
//
// If no rows are affected (profile missing), it returns ErrNotFound.
func UpdateProfile(ctx context.Context, db *gorm.DB, id, username, bio, avatarURL string) error {
	res := db.WithContext(ctx).
		Model(&domain.Profile{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"username":   username,
			"bio":        bio,
			"avatar_url": avatarURL,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ProfileExistsForOwner reports whether the address already holds a profile.
func ProfileExistsForOwner(ctx context.Context, db *gorm.DB, owner string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Profile{}).
		Where("owner = ?", owner).
		Count(&n).Error
	return n > 0, err
}

// IsNotFound reports whether err represents a missing record, in a
// driver-agnostic way.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
