// Package services – IdentityService
//
// This file implements the IdentityService, which owns the username
// registry: profile creation, profile updates (including atomic renames),
// and username lookups. A profile is created at most once per address and
// a username maps to at most one live profile; both rules are checked
// inside a transaction and backed by unique indexes, so a concurrent
// writer racing for the same name loses cleanly with ErrUsernameTaken.
//
// Service-level errors (e.g., ErrInvalidUsername, ErrUsernameTaken) are
// returned for predictable cases so handlers can map them to HTTP results
// consistently.
package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/tbourn/go-suits-backend/internal/domain"
	"github.com/tbourn/go-suits-backend/internal/events"
	"github.com/tbourn/go-suits-backend/internal/repo"
)

const (
	// minUsernameRunes and maxUsernameRunes bound the registry's handles.
	minUsernameRunes = 3
	maxUsernameRunes = 20
)

// IdentityService provides profile lifecycle operations and username
// registry lookups.
type IdentityService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Events records outbox notifications inside each transaction.
	Events events.Recorder
}

// NewIdentityService constructs an IdentityService on the given handle.
func NewIdentityService(db *gorm.DB) *IdentityService {
	return &IdentityService{DB: db}
}

// normalizeUsername trims surrounding whitespace and applies NFC so that
// visually identical handles occupy the same registry key regardless of
// the client's Unicode composition.
func normalizeUsername(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// validUsername reports whether the (normalized) username's rune length
// lies in [minUsernameRunes, maxUsernameRunes].
func validUsername(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= minUsernameRunes && n <= maxUsernameRunes
}

// CreateProfile registers a new identity for owner under username.
//
// Semantics and validation:
//   - username must normalize to 3–20 runes; otherwise ErrInvalidUsername.
//   - username must be free; otherwise ErrUsernameTaken.
//   - owner must not already hold a profile; otherwise ErrProfileExists.
//
// The username registration, profile creation, and ProfileCreated outbox
// append commit in one transaction: there is no window where a username is
// reserved without a backing profile or vice versa.
func (s *IdentityService) CreateProfile(ctx context.Context, owner, username, bio, avatarURL string) (*domain.Profile, error) {
	username = normalizeUsername(username)
	if !validUsername(username) {
		return nil, ErrInvalidUsername
	}

	var created *domain.Profile
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := repo.UsernameExists(ctx, tx, username)
		if err != nil {
			return err
		}
		if taken {
			return ErrUsernameTaken
		}

		exists, err := repo.ProfileExistsForOwner(ctx, tx, owner)
		if err != nil {
			return err
		}
		if exists {
			return ErrProfileExists
		}

		p, err := repo.CreateProfile(ctx, tx, owner, username, bio, avatarURL)
		if err != nil {
			// A concurrent writer may still win the unique index between
			// the check and the insert.
			if isDuplicate(err) {
				return ErrUsernameTaken
			}
			return err
		}
		created = p

		return s.Events.Record(ctx, tx, events.TypeProfileCreated, owner, p.ID, events.ProfileCreated{
			ProfileID: p.ID,
			Owner:     owner,
			Username:  username,
		})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateProfile mutates a profile's username, bio, and avatar.
//
// Semantics and validation:
//   - caller must own the profile; otherwise ErrNotOwner.
//   - An unchanged username only updates bio/avatar (always allowed).
//   - A changed username is validated and checked for availability, then
//     the old mapping is removed and the new one inserted in the same
//     UPDATE: the registry never holds both names or neither.
func (s *IdentityService) UpdateProfile(ctx context.Context, caller, profileID, username, bio, avatarURL string) (*domain.Profile, error) {
	username = normalizeUsername(username)

	var updated *domain.Profile
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := repo.GetProfile(ctx, tx, profileID)
		if err != nil {
			if repo.IsNotFound(err) {
				return ErrProfileNotFound
			}
			return err
		}
		if p.Owner != caller {
			return ErrNotOwner
		}

		if username != p.Username {
			if !validUsername(username) {
				return ErrInvalidUsername
			}
			taken, err := repo.UsernameExists(ctx, tx, username)
			if err != nil {
				return err
			}
			if taken {
				return ErrUsernameTaken
			}
		}

		if err := repo.UpdateProfile(ctx, tx, profileID, username, bio, avatarURL); err != nil {
			if isDuplicate(err) {
				return ErrUsernameTaken
			}
			return err
		}

		p.Username = username
		p.Bio = bio
		p.AvatarURL = avatarURL
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CheckUsernameAvailable reports whether a username is currently free.
func (s *IdentityService) CheckUsernameAvailable(ctx context.Context, username string) (bool, error) {
	taken, err := repo.UsernameExists(ctx, s.DB, normalizeUsername(username))
	return !taken, err
}

// GetOwnerByUsername resolves a username to its owning address, or
// ErrProfileNotFound if the name is not registered.
func (s *IdentityService) GetOwnerByUsername(ctx context.Context, username string) (string, error) {
	p, err := repo.GetProfileByUsername(ctx, s.DB, normalizeUsername(username))
	if err != nil {
		if repo.IsNotFound(err) {
			return "", ErrProfileNotFound
		}
		return "", err
	}
	return p.Owner, nil
}

// GetProfile fetches a profile by ID, or ErrProfileNotFound.
func (s *IdentityService) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	p, err := repo.GetProfile(ctx, s.DB, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return p, nil
}

// GetProfileByOwner fetches the profile held by an address, or
// ErrProfileNotFound.
func (s *IdentityService) GetProfileByOwner(ctx context.Context, owner string) (*domain.Profile, error) {
	p, err := repo.GetProfileByOwner(ctx, s.DB, owner)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return p, nil
}

// isDuplicate attempts to detect unique-constraint violations across drivers
// that may not map to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// SQLite typically: "UNIQUE constraint failed"
	// Postgres typically: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
