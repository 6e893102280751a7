package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-suits-backend/internal/domain"
	"github.com/tbourn/go-suits-backend/internal/repo"
)

func newIdentityDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:identitysvc_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Profile{}, &domain.Event{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestCreateProfile_RegistersAndEmits(t *testing.T) {
	db := newIdentityDB(t)
	svc := NewIdentityService(db)
	ctx := context.Background()

	p, err := svc.CreateProfile(ctx, "0xa11ce", "alice", "hi there", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Username != "alice" || p.Owner != "0xa11ce" {
		t.Fatalf("unexpected profile: %+v", p)
	}

	// Registration is immediately resolvable both ways.
	owner, err := svc.GetOwnerByUsername(ctx, "alice")
	if err != nil || owner != "0xa11ce" {
		t.Fatalf("resolve owner: %q err=%v", owner, err)
	}
	free, err := svc.CheckUsernameAvailable(ctx, "alice")
	if err != nil || free {
		t.Fatalf("expected alice taken, got free=%v err=%v", free, err)
	}

	// The creation committed an outbox event.
	evts, err := repo.ListEventsAfter(ctx, db, 0, 10)
	if err != nil || len(evts) != 1 {
		t.Fatalf("expected 1 event, got %d err=%v", len(evts), err)
	}
	if evts[0].Type != "ProfileCreated" || evts[0].Actor != "0xa11ce" {
		t.Fatalf("unexpected event: %+v", evts[0])
	}
}

func TestCreateProfile_UsernameLengthBounds(t *testing.T) {
	db := newIdentityDB(t)
	svc := NewIdentityService(db)
	ctx := context.Background()

	if _, err := svc.CreateProfile(ctx, "0x1", "ab", "", ""); !errors.Is(err, ErrInvalidUsername) {
		t.Fatalf("2 runes: expected ErrInvalidUsername, got %v", err)
	}
	if _, err := svc.CreateProfile(ctx, "0x1", strings.Repeat("x", 21), "", ""); !errors.Is(err, ErrInvalidUsername) {
		t.Fatalf("21 runes: expected ErrInvalidUsername, got %v", err)
	}

	// Boundary values are accepted.
	if _, err := svc.CreateProfile(ctx, "0x1", "abc", "", ""); err != nil {
		t.Fatalf("3 runes: %v", err)
	}
	if _, err := svc.CreateProfile(ctx, "0x2", strings.Repeat("y", 20), "", ""); err != nil {
		t.Fatalf("20 runes: %v", err)
	}
}

func TestCreateProfile_UniquenessRules(t *testing.T) {
	db := newIdentityDB(t)
	svc := NewIdentityService(db)
	ctx := context.Background()

	if _, err := svc.CreateProfile(ctx, "0x1", "frank", "", ""); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Same username, different owner.
	if _, err := svc.CreateProfile(ctx, "0x2", "frank", "", ""); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	// Same owner, different username.
	if _, err := svc.CreateProfile(ctx, "0x1", "franklin", "", ""); !errors.Is(err, ErrProfileExists) {
		t.Fatalf("expected ErrProfileExists, got %v", err)
	}
}

func TestUpdateProfile_OwnershipAndRename(t *testing.T) {
	db := newIdentityDB(t)
	svc := NewIdentityService(db)
	ctx := context.Background()

	p, err := svc.CreateProfile(ctx, "0x1", "grace", "", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// A stranger cannot touch the profile.
	if _, err := svc.UpdateProfile(ctx, "0xmallory", p.ID, "gracie", "", ""); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	// Owner renames; the old handle is immediately free, the new one taken.
	updated, err := svc.UpdateProfile(ctx, "0x1", p.ID, "gracie", "new bio", "")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Username != "gracie" || updated.Bio != "new bio" {
		t.Fatalf("unexpected updated profile: %+v", updated)
	}

	free, _ := svc.CheckUsernameAvailable(ctx, "grace")
	if !free {
		t.Fatal("expected old handle freed after rename")
	}
	if _, err := svc.GetOwnerByUsername(ctx, "grace"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected old handle unresolvable, got %v", err)
	}
}

func TestUpdateProfile_RenameToTakenFails(t *testing.T) {
	db := newIdentityDB(t)
	svc := NewIdentityService(db)
	ctx := context.Background()

	if _, err := svc.CreateProfile(ctx, "0x1", "heidi", "", ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	p2, err := svc.CreateProfile(ctx, "0x2", "ivan", "", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.UpdateProfile(ctx, "0x2", p2.ID, "heidi", "", ""); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	// The failed rename must not have disturbed either registration.
	owner, _ := svc.GetOwnerByUsername(ctx, "ivan")
	if owner != "0x2" {
		t.Fatalf("ivan no longer resolves to 0x2: %q", owner)
	}
}

func TestUpdateProfile_SameUsernameSkipsAvailabilityCheck(t *testing.T) {
	db := newIdentityDB(t)
	svc := NewIdentityService(db)
	ctx := context.Background()

	p, err := svc.CreateProfile(ctx, "0x1", "judy", "old", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Keeping the same handle while editing the bio is always allowed.
	updated, err := svc.UpdateProfile(ctx, "0x1", p.ID, "judy", "fresh bio", "https://cdn/j.png")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Bio != "fresh bio" || updated.Username != "judy" {
		t.Fatalf("unexpected profile: %+v", updated)
	}
}

func TestUsername_NormalizedBeforeRegistry(t *testing.T) {
	db := newIdentityDB(t)
	svc := NewIdentityService(db)
	ctx := context.Background()

	if _, err := svc.CreateProfile(ctx, "0x1", "  kate  ", "", ""); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Lookup with surrounding whitespace resolves the same handle.
	owner, err := svc.GetOwnerByUsername(ctx, " kate ")
	if err != nil || owner != "0x1" {
		t.Fatalf("normalized lookup failed: %q err=%v", owner, err)
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	db := newIdentityDB(t)
	svc := NewIdentityService(db)

	if _, err := svc.GetProfile(context.Background(), "missing"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
	if _, err := svc.GetProfileByOwner(context.Background(), "0xmissing"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}
