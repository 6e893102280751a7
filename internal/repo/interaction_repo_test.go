package repo

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-suits-backend/internal/domain"
)

func newInteractionRepoDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("interaction_repo_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := db.AutoMigrate(&domain.Post{}, &domain.Like{}, &domain.Retweet{}, &domain.Comment{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	// Seed one post for the markers to reference.
	p := &domain.Post{ID: "p1", Creator: "author", Content: "hello", MediaURLs: domain.StringList{}, CreatedAt: time.Now().UTC()}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return db
}

func TestLike_RoundtripAndDedup(t *testing.T) {
	db := newInteractionRepoDB(t)
	ctx := context.Background()

	if _, err := CreateLike(ctx, db, "p1", "u1"); err != nil {
		t.Fatalf("like: %v", err)
	}

	liked, err := HasLiked(ctx, db, "p1", "u1")
	if err != nil || !liked {
		t.Fatalf("expected liked, got %v err=%v", liked, err)
	}

	// Second like for the same pair hits the unique index.
	if _, err := CreateLike(ctx, db, "p1", "u1"); err == nil {
		t.Fatal("expected unique violation on duplicate like")
	}

	if err := DeleteLike(ctx, db, "p1", "u1"); err != nil {
		t.Fatalf("unlike: %v", err)
	}
	liked, _ = HasLiked(ctx, db, "p1", "u1")
	if liked {
		t.Fatal("expected like removed")
	}

	// The registry key is free again.
	if _, err := CreateLike(ctx, db, "p1", "u1"); err != nil {
		t.Fatalf("re-like after unlike: %v", err)
	}
}

func TestDeleteLike_MissingIsNotFound(t *testing.T) {
	db := newInteractionRepoDB(t)

	if err := DeleteLike(context.Background(), db, "p1", "stranger"); !IsNotFound(err) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRetweet_IndependentOfLike(t *testing.T) {
	db := newInteractionRepoDB(t)
	ctx := context.Background()

	if _, err := CreateLike(ctx, db, "p1", "u1"); err != nil {
		t.Fatalf("like: %v", err)
	}
	if _, err := CreateRetweet(ctx, db, "p1", "u1"); err != nil {
		t.Fatalf("retweet alongside like: %v", err)
	}

	rted, err := HasRetweeted(ctx, db, "p1", "u1")
	if err != nil || !rted {
		t.Fatalf("expected retweeted, got %v err=%v", rted, err)
	}

	if err := DeleteRetweet(ctx, db, "p1", "u1"); err != nil {
		t.Fatalf("unretweet: %v", err)
	}
	if err := DeleteRetweet(ctx, db, "p1", "u1"); !IsNotFound(err) {
		t.Fatalf("expected ErrNotFound on second unretweet, got %v", err)
	}

	// The like is untouched.
	liked, _ := HasLiked(ctx, db, "p1", "u1")
	if !liked {
		t.Fatal("unretweet must not remove the like")
	}
}

func TestComments_ListInOrderAndCount(t *testing.T) {
	db := newInteractionRepoDB(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := CreateComment(ctx, db, "p1", "u1", fmt.Sprintf("comment %d", i)); err != nil {
			t.Fatalf("comment %d: %v", i, err)
		}
	}
	// Same user may comment repeatedly; a second user joins in.
	if _, err := CreateComment(ctx, db, "p1", "u2", "late reply"); err != nil {
		t.Fatalf("comment: %v", err)
	}

	n, err := CountComments(ctx, db, "p1")
	if err != nil || n != 4 {
		t.Fatalf("expected 4 comments, got %d err=%v", n, err)
	}

	page, err := ListComments(ctx, db, "p1", 0, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 2 || page[0].Content != "comment 0" {
		t.Fatalf("unexpected first page: %+v", page)
	}

	page, err = ListComments(ctx, db, "p1", 2, 10)
	if err != nil {
		t.Fatalf("list offset: %v", err)
	}
	if len(page) != 2 || page[1].Content != "late reply" {
		t.Fatalf("unexpected second page: %+v", page)
	}
}
