package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-suits-backend/internal/domain"
	"github.com/tbourn/go-suits-backend/internal/events"
	"github.com/tbourn/go-suits-backend/internal/repo"
)

func newPostSvcDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:postsvc_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Post{}, &domain.Event{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestPostCreate_ContentRules(t *testing.T) {
	db := newPostSvcDB(t)
	svc := NewPostService(db)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "0x1", "", nil); !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("empty: expected ErrEmptyContent, got %v", err)
	}
	if _, err := svc.Create(ctx, "0x1", strings.Repeat("a", 281), nil); !errors.Is(err, ErrContentTooLong) {
		t.Fatalf("281 runes: expected ErrContentTooLong, got %v", err)
	}

	// The cap counts runes, not bytes: 280 multibyte characters fit.
	if _, err := svc.Create(ctx, "0x1", strings.Repeat("é", 280), nil); err != nil {
		t.Fatalf("280 runes multibyte: %v", err)
	}
}

func TestPostCreate_ZeroCountersAndEvent(t *testing.T) {
	db := newPostSvcDB(t)
	svc := NewPostService(db)
	ctx := context.Background()

	content := strings.Repeat("x", 150)
	p, err := svc.Create(ctx, "0xa", content, []string{"https://cdn/a.png"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.LikeCount != 0 || p.CommentCount != 0 || p.RetweetCount != 0 || p.TipTotal != 0 {
		t.Fatalf("counters not zeroed: %+v", p)
	}

	evts, err := repo.ListEventsAfter(ctx, db, 0, 10)
	if err != nil || len(evts) != 1 {
		t.Fatalf("expected 1 event, got %d err=%v", len(evts), err)
	}
	if evts[0].Type != "PostCreated" || evts[0].Subject != p.ID {
		t.Fatalf("unexpected event: %+v", evts[0])
	}

	// The event preview is clipped to 100 runes of a 150 rune body.
	var payload events.PostCreated
	if err := json.Unmarshal([]byte(evts[0].Payload), &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if got := len([]rune(payload.Preview)); got != 100 {
		t.Fatalf("preview runes = %d, want 100", got)
	}
}

func TestPostGetRecent_Paging(t *testing.T) {
	db := newPostSvcDB(t)
	svc := NewPostService(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := svc.Create(ctx, "0xa", fmt.Sprintf("post %d", i), nil); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	items, total, err := svc.GetRecent(ctx, 2, 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if total != 5 || len(items) != 2 {
		t.Fatalf("total=%d len=%d, want 5 and 2", total, len(items))
	}

	// Offset at or past the total is an empty page, not an error.
	items, total, err = svc.GetRecent(ctx, 2, 5)
	if err != nil || total != 5 || len(items) != 0 {
		t.Fatalf("offset beyond total: items=%d total=%d err=%v", len(items), total, err)
	}

	// Non-positive limit falls back to the default page size.
	items, _, err = svc.GetRecent(ctx, 0, 0)
	if err != nil || len(items) != 5 {
		t.Fatalf("default limit: items=%d err=%v", len(items), err)
	}
}

func TestPostGet_NotFound(t *testing.T) {
	db := newPostSvcDB(t)
	svc := NewPostService(db)

	if _, err := svc.Get(context.Background(), "nope"); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestPostGetByCreator_FiltersAuthor(t *testing.T) {
	db := newPostSvcDB(t)
	svc := NewPostService(db)
	ctx := context.Background()

	for _, creator := range []string{"0xa", "0xb", "0xa"} {
		if _, err := svc.Create(ctx, creator, "hello from "+creator, nil); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	mine, err := svc.GetByCreator(ctx, "0xa")
	if err != nil {
		t.Fatalf("by creator: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("len = %d, want 2", len(mine))
	}
	for _, p := range mine {
		if p.Creator != "0xa" {
			t.Fatalf("foreign post in result: %+v", p)
		}
	}
}
