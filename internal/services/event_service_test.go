package services

import (
	"context"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-suits-backend/internal/domain"
)

func newEventSvcDB(t *testing.T) (*PostService, *EventService) {
	t.Helper()
	dsn := fmt.Sprintf("file:eventsvc_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Post{}, &domain.Event{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return NewPostService(db), NewEventService(db)
}

func TestEventList_CursorResume(t *testing.T) {
	posts, svc := newEventSvcDB(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if _, err := posts.Create(ctx, "0xa", fmt.Sprintf("suit %d", i), nil); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	first, err := svc.List(ctx, 0, 2)
	if err != nil || len(first) != 2 {
		t.Fatalf("first page: len=%d err=%v", len(first), err)
	}

	// Resuming from the last delivered cursor yields the remainder with
	// no gap and no overlap.
	rest, err := svc.List(ctx, first[len(first)-1].Seq, 10)
	if err != nil || len(rest) != 2 {
		t.Fatalf("second page: len=%d err=%v", len(rest), err)
	}
	if rest[0].Seq != first[1].Seq+1 {
		t.Fatalf("cursor gap: %d after %d", rest[0].Seq, first[1].Seq)
	}

	total, err := svc.Count(ctx)
	if err != nil || total != 4 {
		t.Fatalf("count = %d err=%v, want 4", total, err)
	}
}

func TestEventList_LimitClamped(t *testing.T) {
	posts, svc := newEventSvcDB(t)
	ctx := context.Background()

	if _, err := posts.Create(ctx, "0xa", "only one", nil); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Absurd limits are tolerated rather than rejected.
	evts, err := svc.List(ctx, 0, 1_000_000)
	if err != nil || len(evts) != 1 {
		t.Fatalf("huge limit: len=%d err=%v", len(evts), err)
	}
	evts, err = svc.List(ctx, 0, -1)
	if err != nil || len(evts) != 1 {
		t.Fatalf("negative limit: len=%d err=%v", len(evts), err)
	}
}
