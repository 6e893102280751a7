package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-suits-backend/internal/domain"
	"github.com/tbourn/go-suits-backend/internal/repo"
)

// EventService exposes the outbox to pull consumers. Rows are returned in
// sequence order so a consumer that remembers its last seen sequence can
// resume without gaps.
type EventService struct {
	DB *gorm.DB
}

// NewEventService builds an EventService backed by the given DB handle.
func NewEventService(db *gorm.DB) *EventService {
	return &EventService{DB: db}
}

// List returns up to limit events with Seq greater than after, ascending.
func (s *EventService) List(ctx context.Context, after uint64, limit int) ([]domain.Event, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > maxEventPage {
		limit = maxEventPage
	}
	return repo.ListEventsAfter(ctx, s.DB, after, limit)
}

// Count returns the total number of outbox rows.
func (s *EventService) Count(ctx context.Context) (int64, error) {
	return repo.CountEvents(ctx, s.DB)
}

// maxEventPage bounds a single pull so a lagging consumer cannot drag the
// whole outbox into one response.
const maxEventPage = 500
