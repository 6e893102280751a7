// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the transactional event outbox: the
// append side runs inside the same transaction as the state change it
// describes, and the list side serves the off-chain indexer's cursor reads.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-suits-backend/internal/domain"
)

// AppendEvent inserts an outbox row. The db handle is expected to be a
// transaction-bound handle so the event commits or aborts together with
// the operation that produced it.
func AppendEvent(ctx context.Context, db *gorm.DB, eventType, actor, subject, payload string) (*domain.Event, error) {
	e := &domain.Event{
		Type:      eventType,
		Actor:     actor,
		Subject:   subject,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(e).Error; err != nil {
		return nil, err
	}
	return e, nil
}

// ListEventsAfter returns up to limit events with Seq > after, in Seq
// order. The indexer advances its cursor to the last Seq it received.
func ListEventsAfter(ctx context.Context, db *gorm.DB, after uint64, limit int) ([]domain.Event, error) {
	var out []domain.Event
	q := db.WithContext(ctx).
		Where("seq > ?", after).
		Order("seq ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// CountEvents returns the total number of outbox rows.
func CountEvents(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Event{}).Count(&total).Error
	return total, err
}
