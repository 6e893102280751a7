// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Post
// model: creation, chronological paging, creator filtering, and the four
// denormalized counter mutators.
//
// Error semantics:
//   - When a post is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// The counter mutators are trusted primitives: they apply a single
// arithmetic UPDATE with no pairing verification of their own. Dedup of
// like/retweet actions lives in the interaction registry; these functions
// only guarantee that decrements floor at zero.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-suits-backend/internal/domain"
)

// CreatePost inserts a new Post authored by creator with zeroed counters.
// The post ID is a randomly generated UUID and CreatedAt is set to UTC;
// the (created_at, id) ordering of the table is the chronological index
// used for recency paging.
func CreatePost(ctx context.Context, db *gorm.DB, creator, content string, mediaURLs []string) (*domain.Post, error) {
	p := &domain.Post{
		ID:        uuid.NewString(),
		Creator:   creator,
		Content:   content,
		MediaURLs: mediaURLs,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// GetPost fetches a post by ID, or ErrNotFound if missing.
func GetPost(ctx context.Context, db *gorm.DB, id string) (*domain.Post, error) {
	var p domain.Post
	if err := db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// CountPosts returns the total number of posts.
func CountPosts(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Post{}).Count(&total).Error
	return total, err
}

// ListRecentPosts returns up to limit posts in reverse-chronological order
// after skipping the offset newest entries. An offset at or beyond the total
// yields an empty slice; the OFFSET/LIMIT pair cannot underflow the way the
// original unsigned index loop could.
func ListRecentPosts(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Post, error) {
	var out []domain.Post
	err := db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListPostsByCreator returns every post authored by the address, oldest
// first. The creator column is intentionally unindexed, so this is a full
// table scan; simple correctness was chosen over an index here and the
// cost is accepted as a scalability limit.
func ListPostsByCreator(ctx context.Context, db *gorm.DB, creator string) ([]domain.Post, error) {
	var out []domain.Post
	err := db.WithContext(ctx).
		Where("creator = ?", creator).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// PostsStats returns the post count and the newest creation timestamp.
// Used to build weak ETags for the recency feed.
func PostsStats(ctx context.Context, db *gorm.DB) (int64, *time.Time, error) {
	var total int64
	if err := db.WithContext(ctx).Model(&domain.Post{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}
	if total == 0 {
		return 0, nil, nil
	}
	// Select the column directly instead of MAX(): an aggregate loses the
	// column's declared type, so the sqlite driver would hand back a string
	// that cannot be scanned into a time.Time.
	var maxTS time.Time
	err := db.WithContext(ctx).
		Model(&domain.Post{}).
		Select("created_at").
		Order("created_at DESC").
		Limit(1).
		Scan(&maxTS).Error
	if err != nil {
		return 0, nil, err
	}
	return total, &maxTS, nil
}

// incrementCounter bumps a named counter column by one.
func incrementCounter(ctx context.Context, db *gorm.DB, postID, column string) error {
	res := db.WithContext(ctx).
		Model(&domain.Post{}).
		Where("id = ?", postID).
		UpdateColumn(column, gorm.Expr(column+" + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// decrementCounter lowers a named counter column by one, flooring at zero.
// A stray decrement against an already-zero counter is a no-op rather than
// an underflow.
func decrementCounter(ctx context.Context, db *gorm.DB, postID, column string) error {
	res := db.WithContext(ctx).
		Model(&domain.Post{}).
		Where("id = ?", postID).
		UpdateColumn(column, gorm.Expr("CASE WHEN "+column+" > 0 THEN "+column+" - 1 ELSE 0 END"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementLikeCount adds one to the post's like counter.
func IncrementLikeCount(ctx context.Context, db *gorm.DB, postID string) error {
	return incrementCounter(ctx, db, postID, "like_count")
}

// DecrementLikeCount subtracts one from the post's like counter, floor zero.
func DecrementLikeCount(ctx context.Context, db *gorm.DB, postID string) error {
	return decrementCounter(ctx, db, postID, "like_count")
}

// IncrementCommentCount adds one to the post's comment counter. Comments
// are never deleted through this system, so no decrement exists.
func IncrementCommentCount(ctx context.Context, db *gorm.DB, postID string) error {
	return incrementCounter(ctx, db, postID, "comment_count")
}

// IncrementRetweetCount adds one to the post's retweet counter.
func IncrementRetweetCount(ctx context.Context, db *gorm.DB, postID string) error {
	return incrementCounter(ctx, db, postID, "retweet_count")
}

// DecrementRetweetCount subtracts one from the post's retweet counter,
// floor zero.
func DecrementRetweetCount(ctx context.Context, db *gorm.DB, postID string) error {
	return decrementCounter(ctx, db, postID, "retweet_count")
}

// AddTipAmount adds amount (minor units) to the post's lifetime tip total.
func AddTipAmount(ctx context.Context, db *gorm.DB, postID string, amount int64) error {
	res := db.WithContext(ctx).
		Model(&domain.Post{}).
		Where("id = ?", postID).
		UpdateColumn("tip_total", gorm.Expr("tip_total + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
