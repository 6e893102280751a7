// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file covers the interaction ledger: like and retweet
// marker rows (deduplicated per (post, user) by unique index) and comments
// (never deduplicated, never deleted).
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-suits-backend/internal/domain"
)

// CreateLike inserts a like marker for (postID, userID). A concurrent or
// repeated insert for the same pair violates ux_like_post_user and surfaces
// as a raw unique-constraint error for the service layer to map.
func CreateLike(ctx context.Context, db *gorm.DB, postID, userID string) (*domain.Like, error) {
	l := &domain.Like{
		ID:        uuid.NewString(),
		PostID:    postID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(l).Error; err != nil {
		return nil, err
	}
	return l, nil
}

// DeleteLike removes the like marker for (postID, userID), freeing the
// registry key. Returns ErrNotFound when no marker exists.
func DeleteLike(ctx context.Context, db *gorm.DB, postID, userID string) error {
	res := db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&domain.Like{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// HasLiked reports whether a live like marker exists for (postID, userID).
func HasLiked(ctx context.Context, db *gorm.DB, postID, userID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Like{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&n).Error
	return n > 0, err
}

// CreateRetweet inserts a retweet marker for (postID, userID); dedup
// semantics match CreateLike.
func CreateRetweet(ctx context.Context, db *gorm.DB, postID, userID string) (*domain.Retweet, error) {
	r := &domain.Retweet{
		ID:        uuid.NewString(),
		PostID:    postID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// DeleteRetweet removes the retweet marker for (postID, userID).
// Returns ErrNotFound when no marker exists.
func DeleteRetweet(ctx context.Context, db *gorm.DB, postID, userID string) error {
	res := db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&domain.Retweet{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// HasRetweeted reports whether a live retweet marker exists for (postID, userID).
func HasRetweeted(ctx context.Context, db *gorm.DB, postID, userID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Retweet{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&n).Error
	return n > 0, err
}

// CreateComment inserts a comment on a post. Comments are append-only and
// carry no uniqueness constraint.
func CreateComment(ctx context.Context, db *gorm.DB, postID, userID, content string) (*domain.Comment, error) {
	c := &domain.Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// ListComments returns comments for a post ordered deterministically
// (CreatedAt ASC, ID ASC).
func ListComments(ctx context.Context, db *gorm.DB, postID string, offset, limit int) ([]domain.Comment, error) {
	var out []domain.Comment
	q := db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC")
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// CountComments returns the number of live comment rows for a post. Note
// this counts actual rows; the post's denormalized comment counter can
// legitimately run ahead of it only if rows were removed out-of-band.
func CountComments(ctx context.Context, db *gorm.DB, postID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Comment{}).
		Where("post_id = ?", postID).
		Count(&total).Error
	return total, err
}
