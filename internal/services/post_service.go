// Package services – PostService
//
// This file implements the PostService, which owns the post store: suit
// creation, recency paging, and creator filtering. It also exposes the
// narrow counter surface (post lookups plus the four counter mutators)
// that the interaction and tipping services consume, so collaborators
// never see the full post API.
package services

import (
	"context"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/tbourn/go-suits-backend/internal/domain"
	"github.com/tbourn/go-suits-backend/internal/events"
	"github.com/tbourn/go-suits-backend/internal/repo"
	"github.com/tbourn/go-suits-backend/internal/utils"
)

const (
	// defaultMaxContentRunes caps suit content, measured in runes.
	defaultMaxContentRunes = 280
	// defaultPreviewRunes caps the content preview carried by the
	// PostCreated event.
	defaultPreviewRunes = 100
)

// PostService provides suit lifecycle operations and the chronological
// index queries.
type PostService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Events records outbox notifications inside each transaction.
	Events events.Recorder

	// MaxContentRunes caps post content by rune length.
	MaxContentRunes int
	// PreviewRunes caps the event preview by rune length.
	PreviewRunes int
}

// NewPostService constructs a PostService with the platform's content limits.
func NewPostService(db *gorm.DB) *PostService {
	return &PostService{
		DB:              db,
		MaxContentRunes: defaultMaxContentRunes,
		PreviewRunes:    defaultPreviewRunes,
	}
}

// Create publishes a new suit authored by caller.
//
// Semantics and validation:
//   - content must be non-empty; otherwise ErrEmptyContent.
//   - content must not exceed MaxContentRunes runes (codepoints, not
//     bytes); otherwise ErrContentTooLong.
//
// On success the post is appended to the chronological index with all
// counters zeroed, and a PostCreated event carrying a clipped preview is
// recorded in the same transaction.
func (s *PostService) Create(ctx context.Context, caller, content string, mediaURLs []string) (*domain.Post, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > s.MaxContentRunes {
		return nil, ErrContentTooLong
	}

	var created *domain.Post
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := repo.CreatePost(ctx, tx, caller, content, mediaURLs)
		if err != nil {
			return err
		}
		created = p

		return s.Events.Record(ctx, tx, events.TypePostCreated, caller, p.ID, events.PostCreated{
			PostID:  p.ID,
			Creator: caller,
			Preview: utils.ClipRunes(content, s.PreviewRunes),
		})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Get fetches a post by ID, or ErrPostNotFound.
func (s *PostService) Get(ctx context.Context, id string) (*domain.Post, error) {
	p, err := repo.GetPost(ctx, s.DB, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return p, nil
}

// GetRecent returns up to limit posts in reverse-chronological order,
// skipping the offset newest entries, together with the total post count.
// An offset at or beyond the total yields an empty page, never an error.
func (s *PostService) GetRecent(ctx context.Context, limit, offset int) ([]domain.Post, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	total, err := repo.CountPosts(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 || int64(offset) >= total {
		return []domain.Post{}, total, nil
	}

	items, err := repo.ListRecentPosts(ctx, s.DB, offset, limit)
	return items, total, err
}

// GetByCreator returns every post authored by the address, oldest first.
// This is a full scan over the post store.
func (s *PostService) GetByCreator(ctx context.Context, creator string) ([]domain.Post, error) {
	return repo.ListPostsByCreator(ctx, s.DB, creator)
}

//
// Counter surface consumed by InteractionService and TipService. Each
// method delegates to the trusted single-statement repo mutator; dedup
// and authorization live with the callers, which invoke these only from
// inside their own transactions.
//

// GetTx fetches a post on the caller's transaction handle.
func (s *PostService) GetTx(ctx context.Context, tx *gorm.DB, id string) (*domain.Post, error) {
	return repo.GetPost(ctx, tx, id)
}

// IncrementLike adds one to a post's like counter.
func (s *PostService) IncrementLike(ctx context.Context, tx *gorm.DB, id string) error {
	return repo.IncrementLikeCount(ctx, tx, id)
}

// DecrementLike subtracts one from a post's like counter, floor zero.
func (s *PostService) DecrementLike(ctx context.Context, tx *gorm.DB, id string) error {
	return repo.DecrementLikeCount(ctx, tx, id)
}

// IncrementComment adds one to a post's comment counter.
func (s *PostService) IncrementComment(ctx context.Context, tx *gorm.DB, id string) error {
	return repo.IncrementCommentCount(ctx, tx, id)
}

// IncrementRetweet adds one to a post's retweet counter.
func (s *PostService) IncrementRetweet(ctx context.Context, tx *gorm.DB, id string) error {
	return repo.IncrementRetweetCount(ctx, tx, id)
}

// DecrementRetweet subtracts one from a post's retweet counter, floor zero.
func (s *PostService) DecrementRetweet(ctx context.Context, tx *gorm.DB, id string) error {
	return repo.DecrementRetweetCount(ctx, tx, id)
}

// AddTipAmount adds amount to a post's lifetime tip total.
func (s *PostService) AddTipAmount(ctx context.Context, tx *gorm.DB, id string, amount int64) error {
	return repo.AddTipAmount(ctx, tx, id, amount)
}
