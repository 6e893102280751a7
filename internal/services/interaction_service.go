// Package services – InteractionService
//
// This file implements the InteractionService, the state machine over
// (post, user) pairs: a like or retweet is either absent or present, and
// each transition checks the dedup registry, moves the marker row, and
// adjusts the post counter in one transaction. Comments are the simple
// case: no dedup, no self restriction, increment-only counting.
//
// The service reaches the post store only through the narrow
// InteractionPosts surface, never the full post API.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-suits-backend/internal/domain"
	"github.com/tbourn/go-suits-backend/internal/events"
	"github.com/tbourn/go-suits-backend/internal/repo"
)

// InteractionPosts is the post-store contract required by
// InteractionService: lookups plus the five counter mutators it is
// trusted to call from inside its transactions.
type InteractionPosts interface {
	// GetTx fetches a post on the given transaction handle.
	GetTx(ctx context.Context, tx *gorm.DB, id string) (*domain.Post, error)
	// IncrementLike adds one to the like counter.
	IncrementLike(ctx context.Context, tx *gorm.DB, id string) error
	// DecrementLike subtracts one from the like counter, floor zero.
	DecrementLike(ctx context.Context, tx *gorm.DB, id string) error
	// IncrementComment adds one to the comment counter.
	IncrementComment(ctx context.Context, tx *gorm.DB, id string) error
	// IncrementRetweet adds one to the retweet counter.
	IncrementRetweet(ctx context.Context, tx *gorm.DB, id string) error
	// DecrementRetweet subtracts one from the retweet counter, floor zero.
	DecrementRetweet(ctx context.Context, tx *gorm.DB, id string) error
}

// InteractionService implements likes, retweets, and comments.
type InteractionService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Posts is the narrow post-store surface.
	Posts InteractionPosts
	// Events records outbox notifications inside each transaction.
	Events events.Recorder
}

// NewInteractionService constructs an InteractionService bound to the
// given post-store surface.
func NewInteractionService(db *gorm.DB, posts InteractionPosts) *InteractionService {
	return &InteractionService{DB: db, Posts: posts}
}

// Like transitions (postID, caller) from absent to present.
//
// Semantics and validation:
//   - postID must exist; otherwise ErrPostNotFound.
//   - caller must not be the post's creator; otherwise ErrOwnInteraction.
//   - the pair must not already be present; otherwise ErrAlreadyLiked.
//
// Marker insert, counter increment, and LikeCreated event commit together.
func (s *InteractionService) Like(ctx context.Context, caller, postID string) (*domain.Like, error) {
	var created *domain.Like
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.Posts.GetTx(ctx, tx, postID)
		if err != nil {
			if repo.IsNotFound(err) {
				return ErrPostNotFound
			}
			return err
		}
		if p.Creator == caller {
			return ErrOwnInteraction
		}

		liked, err := repo.HasLiked(ctx, tx, postID, caller)
		if err != nil {
			return err
		}
		if liked {
			return ErrAlreadyLiked
		}

		l, err := repo.CreateLike(ctx, tx, postID, caller)
		if err != nil {
			if isDuplicate(err) {
				return ErrAlreadyLiked
			}
			return err
		}
		created = l

		if err := s.Posts.IncrementLike(ctx, tx, postID); err != nil {
			return err
		}

		return s.Events.Record(ctx, tx, events.TypeLikeCreated, caller, postID, events.LikeCreated{
			PostID: postID,
			Liker:  caller,
		})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Unlike transitions (postID, caller) from present to absent: the marker
// row is destroyed, its registry key freed, and the counter decremented
// (floor zero). Returns ErrLikeNotFound when the caller holds no marker
// for this post.
func (s *InteractionService) Unlike(ctx context.Context, caller, postID string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.DeleteLike(ctx, tx, postID, caller); err != nil {
			if repo.IsNotFound(err) {
				return ErrLikeNotFound
			}
			return err
		}
		return s.Posts.DecrementLike(ctx, tx, postID)
	})
}

// Retweet transitions the retweet state of (postID, caller) from absent to
// present; validation mirrors Like with ErrAlreadyRetweeted for a present
// pair.
func (s *InteractionService) Retweet(ctx context.Context, caller, postID string) (*domain.Retweet, error) {
	var created *domain.Retweet
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.Posts.GetTx(ctx, tx, postID)
		if err != nil {
			if repo.IsNotFound(err) {
				return ErrPostNotFound
			}
			return err
		}
		if p.Creator == caller {
			return ErrOwnInteraction
		}

		retweeted, err := repo.HasRetweeted(ctx, tx, postID, caller)
		if err != nil {
			return err
		}
		if retweeted {
			return ErrAlreadyRetweeted
		}

		r, err := repo.CreateRetweet(ctx, tx, postID, caller)
		if err != nil {
			if isDuplicate(err) {
				return ErrAlreadyRetweeted
			}
			return err
		}
		created = r

		if err := s.Posts.IncrementRetweet(ctx, tx, postID); err != nil {
			return err
		}

		return s.Events.Record(ctx, tx, events.TypeRetweetCreated, caller, postID, events.RetweetCreated{
			PostID:    postID,
			Retweeter: caller,
		})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Unretweet undoes a retweet; ErrRetweetNotFound when no marker exists.
func (s *InteractionService) Unretweet(ctx context.Context, caller, postID string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.DeleteRetweet(ctx, tx, postID, caller); err != nil {
			if repo.IsNotFound(err) {
				return ErrRetweetNotFound
			}
			return err
		}
		return s.Posts.DecrementRetweet(ctx, tx, postID)
	})
}

// Comment appends a comment to a post.
//
// Semantics and validation:
//   - content must be non-empty; otherwise ErrEmptyComment.
//   - postID must exist; otherwise ErrPostNotFound.
//
// There is no dedup and no self-comment restriction; creators may comment
// on their own suits. The comment counter is increment-only and can drift
// above the number of live comment rows only if rows are removed outside
// this system, which is accepted.
func (s *InteractionService) Comment(ctx context.Context, caller, postID, content string) (*domain.Comment, error) {
	if content == "" {
		return nil, ErrEmptyComment
	}

	var created *domain.Comment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.Posts.GetTx(ctx, tx, postID); err != nil {
			if repo.IsNotFound(err) {
				return ErrPostNotFound
			}
			return err
		}

		c, err := repo.CreateComment(ctx, tx, postID, caller, content)
		if err != nil {
			return err
		}
		created = c

		if err := s.Posts.IncrementComment(ctx, tx, postID); err != nil {
			return err
		}

		return s.Events.Record(ctx, tx, events.TypeCommentCreated, caller, postID, events.CommentCreated{
			CommentID: c.ID,
			PostID:    postID,
			Commenter: caller,
		})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// HasLiked reports whether user currently likes the post. O(1) registry
// membership test.
func (s *InteractionService) HasLiked(ctx context.Context, postID, user string) (bool, error) {
	return repo.HasLiked(ctx, s.DB, postID, user)
}

// HasRetweeted reports whether user currently retweets the post.
func (s *InteractionService) HasRetweeted(ctx context.Context, postID, user string) (bool, error) {
	return repo.HasRetweeted(ctx, s.DB, postID, user)
}

// ListComments returns a page of a post's comments in creation order,
// along with the total comment row count.
func (s *InteractionService) ListComments(ctx context.Context, postID string, page, pageSize int) ([]domain.Comment, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountComments(ctx, s.DB, postID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Comment{}, 0, nil
	}

	items, err := repo.ListComments(ctx, s.DB, postID, offset, pageSize)
	return items, total, err
}
