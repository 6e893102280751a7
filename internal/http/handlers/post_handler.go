// Post HTTP handlers.
//
// This file exposes REST endpoints for the post store:
//   - POST /posts                  (create)
//   - GET  /posts                  (recency feed, paginated, ETag support)
//   - GET  /posts/{id}             (fetch)
//   - GET  /creators/{addr}/posts   (creator filter, full scan)
package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-suits-backend/internal/domain"
	"github.com/tbourn/go-suits-backend/internal/repo"
	"github.com/tbourn/go-suits-backend/internal/services"
	"github.com/tbourn/go-suits-backend/internal/utils"
)

// PostService defines the post-store operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type PostService interface {
	// Create publishes a new suit for the caller.
	Create(ctx context.Context, caller, content string, mediaURLs []string) (*domain.Post, error)
	// Get fetches a post by ID.
	Get(ctx context.Context, id string) (*domain.Post, error)
	// GetRecent returns a reverse-chronological page and the total count.
	GetRecent(ctx context.Context, limit, offset int) ([]domain.Post, int64, error)
	// GetByCreator returns every post by an address, oldest first.
	GetByCreator(ctx context.Context, creator string) ([]domain.Post, error)
}

// CreatePostRequest is the JSON payload for creating a post.
type CreatePostRequest struct {
	// Content is the suit text, 1–280 characters.
	Content string `json:"content" binding:"required" example:"gm from the registry"`
	// MediaURLs optionally attaches media links.
	MediaURLs []string `json:"media_urls,omitempty"`
}

// ListPostsResponse wraps a page of posts and pagination information.
type ListPostsResponse struct {
	Posts      []domain.Post `json:"posts"`
	Pagination Pagination    `json:"pagination"`
}

// CreatePost godoc
// @ID          createPost
// @Summary     Publish a suit
// @Description Creates a post with zeroed counters and appends it to the chronological index.
// @Tags        Posts
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  false "Caller address (demo header)"  example(0xa11ce)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries"
// @Param       body             body    handlers.CreatePostRequest  true  "Create post payload"
//
// @Success     201  {object}  domain.Post
// @Failure     400  {object}  handlers.ErrorResponse  "Empty or oversized content"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /posts [post]
func (h *Handlers) CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	if rec, hit := h.replayedIdempotency(c, idemScopePosts); hit {
		if prev, err := h.postSvc.Get(c.Request.Context(), rec.ResultID); err == nil {
			serveReplay(c, rec.Status, prev)
			return
		}
	}

	p, err := h.postSvc.Create(c.Request.Context(), callerAddress(c), req.Content, req.MediaURLs)
	if err != nil {
		failService(c, err)
		return
	}
	h.recordIdempotency(c, idemScopePosts, p.ID, http.StatusCreated)
	ok(c, http.StatusCreated, p)
}

// ListRecentPosts godoc
// @ID          listRecentPosts
// @Summary     Recency feed (paginated)
// @Description Returns posts in reverse-chronological order. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Posts
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       limit          query   int     false "Page size"          minimum(1) maximum(100) default(20)
// @Param       offset         query   int     false "Newest entries to skip" minimum(0) default(0)
//
// @Success     200  {object} handlers.ListPostsResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /posts [get]
func (h *Handlers) ListRecentPosts(c *gin.Context) {
	ctx := c.Request.Context()

	limit := utils.AtoiDefault(c.Query("limit"), 20)
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}
	offset := utils.AtoiDefault(c.Query("offset"), 0)
	if offset < 0 {
		offset = 0
	}

	// ETag pre-check (best effort).
	var db *gorm.DB
	if svc, okCast := h.postSvc.(*services.PostService); okCast {
		db = svc.DB
	}
	if db != nil {
		count, maxTS, err := repo.PostsStats(ctx, db)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"posts:%d:%d:%d:%d"`, count, ts, limit, offset)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.postSvc.GetRecent(ctx, limit, offset)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	page := offset/limit + 1
	ok(c, http.StatusOK, ListPostsResponse{
		Posts:      items,
		Pagination: paginationFor(page, limit, total),
	})
}

// GetPost godoc
// @ID          getPost
// @Summary     Fetch a post by ID
// @Tags        Posts
// @Produce     json
// @Param       id  path  string  true  "Post ID"
// @Success     200  {object}  domain.Post
// @Failure     404  {object}  handlers.ErrorResponse  "Post not found"
// @Router      /posts/{id} [get]
func (h *Handlers) GetPost(c *gin.Context) {
	p, err := h.postSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// ListPostsByCreator godoc
// @ID          listPostsByCreator
// @Summary     List posts by creator address
// @Description Full scan over the post store filtered by creator, oldest first.
// @Tags        Posts
// @Produce     json
// @Param       addr  path  string  true  "Creator address"
// @Success     200  {array}  domain.Post
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /creators/{addr}/posts [get]
func (h *Handlers) ListPostsByCreator(c *gin.Context) {
	items, err := h.postSvc.GetByCreator(c.Request.Context(), c.Param("addr"))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, items)
}
