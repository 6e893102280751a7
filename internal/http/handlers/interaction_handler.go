package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-suits-backend/internal/domain"
)

// InteractionService defines the like, retweet and comment operations
// consumed by HTTP handlers.
type InteractionService interface {
	Like(ctx context.Context, caller, postID string) (*domain.Like, error)
	Unlike(ctx context.Context, caller, postID string) error
	Retweet(ctx context.Context, caller, postID string) (*domain.Retweet, error)
	Unretweet(ctx context.Context, caller, postID string) error
	Comment(ctx context.Context, caller, postID, content string) (*domain.Comment, error)
	HasLiked(ctx context.Context, postID, user string) (bool, error)
	HasRetweeted(ctx context.Context, postID, user string) (bool, error)
	ListComments(ctx context.Context, postID string, page, pageSize int) ([]domain.Comment, int64, error)
}

// CreateCommentRequest is the JSON payload for commenting on a post.
type CreateCommentRequest struct {
	Content string `json:"content" binding:"required" example:"sharp suit"`
}

// InteractionStatusResponse reports whether the user has a one-per-user
// interaction on a post.
type InteractionStatusResponse struct {
	PostID string `json:"post_id"`
	User   string `json:"user"`
	Active bool   `json:"active"`
}

// ListCommentsResponse wraps a page of comments and pagination information.
type ListCommentsResponse struct {
	Comments   []domain.Comment `json:"comments"`
	Pagination Pagination       `json:"pagination"`
}

// LikePost godoc
// @ID          likePost
// @Summary     Like a post
// @Description Records a like and increments the post's like counter. One like per user per post.
// @Tags        Interactions
// @Produce     json
// @Param       X-User-ID  header  string  false "Caller address (demo header)"
// @Param       id         path    string  true  "Post ID"
// @Success     201  {object}  domain.Like
// @Failure     403  {object}  handlers.ErrorResponse  "Cannot like own post"
// @Failure     404  {object}  handlers.ErrorResponse  "Post not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Already liked"
// @Router      /posts/{id}/like [post]
func (h *Handlers) LikePost(c *gin.Context) {
	l, err := h.interactionSvc.Like(c.Request.Context(), callerAddress(c), c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, l)
}

// UnlikePost godoc
// @ID          unlikePost
// @Summary     Remove a like
// @Description Deletes the caller's like and decrements the post's like counter (floored at zero).
// @Tags        Interactions
// @Param       X-User-ID  header  string  false "Caller address (demo header)"
// @Param       id         path    string  true  "Post ID"
// @Success     204  "Like removed"
// @Failure     404  {object}  handlers.ErrorResponse  "No like to remove"
// @Router      /posts/{id}/like [delete]
func (h *Handlers) UnlikePost(c *gin.Context) {
	if err := h.interactionSvc.Unlike(c.Request.Context(), callerAddress(c), c.Param("id")); err != nil {
		failService(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RetweetPost godoc
// @ID          retweetPost
// @Summary     Retweet a post
// @Tags        Interactions
// @Produce     json
// @Param       X-User-ID  header  string  false "Caller address (demo header)"
// @Param       id         path    string  true  "Post ID"
// @Success     201  {object}  domain.Retweet
// @Failure     403  {object}  handlers.ErrorResponse  "Cannot retweet own post"
// @Failure     404  {object}  handlers.ErrorResponse  "Post not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Already retweeted"
// @Router      /posts/{id}/retweet [post]
func (h *Handlers) RetweetPost(c *gin.Context) {
	rt, err := h.interactionSvc.Retweet(c.Request.Context(), callerAddress(c), c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, rt)
}

// UnretweetPost godoc
// @ID          unretweetPost
// @Summary     Remove a retweet
// @Tags        Interactions
// @Param       X-User-ID  header  string  false "Caller address (demo header)"
// @Param       id         path    string  true  "Post ID"
// @Success     204  "Retweet removed"
// @Failure     404  {object}  handlers.ErrorResponse  "No retweet to remove"
// @Router      /posts/{id}/retweet [delete]
func (h *Handlers) UnretweetPost(c *gin.Context) {
	if err := h.interactionSvc.Unretweet(c.Request.Context(), callerAddress(c), c.Param("id")); err != nil {
		failService(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CommentOnPost godoc
// @ID          commentOnPost
// @Summary     Comment on a post
// @Description Appends a comment and increments the post's comment counter. Multiple comments per user allowed.
// @Tags        Interactions
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "Caller address (demo header)"
// @Param       id         path    string  true  "Post ID"
// @Param       body       body    handlers.CreateCommentRequest  true  "Comment payload"
// @Success     201  {object}  domain.Comment
// @Failure     400  {object}  handlers.ErrorResponse  "Empty comment"
// @Failure     404  {object}  handlers.ErrorResponse  "Post not found"
// @Router      /posts/{id}/comments [post]
func (h *Handlers) CommentOnPost(c *gin.Context) {
	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	cm, err := h.interactionSvc.Comment(c.Request.Context(), callerAddress(c), c.Param("id"), req.Content)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, cm)
}

// ListComments godoc
// @ID          listComments
// @Summary     List comments on a post (paginated)
// @Tags        Interactions
// @Produce     json
// @Param       id         path   string  true  "Post ID"
// @Param       page       query  int     false "Page number"  minimum(1) default(1)
// @Param       page_size  query  int     false "Page size"    minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.ListCommentsResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /posts/{id}/comments [get]
func (h *Handlers) ListComments(c *gin.Context) {
	page, pageSize := clampPagination(c)

	items, total, err := h.interactionSvc.ListComments(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListCommentsResponse{
		Comments:   items,
		Pagination: paginationFor(page, pageSize, total),
	})
}

// GetLikeStatus godoc
// @ID          getLikeStatus
// @Summary     Check whether a user has liked a post
// @Tags        Interactions
// @Produce     json
// @Param       id    path   string  true  "Post ID"
// @Param       user  query  string  true  "User address"
// @Success     200  {object}  handlers.InteractionStatusResponse
// @Router      /posts/{id}/like/status [get]
func (h *Handlers) GetLikeStatus(c *gin.Context) {
	user := c.Query("user")
	if user == "" {
		user = callerAddress(c)
	}
	liked, err := h.interactionSvc.HasLiked(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, InteractionStatusResponse{PostID: c.Param("id"), User: user, Active: liked})
}

// GetRetweetStatus godoc
// @ID          getRetweetStatus
// @Summary     Check whether a user has retweeted a post
// @Tags        Interactions
// @Produce     json
// @Param       id    path   string  true  "Post ID"
// @Param       user  query  string  true  "User address"
// @Success     200  {object}  handlers.InteractionStatusResponse
// @Router      /posts/{id}/retweet/status [get]
func (h *Handlers) GetRetweetStatus(c *gin.Context) {
	user := c.Query("user")
	if user == "" {
		user = callerAddress(c)
	}
	rted, err := h.interactionSvc.HasRetweeted(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, InteractionStatusResponse{PostID: c.Param("id"), User: user, Active: rted})
}
