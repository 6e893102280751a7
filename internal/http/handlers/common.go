// Shared handler plumbing.
//
// This file holds the caller-identity extractor, pagination clamping, the
// pagination DTO, and the translation table from service-level sentinel
// errors to HTTP statuses and stable error codes. Handlers stay
// transport-thin: validate input, call a service, map the result.
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-suits-backend/internal/services"
	"github.com/tbourn/go-suits-backend/internal/utils"
)

// callerAddress extracts the authenticated caller address from Gin context
// (set by upstream middleware). If absent, it falls back to "X-User-ID"
// header (tests use it), and finally to "demo-user". It never touches
// c.Request if it's nil.
func callerAddress(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// parseSeq parses a message sequence path segment. Sequence numbers are
// dense and zero-based, so negatives are rejected here.
func parseSeq(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}

// paginationFor assembles the metadata block from a page request and total.
func paginationFor(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// failService maps a service-level error onto the HTTP error taxonomy:
// invalid input → 400, authorization failures → 403, missing entities →
// 404, registry conflicts → 409, funds errors → 402-family (409 for the
// empty escrow, 400 for overdraw), everything else → 500.
func failService(c *gin.Context, err error) {
	switch {
	// Invalid input.
	case errors.Is(err, services.ErrInvalidUsername),
		errors.Is(err, services.ErrEmptyContent),
		errors.Is(err, services.ErrContentTooLong),
		errors.Is(err, services.ErrEmptyComment),
		errors.Is(err, services.ErrEmptyMessage),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrBelowMinimumTip):
		fail(c, http.StatusBadRequest, ErrCodeInvalidInput, err.Error())

	// Authorization / self-action.
	case errors.Is(err, services.ErrNotOwner),
		errors.Is(err, services.ErrOwnInteraction),
		errors.Is(err, services.ErrSelfTip),
		errors.Is(err, services.ErrSelfChat),
		errors.Is(err, services.ErrNotParticipant),
		errors.Is(err, services.ErrBalanceOwnerMismatch):
		fail(c, http.StatusForbidden, ErrCodeForbidden, err.Error())

	// Missing entities.
	case errors.Is(err, services.ErrProfileNotFound),
		errors.Is(err, services.ErrPostNotFound),
		errors.Is(err, services.ErrLikeNotFound),
		errors.Is(err, services.ErrRetweetNotFound),
		errors.Is(err, services.ErrBalanceNotFound),
		errors.Is(err, services.ErrChatNotFound),
		errors.Is(err, services.ErrMessageIndexOutOfRange):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())

	// Registry conflicts.
	case errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrProfileExists),
		errors.Is(err, services.ErrAlreadyLiked),
		errors.Is(err, services.ErrAlreadyRetweeted),
		errors.Is(err, services.ErrAlreadyRead):
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())

	// Funds.
	case errors.Is(err, services.ErrZeroBalance),
		errors.Is(err, services.ErrInsufficientBalance):
		fail(c, http.StatusConflict, ErrCodeInsufficientFunds, err.Error())

	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}
