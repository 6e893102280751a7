package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-suits-backend/internal/domain"
	"github.com/tbourn/go-suits-backend/internal/utils"
)

// EventService defines the outbox feed operations consumed by HTTP handlers.
type EventService interface {
	List(ctx context.Context, after uint64, limit int) ([]domain.Event, error)
	Count(ctx context.Context) (int64, error)
}

// EventFeedResponse is a page of outbox events plus a resume cursor.
type EventFeedResponse struct {
	Events []domain.Event `json:"events"`
	// Next is the cursor to pass as ?after= on the following pull. It
	// equals the request's after value when no new events exist.
	Next uint64 `json:"next"`
}

// ListEvents godoc
// @ID          listEvents
// @Summary     Pull platform events
// @Description Cursor-based pull over the transactional outbox. Pass the returned next value as ?after= to resume.
// @Tags        Events
// @Produce     json
// @Param       after  query  int  false "Return events with sequence greater than this"  minimum(0) default(0)
// @Param       limit  query  int  false "Maximum events to return"  minimum(1) maximum(500) default(100)
// @Success     200  {object}  handlers.EventFeedResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /events [get]
func (h *Handlers) ListEvents(c *gin.Context) {
	after, err := strconv.ParseUint(c.DefaultQuery("after", "0"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "after must be a non-negative integer")
		return
	}
	limit := utils.AtoiDefault(c.Query("limit"), 100)

	items, err := h.eventSvc.List(c.Request.Context(), after, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	next := after
	if n := len(items); n > 0 {
		next = items[n-1].Seq
	}
	ok(c, http.StatusOK, EventFeedResponse{Events: items, Next: next})
}
