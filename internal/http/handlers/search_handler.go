package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-suits-backend/internal/search"
	"github.com/tbourn/go-suits-backend/internal/utils"
)

// SearchService defines the post-search operations consumed by HTTP handlers.
type SearchService interface {
	Search(ctx context.Context, query string, k int) ([]search.Result, error)
}

// SearchResponse is a ranked list of matching posts.
type SearchResponse struct {
	Query   string          `json:"query"`
	Results []search.Result `json:"results"`
}

// SearchPosts godoc
// @ID          searchPosts
// @Summary     Search recent posts
// @Description Ranks recent posts against the query by token similarity. The index trails writes by a short window.
// @Tags        Search
// @Produce     json
// @Param       q  query  string  true  "Search query"
// @Param       k  query  int     false "Maximum results"  minimum(1) maximum(50) default(10)
// @Success     200  {object}  handlers.SearchResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing query"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /search/posts [get]
func (h *Handlers) SearchPosts(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "q is required")
		return
	}
	k := utils.AtoiDefault(c.Query("k"), 10)
	if k < 1 {
		k = 1
	}
	if k > 50 {
		k = 50
	}

	results, err := h.searchSvc.Search(c.Request.Context(), q, k)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, SearchResponse{Query: q, Results: results})
}
