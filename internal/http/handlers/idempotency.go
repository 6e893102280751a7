// Idempotency plumbing for the unsafe endpoints. The middleware validates
// the Idempotency-Key header and stashes it in the request context; the
// helpers here consult the stored outcome before a handler executes and
// persist the outcome after a mutation commits, so a retry carrying the
// same key serves the original result instead of re-executing.
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-suits-backend/internal/domain"
	"github.com/tbourn/go-suits-backend/internal/http/middleware"
	"github.com/tbourn/go-suits-backend/internal/repo"
)

// HeaderIdempotencyReplayed marks responses served from a stored record
// rather than a fresh mutation.
const HeaderIdempotencyReplayed = "Idempotency-Replayed"

// idemScopePosts scopes keys for POST /posts, which targets no resource ID.
const idemScopePosts = "posts"

// idempotencyKey returns the validated key stashed by the middleware,
// falling back to the raw header when no middleware is installed.
func idempotencyKey(c *gin.Context) (string, bool) {
	if k, found := middleware.GetIdempotencyKey(c); found {
		return k, true
	}
	k := strings.TrimSpace(c.GetHeader(middleware.HeaderIdempotencyKey))
	return k, k != ""
}

// replayedIdempotency returns the stored, non-expired record for this
// caller, scope, and request key, when one exists.
func (h *Handlers) replayedIdempotency(c *gin.Context, scope string) (*domain.Idempotency, bool) {
	if h.idemDB == nil {
		return nil, false
	}
	key, found := idempotencyKey(c)
	if !found {
		return nil, false
	}
	rec, err := repo.GetIdempotency(c.Request.Context(), h.idemDB, callerAddress(c), scope, key, time.Now().UTC())
	if err != nil || rec == nil {
		return nil, false
	}
	return rec, true
}

// recordIdempotency persists the outcome of a successful mutation. Best
// effort: a storage failure must not fail a request that already committed,
// and ErrDuplicate from a concurrent retry is equally ignorable.
func (h *Handlers) recordIdempotency(c *gin.Context, scope, resultID string, status int) {
	if h.idemDB == nil {
		return
	}
	key, found := idempotencyKey(c)
	if !found {
		return
	}
	_, _ = repo.CreateIdempotency(c.Request.Context(), h.idemDB, callerAddress(c), scope, key, resultID, status, h.idemTTL)
}

// serveReplay emits the stored outcome with the replay marker header.
func serveReplay(c *gin.Context, status int, body any) {
	c.Header(HeaderIdempotencyReplayed, "true")
	if status <= 0 {
		status = http.StatusOK
	}
	ok(c, status, body)
}
