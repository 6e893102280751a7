package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-suits-backend/internal/domain"
)

// TipService defines the tipping-ledger operations consumed by HTTP handlers.
type TipService interface {
	GetOrCreateBalance(ctx context.Context, owner string) (*domain.TipBalance, error)
	TipPost(ctx context.Context, caller, postID, balanceID string, amount int64) (*domain.TipBalance, error)
	Withdraw(ctx context.Context, caller, balanceID string, amount int64) (*domain.TipBalance, error)
	GetBalance(ctx context.Context, id string) (*domain.TipBalance, error)
	GetBalanceByOwner(ctx context.Context, owner string) (*domain.TipBalance, error)
}

// TipRequest is the JSON payload for tipping a post.
type TipRequest struct {
	// Amount is the tip in minor units. Must meet the configured minimum.
	Amount int64 `json:"amount" binding:"required" example:"1000"`
	// BalanceID optionally targets an existing balance; it must belong to
	// the post's creator. When empty the creator's balance is used,
	// created lazily if missing.
	BalanceID string `json:"balance_id,omitempty"`
}

// WithdrawRequest is the JSON payload for withdrawing accumulated tips.
type WithdrawRequest struct {
	// Amount is the withdrawal in minor units. Must be positive.
	Amount int64 `json:"amount" binding:"required" example:"500"`
}

// TipPost godoc
// @ID          tipPost
// @Summary     Tip a post's creator
// @Description Credits the creator's balance, bumps the post's tip total and records the transfer.
// @Tags        Tips
// @Accept      json
// @Produce     json
// @Param       X-User-ID        header  string  false "Caller address (demo header)"
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries"
// @Param       id         path    string  true  "Post ID"
// @Param       body       body    handlers.TipRequest  true  "Tip payload"
// @Success     200  {object}  domain.TipBalance
// @Failure     400  {object}  handlers.ErrorResponse  "Amount below minimum"
// @Failure     403  {object}  handlers.ErrorResponse  "Cannot tip own post or balance owner mismatch"
// @Failure     404  {object}  handlers.ErrorResponse  "Post or balance not found"
// @Router      /posts/{id}/tip [post]
func (h *Handlers) TipPost(c *gin.Context) {
	var req TipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	if rec, hit := h.replayedIdempotency(c, c.Param("id")); hit {
		if prev, err := h.tipSvc.GetBalance(c.Request.Context(), rec.ResultID); err == nil {
			serveReplay(c, rec.Status, prev)
			return
		}
	}

	bal, err := h.tipSvc.TipPost(c.Request.Context(), callerAddress(c), c.Param("id"), req.BalanceID, req.Amount)
	if err != nil {
		failService(c, err)
		return
	}
	h.recordIdempotency(c, c.Param("id"), bal.ID, http.StatusOK)
	ok(c, http.StatusOK, bal)
}

// Withdraw godoc
// @ID          withdrawTips
// @Summary     Withdraw accumulated tips
// @Description Debits the caller's balance by the requested amount.
// @Tags        Tips
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "Caller address (demo header)"
// @Param       id         path    string  true  "Balance ID"
// @Param       body       body    handlers.WithdrawRequest  true  "Withdraw payload"
// @Success     200  {object}  domain.TipBalance
// @Failure     403  {object}  handlers.ErrorResponse  "Balance belongs to another owner"
// @Failure     404  {object}  handlers.ErrorResponse  "Balance not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Zero or insufficient balance"
// @Router      /balances/{id}/withdraw [post]
func (h *Handlers) Withdraw(c *gin.Context) {
	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	bal, err := h.tipSvc.Withdraw(c.Request.Context(), callerAddress(c), c.Param("id"), req.Amount)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, bal)
}

// CreateBalance godoc
// @ID          createBalance
// @Summary     Create (or fetch) the caller's tip balance
// @Description Idempotent. Returns the existing balance when the caller already has one.
// @Tags        Tips
// @Produce     json
// @Param       X-User-ID  header  string  false "Caller address (demo header)"
// @Success     200  {object}  domain.TipBalance
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /balances [post]
func (h *Handlers) CreateBalance(c *gin.Context) {
	bal, err := h.tipSvc.GetOrCreateBalance(c.Request.Context(), callerAddress(c))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, bal)
}

// GetBalance godoc
// @ID          getBalance
// @Summary     Fetch a tip balance by ID
// @Tags        Tips
// @Produce     json
// @Param       id  path  string  true  "Balance ID"
// @Success     200  {object}  domain.TipBalance
// @Failure     404  {object}  handlers.ErrorResponse  "Balance not found"
// @Router      /balances/{id} [get]
func (h *Handlers) GetBalance(c *gin.Context) {
	bal, err := h.tipSvc.GetBalance(c.Request.Context(), c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, bal)
}

// GetBalanceByOwner godoc
// @ID          getBalanceByOwner
// @Summary     Fetch a tip balance by owner address
// @Tags        Tips
// @Produce     json
// @Param       addr  path  string  true  "Owner address"
// @Success     200  {object}  domain.TipBalance
// @Failure     404  {object}  handlers.ErrorResponse  "No balance for owner"
// @Router      /owners/{addr}/balance [get]
func (h *Handlers) GetBalanceByOwner(c *gin.Context) {
	bal, err := h.tipSvc.GetBalanceByOwner(c.Request.Context(), c.Param("addr"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, bal)
}
