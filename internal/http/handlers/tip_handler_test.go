package handlers

import (
	"net/http"
	"testing"

	"github.com/tbourn/go-suits-backend/internal/domain"
)

func TestTipPost_Endpoint(t *testing.T) {
	r, _ := newHandlerEnv(t)
	id := seedPostHTTP(t, r, "0xcreator", "tip jar open")

	// Bad JSON -> 400.
	w := doJSON(t, r, http.MethodPost, "/api/v1/posts/"+id+"/tip", "0xfan", "{bad")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad json -> %d", w.Code)
	}

	// Below the minimum -> 400.
	w = doJSON(t, r, http.MethodPost, "/api/v1/posts/"+id+"/tip", "0xfan", `{"amount":999}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("dust tip -> %d", w.Code)
	}

	// Self-tip -> 403.
	w = doJSON(t, r, http.MethodPost, "/api/v1/posts/"+id+"/tip", "0xcreator", `{"amount":1500}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("self tip -> %d", w.Code)
	}

	// Success lazily creates the creator's escrow and credits it.
	w = doJSON(t, r, http.MethodPost, "/api/v1/posts/"+id+"/tip", "0xfan", `{"amount":1500}`)
	if w.Code != http.StatusOK {
		t.Fatalf("tip -> %d: %s", w.Code, w.Body.String())
	}
	var bal domain.TipBalance
	decodeBody(t, w, &bal)
	if bal.Owner != "0xcreator" || bal.Balance != 1500 {
		t.Fatalf("unexpected balance: %+v", bal)
	}

	// Missing post -> 404.
	w = doJSON(t, r, http.MethodPost, "/api/v1/posts/missing/tip", "0xfan", `{"amount":1500}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing post -> %d", w.Code)
	}
}

func TestWithdraw_Endpoint(t *testing.T) {
	r, _ := newHandlerEnv(t)
	id := seedPostHTTP(t, r, "0xcreator", "withdrawal test")

	w := doJSON(t, r, http.MethodPost, "/api/v1/posts/"+id+"/tip", "0xfan", `{"amount":5000}`)
	if w.Code != http.StatusOK {
		t.Fatalf("tip -> %d", w.Code)
	}
	var bal domain.TipBalance
	decodeBody(t, w, &bal)

	// Strangers cannot withdraw.
	w = doJSON(t, r, http.MethodPost, "/api/v1/balances/"+bal.ID+"/withdraw", "0xmallory", `{"amount":1000}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("stranger withdraw -> %d", w.Code)
	}

	// Overdraw -> 409.
	w = doJSON(t, r, http.MethodPost, "/api/v1/balances/"+bal.ID+"/withdraw", "0xcreator", `{"amount":5001}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("overdraw -> %d", w.Code)
	}

	// Partial withdrawal succeeds and preserves the ledger invariant.
	w = doJSON(t, r, http.MethodPost, "/api/v1/balances/"+bal.ID+"/withdraw", "0xcreator", `{"amount":3000}`)
	if w.Code != http.StatusOK {
		t.Fatalf("withdraw -> %d: %s", w.Code, w.Body.String())
	}
	var after domain.TipBalance
	decodeBody(t, w, &after)
	if after.Balance != 2000 || after.TotalWithdrawn != 3000 {
		t.Fatalf("unexpected escrow: %+v", after)
	}
	if after.Balance != after.TotalReceived-after.TotalWithdrawn {
		t.Fatalf("invariant broken: %+v", after)
	}
}

func TestBalanceEndpoints(t *testing.T) {
	r, _ := newHandlerEnv(t)

	// CreateBalance is idempotent per owner.
	w := doJSON(t, r, http.MethodPost, "/api/v1/balances", "0xowner", "")
	if w.Code != http.StatusOK {
		t.Fatalf("create -> %d", w.Code)
	}
	var first domain.TipBalance
	decodeBody(t, w, &first)

	w = doJSON(t, r, http.MethodPost, "/api/v1/balances", "0xowner", "")
	var second domain.TipBalance
	decodeBody(t, w, &second)
	if first.ID != second.ID {
		t.Fatalf("owner got two escrows: %s vs %s", first.ID, second.ID)
	}

	// Lookups by ID and by owner.
	w = doJSON(t, r, http.MethodGet, "/api/v1/balances/"+first.ID, "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get -> %d", w.Code)
	}
	w = doJSON(t, r, http.MethodGet, "/api/v1/owners/0xowner/balance", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("by owner -> %d", w.Code)
	}
	w = doJSON(t, r, http.MethodGet, "/api/v1/owners/0xnobody/balance", "", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing owner -> %d", w.Code)
	}
	w = doJSON(t, r, http.MethodGet, "/api/v1/balances/missing", "", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing id -> %d", w.Code)
	}
}
