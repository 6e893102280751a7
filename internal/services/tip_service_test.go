package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-suits-backend/internal/domain"
)

func newTipSvcDB(t *testing.T) (*PostService, *TipService) {
	t.Helper()
	dsn := fmt.Sprintf("file:tipsvc_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Post{}, &domain.TipBalance{}, &domain.Event{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	posts := NewPostService(db)
	return posts, NewTipService(db, posts)
}

func TestTipPost_AmountRules(t *testing.T) {
	posts, svc := newTipSvcDB(t)
	ctx := context.Background()

	p, err := posts.Create(ctx, "0xcreator", "tip me", nil)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	if _, err := svc.TipPost(ctx, "0xfan", p.ID, "", 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero: expected ErrInvalidAmount, got %v", err)
	}
	if _, err := svc.TipPost(ctx, "0xfan", p.ID, "", -5); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("negative: expected ErrInvalidAmount, got %v", err)
	}
	if _, err := svc.TipPost(ctx, "0xfan", p.ID, "", 999); !errors.Is(err, ErrBelowMinimumTip) {
		t.Fatalf("999: expected ErrBelowMinimumTip, got %v", err)
	}

	// The minimum itself is accepted.
	bal, err := svc.TipPost(ctx, "0xfan", p.ID, "", 1000)
	if err != nil {
		t.Fatalf("minimum tip: %v", err)
	}
	if bal.Owner != "0xcreator" || bal.Balance != 1000 {
		t.Fatalf("unexpected balance: %+v", bal)
	}
}

func TestTipPost_CreditsEscrowAndPost(t *testing.T) {
	posts, svc := newTipSvcDB(t)
	ctx := context.Background()

	p, err := posts.Create(ctx, "0xcreator", "tip me twice", nil)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	if _, err := svc.TipPost(ctx, "0xfan", p.ID, "", 1500); err != nil {
		t.Fatalf("tip 1: %v", err)
	}
	bal, err := svc.TipPost(ctx, "0xother", p.ID, "", 2000)
	if err != nil {
		t.Fatalf("tip 2: %v", err)
	}

	// Both tips landed in the creator's single escrow.
	if bal.Balance != 3500 || bal.TotalReceived != 3500 || bal.TotalWithdrawn != 0 {
		t.Fatalf("unexpected escrow: %+v", bal)
	}

	// The post's lifetime tip counter tracks the same total.
	got, _ := posts.Get(ctx, p.ID)
	if got.TipTotal != 3500 {
		t.Fatalf("tip_total = %d, want 3500", got.TipTotal)
	}
}

func TestTipPost_Restrictions(t *testing.T) {
	posts, svc := newTipSvcDB(t)
	ctx := context.Background()

	p, err := posts.Create(ctx, "0xcreator", "no self tips", nil)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	if _, err := svc.TipPost(ctx, "0xcreator", p.ID, "", 1000); !errors.Is(err, ErrSelfTip) {
		t.Fatalf("self-tip: expected ErrSelfTip, got %v", err)
	}
	if _, err := svc.TipPost(ctx, "0xfan", "missing", "", 1000); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("missing post: expected ErrPostNotFound, got %v", err)
	}

	// A balanceID naming another owner's escrow is rejected.
	foreign, err := svc.GetOrCreateBalance(ctx, "0xsomeoneelse")
	if err != nil {
		t.Fatalf("create foreign balance: %v", err)
	}
	if _, err := svc.TipPost(ctx, "0xfan", p.ID, foreign.ID, 1000); !errors.Is(err, ErrBalanceOwnerMismatch) {
		t.Fatalf("expected ErrBalanceOwnerMismatch, got %v", err)
	}
	if _, err := svc.TipPost(ctx, "0xfan", p.ID, "missing-balance", 1000); !errors.Is(err, ErrBalanceNotFound) {
		t.Fatalf("expected ErrBalanceNotFound, got %v", err)
	}
}

func TestWithdraw_GuardsAndInvariant(t *testing.T) {
	posts, svc := newTipSvcDB(t)
	ctx := context.Background()

	p, err := posts.Create(ctx, "0xcreator", "payday", nil)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	bal, err := svc.TipPost(ctx, "0xfan", p.ID, "", 5000)
	if err != nil {
		t.Fatalf("tip: %v", err)
	}

	if _, err := svc.Withdraw(ctx, "0xcreator", bal.ID, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero: expected ErrInvalidAmount, got %v", err)
	}
	if _, err := svc.Withdraw(ctx, "0xmallory", bal.ID, 1000); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("stranger: expected ErrNotOwner, got %v", err)
	}
	if _, err := svc.Withdraw(ctx, "0xcreator", bal.ID, 5001); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("overdraw: expected ErrInsufficientBalance, got %v", err)
	}

	got, err := svc.Withdraw(ctx, "0xcreator", bal.ID, 3000)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if got.Balance != 2000 || got.TotalWithdrawn != 3000 {
		t.Fatalf("unexpected escrow after withdraw: %+v", got)
	}
	if got.Balance != got.TotalReceived-got.TotalWithdrawn {
		t.Fatalf("invariant broken: %+v", got)
	}

	// Draining the rest leaves an empty escrow that rejects further
	// withdrawals with ErrZeroBalance.
	if _, err := svc.Withdraw(ctx, "0xcreator", bal.ID, 2000); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if _, err := svc.Withdraw(ctx, "0xcreator", bal.ID, 1); !errors.Is(err, ErrZeroBalance) {
		t.Fatalf("empty: expected ErrZeroBalance, got %v", err)
	}
}

func TestGetOrCreateBalance_OnePerOwner(t *testing.T) {
	_, svc := newTipSvcDB(t)
	ctx := context.Background()

	first, err := svc.GetOrCreateBalance(ctx, "0xowner")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := svc.GetOrCreateBalance(ctx, "0xowner")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("owner got two escrows: %s vs %s", first.ID, second.ID)
	}

	byOwner, err := svc.GetBalanceByOwner(ctx, "0xowner")
	if err != nil || byOwner.ID != first.ID {
		t.Fatalf("by owner: %+v err=%v", byOwner, err)
	}
	if _, err := svc.GetBalanceByOwner(ctx, "0xnobody"); !errors.Is(err, ErrBalanceNotFound) {
		t.Fatalf("expected ErrBalanceNotFound, got %v", err)
	}
	if _, err := svc.GetBalance(ctx, "missing"); !errors.Is(err, ErrBalanceNotFound) {
		t.Fatalf("expected ErrBalanceNotFound, got %v", err)
	}
}
