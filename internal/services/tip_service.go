// Package services – TipService
//
// This file implements the TipService, the escrow ledger for creator
// tipping. Balances are created lazily per recipient, credited by any
// tipper, and withdrawable only by their owner. Every mutation keeps the
// balance identity (balance == total_received - total_withdrawn) because
// credit and debit adjust both sides in a single transaction that also
// carries the post's tip total and the outbox event.
//
// Amounts are integers in the platform's minor currency unit; no floating
// point anywhere in this ledger.
//
// Observability: the two mutating methods are OpenTelemetry-instrumented;
// spans carry post/balance identifiers and the amount.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-suits-backend/internal/domain"
	"github.com/tbourn/go-suits-backend/internal/events"
	"github.com/tbourn/go-suits-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultMinTipAmount is the smallest accepted tip in minor units.
const DefaultMinTipAmount int64 = 1000

// TippingPosts is the post-store contract required by TipService: a
// lookup plus the tip-total mutator.
type TippingPosts interface {
	// GetTx fetches a post on the given transaction handle.
	GetTx(ctx context.Context, tx *gorm.DB, id string) (*domain.Post, error)
	// AddTipAmount adds amount to the post's lifetime tip total.
	AddTipAmount(ctx context.Context, tx *gorm.DB, id string, amount int64) error
}

// TipService implements tipping and withdrawals over per-recipient escrows.
type TipService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Posts is the narrow post-store surface.
	Posts TippingPosts
	// Events records outbox notifications inside each transaction.
	Events events.Recorder

	// MinTipAmount rejects dust tips below this many minor units.
	MinTipAmount int64
}

// NewTipService constructs a TipService with the default minimum tip.
func NewTipService(db *gorm.DB, posts TippingPosts) *TipService {
	return &TipService{DB: db, Posts: posts, MinTipAmount: DefaultMinTipAmount}
}

// GetOrCreateBalance returns the escrow for owner, creating a zeroed one
// if none exists. Idempotent: concurrent first-tippers race on the owner
// unique index and the loser reads the winner's row.
func (s *TipService) GetOrCreateBalance(ctx context.Context, owner string) (*domain.TipBalance, error) {
	var out *domain.TipBalance
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := s.getOrCreateBalanceTx(ctx, tx, owner)
		if err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// getOrCreateBalanceTx performs the lazy-init inside an existing transaction.
func (s *TipService) getOrCreateBalanceTx(ctx context.Context, tx *gorm.DB, owner string) (*domain.TipBalance, error) {
	b, err := repo.GetTipBalanceByOwner(ctx, tx, owner)
	if err == nil {
		return b, nil
	}
	if !repo.IsNotFound(err) {
		return nil, err
	}

	b, err = repo.CreateTipBalance(ctx, tx, owner)
	if err != nil {
		if isDuplicate(err) {
			return repo.GetTipBalanceByOwner(ctx, tx, owner)
		}
		return nil, err
	}
	return b, nil
}

// TipPost credits amount to the creator of postID.
//
// Semantics and validation:
//   - amount must be positive; otherwise ErrInvalidAmount.
//   - amount must reach MinTipAmount; otherwise ErrBelowMinimumTip.
//   - postID must exist; otherwise ErrPostNotFound.
//   - caller must not be the creator; otherwise ErrSelfTip.
//   - when balanceID is non-empty, that escrow must exist and belong to
//     the post's creator; otherwise ErrBalanceNotFound /
//     ErrBalanceOwnerMismatch. An empty balanceID resolves (or lazily
//     creates) the creator's escrow.
//
// The escrow credit, the post's tip-total bump, and the TipSent event are
// one transaction: no reader observes a credited balance without the
// matching counter.
func (s *TipService) TipPost(ctx context.Context, caller, postID, balanceID string, amount int64) (*domain.TipBalance, error) {
	tr := otel.Tracer("services/TipService")
	ctx, span := tr.Start(ctx, "TipPost",
		trace.WithAttributes(
			attribute.String("post.id", postID),
			attribute.Int64("tip.amount", amount),
		),
	)
	defer span.End()

	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if amount < s.MinTipAmount {
		return nil, ErrBelowMinimumTip
	}

	var credited *domain.TipBalance
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.Posts.GetTx(ctx, tx, postID)
		if err != nil {
			if repo.IsNotFound(err) {
				return ErrPostNotFound
			}
			return err
		}
		if p.Creator == caller {
			return ErrSelfTip
		}

		var bal *domain.TipBalance
		if balanceID != "" {
			bal, err = repo.GetTipBalance(ctx, tx, balanceID)
			if err != nil {
				if repo.IsNotFound(err) {
					return ErrBalanceNotFound
				}
				return err
			}
			if bal.Owner != p.Creator {
				return ErrBalanceOwnerMismatch
			}
		} else {
			bal, err = s.getOrCreateBalanceTx(ctx, tx, p.Creator)
			if err != nil {
				return err
			}
		}

		if err := repo.CreditTipBalance(ctx, tx, bal.ID, amount); err != nil {
			return err
		}
		if err := s.Posts.AddTipAmount(ctx, tx, postID, amount); err != nil {
			return err
		}

		refreshed, err := repo.GetTipBalance(ctx, tx, bal.ID)
		if err != nil {
			return err
		}
		credited = refreshed

		return s.Events.Record(ctx, tx, events.TypeTipSent, caller, postID, events.TipSent{
			PostID:    postID,
			Tipper:    caller,
			Recipient: p.Creator,
			Amount:    amount,
		})
	})
	if err != nil {
		return nil, err
	}
	return credited, nil
}

// Withdraw splits amount off the caller's escrow.
//
// Semantics and validation:
//   - amount must be positive; otherwise ErrInvalidAmount.
//   - balanceID must exist; otherwise ErrBalanceNotFound.
//   - caller must own the escrow; otherwise ErrNotOwner.
//   - the escrow must be non-empty; otherwise ErrZeroBalance.
//   - amount must not exceed the balance; otherwise ErrInsufficientBalance.
//
// Debit and event commit together; a failure anywhere leaves balance and
// total_withdrawn untouched. The actual value transfer to the caller is a
// payment-rail concern signalled by the FundsWithdrawn event.
func (s *TipService) Withdraw(ctx context.Context, caller, balanceID string, amount int64) (*domain.TipBalance, error) {
	tr := otel.Tracer("services/TipService")
	ctx, span := tr.Start(ctx, "Withdraw",
		trace.WithAttributes(
			attribute.String("balance.id", balanceID),
			attribute.Int64("withdraw.amount", amount),
		),
	)
	defer span.End()

	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var remaining *domain.TipBalance
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bal, err := repo.GetTipBalance(ctx, tx, balanceID)
		if err != nil {
			if repo.IsNotFound(err) {
				return ErrBalanceNotFound
			}
			return err
		}
		if bal.Owner != caller {
			return ErrNotOwner
		}
		if bal.Balance == 0 {
			return ErrZeroBalance
		}
		if amount > bal.Balance {
			return ErrInsufficientBalance
		}

		if err := repo.DebitTipBalance(ctx, tx, balanceID, amount); err != nil {
			// The guarded debit refusing here means a conflicting writer
			// drained the escrow between our read and write.
			if repo.IsNotFound(err) || errors.Is(err, repo.ErrNotFound) {
				return ErrInsufficientBalance
			}
			return err
		}

		refreshed, err := repo.GetTipBalance(ctx, tx, balanceID)
		if err != nil {
			return err
		}
		remaining = refreshed

		return s.Events.Record(ctx, tx, events.TypeFundsWithdrawn, caller, balanceID, events.FundsWithdrawn{
			BalanceID: balanceID,
			Owner:     caller,
			Amount:    amount,
		})
	})
	if err != nil {
		return nil, err
	}
	return remaining, nil
}

// GetBalance fetches an escrow by ID, or ErrBalanceNotFound.
func (s *TipService) GetBalance(ctx context.Context, id string) (*domain.TipBalance, error) {
	b, err := repo.GetTipBalance(ctx, s.DB, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrBalanceNotFound
		}
		return nil, err
	}
	return b, nil
}

// GetBalanceByOwner fetches an owner's escrow, or ErrBalanceNotFound when
// the owner has never been tipped.
func (s *TipService) GetBalanceByOwner(ctx context.Context, owner string) (*domain.TipBalance, error) {
	b, err := repo.GetTipBalanceByOwner(ctx, s.DB, owner)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrBalanceNotFound
		}
		return nil, err
	}
	return b, nil
}
