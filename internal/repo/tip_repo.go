// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file covers tip balances: lazily created escrow
// rows credited by tippers and debited by owner withdrawals.
//
// Credit and Debit are single-statement arithmetic updates that keep the
// balance identity (balance == total_received - total_withdrawn) intact;
// the service layer wraps them in the same transaction as the post counter
// update and the outbox append.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-suits-backend/internal/domain"
)

// CreateTipBalance inserts a zeroed escrow row for owner. A concurrent
// insert for the same owner violates ux_balance_owner and surfaces as a
// raw unique-constraint error.
func CreateTipBalance(ctx context.Context, db *gorm.DB, owner string) (*domain.TipBalance, error) {
	b := &domain.TipBalance{
		ID:        uuid.NewString(),
		Owner:     owner,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(b).Error; err != nil {
		return nil, err
	}
	return b, nil
}

// GetTipBalance fetches a balance by ID, or ErrNotFound if missing.
func GetTipBalance(ctx context.Context, db *gorm.DB, id string) (*domain.TipBalance, error) {
	var b domain.TipBalance
	if err := db.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// GetTipBalanceByOwner resolves the balance registry for an owner address,
// or ErrNotFound when the owner has never been tipped.
func GetTipBalanceByOwner(ctx context.Context, db *gorm.DB, owner string) (*domain.TipBalance, error) {
	var b domain.TipBalance
	if err := db.WithContext(ctx).Where("owner = ?", owner).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// CreditTipBalance merges amount into the escrow: balance and
// total_received both grow by amount in one statement.
func CreditTipBalance(ctx context.Context, db *gorm.DB, id string, amount int64) error {
	res := db.WithContext(ctx).
		Model(&domain.TipBalance{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"balance":        gorm.Expr("balance + ?", amount),
			"total_received": gorm.Expr("total_received + ?", amount),
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DebitTipBalance splits amount off the escrow: balance shrinks and
// total_withdrawn grows by the same amount. The WHERE guard refuses to
// apply a debit that would drive the balance negative and reports it as
// ErrNotFound-style zero rows; callers check funds beforehand inside the
// same transaction, so hitting the guard means a conflicting writer won.
func DebitTipBalance(ctx context.Context, db *gorm.DB, id string, amount int64) error {
	res := db.WithContext(ctx).
		Model(&domain.TipBalance{}).
		Where("id = ? AND balance >= ?", id, amount).
		UpdateColumns(map[string]any{
			"balance":         gorm.Expr("balance - ?", amount),
			"total_withdrawn": gorm.Expr("total_withdrawn + ?", amount),
			"updated_at":      time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
