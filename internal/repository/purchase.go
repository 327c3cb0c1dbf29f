package repository

import (
	"context"
	"errors"
	"time"

	"github.com/novayshop/shopbot/internal/apperrors"
	"github.com/novayshop/shopbot/internal/models"
	"gorm.io/gorm"
)

// DebitAndRecordPurchase commits the balance debit and the purchase row as
// one atomic unit. The debit reuses the conditional check-and-decrement, so
// an insufficient balance rolls back with no visible effect.
func (r *Repository) DebitAndRecordPurchase(ctx context.Context, telegramID int64, productID uint, paidCents int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("telegram_id = ? AND balance_cents >= ?", telegramID, paidCents).
			UpdateColumn("balance_cents", gorm.Expr("balance_cents - ?", paidCents))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrInsufficientBalance
		}

		return tx.Create(&models.Purchase{
			UserID:       telegramID,
			ProductID:    productID,
			PaidEURCents: paidCents,
			CreatedAt:    time.Now().UTC(),
		}).Error
	})

	if err != nil {
		if errors.Is(err, apperrors.ErrInsufficientBalance) {
			return apperrors.ErrInsufficientBalance
		}
		return apperrors.Storage("debit and record purchase", err)
	}
	return nil
}

func (r *Repository) ListPurchases(ctx context.Context, telegramID int64, limit int) ([]models.Purchase, error) {
	if limit <= 0 {
		limit = 10
	}

	var purchases []models.Purchase
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", telegramID).
		Order("id DESC").
		Limit(limit).
		Find(&purchases).Error
	if err != nil {
		return nil, apperrors.Storage("list purchases", err)
	}
	return purchases, nil
}
