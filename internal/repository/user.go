package repository

import (
	"context"
	"errors"
	"time"

	"github.com/novayshop/shopbot/internal/apperrors"
	"github.com/novayshop/shopbot/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpsertUser creates the user on first interaction and refreshes display
// metadata afterwards. The balance column is never touched here.
func (r *Repository) UpsertUser(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "telegram_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"first_name", "username"}),
	}).Create(user).Error
	if err != nil {
		return apperrors.Storage("upsert user", err)
	}
	return nil
}

func (r *Repository) GetUser(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "telegram_id = ?", telegramID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Storage("get user", err)
	}
	return &user, nil
}

// GetBalance returns 0 for users the ledger has never seen.
func (r *Repository) GetBalance(ctx context.Context, telegramID int64) (int64, error) {
	user, err := r.GetUser(ctx, telegramID)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, nil
	}
	return user.BalanceCents, nil
}

// Credit increases the balance by cents in a single UPDATE, creating the user
// row first if the ledger has never seen them.
func (r *Repository) Credit(ctx context.Context, telegramID int64, cents int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return creditTx(tx, telegramID, cents)
	})
	if err != nil {
		return apperrors.Storage("credit", err)
	}
	return nil
}

// Debit is the atomic check-and-decrement: the balance guard lives in the
// WHERE clause, so two concurrent debits can never both pass against an
// insufficient balance.
func (r *Repository) Debit(ctx context.Context, telegramID int64, cents int64) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("telegram_id = ? AND balance_cents >= ?", telegramID, cents).
		UpdateColumn("balance_cents", gorm.Expr("balance_cents - ?", cents))

	if res.Error != nil {
		return apperrors.Storage("debit", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrInsufficientBalance
	}
	return nil
}

func creditTx(tx *gorm.DB, telegramID int64, cents int64) error {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.User{TelegramID: telegramID, CreatedAt: time.Now().UTC()}).Error; err != nil {
		return err
	}

	return tx.Model(&models.User{}).
		Where("telegram_id = ?", telegramID).
		UpdateColumn("balance_cents", gorm.Expr("balance_cents + ?", cents)).Error
}
