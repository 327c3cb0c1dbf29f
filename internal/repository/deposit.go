package repository

import (
	"context"
	"errors"
	"time"

	"github.com/novayshop/shopbot/internal/apperrors"
	"github.com/novayshop/shopbot/internal/models"
	"gorm.io/gorm"
)

func (r *Repository) CreateDeposit(ctx context.Context, deposit *models.Deposit) error {
	if deposit.Status == "" {
		deposit.Status = models.DepositStatusPending
	}
	if deposit.CreatedAt.IsZero() {
		deposit.CreatedAt = time.Now().UTC()
	}

	err := r.db.WithContext(ctx).Create(deposit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrDepositRefTaken
		}
		return apperrors.Storage("create deposit", err)
	}
	return nil
}

// ApproveDepositAndCredit performs the one-way pending→approved transition
// and the matching balance credit as a single transaction. The transition is
// a conditional UPDATE keyed on the current status, so of any number of
// concurrent confirmations for the same ref, exactly one observes
// RowsAffected == 1 and credits; the rest are no-ops. Returns the deposit and
// whether this call performed the transition.
func (r *Repository) ApproveDepositAndCredit(ctx context.Context, ref, txid string, creditCents int64) (*models.Deposit, bool, error) {
	var (
		deposit  models.Deposit
		approved bool
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		res := tx.Model(&models.Deposit{}).
			Where("ref = ? AND status = ?", ref, models.DepositStatusPending).
			Updates(map[string]interface{}{
				"status":      models.DepositStatusApproved,
				"tx_id":       txid,
				"approved_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Already approved, or the ref is unknown. Idempotent no-op.
			return nil
		}
		approved = true

		if err := tx.First(&deposit, "ref = ?", ref).Error; err != nil {
			return err
		}

		return creditTx(tx, deposit.UserID, creditCents)
	})
	if err != nil {
		return nil, false, apperrors.Storage("approve deposit", err)
	}
	if !approved {
		return nil, false, nil
	}
	return &deposit, true, nil
}

func (r *Repository) ListPendingDeposits(ctx context.Context, limit int) ([]models.Deposit, error) {
	if limit <= 0 {
		limit = 15
	}

	var deposits []models.Deposit
	err := r.db.WithContext(ctx).
		Where("status = ?", models.DepositStatusPending).
		Order("id ASC").
		Limit(limit).
		Find(&deposits).Error
	if err != nil {
		return nil, apperrors.Storage("list pending deposits", err)
	}
	return deposits, nil
}
