package service

import (
	"context"

	"github.com/novayshop/shopbot/internal/apperrors"
)

func (s *Service) GetBalance(ctx context.Context, telegramID int64) (int64, error) {
	return s.store.GetBalance(ctx, telegramID)
}

// Credit never rejects for insufficient funds; the only validation is that
// the amount is a positive integer number of cents.
func (s *Service) Credit(ctx context.Context, telegramID int64, cents int64) error {
	if cents <= 0 {
		return apperrors.ErrAmountNotPositive
	}
	return s.store.Credit(ctx, telegramID, cents)
}

// Debit succeeds only if the current balance covers the amount; the store
// performs the check-and-decrement in a single conditional statement.
func (s *Service) Debit(ctx context.Context, telegramID int64, cents int64) error {
	if cents <= 0 {
		return apperrors.ErrAmountNotPositive
	}
	return s.store.Debit(ctx, telegramID, cents)
}

// AdjustBalance applies an operator-entered signed delta. A negative delta
// that would drive the balance below zero fails with ErrInsufficientBalance
// instead of breaking the non-negativity invariant.
func (s *Service) AdjustBalance(ctx context.Context, requesterID, telegramID int64, deltaCents int64) error {
	if requesterID != s.cfg.AdminID {
		return apperrors.ErrUnauthorized
	}
	switch {
	case deltaCents > 0:
		return s.store.Credit(ctx, telegramID, deltaCents)
	case deltaCents < 0:
		return s.store.Debit(ctx, telegramID, -deltaCents)
	default:
		return apperrors.ErrAmountNotPositive
	}
}
