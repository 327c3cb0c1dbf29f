package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/novayshop/shopbot/internal/apperrors"
	"github.com/novayshop/shopbot/internal/models"
	"github.com/novayshop/shopbot/utils"
)

// CustomSpendRequest carries everything collected by the custom-spend flow:
// the category, the side selection (bank or card tier) and the user-chosen
// amount to spend.
type CustomSpendRequest struct {
	TelegramID  int64
	Username    string
	Category    string
	Bank        string
	Tier        string
	AmountCents int64
}

// BuyProduct debits the current catalog price and records the purchase as one
// atomic unit. On insufficient balance nothing mutates. Delivery of the
// purchased item is handled by the caller.
func (s *Service) BuyProduct(ctx context.Context, telegramID int64, productID uint) (*models.Product, error) {
	product, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.IsCustomPlaceholder() {
		return nil, apperrors.ErrProductNotFound
	}

	if err := s.store.DebitAndRecordPurchase(ctx, telegramID, product.ID, product.PriceEURCents); err != nil {
		return nil, err
	}

	s.metrics.Purchases.WithLabelValues("catalog").Inc()
	s.logger.Infof("User %d bought %q for %s", telegramID, product.Title, utils.EuroFmt(product.PriceEURCents))
	return product, nil
}

// CustomSpend debits the user-chosen amount against the category's
// placeholder product and tells the operator what to fulfill. The operator
// notification is best-effort: once the debit commits it is never rolled
// back for a failed notification.
func (s *Service) CustomSpend(ctx context.Context, req CustomSpendRequest) error {
	if req.AmountCents <= 0 {
		return apperrors.ErrAmountNotPositive
	}
	if req.AmountCents < s.cfg.CustomMinCents {
		return apperrors.ErrBelowMinimum
	}

	category := req.Category
	if category == "" {
		category = "CUSTOM"
	}

	product, err := s.store.GetOrCreateCustomProduct(ctx, fmt.Sprintf("%s (Custom Spend)", category))
	if err != nil {
		return err
	}

	if err := s.store.DebitAndRecordPurchase(ctx, req.TelegramID, product.ID, req.AmountCents); err != nil {
		return err
	}

	s.metrics.Purchases.WithLabelValues("custom").Inc()
	s.logger.Infof("User %d custom spend %s on %s", req.TelegramID, utils.EuroFmt(req.AmountCents), category)

	s.notifier.NotifyOperator(customSpendNotice(req))
	return nil
}

func customSpendNotice(req CustomSpendRequest) string {
	var details []string
	if req.Tier != "" {
		details = append(details, fmt.Sprintf("niveau: %s", req.Tier))
	}
	if req.Bank != "" {
		details = append(details, fmt.Sprintf("banque: %s", req.Bank))
	}
	extra := ""
	if len(details) > 0 {
		extra = fmt.Sprintf(" (%s)", strings.Join(details, " | "))
	}

	username := req.Username
	if username == "" {
		username = "-"
	}

	return fmt.Sprintf(
		"🔔 *Custom spend* — %s%s\nUser: `%d` @%s\nMontant: *%s*",
		req.Category, extra, req.TelegramID, username, utils.EuroFmt(req.AmountCents),
	)
}
