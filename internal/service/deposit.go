package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/novayshop/shopbot/internal/apperrors"
	"github.com/novayshop/shopbot/internal/models"
	"github.com/novayshop/shopbot/utils"
	"github.com/shopspring/decimal"
)

const (
	refAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	refLength     = 6
	refPrefix     = "NV-"
	refMaxRetries = 5
)

// newRefCode generates the deposit correlation token, e.g. "NV-7KQ2ZD".
// Uniqueness is ultimately enforced by the store's unique index on ref;
// OpenDeposit regenerates on collision.
func newRefCode() (string, error) {
	var sb strings.Builder
	sb.WriteString(refPrefix)
	max := big.NewInt(int64(len(refAlphabet)))
	for i := 0; i < refLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate ref: %w", err)
		}
		sb.WriteByte(refAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// OrderID builds the correlation string embedded in the provider invoice and
// echoed back by the webhook.
func OrderID(telegramID int64, ref string) string {
	return fmt.Sprintf("%d:%s", telegramID, ref)
}

// ParseOrderID splits a correlation string back into user id and ref.
func ParseOrderID(orderID string) (int64, string, error) {
	parts := strings.SplitN(orderID, ":", 2)
	if len(parts) != 2 {
		return 0, "", fmt.Errorf("malformed order id %q", orderID)
	}
	telegramID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("malformed user id in order id %q", orderID)
	}
	return telegramID, parts[1], nil
}

// OpenDeposit persists a pending deposit and asks the provider for a payable
// invoice link. A failed invoice call leaves the pending row intact; the user
// may retry, which opens a new, independent deposit with a fresh ref.
func (s *Service) OpenDeposit(ctx context.Context, telegramID int64, amountCents int64) (string, error) {
	if amountCents <= 0 {
		return "", apperrors.ErrAmountNotPositive
	}
	if amountCents < s.cfg.MinDepositCents {
		return "", apperrors.ErrBelowMinimum
	}

	var deposit *models.Deposit
	for attempt := 0; attempt < refMaxRetries; attempt++ {
		ref, err := newRefCode()
		if err != nil {
			return "", err
		}

		deposit = &models.Deposit{
			UserID:         telegramID,
			AmountEURCents: amountCents,
			Ref:            ref,
		}
		err = s.store.CreateDeposit(ctx, deposit)
		if err == nil {
			break
		}
		if errors.Is(err, apperrors.ErrDepositRefTaken) {
			deposit = nil
			continue
		}
		return "", err
	}
	if deposit == nil {
		return "", fmt.Errorf("could not generate a unique deposit ref after %d attempts", refMaxRetries)
	}

	invoiceURL, err := s.invoicer.CreateInvoice(ctx, amountCents, telegramID, deposit.Ref)
	if err != nil {
		// The pending row stays behind, harmless; operators can inspect it.
		s.logger.Errorf("Invoice creation failed for deposit %s: %v", deposit.Ref, err)
		s.metrics.Errors.WithLabelValues("invoice").Inc()
		return "", fmt.Errorf("%w: %v", apperrors.ErrInvoiceCreation, err)
	}

	s.logger.Infof("Opened deposit %s for user %d (%s)", deposit.Ref, telegramID, utils.EuroFmt(amountCents))
	return invoiceURL, nil
}

// Reconcile applies one payment-status callback. Malformed or inapplicable
// events are acknowledged and discarded; only a storage failure is an error.
// Replays of an already-approved confirmation are no-ops because the store
// transition fires at most once per ref.
func (s *Service) Reconcile(ctx context.Context, orderID, paymentStatus, txid string, reportedAmount decimal.Decimal) error {
	if !models.ConfirmedPaymentStatuses[strings.ToLower(paymentStatus)] {
		s.metrics.WebhookEvents.WithLabelValues("ignored_status").Inc()
		return nil
	}

	_, ref, err := ParseOrderID(orderID)
	if err != nil {
		s.logger.Debugf("Discarding webhook event: %v", err)
		s.metrics.WebhookEvents.WithLabelValues("malformed_order_id").Inc()
		return nil
	}

	// The provider is the source of truth for what was actually paid.
	cents := reportedAmount.Shift(2).Round(0).IntPart()
	if cents <= 0 {
		s.metrics.WebhookEvents.WithLabelValues("ignored_amount").Inc()
		return nil
	}

	deposit, credited, err := s.store.ApproveDepositAndCredit(ctx, ref, txid, cents)
	if err != nil {
		s.metrics.Errors.WithLabelValues("reconcile").Inc()
		return err
	}
	if !credited {
		s.logger.Debugf("Deposit %s already approved or unknown, ignoring replay", ref)
		s.metrics.WebhookEvents.WithLabelValues("duplicate").Inc()
		return nil
	}

	if deposit.AmountEURCents != cents {
		s.logger.Warnf(
			"Deposit %s credited %s but %s was requested; flag for operator review",
			ref, utils.EuroFmt(cents), utils.EuroFmt(deposit.AmountEURCents),
		)
	}

	s.metrics.DepositsCredited.Inc()
	s.metrics.WebhookEvents.WithLabelValues("credited").Inc()
	s.logger.Infof("Deposit %s approved, credited %s to user %d", ref, utils.EuroFmt(cents), deposit.UserID)

	s.notifier.NotifyUser(deposit.UserID, fmt.Sprintf("✅ Dépôt confirmé : +%s", utils.EuroFmt(cents)))
	return nil
}
