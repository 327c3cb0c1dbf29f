package service

import (
	"context"

	"github.com/novayshop/shopbot/internal/apperrors"
	"github.com/novayshop/shopbot/internal/metrics"
	"github.com/novayshop/shopbot/internal/models"
	"github.com/novayshop/shopbot/utils"
)

// Store is the ledger contract the service runs against. Credit, Debit, the
// deposit transition and the purchase append are atomic on the store side.
type Store interface {
	UpsertUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, telegramID int64) (*models.User, error)
	GetBalance(ctx context.Context, telegramID int64) (int64, error)
	Credit(ctx context.Context, telegramID int64, cents int64) error
	Debit(ctx context.Context, telegramID int64, cents int64) error

	CreateDeposit(ctx context.Context, deposit *models.Deposit) error
	ApproveDepositAndCredit(ctx context.Context, ref, txid string, creditCents int64) (*models.Deposit, bool, error)
	ListPendingDeposits(ctx context.Context, limit int) ([]models.Deposit, error)

	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetOrCreateCustomProduct(ctx context.Context, title string) (*models.Product, error)

	DebitAndRecordPurchase(ctx context.Context, telegramID int64, productID uint, paidCents int64) error
	ListPurchases(ctx context.Context, telegramID int64, limit int) ([]models.Purchase, error)
}

// Invoicer mints a payable invoice at the external payment provider. The
// service only cares about success and the user-facing link.
type Invoicer interface {
	CreateInvoice(ctx context.Context, amountCents int64, telegramID int64, ref string) (string, error)
}

// Notifier delivers best-effort messages. Implementations log and swallow
// delivery failures; nothing on the financial path depends on them.
type Notifier interface {
	NotifyOperator(text string)
	NotifyUser(telegramID int64, text string)
}

type Config struct {
	MinDepositCents int64
	CustomMinCents  int64
	AdminID         int64
}

type Service struct {
	store    Store
	invoicer Invoicer
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *utils.Logger
	cfg      Config
}

func New(store Store, invoicer Invoicer, notifier Notifier, m *metrics.Metrics, logger *utils.Logger, cfg Config) *Service {
	return &Service{
		store:    store,
		invoicer: invoicer,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
		cfg:      cfg,
	}
}

func (s *Service) UpsertUser(ctx context.Context, user *models.User) error {
	return s.store.UpsertUser(ctx, user)
}

func (s *Service) GetUser(ctx context.Context, telegramID int64) (*models.User, error) {
	return s.store.GetUser(ctx, telegramID)
}

func (s *Service) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.store.ListProducts(ctx)
}

func (s *Service) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	return s.store.GetProduct(ctx, id)
}

func (s *Service) ListPurchases(ctx context.Context, telegramID int64, limit int) ([]models.Purchase, error) {
	return s.store.ListPurchases(ctx, telegramID, limit)
}

// ListPendingDeposits is an operator-only view.
func (s *Service) ListPendingDeposits(ctx context.Context, requesterID int64, limit int) ([]models.Deposit, error) {
	if requesterID != s.cfg.AdminID {
		return nil, apperrors.ErrUnauthorized
	}
	return s.store.ListPendingDeposits(ctx, limit)
}
