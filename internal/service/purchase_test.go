package service

import (
	"context"
	"testing"

	"github.com/novayshop/shopbot/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuyProductDebitsAndRecords(t *testing.T) {
	env := newTestEnv(Config{})
	ctx := context.Background()
	product := env.store.addProduct("FORMA ALLO", 19_900, "Voici ta formation.")
	require.NoError(t, env.svc.Credit(ctx, 42, 25_000))

	bought, err := env.svc.BuyProduct(ctx, 42, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.Title, bought.Title)

	balance, err := env.svc.GetBalance(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(5_100), balance)

	purchases, err := env.svc.ListPurchases(ctx, 42, 0)
	require.NoError(t, err)
	require.Len(t, purchases, 1)
	assert.Equal(t, product.ID, purchases[0].ProductID)
	assert.Equal(t, int64(19_900), purchases[0].PaidEURCents)
}

func TestBuyProductInsufficientBalance(t *testing.T) {
	env := newTestEnv(Config{})
	ctx := context.Background()
	product := env.store.addProduct("IPHONE", 7_500, "")
	require.NoError(t, env.svc.Credit(ctx, 42, 5_000))

	_, err := env.svc.BuyProduct(ctx, 42, product.ID)
	require.ErrorIs(t, err, apperrors.ErrInsufficientBalance)

	balance, err := env.svc.GetBalance(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(5_000), balance)

	purchases, err := env.svc.ListPurchases(ctx, 42, 0)
	require.NoError(t, err)
	assert.Empty(t, purchases)
}

func TestBuyProductRejectsPlaceholderAndUnknown(t *testing.T) {
	env := newTestEnv(Config{})
	ctx := context.Background()
	placeholder := env.store.addProduct("FICHES", 0, "")
	require.NoError(t, env.svc.Credit(ctx, 42, 10_000))

	_, err := env.svc.BuyProduct(ctx, 42, placeholder.ID)
	require.ErrorIs(t, err, apperrors.ErrProductNotFound)

	_, err = env.svc.BuyProduct(ctx, 42, 999)
	require.ErrorIs(t, err, apperrors.ErrProductNotFound)
}

func TestCustomSpendDebitsAndNotifiesOperator(t *testing.T) {
	env := newTestEnv(Config{CustomMinCents: 100})
	ctx := context.Background()
	require.NoError(t, env.svc.Credit(ctx, 42, 10_000))

	err := env.svc.CustomSpend(ctx, CustomSpendRequest{
		TelegramID:  42,
		Username:    "alice",
		Category:    "FICHES",
		Bank:        "BNP Paribas",
		AmountCents: 5_000,
	})
	require.NoError(t, err)

	balance, err := env.svc.GetBalance(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(5_000), balance)

	require.Len(t, env.notifier.operator, 1)
	notice := env.notifier.operator[0]
	assert.Contains(t, notice, "FICHES")
	assert.Contains(t, notice, "BNP Paribas")
	assert.Contains(t, notice, "50.00")
	assert.Contains(t, notice, "@alice")

	purchases, err := env.svc.ListPurchases(ctx, 42, 0)
	require.NoError(t, err)
	require.Len(t, purchases, 1)
	assert.Equal(t, int64(5_000), purchases[0].PaidEURCents)
}

func TestCustomSpendValidation(t *testing.T) {
	env := newTestEnv(Config{CustomMinCents: 100})
	ctx := context.Background()
	require.NoError(t, env.svc.Credit(ctx, 42, 10_000))

	err := env.svc.CustomSpend(ctx, CustomSpendRequest{TelegramID: 42, Category: "CC", AmountCents: 0})
	require.ErrorIs(t, err, apperrors.ErrAmountNotPositive)

	err = env.svc.CustomSpend(ctx, CustomSpendRequest{TelegramID: 42, Category: "CC", AmountCents: 50})
	require.ErrorIs(t, err, apperrors.ErrBelowMinimum)

	err = env.svc.CustomSpend(ctx, CustomSpendRequest{TelegramID: 42, Category: "CC", AmountCents: 20_000})
	require.ErrorIs(t, err, apperrors.ErrInsufficientBalance)

	assert.Empty(t, env.notifier.operator)
}
