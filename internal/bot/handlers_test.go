package bot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/novayshop/shopbot/config"
	"github.com/novayshop/shopbot/internal/metrics"
	"github.com/novayshop/shopbot/internal/models"
	"github.com/novayshop/shopbot/internal/service"
	"github.com/novayshop/shopbot/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// stubStore satisfies service.Store with fixed answers; the routing tests
// only need user upserts to succeed.
type stubStore struct{}

func (stubStore) UpsertUser(context.Context, *models.User) error       { return nil }
func (stubStore) GetUser(context.Context, int64) (*models.User, error) { return nil, nil }
func (stubStore) GetBalance(context.Context, int64) (int64, error)     { return 0, nil }
func (stubStore) Credit(context.Context, int64, int64) error           { return nil }
func (stubStore) Debit(context.Context, int64, int64) error            { return nil }
func (stubStore) CreateDeposit(context.Context, *models.Deposit) error { return nil }
func (stubStore) ApproveDepositAndCredit(context.Context, string, string, int64) (*models.Deposit, bool, error) {
	return nil, false, nil
}
func (stubStore) ListPendingDeposits(context.Context, int) ([]models.Deposit, error) {
	return nil, nil
}
func (stubStore) GetProduct(context.Context, uint) (*models.Product, error) { return nil, nil }
func (stubStore) ListProducts(context.Context) ([]models.Product, error)    { return nil, nil }
func (stubStore) GetOrCreateCustomProduct(context.Context, string) (*models.Product, error) {
	return nil, nil
}
func (stubStore) DebitAndRecordPurchase(context.Context, int64, uint, int64) error { return nil }
func (stubStore) ListPurchases(context.Context, int64, int) ([]models.Purchase, error) {
	return nil, nil
}

type stubInvoicer struct{}

func (stubInvoicer) CreateInvoice(context.Context, int64, int64, string) (string, error) {
	return "https://pay.example/invoice", nil
}

func newTestBot(t *testing.T) *Bot {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	t.Cleanup(srv.Close)

	api, err := tgbotapi.NewBotAPIWithAPIEndpoint("test-token", srv.URL+"/bot%s/%s")
	require.NoError(t, err)

	logger := utils.InitLogger("error")
	cfg := &config.Config{AdminChatID: 99, MinDepositEUR: 200, CustomMinEUR: 1}
	notifier := NewTelegramNotifier(api, logger, cfg.AdminChatID, 0)
	svc := service.New(stubStore{}, stubInvoicer{}, notifier, metrics.Registry("test"), logger, service.Config{
		MinDepositCents: 20_000,
		CustomMinCents:  100,
		AdminID:         cfg.AdminChatID,
	})

	return NewBot(api, svc, logger, cfg)
}

func messageUpdate(userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: userID, FirstName: "Test", UserName: "test"},
			Chat: &tgbotapi.Chat{ID: userID},
			Text: text,
		},
	}
}

func TestStartClearsActiveFlow(t *testing.T) {
	b := newTestBot(t)

	for _, step := range []string{stepDepositAmount, stepCustomAmount, stepAdjustTarget, stepAdjustDelta} {
		b.states.Begin(1, step)
		b.HandleUpdate(messageUpdate(1, "/start"))
		assert.Equal(t, stepDefault, b.states.Step(1), step)
	}
}

func TestAdminCommandClearsActiveFlow(t *testing.T) {
	b := newTestBot(t)

	b.states.Begin(99, stepDepositAmount)
	b.HandleUpdate(messageUpdate(99, "/admin"))
	assert.Equal(t, stepDefault, b.states.Step(99))
}

func TestPlainTextStaysInActiveFlow(t *testing.T) {
	b := newTestBot(t)

	b.states.Begin(1, stepDepositAmount)
	b.HandleUpdate(messageUpdate(1, "pas un montant"))
	assert.Equal(t, stepDepositAmount, b.states.Step(1))
}
