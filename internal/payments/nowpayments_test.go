package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/novayshop/shopbot/internal/metrics"
	"github.com/novayshop/shopbot/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *NOWPayments {
	return New(Config{
		BaseURL:     baseURL,
		APIKey:      "test-key",
		PayCurrency: "btc",
		SuccessURL:  "https://t.me/novayshop_bot",
	}, metrics.Registry("test"), utils.InitLogger("error"))
}

func TestCreateInvoice(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/invoice", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		require.NoError(t, dec.Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"5077125051","invoice_url":"https://nowpayments.io/payment/?iid=5077125051"}`))
	}))
	defer srv.Close()

	url, err := newTestClient(srv.URL).CreateInvoice(context.Background(), 25_000, 42, "NV-AB12CD")
	require.NoError(t, err)
	assert.Equal(t, "https://nowpayments.io/payment/?iid=5077125051", url)

	assert.Equal(t, "250", captured["price_amount"].(json.Number).String())
	assert.Equal(t, "eur", captured["price_currency"])
	assert.Equal(t, "btc", captured["pay_currency"])
	assert.Equal(t, "42:NV-AB12CD", captured["order_id"])
}

func TestCreateInvoiceProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"INVALID_API_KEY"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CreateInvoice(context.Background(), 25_000, 42, "NV-AB12CD")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestCreateInvoiceMissingURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CreateInvoice(context.Background(), 25_000, 42, "NV-AB12CD")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invoice_url")
}
