package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/novayshop/shopbot/internal/metrics"
	"github.com/novayshop/shopbot/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reconcileCall struct {
	OrderID string
	Status  string
	TxID    string
	Amount  decimal.Decimal
}

type fakeReconciler struct {
	err   error
	calls []reconcileCall
}

func (f *fakeReconciler) Reconcile(_ context.Context, orderID, paymentStatus, txid string, amount decimal.Decimal) error {
	f.calls = append(f.calls, reconcileCall{OrderID: orderID, Status: paymentStatus, TxID: txid, Amount: amount})
	return f.err
}

func post(t *testing.T, h *Handler, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook/nowpayments", strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlerAcceptsConfirmedPayment(t *testing.T) {
	rec := &fakeReconciler{}
	h := NewHandler(rec, "", metrics.Registry("test"), utils.InitLogger("error"))

	resp := post(t, h, `{"payment_id":5077125051,"payment_status":"finished","order_id":"42:NV-AB12CD","price_amount":200.00}`, nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	require.Len(t, rec.calls, 1)
	call := rec.calls[0]
	assert.Equal(t, "42:NV-AB12CD", call.OrderID)
	assert.Equal(t, "finished", call.Status)
	assert.Equal(t, "5077125051", call.TxID)
	assert.True(t, call.Amount.Equal(decimal.RequireFromString("200.00")))
}

func TestHandlerRejectsUnparsableBody(t *testing.T) {
	rec := &fakeReconciler{}
	h := NewHandler(rec, "", metrics.Registry("test"), utils.InitLogger("error"))

	resp := post(t, h, `{not json`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Empty(t, rec.calls)
}

func TestHandlerAcknowledgesMissingOrderID(t *testing.T) {
	rec := &fakeReconciler{}
	h := NewHandler(rec, "", metrics.Registry("test"), utils.InitLogger("error"))

	resp := post(t, h, `{"payment_status":"finished","price_amount":200.00}`, nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, rec.calls)
}

func TestHandlerReturns500OnStorageFailure(t *testing.T) {
	rec := &fakeReconciler{err: errors.New("connection refused")}
	h := NewHandler(rec, "", metrics.Registry("test"), utils.InitLogger("error"))

	resp := post(t, h, `{"payment_status":"finished","order_id":"42:NV-AB12CD","price_amount":200.00}`, nil)
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Len(t, rec.calls, 1)
}

func signBody(t *testing.T, secret, body string) string {
	t.Helper()
	var fields map[string]any
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&fields))
	canonical, err := json.Marshal(fields)
	require.NoError(t, err)
	return signRaw(secret, canonical)
}

func signRaw(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestHandlerVerifiesSignature(t *testing.T) {
	const secret = "ipn-secret"
	rec := &fakeReconciler{}
	h := NewHandler(rec, secret, metrics.Registry("test"), utils.InitLogger("error"))
	body := `{"payment_status":"confirmed","order_id":"42:NV-AB12CD","price_amount":200.00}`

	resp := post(t, h, body, map[string]string{"x-nowpayments-sig": signBody(t, secret, body)})
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, rec.calls, 1)

	resp = post(t, h, body, map[string]string{"x-nowpayments-sig": "deadbeef"})
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = post(t, h, body, nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	assert.Len(t, rec.calls, 1)
}

// The provider signs the exact bytes it sends: sorted keys, compact form,
// numeric literals as written. A decimal amount must still verify.
func TestSignatureAcceptsProviderFormattedDecimals(t *testing.T) {
	const secret = "ipn-secret"
	rec := &fakeReconciler{}
	h := NewHandler(rec, secret, metrics.Registry("test"), utils.InitLogger("error"))
	body := `{"order_id":"42:NV-AB12CD","payment_id":5077125051,"payment_status":"finished","price_amount":200.00}`

	resp := post(t, h, body, map[string]string{"x-nowpayments-sig": signRaw(secret, []byte(body))})
	assert.Equal(t, http.StatusOK, resp.Code)

	require.Len(t, rec.calls, 1)
	assert.True(t, rec.calls[0].Amount.Equal(decimal.RequireFromString("200.00")))
	assert.Equal(t, "5077125051", rec.calls[0].TxID)
}

func TestServerRoutes(t *testing.T) {
	rec := &fakeReconciler{}
	h := NewHandler(rec, "", metrics.Registry("test"), utils.InitLogger("error"))
	srv := NewServer(":0", h, prometheus.NewRegistry(), utils.InitLogger("error"))

	ts := httptest.NewServer(srv.httpServer.Handler)
	defer ts.Close()

	for _, path := range []string{"/healthz", "/metrics"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.NotEmpty(t, resp.Header.Get("X-Request-Id"), path)
		_ = resp.Body.Close()
	}
}
