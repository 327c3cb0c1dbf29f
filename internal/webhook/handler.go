package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/novayshop/shopbot/internal/metrics"
	"github.com/novayshop/shopbot/utils"
	"github.com/shopspring/decimal"
)

const maxBodyBytes = 64 << 10

// Reconciler applies one provider callback to the ledger. Inapplicable events
// return nil; only a storage failure comes back as an error.
type Reconciler interface {
	Reconcile(ctx context.Context, orderID, paymentStatus, txid string, reportedAmount decimal.Decimal) error
}

// Handler terminates NOWPayments IPN callbacks. The provider retries on
// non-2xx responses, which is safe because the reconciler credits at most
// once per deposit ref.
type Handler struct {
	reconciler Reconciler
	ipnSecret  string
	metrics    *metrics.Metrics
	logger     *utils.Logger
}

func NewHandler(reconciler Reconciler, ipnSecret string, m *metrics.Metrics, logger *utils.Logger) *Handler {
	return &Handler{
		reconciler: reconciler,
		ipnSecret:  ipnSecret,
		metrics:    m,
		logger:     logger,
	}
}

type ipnPayload struct {
	PaymentID     json.Number     `json:"payment_id"`
	PaymentStatus string          `json:"payment_status"`
	OrderID       string          `json:"order_id"`
	PriceAmount   decimal.Decimal `json:"price_amount"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "unreadable body", http.StatusBadRequest)
		return
	}

	if h.ipnSecret != "" && !h.verifySignature(body, r.Header.Get("x-nowpayments-sig")) {
		h.metrics.WebhookEvents.WithLabelValues("bad_signature").Inc()
		h.logger.Warnf("Rejected IPN callback with bad signature from %s", r.RemoteAddr)
		http.Error(w, "bad signature", http.StatusForbidden)
		return
	}

	var payload ipnPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.metrics.WebhookEvents.WithLabelValues("bad_payload").Inc()
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}

	if payload.OrderID == "" {
		// Not one of ours; acknowledge so the provider stops retrying.
		h.metrics.WebhookEvents.WithLabelValues("missing_order_id").Inc()
		w.WriteHeader(http.StatusOK)
		return
	}

	err = h.reconciler.Reconcile(r.Context(), payload.OrderID, payload.PaymentStatus, payload.PaymentID.String(), payload.PriceAmount)
	if err != nil {
		// 5xx makes the provider redeliver once storage recovers.
		h.logger.Errorf("Reconcile failed for order %s: %v", payload.OrderID, err)
		http.Error(w, "reconcile failed", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// verifySignature checks the HMAC-SHA512 the provider computes over the
// payload re-serialized with sorted keys. Numeric literals must survive the
// round trip byte for byte ("200.00" stays "200.00"), hence UseNumber.
func (h *Handler) verifySignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}

	var fields map[string]any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return false
	}
	canonical, err := json.Marshal(fields)
	if err != nil {
		return false
	}

	mac := hmac.New(sha512.New, []byte(h.ipnSecret))
	mac.Write(canonical)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
