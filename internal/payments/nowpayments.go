package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/novayshop/shopbot/internal/metrics"
	"github.com/novayshop/shopbot/internal/service"
	"github.com/novayshop/shopbot/utils"
	"github.com/shopspring/decimal"
)

const requestTimeout = 15 * time.Second

// Config holds the provider credentials and invoice redirect targets.
type Config struct {
	BaseURL     string
	APIKey      string
	PayCurrency string
	SuccessURL  string
	CancelURL   string
}

// NOWPayments asks the payment provider to mint hosted invoices. Payment
// confirmation arrives separately over the IPN webhook, so this client only
// ever creates invoices.
type NOWPayments struct {
	cfg     Config
	client  *http.Client
	metrics *metrics.Metrics
	logger  *utils.Logger
}

func New(cfg Config, m *metrics.Metrics, logger *utils.Logger) *NOWPayments {
	return &NOWPayments{
		cfg:     cfg,
		client:  &http.Client{Timeout: requestTimeout},
		metrics: m,
		logger:  logger,
	}
}

type invoiceRequest struct {
	PriceAmount   json.Number `json:"price_amount"`
	PriceCurrency string      `json:"price_currency"`
	PayCurrency   string      `json:"pay_currency,omitempty"`
	OrderID       string      `json:"order_id"`
	SuccessURL    string      `json:"success_url,omitempty"`
	CancelURL     string      `json:"cancel_url,omitempty"`
}

type invoiceResponse struct {
	ID         json.Number `json:"id"`
	InvoiceURL string      `json:"invoice_url"`
}

// CreateInvoice implements service.Invoicer. The order id embeds the user id
// and deposit ref so the webhook can correlate the payment back to the
// pending deposit row.
func (n *NOWPayments) CreateInvoice(ctx context.Context, amountCents int64, telegramID int64, ref string) (string, error) {
	body, err := json.Marshal(invoiceRequest{
		PriceAmount:   json.Number(decimal.New(amountCents, -2).String()),
		PriceCurrency: "eur",
		PayCurrency:   n.cfg.PayCurrency,
		OrderID:       service.OrderID(telegramID, ref),
		SuccessURL:    n.cfg.SuccessURL,
		CancelURL:     n.cfg.CancelURL,
	})
	if err != nil {
		return "", fmt.Errorf("marshal invoice request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.BaseURL+"/v1/invoice", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build invoice request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", n.cfg.APIKey)

	resp, err := n.client.Do(req)
	if err != nil {
		n.metrics.InvoiceRequests.WithLabelValues("transport_error").Inc()
		return "", fmt.Errorf("invoice request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		n.metrics.InvoiceRequests.WithLabelValues(fmt.Sprintf("http_%d", resp.StatusCode)).Inc()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		n.logger.Errorf("Invoice request for %s rejected with %d: %s", ref, resp.StatusCode, snippet)
		return "", fmt.Errorf("invoice request rejected with status %d", resp.StatusCode)
	}

	var decoded invoiceResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		n.metrics.InvoiceRequests.WithLabelValues("bad_response").Inc()
		return "", fmt.Errorf("decode invoice response: %w", err)
	}
	if decoded.InvoiceURL == "" {
		n.metrics.InvoiceRequests.WithLabelValues("bad_response").Inc()
		return "", fmt.Errorf("invoice response missing invoice_url")
	}

	n.metrics.InvoiceRequests.WithLabelValues("ok").Inc()
	n.logger.Infof("Invoice %s created for deposit %s", decoded.ID, ref)
	return decoded.InvoiceURL, nil
}
