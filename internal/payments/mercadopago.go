package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nailsxoxi/salon-platform/pkg/logging"
)

var mpTracer = otel.Tracer("salon.internal.payments.mercadopago")

// MercadoPagoClient talks to the MercadoPago REST API: creating checkout
// preferences for deposits and fetching payments referenced by webhooks.
type MercadoPagoClient struct {
	accessToken string
	clientURL   string
	serverURL   string
	baseURL     string
	httpClient  *http.Client
	logger      *logging.Logger
}

// PreferenceParams describes the deposit checkout to create.
type PreferenceParams struct {
	AppointmentID string
	Title         string
	Amount        float64
}

// Payment is the slice of the gateway payment object the reconciler needs.
type Payment struct {
	ID                int64   `json:"id"`
	Status            string  `json:"status"`
	TransactionAmount float64 `json:"transaction_amount"`
	Metadata          struct {
		AppointmentID string `json:"appointment_id"`
	} `json:"metadata"`
}

// NewMercadoPagoClient builds the gateway client. clientURL hosts the
// back URLs; serverURL receives webhook notifications.
func NewMercadoPagoClient(accessToken, clientURL, serverURL string, logger *logging.Logger) *MercadoPagoClient {
	if logger == nil {
		logger = logging.Default()
	}
	return &MercadoPagoClient{
		accessToken: accessToken,
		clientURL:   strings.TrimRight(clientURL, "/"),
		serverURL:   strings.TrimRight(serverURL, "/"),
		baseURL:     "https://api.mercadopago.com",
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		logger:      logger,
	}
}

// WithBaseURL overrides the API host (sandbox, tests).
func (c *MercadoPagoClient) WithBaseURL(baseURL string) *MercadoPagoClient {
	if baseURL == "" {
		return c
	}
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// CreatePreference creates a checkout preference for the deposit and
// returns the preference id the client redirects to.
func (c *MercadoPagoClient) CreatePreference(ctx context.Context, params PreferenceParams) (string, error) {
	ctx, span := mpTracer.Start(ctx, "mercadopago.create_preference")
	defer span.End()
	span.SetAttributes(
		attribute.String("salon.appointment_id", params.AppointmentID),
		attribute.Float64("salon.deposit_amount", params.Amount),
	)

	body := map[string]any{
		"items": []map[string]any{
			{
				"id":          params.AppointmentID,
				"title":       "Seña: " + params.Title,
				"quantity":    1,
				"unit_price":  params.Amount,
				"currency_id": "ARS",
			},
		},
		"back_urls": map[string]string{
			"success": c.clientURL + "/payment/success",
			"failure": c.clientURL + "/payment/failure",
			"pending": c.clientURL + "/payment/pending",
		},
		"auto_return":      "approved",
		"notification_url": c.serverURL + "/api/payments/webhook",
		"metadata": map[string]string{
			"appointment_id": params.AppointmentID,
		},
	}

	reqBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("payments: preference payload: %w", err)
	}

	apiURL := c.baseURL + "/checkout/preferences"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("payments: preference request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("payments: mercadopago http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("payments: mercadopago status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("payments: preference response: %w", err)
	}
	return parsed.ID, nil
}

// GetPayment fetches a payment by the id a webhook referenced.
func (c *MercadoPagoClient) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	ctx, span := mpTracer.Start(ctx, "mercadopago.get_payment")
	defer span.End()
	span.SetAttributes(attribute.String("salon.mp_payment_id", paymentID))

	apiURL := c.baseURL + "/v1/payments/" + paymentID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("payments: payment request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payments: mercadopago http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("payments: mercadopago status %d: %s", resp.StatusCode, string(raw))
	}

	var p Payment
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("payments: payment response: %w", err)
	}
	return &p, nil
}
