package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePreferenceBuildsDepositCheckout(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/checkout/preferences", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]string{"id": "pref-123"})
	}))
	defer srv.Close()

	client := NewMercadoPagoClient("test-token", "https://salon.example", "https://api.salon.example", nil).
		WithBaseURL(srv.URL)

	id, err := client.CreatePreference(context.Background(), PreferenceParams{
		AppointmentID: "a1",
		Title:         "Kapping Gel",
		Amount:        5000,
	})
	require.NoError(t, err)
	assert.Equal(t, "pref-123", id)

	items := captured["items"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "Seña: Kapping Gel", item["title"])
	assert.Equal(t, 5000.0, item["unit_price"])
	assert.Equal(t, "ARS", item["currency_id"])

	meta := captured["metadata"].(map[string]any)
	assert.Equal(t, "a1", meta["appointment_id"])

	back := captured["back_urls"].(map[string]any)
	assert.Equal(t, "https://salon.example/payment/success", back["success"])
	assert.Equal(t, "https://api.salon.example/api/payments/webhook", captured["notification_url"])
}

func TestCreatePreferenceSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid token"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewMercadoPagoClient("bad", "https://salon.example", "https://api.salon.example", nil).
		WithBaseURL(srv.URL)

	_, err := client.CreatePreference(context.Background(), PreferenceParams{AppointmentID: "a1", Amount: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestGetPaymentDecodesMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/payments/42", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"id":                 42,
			"status":             "approved",
			"transaction_amount": 5000.0,
			"metadata":           map[string]string{"appointment_id": "a1"},
		})
	}))
	defer srv.Close()

	client := NewMercadoPagoClient("test-token", "", "", nil).WithBaseURL(srv.URL)

	p, err := client.GetPayment(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), p.ID)
	assert.Equal(t, "approved", p.Status)
	assert.Equal(t, 5000.0, p.TransactionAmount)
	assert.Equal(t, "a1", p.Metadata.AppointmentID)
}
