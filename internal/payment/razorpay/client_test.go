package razorpay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "rzp_test_secret", pass)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_abc","amount":250000,"currency":"INR","receipt":"rcpt_1","status":"created"}`))
	}))
	defer srv.Close()

	client := NewClient("rzp_test_key", "rzp_test_secret", srv.URL)
	order, err := client.CreateOrder(context.Background(), 250000, "inr", "rcpt_1", map[string]string{"proposal_id": "42"})
	require.NoError(t, err)

	assert.Equal(t, "order_abc", order.ID)
	assert.Equal(t, int64(250000), order.Amount)
	assert.Equal(t, "created", order.Status)

	assert.Equal(t, float64(250000), got["amount"])
	assert.Equal(t, "INR", got["currency"])
	assert.Equal(t, "rcpt_1", got["receipt"])
	notes, ok := got["notes"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "42", notes["proposal_id"])
}

func TestCreateOrderSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount must be at least 100"}}`))
	}))
	defer srv.Close()

	client := NewClient("k", "s", srv.URL)
	_, err := client.CreateOrder(context.Background(), 1, "INR", "rcpt_1", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount must be at least 100")
	assert.Contains(t, err.Error(), "BAD_REQUEST_ERROR")
}

func TestCreateOrderRequiresCredentials(t *testing.T) {
	client := NewClient("", "", "")
	_, err := client.CreateOrder(context.Background(), 100, "INR", "rcpt_1", nil)
	assert.ErrorContains(t, err, "credentials not configured")
}
