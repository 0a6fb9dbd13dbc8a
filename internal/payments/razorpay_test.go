package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRazorpayGatewayCreateOrder(t *testing.T) {
	var (
		got              razorpayOrderRequest
		method, path     string
		user, pass       string
		hasAuth, decoded bool
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		user, pass, hasAuth = r.BasicAuth()
		decoded = json.NewDecoder(r.Body).Decode(&got) == nil

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_Nx1","entity":"order","amount":150000,"currency":"INR","receipt":"receipt_1","status":"created"}`))
	}))
	defer srv.Close()

	gw := NewRazorpayGateway(srv.URL, "rzp_test_key", "rzp_test_secret", 5*time.Second)
	order, err := gw.CreateOrder(context.Background(), OrderRequest{Amount: 150000, Currency: "INR", Receipt: "receipt_1"})
	require.NoError(t, err)
	require.Equal(t, "order_Nx1", order.ID)
	require.EqualValues(t, 150000, order.Amount)
	require.Equal(t, "INR", order.Currency)
	require.Equal(t, "created", order.Status)

	require.Equal(t, http.MethodPost, method)
	require.Equal(t, razorpayOrdersPath, path)
	require.True(t, hasAuth)
	require.Equal(t, "rzp_test_key", user)
	require.Equal(t, "rzp_test_secret", pass)
	require.True(t, decoded)

	require.EqualValues(t, 150000, got.Amount)
	require.Equal(t, "INR", got.Currency)
	require.Equal(t, "receipt_1", got.Receipt)
}

func TestRazorpayGatewayErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"The amount must be atleast INR 1.00"}}`))
	}))
	defer srv.Close()

	gw := NewRazorpayGateway(srv.URL, "k", "s", 5*time.Second)
	_, err := gw.CreateOrder(context.Background(), OrderRequest{Amount: 1, Currency: "INR", Receipt: "r"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "BAD_REQUEST_ERROR")
}

func TestRazorpayGatewayMissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"amount":100}`))
	}))
	defer srv.Close()

	gw := NewRazorpayGateway(srv.URL, "k", "s", 5*time.Second)
	_, err := gw.CreateOrder(context.Background(), OrderRequest{Amount: 100, Currency: "INR", Receipt: "r"})
	require.Error(t, err)
}

func TestRazorpayGatewayUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	gw := NewRazorpayGateway(url, "k", "s", time.Second)
	_, err := gw.CreateOrder(context.Background(), OrderRequest{Amount: 100, Currency: "INR", Receipt: "r"})
	require.Error(t, err)
}

func TestRazorpayGatewayCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gw := NewRazorpayGateway("http://127.0.0.1:1", "k", "s", time.Second)
	_, err := gw.CreateOrder(ctx, OrderRequest{Amount: 100, Currency: "INR", Receipt: "r"})
	require.ErrorIs(t, err, context.Canceled)
}
