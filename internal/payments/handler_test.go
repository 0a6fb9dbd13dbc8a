package payments

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/gympulse/gympulse/internal/logging"
	"github.com/gympulse/gympulse/internal/middleware"
)

func setupPaymentsApp(t *testing.T) (*fiber.App, *paymentsFixture) {
	t.Helper()
	f := newPaymentsFixture(t)
	h := NewHandler(f.svc)
	app := fiber.New()
	app.Post("/create-order", h.CreateOrder)
	app.Post("/verify-payment", h.VerifyPayment)
	return app, f
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func TestHandlerCreateOrder(t *testing.T) {
	app, _ := setupPaymentsApp(t)

	status, body := postJSON(t, app, "/create-order", `{"amount":150000}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "order_static000001", body["order_id"])
	require.EqualValues(t, 150000, body["amount"])
	require.Equal(t, "INR", body["currency"])
}

func TestHandlerCreateOrderRoundsFractionalMinorUnits(t *testing.T) {
	app, f := setupPaymentsApp(t)

	status, body := postJSON(t, app, "/create-order", `{"amount":1998.9999999999998}`)
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 1999, body["amount"])
	require.EqualValues(t, 1999, f.gateway.Last.Amount)
}

func TestHandlerCreateOrderRejectsZeroAmount(t *testing.T) {
	app, _ := setupPaymentsApp(t)

	status, _ := postJSON(t, app, "/create-order", `{"amount":0}`)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestHandlerCreateOrderGatewayDown(t *testing.T) {
	f := newPaymentsFixture(t)
	svc := NewService(failingGateway{}, f.repo, nil, logging.Discard(), Options{KeySecret: testKeySecret, Currency: "INR"})
	app := fiber.New()
	app.Post("/create-order", NewHandler(svc).CreateOrder)

	status, _ := postJSON(t, app, "/create-order", `{"amount":100}`)
	require.Equal(t, http.StatusBadGateway, status)
}

func TestHandlerVerifyPaymentSuccess(t *testing.T) {
	app, f := setupPaymentsApp(t)
	cb := f.callback("order_1", "pay_1")

	body := `{"orderId":"` + cb.OrderID + `","paymentId":"` + cb.PaymentID + `","signature":"` + cb.Signature + `","memberId":"` + cb.MemberID + `"}`
	status, resp := postJSON(t, app, "/verify-payment", body)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, resp["success"])

	stored, err := f.repo.FindByID(context.Background(), f.member.ID)
	require.NoError(t, err)
	require.True(t, stored.PaymentStatus.IsPaid)
}

func TestHandlerVerifyPaymentAcceptsCheckoutFieldNames(t *testing.T) {
	app, f := setupPaymentsApp(t)
	cb := f.callback("order_2", "pay_2")

	body := `{"razorpay_order_id":"` + cb.OrderID + `","razorpay_payment_id":"` + cb.PaymentID + `","razorpay_signature":"` + cb.Signature + `","memberId":"` + cb.MemberID + `"}`
	status, resp := postJSON(t, app, "/verify-payment", body)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, resp["success"])
}

func TestHandlerVerifyPaymentForged(t *testing.T) {
	app, f := setupPaymentsApp(t)

	body := `{"orderId":"order_1","paymentId":"pay_1","signature":"deadbeef","memberId":"` + f.member.ID + `"}`
	status, resp := postJSON(t, app, "/verify-payment", body)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, false, resp["success"])

	stored, err := f.repo.FindByID(context.Background(), f.member.ID)
	require.NoError(t, err)
	require.False(t, stored.PaymentStatus.IsPaid)
}

func TestHandlerVerifyPaymentUnknownMember(t *testing.T) {
	app, f := setupPaymentsApp(t)
	cb := f.callback("order_1", "pay_1")

	body := `{"orderId":"` + cb.OrderID + `","paymentId":"` + cb.PaymentID + `","signature":"` + cb.Signature + `","memberId":"00000000-0000-0000-0000-000000000000"}`
	status, resp := postJSON(t, app, "/verify-payment", body)
	require.Equal(t, http.StatusInternalServerError, status)
	require.Equal(t, false, resp["success"])
}

func TestHandlerVerifyPaymentFallsBackToSessionMember(t *testing.T) {
	f := newPaymentsFixture(t)
	h := NewHandler(f.svc)
	app := fiber.New()
	app.Post("/verify-payment", func(c *fiber.Ctx) error {
		c.Locals(middleware.LocalMemberID, f.member.ID)
		return c.Next()
	}, h.VerifyPayment)
	cb := f.callback("order_1", "pay_1")

	body := `{"razorpay_order_id":"` + cb.OrderID + `","razorpay_payment_id":"` + cb.PaymentID + `","razorpay_signature":"` + cb.Signature + `"}`
	status, resp := postJSON(t, app, "/verify-payment", body)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, resp["success"])

	stored, err := f.repo.FindByID(context.Background(), f.member.ID)
	require.NoError(t, err)
	require.True(t, stored.PaymentStatus.IsPaid)
}

func TestHandlerVerifyPaymentWithoutMemberOrSession(t *testing.T) {
	app, f := setupPaymentsApp(t)
	cb := f.callback("order_1", "pay_1")

	body := `{"razorpay_order_id":"` + cb.OrderID + `","razorpay_payment_id":"` + cb.PaymentID + `","razorpay_signature":"` + cb.Signature + `"}`
	status, resp := postJSON(t, app, "/verify-payment", body)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, false, resp["success"])
}
