package payments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

const razorpayOrdersPath = "/v1/orders"

// RazorpayGateway creates orders through the Razorpay Orders API.
type RazorpayGateway struct {
	baseURL   string
	keyID     string
	keySecret string
	timeout   time.Duration
}

// NewRazorpayGateway builds a client for the given API base URL and key pair.
func NewRazorpayGateway(baseURL, keyID, keySecret string, timeout time.Duration) *RazorpayGateway {
	return &RazorpayGateway{baseURL: baseURL, keyID: keyID, keySecret: keySecret, timeout: timeout}
}

type razorpayOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type razorpayOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
	Error    *struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder posts a new order. The context deadline, when shorter, caps the configured timeout.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, req OrderRequest) (Order, error) {
	if err := ctx.Err(); err != nil {
		return Order{}, err
	}
	timeout := g.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	agent := fiber.Post(g.baseURL + razorpayOrdersPath)
	agent.BasicAuth(g.keyID, g.keySecret).
		JSON(razorpayOrderRequest{Amount: req.Amount, Currency: req.Currency, Receipt: req.Receipt}).
		Timeout(timeout)

	var resp razorpayOrderResponse
	code, body, errs := agent.Struct(&resp)
	if code < http.StatusOK || code >= http.StatusMultipleChoices {
		if resp.Error != nil && resp.Error.Description != "" {
			return Order{}, fmt.Errorf("razorpay status %d: %s: %s", code, resp.Error.Code, resp.Error.Description)
		}
		if len(errs) > 0 {
			return Order{}, fmt.Errorf("razorpay request: %w", errors.Join(errs...))
		}
		return Order{}, fmt.Errorf("razorpay status %d: %s", code, truncate(body, 200))
	}
	if len(errs) > 0 {
		return Order{}, fmt.Errorf("decode razorpay order: %w", errors.Join(errs...))
	}
	if resp.ID == "" {
		return Order{}, errors.New("razorpay order response missing id")
	}

	return Order{
		ID:       resp.ID,
		Amount:   resp.Amount,
		Currency: resp.Currency,
		Receipt:  resp.Receipt,
		Status:   resp.Status,
	}, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
