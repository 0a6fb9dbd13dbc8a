package payments

import (
	"errors"
	"math"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/gympulse/gympulse/internal/middleware"
)

// Handler exposes payment endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a payment handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// createOrderRequest takes the amount in minor units. Browsers compute it as
// rupees*100, which can arrive as 1998.9999999999998, so it is rounded.
type createOrderRequest struct {
	Amount float64 `json:"amount"`
}

type createOrderResponse struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// verifyRequest accepts both the camelCase fields and the gateway's native checkout field names.
type verifyRequest struct {
	OrderID           string `json:"orderId"`
	PaymentID         string `json:"paymentId"`
	Signature         string `json:"signature"`
	MemberID          string `json:"memberId"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

func (r verifyRequest) callback() Callback {
	cb := Callback{OrderID: r.OrderID, PaymentID: r.PaymentID, Signature: r.Signature, MemberID: r.MemberID}
	if cb.OrderID == "" {
		cb.OrderID = r.RazorpayOrderID
	}
	if cb.PaymentID == "" {
		cb.PaymentID = r.RazorpayPaymentID
	}
	if cb.Signature == "" {
		cb.Signature = r.RazorpaySignature
	}
	return cb
}

type verifyResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// CreateOrder opens a gateway order for the requested amount in minor units.
func (h *Handler) CreateOrder(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) || req.Amount > math.MaxInt32 {
		return fiber.NewError(http.StatusBadRequest, ErrInvalidAmount.Error())
	}
	order, err := h.service.CreateOrder(c.UserContext(), int64(math.Round(req.Amount)))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidAmount):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrGateway):
			return fiber.NewError(http.StatusBadGateway, "Could not create order")
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.Status(http.StatusOK).JSON(createOrderResponse{OrderID: order.ID, Amount: order.Amount, Currency: order.Currency})
}

// VerifyPayment checks the callback signature and records the payment.
func (h *Handler) VerifyPayment(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(verifyResponse{Success: false, Message: err.Error()})
	}

	cb := req.callback()
	if cb.MemberID == "" {
		// The checkout widget only relays the gateway fields; the payer is the session owner.
		cb.MemberID, _ = c.Locals(middleware.LocalMemberID).(string)
	}

	_, err := h.service.VerifyCallback(c.UserContext(), cb)
	if err != nil {
		switch {
		case errors.Is(err, ErrSignatureMismatch):
			return c.Status(http.StatusBadRequest).JSON(verifyResponse{Success: false, Message: "Invalid signature"})
		case errors.Is(err, ErrInvalidCallback):
			return c.Status(http.StatusBadRequest).JSON(verifyResponse{Success: false, Message: err.Error()})
		default:
			return c.Status(http.StatusInternalServerError).JSON(verifyResponse{Success: false, Message: "Payment could not be recorded"})
		}
	}
	return c.Status(http.StatusOK).JSON(verifyResponse{Success: true})
}
