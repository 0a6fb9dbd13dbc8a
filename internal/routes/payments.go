package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gympulse/gympulse/internal/payments"
)

// RegisterPaymentRoutes wires the order and callback endpoints behind authentication and idempotency.
func RegisterPaymentRoutes(r fiber.Router, h *payments.Handler, authn, idempotency fiber.Handler) {
	r.Post("/create-order", authn, idempotency, h.CreateOrder)
	r.Post("/verify-payment", authn, idempotency, h.VerifyPayment)
}
