package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the login endpoint.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message   string `json:"message"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

type loginFailure struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Login validates credentials and returns a session token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	email := strings.TrimSpace(req.Email)

	token, m, err := h.svc.Authenticate(c.UserContext(), email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			h.logger.Info("login rejected", slog.String("email", email), slog.String("reason", "unknown email"))
			return c.Status(http.StatusUnauthorized).JSON(loginFailure{Message: "Login failed", Error: "User not found"})
		case errors.Is(err, ErrInvalidCredential):
			h.logger.Info("login rejected", slog.String("email", email), slog.String("reason", "password mismatch"))
			return c.Status(http.StatusUnauthorized).JSON(loginFailure{Message: "Login failed", Error: "Invalid password"})
		default:
			h.logger.Error("login failed", slog.String("email", email), slog.Any("error", err))
			return c.Status(http.StatusInternalServerError).JSON(loginFailure{Message: "Login failed", Error: "internal error"})
		}
	}

	h.logger.Info("login succeeded", slog.String("member_id", m.ID))
	return c.Status(http.StatusOK).JSON(loginResponse{
		Message:   "Login successful",
		Token:     token.Value,
		ExpiresIn: int64(h.svc.ttl.Seconds()),
	})
}
