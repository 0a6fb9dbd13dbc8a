package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/gympulse/gympulse/internal/auth"
)

const (
	// LocalMemberID holds the authenticated member id on the request context.
	LocalMemberID = "member_id"
	// LocalEmail holds the authenticated member email.
	LocalEmail = "email"
	// LocalClaims holds the full token claims.
	LocalClaims = "claims"
)

// JWTAuth returns a middleware that requires a valid bearer session token.
// A missing token is answered with 401, an invalid or expired one with 403.
func JWTAuth(svc *auth.Service, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := svc.ValidateToken(bearerToken(c.Get(fiber.HeaderAuthorization)))
		if err != nil {
			if errors.Is(err, auth.ErrMissingToken) {
				return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "No token provided"})
			}
			if logger != nil {
				logger.Debug("bearer token rejected",
					slog.String("path", c.Path()),
					slog.Bool("expired", auth.IsExpired(err)),
				)
			}
			return c.Status(http.StatusForbidden).JSON(fiber.Map{"message": "Invalid token"})
		}

		c.Locals(LocalMemberID, claims.MemberID)
		c.Locals(LocalEmail, claims.Email)
		c.Locals(LocalClaims, claims)
		return c.Next()
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
// Any other scheme yields an empty string.
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
