package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gympulse/gympulse/internal/member"
)

// RegisterMemberRoutes wires member endpoints. Registration is public; everything else needs a session.
// The dashboard reads the current member from /me; /members/me is the same handler.
// Static paths are registered before /members/:id so they are not captured as ids.
func RegisterMemberRoutes(r fiber.Router, h *member.Handler, authn fiber.Handler) {
	r.Post("/members", h.Create)
	r.Get("/me", authn, h.Me)

	group := r.Group("/members", authn)
	group.Get("/", h.List)
	group.Get("/unpaid", h.Unpaid)
	group.Get("/me", h.Me)
	group.Get("/:id", h.Get)
	group.Put("/:id", h.Update)
	group.Delete("/:id", h.Delete)
}
