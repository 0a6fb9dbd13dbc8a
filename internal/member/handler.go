package member

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// Handler exposes member CRUD endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a member HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// flexInt accepts both JSON numbers and numeric strings, since HTML form inputs post strings.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return errors.New("age must be a whole number")
	}
	*f = flexInt(n)
	return nil
}

type createRequest struct {
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Password        string     `json:"password"`
	Age             flexInt    `json:"age"`
	JoinDate        *time.Time `json:"joinDate"`
	MembershipType  string     `json:"membershipType"`
	AssignedTrainer string     `json:"assignedTrainer"`
}

type updateRequest struct {
	Name            *string    `json:"name"`
	Email           *string    `json:"email"`
	Password        *string    `json:"password"`
	Age             *flexInt   `json:"age"`
	JoinDate        *time.Time `json:"joinDate"`
	MembershipType  *string    `json:"membershipType"`
	AssignedTrainer *string    `json:"assignedTrainer"`
}

type paymentStatusResponse struct {
	IsPaid          bool       `json:"isPaid"`
	LastPaymentDate *time.Time `json:"lastPaymentDate"`
	NextDueDate     *time.Time `json:"nextDueDate"`
	Overdue         bool       `json:"overdue"`
}

// Response is the wire representation of a member. The id is exposed as _id
// because the dashboard keys rows on that field.
type Response struct {
	ID              string                `json:"_id"`
	Name            string                `json:"name"`
	Email           string                `json:"email"`
	Age             int                   `json:"age"`
	JoinDate        time.Time             `json:"joinDate"`
	MembershipType  string                `json:"membershipType"`
	AssignedTrainer string                `json:"assignedTrainer"`
	PaymentStatus   paymentStatusResponse `json:"paymentStatus"`
}

// ToResponse maps a member to its wire form, dropping the password hash.
func ToResponse(m Member) Response {
	return Response{
		ID:              m.ID,
		Name:            m.Name,
		Email:           m.Email,
		Age:             m.Age,
		JoinDate:        m.JoinDate,
		MembershipType:  m.MembershipType,
		AssignedTrainer: m.AssignedTrainer,
		PaymentStatus: paymentStatusResponse{
			IsPaid:          m.PaymentStatus.IsPaid,
			LastPaymentDate: m.PaymentStatus.LastPaymentDate,
			NextDueDate:     m.PaymentStatus.NextDueDate,
			Overdue:         m.PaymentStatus.Overdue,
		},
	}
}

func toResponses(members []Member) []Response {
	out := make([]Response, 0, len(members))
	for _, m := range members {
		out = append(out, ToResponse(m))
	}
	return out
}

// Create registers a new member.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	m, err := h.service.Create(c.UserContext(), CreateInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		Age:             int(req.Age),
		JoinDate:        req.JoinDate,
		MembershipType:  req.MembershipType,
		AssignedTrainer: req.AssignedTrainer,
	})
	if err != nil {
		return mapError(err, "Error creating member")
	}
	return c.Status(http.StatusCreated).JSON(ToResponse(m))
}

// List returns every member.
func (h *Handler) List(c *fiber.Ctx) error {
	members, err := h.service.List(c.UserContext(), Filter{})
	if err != nil {
		return mapError(err, "Error fetching members")
	}
	return c.Status(http.StatusOK).JSON(toResponses(members))
}

// Unpaid returns members with an unpaid status.
func (h *Handler) Unpaid(c *fiber.Ctx) error {
	members, err := h.service.Unpaid(c.UserContext())
	if err != nil {
		return mapError(err, "Error fetching unpaid members")
	}
	return c.Status(http.StatusOK).JSON(toResponses(members))
}

// Get returns one member by id.
func (h *Handler) Get(c *fiber.Ctx) error {
	m, err := h.service.Get(c.UserContext(), memberID(c))
	if err != nil {
		return mapError(err, "Error fetching member")
	}
	return c.Status(http.StatusOK).JSON(ToResponse(m))
}

// Me returns the member identified by the bearer token.
func (h *Handler) Me(c *fiber.Ctx) error {
	id, _ := c.Locals("member_id").(string)
	if id == "" {
		return fiber.NewError(http.StatusUnauthorized, "No token provided")
	}
	m, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return mapError(err, "Error fetching member")
	}
	return c.Status(http.StatusOK).JSON(ToResponse(m))
}

// Update applies a partial update to a member.
func (h *Handler) Update(c *fiber.Ctx) error {
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	input := UpdateInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		JoinDate:        req.JoinDate,
		MembershipType:  req.MembershipType,
		AssignedTrainer: req.AssignedTrainer,
	}
	if req.Age != nil {
		age := int(*req.Age)
		input.Age = &age
	}
	m, err := h.service.Update(c.UserContext(), memberID(c), input)
	if err != nil {
		return mapError(err, "Error updating member")
	}
	return c.Status(http.StatusOK).JSON(ToResponse(m))
}

// Delete removes a member.
func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), memberID(c)); err != nil {
		return mapError(err, "Failed to delete member")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Member deleted successfully"})
}

// memberID copies the :id route param out of the request buffer, which fasthttp reuses
// once the handler returns.
func memberID(c *fiber.Ctx) string {
	return utils.CopyString(c.Params("id"))
}

func mapError(err error, fallback string) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, "Member not found")
	case errors.Is(err, ErrDuplicateEmail):
		return fiber.NewError(http.StatusBadRequest, "Email already exists")
	case errors.Is(err, ErrInvalidMember):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, fallback)
	}
}
