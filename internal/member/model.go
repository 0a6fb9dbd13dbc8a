package member

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates no member matches the requested identifier or email.
	ErrNotFound = errors.New("member not found")

	// ErrDuplicateEmail is returned when a create or update would give two members the same email.
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrInvalidMember wraps input validation failures.
	ErrInvalidMember = errors.New("invalid member")
)

// PaymentStatus tracks a member's subscription payment state.
type PaymentStatus struct {
	IsPaid          bool
	LastPaymentDate *time.Time
	NextDueDate     *time.Time
	Overdue         bool
}

// Member is a gym member record. PasswordHash is a bcrypt hash and never leaves the service boundary.
type Member struct {
	ID              string
	Name            string
	Email           string
	PasswordHash    []byte
	Age             int
	JoinDate        time.Time
	MembershipType  string
	AssignedTrainer string
	PaymentStatus   PaymentStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Filter selects members by field predicates. Nil fields match everything.
type Filter struct {
	IsPaid *bool
}

// Matches reports whether m satisfies the filter.
func (f Filter) Matches(m Member) bool {
	if f.IsPaid != nil && m.PaymentStatus.IsPaid != *f.IsPaid {
		return false
	}
	return true
}

// Patch is a partial update; only non-nil fields are applied.
// Payment state is not patchable; it changes only through SetPaymentStatus.
type Patch struct {
	Name            *string
	Email           *string
	Age             *int
	JoinDate        *time.Time
	MembershipType  *string
	AssignedTrainer *string
	PasswordHash    []byte
}

func (p Patch) apply(m *Member) {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Email != nil {
		m.Email = *p.Email
	}
	if p.Age != nil {
		m.Age = *p.Age
	}
	if p.JoinDate != nil {
		m.JoinDate = p.JoinDate.UTC()
	}
	if p.MembershipType != nil {
		m.MembershipType = *p.MembershipType
	}
	if p.AssignedTrainer != nil {
		m.AssignedTrainer = *p.AssignedTrainer
	}
	if p.PasswordHash != nil {
		m.PasswordHash = p.PasswordHash
	}
}
