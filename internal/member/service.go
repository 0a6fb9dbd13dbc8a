package member

import (
	"bytes"
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PasswordHasher turns a plaintext password into a salted one-way hash.
type PasswordHasher interface {
	HashPassword(plaintext string) ([]byte, error)
}

// Service manages the member lifecycle on top of a Repository.
type Service struct {
	repo   Repository
	hasher PasswordHasher
	now    func() time.Time
}

// NewService creates a member service.
func NewService(repo Repository, hasher PasswordHasher) *Service {
	return &Service{repo: repo, hasher: hasher, now: time.Now}
}

// CreateInput captures the fields accepted when registering a member.
type CreateInput struct {
	Name            string
	Email           string
	Password        string
	Age             int
	JoinDate        *time.Time
	MembershipType  string
	AssignedTrainer string
}

// UpdateInput carries a partial update; nil fields are left untouched.
type UpdateInput struct {
	Name            *string
	Email           *string
	Password        *string
	Age             *int
	JoinDate        *time.Time
	MembershipType  *string
	AssignedTrainer *string
}

// Create validates input, hashes the password when one is supplied and stores a new unpaid member.
func (s *Service) Create(ctx context.Context, input CreateInput) (Member, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return Member{}, err
	}
	if input.Age < 0 {
		return Member{}, fmt.Errorf("%w: age must not be negative", ErrInvalidMember)
	}

	now := s.now().UTC()
	m := Member{
		ID:              uuid.New().String(),
		Name:            strings.TrimSpace(input.Name),
		Email:           email,
		Age:             input.Age,
		JoinDate:        now,
		MembershipType:  strings.TrimSpace(input.MembershipType),
		AssignedTrainer: strings.TrimSpace(input.AssignedTrainer),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if input.JoinDate != nil {
		m.JoinDate = input.JoinDate.UTC()
	}

	if input.Password != "" {
		hash, err := s.hasher.HashPassword(input.Password)
		if err != nil {
			return Member{}, err
		}
		m.PasswordHash = hash
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return Member{}, err
	}
	return m, nil
}

// Get returns a single member.
func (s *Service) Get(ctx context.Context, id string) (Member, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns every member matching the filter.
func (s *Service) List(ctx context.Context, filter Filter) ([]Member, error) {
	return s.repo.Find(ctx, filter)
}

// Unpaid lists members whose current period is not paid.
func (s *Service) Unpaid(ctx context.Context) ([]Member, error) {
	paid := false
	return s.repo.Find(ctx, Filter{IsPaid: &paid})
}

// Update applies a partial update. A password is re-hashed only when it is
// non-empty and differs from the stored hash, so echoing the stored value back is a no-op.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (Member, error) {
	patch := Patch{
		Name:            trimmed(input.Name),
		Age:             input.Age,
		JoinDate:        input.JoinDate,
		MembershipType:  trimmed(input.MembershipType),
		AssignedTrainer: trimmed(input.AssignedTrainer),
	}
	if input.Age != nil && *input.Age < 0 {
		return Member{}, fmt.Errorf("%w: age must not be negative", ErrInvalidMember)
	}
	if input.Email != nil {
		email, err := normalizeEmail(*input.Email)
		if err != nil {
			return Member{}, err
		}
		patch.Email = &email
	}

	if input.Password != nil && *input.Password != "" {
		current, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return Member{}, err
		}
		if !bytes.Equal(current.PasswordHash, []byte(*input.Password)) {
			hash, err := s.hasher.HashPassword(*input.Password)
			if err != nil {
				return Member{}, err
			}
			patch.PasswordHash = hash
		}
	}

	return s.repo.Update(ctx, id, patch)
}

// Delete removes a member.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func normalizeEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrInvalidMember)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: email %q is not a valid address", ErrInvalidMember, email)
	}
	return email, nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}
