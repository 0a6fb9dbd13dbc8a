package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/gympulse/gympulse/internal/config"
	"github.com/gympulse/gympulse/internal/member"
)

var (
	// ErrUserNotFound means no member is registered under the submitted email.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredential means the password does not match the stored hash.
	ErrInvalidCredential = errors.New("invalid password")

	// ErrMissingToken means the request carried no bearer token.
	ErrMissingToken = errors.New("no token provided")

	// ErrInvalidToken covers bad signatures, malformed tokens and expired tokens alike.
	ErrInvalidToken = errors.New("invalid token")
)

// Service authenticates members and issues/validates session tokens.
type Service struct {
	repo   member.Repository
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

// NewService builds the credential and session manager from startup configuration.
func NewService(cfg config.Config, repo member.Repository) *Service {
	return &Service{
		repo:   repo,
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.TokenTTL,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
}

// Authenticate looks the member up by email, verifies the password and issues a token.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Token, member.Member, error) {
	m, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, member.ErrNotFound) {
			return Token{}, member.Member{}, ErrUserNotFound
		}
		return Token{}, member.Member{}, fmt.Errorf("lookup member: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(m.PasswordHash, []byte(password)); err != nil {
		return Token{}, member.Member{}, ErrInvalidCredential
	}

	token, err := signToken(m.ID, m.Email, s.secret, s.now(), s.ttl)
	if err != nil {
		return Token{}, member.Member{}, err
	}
	return token, m, nil
}

// ValidateToken checks a raw bearer token and returns its claims.
func (s *Service) ValidateToken(raw string) (Claims, error) {
	if raw == "" {
		return Claims{}, ErrMissingToken
	}
	return parseToken(raw, s.secret, s.now)
}

// HashPassword produces a bcrypt hash with a fresh random salt.
func (s *Service) HashPassword(plaintext string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, fmt.Errorf("%w: password must be at most 72 bytes", member.ErrInvalidMember)
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}
