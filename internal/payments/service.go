package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gympulse/gympulse/internal/member"
	"github.com/gympulse/gympulse/internal/notification"
)

var (
	// ErrInvalidAmount rejects non-positive order amounts.
	ErrInvalidAmount = errors.New("amount must be a positive number of minor units")

	// ErrGateway wraps failures reported by the payment gateway.
	ErrGateway = errors.New("payment gateway error")

	// ErrInvalidCallback rejects callbacks with missing fields.
	ErrInvalidCallback = errors.New("incomplete payment callback")

	// ErrSignatureMismatch means the callback signature was forged or tampered with.
	ErrSignatureMismatch = errors.New("payment signature mismatch")

	// ErrPersistenceFailure means the signature verified but the member could not be updated.
	// Callers must not report the payment as successful.
	ErrPersistenceFailure = errors.New("payment verified but member update failed")
)

// Service creates gateway orders and verifies gateway callbacks.
type Service struct {
	gateway  Gateway
	members  member.Repository
	notifier notification.Notifier
	logger   *slog.Logger
	secret   []byte
	currency string
	now      func() time.Time
}

// Options bundles the read-only settings the service needs.
type Options struct {
	KeySecret string
	Currency  string
}

// NewService constructs a payment service.
func NewService(gateway Gateway, members member.Repository, notifier notification.Notifier, logger *slog.Logger, opts Options) *Service {
	return &Service{
		gateway:  gateway,
		members:  members,
		notifier: notifier,
		logger:   logger,
		secret:   []byte(opts.KeySecret),
		currency: opts.Currency,
		now:      time.Now,
	}
}

// Callback carries the opaque values relayed by the client after checkout.
type Callback struct {
	OrderID   string
	PaymentID string
	Signature string
	MemberID  string
}

// CreateOrder opens a pending gateway order for amount minor units. It does not touch member state.
func (s *Service) CreateOrder(ctx context.Context, amount int64) (Order, error) {
	if amount <= 0 {
		return Order{}, ErrInvalidAmount
	}
	order, err := s.gateway.CreateOrder(ctx, OrderRequest{
		Amount:   amount,
		Currency: s.currency,
		Receipt:  "receipt_" + strconv.FormatInt(s.now().UnixMilli(), 10),
	})
	if err != nil {
		return Order{}, fmt.Errorf("%w: %w", ErrGateway, err)
	}
	return order, nil
}

// VerifyCallback recomputes the callback signature from the shared secret over the
// ids exactly as supplied and, only when it matches, marks the member paid for one
// calendar month from now.
func (s *Service) VerifyCallback(ctx context.Context, cb Callback) (member.Member, error) {
	cb.MemberID = strings.TrimSpace(cb.MemberID)
	if strings.TrimSpace(cb.OrderID) == "" || strings.TrimSpace(cb.PaymentID) == "" || cb.Signature == "" || cb.MemberID == "" {
		return member.Member{}, ErrInvalidCallback
	}

	if !SignatureMatches(s.secret, cb.OrderID, cb.PaymentID, cb.Signature) {
		s.logger.Warn("payment signature rejected",
			slog.String("order_id", cb.OrderID),
			slog.String("payment_id", cb.PaymentID),
			slog.String("member_id", cb.MemberID),
		)
		return member.Member{}, ErrSignatureMismatch
	}

	now := s.now().UTC()
	next := now.AddDate(0, 1, 0)
	updated, err := s.members.SetPaymentStatus(ctx, cb.MemberID, member.PaymentStatus{
		IsPaid:          true,
		LastPaymentDate: &now,
		NextDueDate:     &next,
		Overdue:         false,
	})
	if err != nil {
		s.logger.Error("payment verified but member update failed",
			slog.String("order_id", cb.OrderID),
			slog.String("payment_id", cb.PaymentID),
			slog.String("member_id", cb.MemberID),
			slog.Any("error", err),
		)
		return member.Member{}, fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}

	s.logger.Info("payment verified",
		slog.String("order_id", cb.OrderID),
		slog.String("payment_id", cb.PaymentID),
		slog.String("member_id", updated.ID),
	)

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindMembershipPaid,
			Destination: updated.Email,
			Body:        fmt.Sprintf("Payment %s received. Membership paid until %s.", cb.PaymentID, next.Format("2006-01-02")),
		})
	}

	return updated, nil
}
