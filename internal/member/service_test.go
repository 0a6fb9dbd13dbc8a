package member

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// prefixHasher is a deterministic stand-in for bcrypt that counts invocations.
type prefixHasher struct {
	mu    sync.Mutex
	calls int
}

func (h *prefixHasher) HashPassword(plaintext string) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls++
	return []byte("hashed:" + plaintext), nil
}

func newTestService() (*Service, Repository, *prefixHasher) {
	repo := NewMemoryRepository()
	hasher := &prefixHasher{}
	return NewService(repo, hasher), repo, hasher
}

func TestCreateHashesPasswordAndStartsUnpaid(t *testing.T) {
	svc, repo, hasher := newTestService()
	ctx := context.Background()

	m, err := svc.Create(ctx, CreateInput{Name: " Asha ", Email: "a@x.com", Password: "secret", Age: 29, MembershipType: "monthly"})
	require.NoError(t, err)
	require.NotEmpty(t, m.ID)
	require.Equal(t, "Asha", m.Name)
	require.Equal(t, []byte("hashed:secret"), m.PasswordHash)
	require.Equal(t, 1, hasher.calls)
	require.False(t, m.PaymentStatus.IsPaid)
	require.Nil(t, m.PaymentStatus.LastPaymentDate)
	require.False(t, m.JoinDate.IsZero())

	stored, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, m.ID, stored.ID)
}

func TestCreateWithoutPasswordSkipsHashing(t *testing.T) {
	svc, _, hasher := newTestService()

	m, err := svc.Create(context.Background(), CreateInput{Email: "nopass@x.com"})
	require.NoError(t, err)
	require.Empty(t, m.PasswordHash)
	require.Zero(t, hasher.calls)
}

func TestCreateDuplicateEmailLeavesOneMember(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateInput{Name: "First", Email: "dup@x.com", Password: "one"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateInput{Name: "Second", Email: "dup@x.com", Password: "two"})
	require.ErrorIs(t, err, ErrDuplicateEmail)

	all, err := repo.Find(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, first.ID, all[0].ID)
	require.Equal(t, "First", all[0].Name)
	require.Equal(t, []byte("hashed:one"), all[0].PasswordHash)
}

func TestCreateRejectsInvalidEmail(t *testing.T) {
	svc, _, _ := newTestService()

	for _, email := range []string{"", "   ", "not-an-email", "Name <a@x.com>"} {
		_, err := svc.Create(context.Background(), CreateInput{Email: email})
		require.ErrorIs(t, err, ErrInvalidMember, "email %q", email)
	}
}

func TestCreateKeepsProvidedJoinDate(t *testing.T) {
	svc, _, _ := newTestService()
	joined := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

	m, err := svc.Create(context.Background(), CreateInput{Email: "j@x.com", JoinDate: &joined})
	require.NoError(t, err)
	require.True(t, m.JoinDate.Equal(joined))
}

func TestUpdateSkipsRehashWhenPasswordUnchanged(t *testing.T) {
	svc, _, hasher := newTestService()
	ctx := context.Background()

	m, err := svc.Create(ctx, CreateInput{Email: "u@x.com", Password: "secret"})
	require.NoError(t, err)
	require.Equal(t, 1, hasher.calls)

	echoed := string(m.PasswordHash)
	name := "Renamed"
	updated, err := svc.Update(ctx, m.ID, UpdateInput{Name: &name, Password: &echoed})
	require.NoError(t, err)
	require.Equal(t, 1, hasher.calls)
	require.Equal(t, m.PasswordHash, updated.PasswordHash)
	require.Equal(t, "Renamed", updated.Name)

	empty := ""
	_, err = svc.Update(ctx, m.ID, UpdateInput{Password: &empty})
	require.NoError(t, err)
	require.Equal(t, 1, hasher.calls)
}

func TestUpdateRehashesNewPassword(t *testing.T) {
	svc, _, hasher := newTestService()
	ctx := context.Background()

	m, err := svc.Create(ctx, CreateInput{Email: "p@x.com", Password: "old"})
	require.NoError(t, err)

	fresh := "new"
	updated, err := svc.Update(ctx, m.ID, UpdateInput{Password: &fresh})
	require.NoError(t, err)
	require.Equal(t, 2, hasher.calls)
	require.Equal(t, []byte("hashed:new"), updated.PasswordHash)
}

func TestUpdateEmailUniqueness(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Email: "taken@x.com"})
	require.NoError(t, err)
	m, err := svc.Create(ctx, CreateInput{Email: "mine@x.com"})
	require.NoError(t, err)

	taken := "taken@x.com"
	_, err = svc.Update(ctx, m.ID, UpdateInput{Email: &taken})
	require.ErrorIs(t, err, ErrDuplicateEmail)

	stored, err := repo.FindByID(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, "mine@x.com", stored.Email)

	moved := "moved@x.com"
	_, err = svc.Update(ctx, m.ID, UpdateInput{Email: &moved})
	require.NoError(t, err)
	_, err = repo.FindByEmail(ctx, "mine@x.com")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = repo.FindByEmail(ctx, "moved@x.com")
	require.NoError(t, err)
}

func TestUpdateUnknownMember(t *testing.T) {
	svc, _, _ := newTestService()
	name := "x"

	_, err := svc.Update(context.Background(), "missing", UpdateInput{Name: &name})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUnpaidFiltersByPaymentStatus(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	paid, err := svc.Create(ctx, CreateInput{Email: "paid@x.com"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Email: "due@x.com"})
	require.NoError(t, err)

	now := time.Now().UTC()
	_, err = repo.SetPaymentStatus(ctx, paid.ID, PaymentStatus{IsPaid: true, LastPaymentDate: &now})
	require.NoError(t, err)

	unpaid, err := svc.Unpaid(ctx)
	require.NoError(t, err)
	require.Len(t, unpaid, 1)
	require.Equal(t, "due@x.com", unpaid[0].Email)

	all, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestDelete(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	m, err := svc.Create(ctx, CreateInput{Email: "bye@x.com"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, m.ID))
	require.ErrorIs(t, svc.Delete(ctx, m.ID), ErrNotFound)

	_, err = repo.FindByEmail(ctx, "bye@x.com")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Create(ctx, CreateInput{Email: "bye@x.com"})
	require.NoError(t, err)
}
