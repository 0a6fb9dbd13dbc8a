package member

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryRepository struct {
	mu      sync.RWMutex
	members map[string]Member
	byEmail map[string]string
}

// NewMemoryRepository builds an in-memory member store for tests and local runs.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		members: make(map[string]Member),
		byEmail: make(map[string]string),
	}
}

func (r *memoryRepository) Create(_ context.Context, m Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[m.Email]; exists {
		return ErrDuplicateEmail
	}
	r.members[m.ID] = m
	r.byEmail[m.Email] = m.ID
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.members[id]
	if !ok {
		return Member{}, ErrNotFound
	}
	return m, nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return Member{}, ErrNotFound
	}
	return r.members[id], nil
}

func (r *memoryRepository) Find(_ context.Context, filter Filter) ([]Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := make([]Member, 0, len(r.members))
	for _, m := range r.members {
		if filter.Matches(m) {
			members = append(members, m)
		}
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].JoinDate.Equal(members[j].JoinDate) {
			return members[i].CreatedAt.Before(members[j].CreatedAt)
		}
		return members[i].JoinDate.Before(members[j].JoinDate)
	})
	return members, nil
}

func (r *memoryRepository) Update(_ context.Context, id string, patch Patch) (Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok {
		return Member{}, ErrNotFound
	}
	oldEmail := m.Email
	patch.apply(&m)
	if m.Email != oldEmail {
		if _, taken := r.byEmail[m.Email]; taken {
			return Member{}, ErrDuplicateEmail
		}
		delete(r.byEmail, oldEmail)
		r.byEmail[m.Email] = m.ID
	}
	m.UpdatedAt = time.Now().UTC()
	r.members[m.ID] = m
	return m, nil
}

func (r *memoryRepository) SetPaymentStatus(_ context.Context, id string, status PaymentStatus) (Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok {
		return Member{}, ErrNotFound
	}
	m.PaymentStatus = status
	m.UpdatedAt = time.Now().UTC()
	r.members[m.ID] = m
	return m, nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.members, m.ID)
	delete(r.byEmail, m.Email)
	return nil
}
