// Package memory provides in-process implementations of the repositories and
// stores. It backs local development runs and handler tests.
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"zuru/internal/domain"
	"zuru/internal/repository"
)

// UserRepository is an in-memory repository.UserRepository.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewUserRepository creates an empty UserRepository.
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]domain.User)}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) UpdateDisplayName(ctx context.Context, id, displayName string) error {
	return r.update(id, func(u *domain.User) error {
		u.DisplayName = displayName
		return nil
	})
}

func (r *UserRepository) UpdateEmail(ctx context.Context, id, email string) error {
	return r.update(id, func(u *domain.User) error {
		for _, other := range r.users {
			if other.Email == email && other.ID != id {
				return repository.ErrDuplicate
			}
		}
		u.Email = email
		return nil
	})
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return r.update(id, func(u *domain.User) error {
		u.PasswordHash = hash
		return nil
	})
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *UserRepository) update(id string, fn func(*domain.User) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if err := fn(&u); err != nil {
		return err
	}
	r.users[id] = u
	return nil
}

// BookingRepository is an in-memory repository.BookingRepository.
type BookingRepository struct {
	mu       sync.RWMutex
	bookings []domain.Booking
}

// NewBookingRepository creates an empty BookingRepository.
func NewBookingRepository() *BookingRepository {
	return &BookingRepository{}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings = append(r.bookings, *b)
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.bookings {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *BookingRepository) ListByEmail(ctx context.Context, email string, limit int) ([]*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Booking, 0)
	for _, b := range r.bookings {
		if b.UserEmail == email {
			b := b
			out = append(out, &b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return truncate(out, limit), nil
}

// PaymentRepository is an in-memory repository.PaymentRepository.
type PaymentRepository struct {
	mu       sync.RWMutex
	payments []domain.Payment
}

// NewPaymentRepository creates an empty PaymentRepository.
func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{}
}

func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.IdempotencyKey != "" {
		for _, existing := range r.payments {
			if existing.IdempotencyKey == p.IdempotencyKey {
				return repository.ErrDuplicate
			}
		}
	}
	r.payments = append(r.payments, *p)
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	p := r.find(func(p *domain.Payment) bool { return p.ID == id })
	if p == nil {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (r *PaymentRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Payment, error) {
	return r.find(func(p *domain.Payment) bool { return p.IdempotencyKey == key }), nil
}

func (r *PaymentRepository) ListByEmail(ctx context.Context, email string, limit int) ([]*domain.Payment, error) {
	out := r.filter(func(p *domain.Payment) bool { return p.UserEmail == email })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return truncate(out, limit), nil
}

func (r *PaymentRepository) ListTravellingFrom(ctx context.Context, email string, from time.Time, limit int) ([]*domain.Payment, error) {
	out := r.filter(func(p *domain.Payment) bool { return p.UserEmail == email && !p.TravelDate.Before(from) })
	sort.SliceStable(out, func(i, j int) bool { return out[i].TravelDate.Before(out[j].TravelDate) })
	return truncate(out, limit), nil
}

func (r *PaymentRepository) find(match func(*domain.Payment) bool) *domain.Payment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.payments {
		if match(&p) {
			return &p
		}
	}
	return nil
}

func (r *PaymentRepository) filter(keep func(*domain.Payment) bool) []*domain.Payment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Payment, 0)
	for _, p := range r.payments {
		if keep(&p) {
			p := p
			out = append(out, &p)
		}
	}
	return out
}

// DestinationRepository is a fixed in-memory catalogue.
type DestinationRepository struct {
	destinations []domain.Destination
}

// NewDestinationRepository creates a catalogue holding destinations.
func NewDestinationRepository(destinations ...domain.Destination) *DestinationRepository {
	sorted := append([]domain.Destination(nil), destinations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return &DestinationRepository{destinations: sorted}
}

func (r *DestinationRepository) GetAll(ctx context.Context) ([]*domain.Destination, error) {
	out := make([]*domain.Destination, 0, len(r.destinations))
	for _, d := range r.destinations {
		d := d
		out = append(out, &d)
	}
	return out, nil
}

func (r *DestinationRepository) GetByID(ctx context.Context, id string) (*domain.Destination, error) {
	for _, d := range r.destinations {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, repository.ErrNotFound
}

// Store is an in-memory replacement for the Redis stores: last-known
// locations, JSON cache, token revocation and payment locks. Entries with a
// TTL expire lazily.
type Store struct {
	mu        sync.Mutex
	locations map[string]domain.Coordinate
	values    map[string]entry
	now       func() time.Time
}

type entry struct {
	data    []byte
	expires time.Time
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		locations: make(map[string]domain.Coordinate),
		values:    make(map[string]entry),
		now:       time.Now,
	}
}

func (s *Store) UpdateLocation(ctx context.Context, userID string, coord domain.Coordinate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations[userID] = coord
	return nil
}

func (s *Store) LastKnown(ctx context.Context, userID string) (domain.Coordinate, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.locations[userID]
	return c, ok, nil
}

func (s *Store) RemoveLocation(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locations, userID)
	return nil
}

func (s *Store) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	data, ok := s.get(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.set(key, data, ttl)
	return nil
}

func (s *Store) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	if ttl := until.Sub(s.now()); ttl > 0 {
		s.set("revoked:"+tokenID, []byte("1"), ttl)
	}
	return nil
}

func (s *Store) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, ok := s.get("revoked:" + tokenID)
	return ok, nil
}

func (s *Store) AcquirePaymentLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := "lock:" + key
	if e, ok := s.values[k]; ok && !s.expired(e) {
		return false, nil
	}
	s.values[k] = entry{data: []byte("1"), expires: s.now().Add(ttl)}
	return true, nil
}

func (s *Store) ReleasePaymentLock(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, "lock:"+key)
	return nil
}

func (s *Store) get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.values[key]
	if !ok {
		return nil, false
	}
	if s.expired(e) {
		delete(s.values, key)
		return nil, false
	}
	return e.data, true
}

func (s *Store) set(key string, data []byte, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := entry{data: data}
	if ttl > 0 {
		e.expires = s.now().Add(ttl)
	}
	s.values[key] = e
}

func (s *Store) expired(e entry) bool {
	return !e.expires.IsZero() && !s.now().Before(e.expires)
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

var (
	_ repository.UserRepository        = (*UserRepository)(nil)
	_ repository.BookingRepository     = (*BookingRepository)(nil)
	_ repository.PaymentRepository     = (*PaymentRepository)(nil)
	_ repository.DestinationRepository = (*DestinationRepository)(nil)
)
