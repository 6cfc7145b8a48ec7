package service_test

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"zuru/internal/domain"
	"zuru/internal/geo"
	"zuru/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	CreateCallCount int32
	DeleteCallCount int32

	CreateError error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*domain.User)}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	copy := *user
	m.users[user.ID] = &copy
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *u
	return &copy, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) UpdateDisplayName(ctx context.Context, id, displayName string) error {
	return m.update(id, func(u *domain.User) { u.DisplayName = displayName })
}

func (m *MockUserRepository) UpdateEmail(ctx context.Context, id, email string) error {
	m.mu.RLock()
	for _, u := range m.users {
		if u.Email == email && u.ID != id {
			m.mu.RUnlock()
			return repository.ErrDuplicate
		}
	}
	m.mu.RUnlock()
	return m.update(id, func(u *domain.User) { u.Email = email })
}

func (m *MockUserRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return m.update(id, func(u *domain.User) { u.PasswordHash = hash })
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	atomic.AddInt32(&m.DeleteCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *MockUserRepository) update(id string, fn func(*domain.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(u)
	return nil
}

// ──────────────────────────────────────────────
// MOCK BOOKING REPOSITORY
// ──────────────────────────────────────────────

// MockBookingRepository is a mock implementation of BookingRepository.
type MockBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]*domain.Booking

	CreateCallCount int32
	CreateError     error
}

func NewMockBookingRepository() *MockBookingRepository {
	return &MockBookingRepository{bookings: make(map[string]*domain.Booking)}
}

// AddBooking adds a booking to the mock repository.
func (m *MockBookingRepository) AddBooking(b *domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[b.ID] = b
}

func (m *MockBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.AddBooking(b)
	return nil
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *b
	return &copy, nil
}

func (m *MockBookingRepository) ListByEmail(ctx context.Context, email string, limit int) ([]*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Booking
	for _, b := range m.bookings {
		if b.UserEmail == email {
			copy := *b
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CountBookings returns the number of bookings.
func (m *MockBookingRepository) CountBookings() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bookings)
}

// ──────────────────────────────────────────────
// MOCK PAYMENT REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment

	CreateCallCount int32
	CreateError     error
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{payments: make(map[string]*domain.Payment)}
}

// AddPayment adds a payment to the mock repository.
func (m *MockPaymentRepository) AddPayment(p *domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.ID] = p
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.IdempotencyKey != "" {
		for _, existing := range m.payments {
			if existing.IdempotencyKey == p.IdempotencyKey {
				return repository.ErrDuplicate
			}
		}
	}
	m.payments[p.ID] = p
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *p
	return &copy, nil
}

func (m *MockPaymentRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.IdempotencyKey == key {
			copy := *p
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockPaymentRepository) ListByEmail(ctx context.Context, email string, limit int) ([]*domain.Payment, error) {
	out := m.filter(func(p *domain.Payment) bool { return p.UserEmail == email })
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockPaymentRepository) ListTravellingFrom(ctx context.Context, email string, from time.Time, limit int) ([]*domain.Payment, error) {
	out := m.filter(func(p *domain.Payment) bool {
		return p.UserEmail == email && !p.TravelDate.Before(from)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].TravelDate.Before(out[j].TravelDate) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockPaymentRepository) filter(keep func(*domain.Payment) bool) []*domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Payment
	for _, p := range m.payments {
		if keep(p) {
			copy := *p
			out = append(out, &copy)
		}
	}
	return out
}

// CountPayments returns the number of payments.
func (m *MockPaymentRepository) CountPayments() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.payments)
}

// ──────────────────────────────────────────────
// MOCK DESTINATION REPOSITORY
// ──────────────────────────────────────────────

// MockDestinationRepository is a mock implementation of DestinationRepository.
type MockDestinationRepository struct {
	destinations []*domain.Destination

	GetAllCallCount int32
}

func (m *MockDestinationRepository) GetAll(ctx context.Context) ([]*domain.Destination, error) {
	atomic.AddInt32(&m.GetAllCallCount, 1)
	return m.destinations, nil
}

func (m *MockDestinationRepository) GetByID(ctx context.Context, id string) (*domain.Destination, error) {
	for _, d := range m.destinations {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, repository.ErrNotFound
}

// ──────────────────────────────────────────────
// MOCK STORES AND COLLABORATORS
// ──────────────────────────────────────────────

// MockTokenStore is an in-memory revocation list.
type MockTokenStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewMockTokenStore() *MockTokenStore {
	return &MockTokenStore{revoked: make(map[string]time.Time)}
}

func (m *MockTokenStore) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = until
	return nil
}

func (m *MockTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[tokenID]
	return ok, nil
}

// MockLocationStore is an in-memory last-known location store.
type MockLocationStore struct {
	mu        sync.Mutex
	locations map[string]domain.Coordinate
}

func NewMockLocationStore() *MockLocationStore {
	return &MockLocationStore{locations: make(map[string]domain.Coordinate)}
}

func (m *MockLocationStore) Set(userID string, c domain.Coordinate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations[userID] = c
}

func (m *MockLocationStore) LastKnown(ctx context.Context, userID string) (domain.Coordinate, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.locations[userID]
	return c, ok, nil
}

// MockGeocoder resolves a fixed set of places.
type MockGeocoder struct {
	Places map[string]domain.Coordinate
	Names  map[domain.Coordinate]string
	Err    error
}

func (m *MockGeocoder) Reverse(ctx context.Context, coord domain.Coordinate) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	name, ok := m.Names[coord]
	if !ok {
		return "", geo.ErrNoResult
	}
	return name, nil
}

func (m *MockGeocoder) Forward(ctx context.Context, name string) (domain.Coordinate, error) {
	if m.Err != nil {
		return domain.Coordinate{}, m.Err
	}
	c, ok := m.Places[name]
	if !ok {
		return domain.Coordinate{}, geo.ErrNoResult
	}
	return c, nil
}

// MockPublisher records published events.
type MockPublisher struct {
	mu     sync.Mutex
	events []string
	Err    error
}

func (m *MockPublisher) Publish(ctx context.Context, eventType string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, eventType)
	return m.Err
}

func (m *MockPublisher) Events() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.events...)
}

// MockLocker is an in-memory payment lock.
type MockLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewMockLocker() *MockLocker {
	return &MockLocker{held: make(map[string]bool)}
}

func (m *MockLocker) AcquirePaymentLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[key] {
		return false, nil
	}
	m.held[key] = true
	return true, nil
}

func (m *MockLocker) ReleasePaymentLock(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, key)
	return nil
}

// ──────────────────────────────────────────────
// FIXTURES
// ──────────────────────────────────────────────

var (
	nairobi = domain.Coordinate{Lat: -1.286389, Lng: 36.817223}
	mombasa = domain.Coordinate{Lat: -4.0435, Lng: 39.6682}
)

func testSession() *domain.Session {
	now := time.Now()
	return &domain.Session{
		UserID:    "user-1",
		Email:     "traveller@example.com",
		TokenID:   "token-1",
		IssuedAt:  now,
		AuthTime:  now,
		ExpiresAt: now.Add(time.Hour),
	}
}
