package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"zuru/internal/domain"
)

// ChargeRequest is a single charge against a payment provider.
type ChargeRequest struct {
	Amount         int // KES
	Method         domain.PaymentMethod
	UserEmail      string
	Description    string
	CardToken      string
	IdempotencyKey string
}

// ChargeResult is the provider's confirmation of a charge.
type ChargeResult struct {
	Reference string
}

// PSP is the interface for a Payment Service Provider.
type PSP interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

// MockPSP is a provider that approves every charge. It stands in for the
// M-PESA and PayPal integrations. Set Decline to refuse charges.
type MockPSP struct {
	mu      sync.Mutex
	prefix  string
	Decline bool
	charges []ChargeRequest
}

// NewMockPSP creates a new mock PSP whose references start with prefix.
func NewMockPSP(prefix string) *MockPSP {
	return &MockPSP{prefix: prefix}
}

// Charge simulates a payment charge.
func (p *MockPSP) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Decline {
		return nil, ErrPaymentDeclined
	}
	p.charges = append(p.charges, req)

	ref := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:10])
	return &ChargeResult{Reference: fmt.Sprintf("%s%s", p.prefix, ref)}, nil
}

// Charges returns the charges approved so far.
func (p *MockPSP) Charges() []ChargeRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ChargeRequest, len(p.charges))
	copy(out, p.charges)
	return out
}
