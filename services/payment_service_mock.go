package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/smartassist/smartassist-api/utils"
)

// MockPaymentService is a mock implementation of PaymentService for testing
type MockPaymentService struct {
	Err      error
	Statuses map[string]string // reference -> payment status

	mu      sync.Mutex
	intents []PaymentIntentRequest
}

// NewMockPaymentService creates a mock that accepts every valid amount
func NewMockPaymentService() *MockPaymentService {
	return &MockPaymentService{Statuses: make(map[string]string)}
}

// CreatePaymentIntent mirrors the real service's amount check, then returns a fake intent
func (m *MockPaymentService) CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntent, error) {
	if utils.ToMinorUnits(req.Amount) < 1 {
		return nil, ErrInvalidAmount
	}
	if m.Err != nil {
		return nil, m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.intents = append(m.intents, req)
	id := fmt.Sprintf("pi_mock_%d", len(m.intents))
	return &PaymentIntent{ID: id, ClientSecret: id + "_secret"}, nil
}

// PaymentStatus returns the configured status for reference, defaulting to unpaid
func (m *MockPaymentService) PaymentStatus(ctx context.Context, reference string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if status, ok := m.Statuses[reference]; ok {
		return status, nil
	}
	return "unpaid", nil
}

// Intents returns the intent requests that reached the processor
func (m *MockPaymentService) Intents() []PaymentIntentRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PaymentIntentRequest(nil), m.intents...)
}

// SetStatus records the status PaymentStatus reports for reference
func (m *MockPaymentService) SetStatus(reference, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Statuses[reference] = status
}
