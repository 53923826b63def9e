package merchant

import (
	"context"
	"errors"
	"sync"

	"github.com/bsv-blockchain/go-dpp/pkg/dpp"
	"github.com/bsv-blockchain/go-dpp/pkg/wallet"
)

// RequestStore provides the payment requests stored by the payee wallet.
type RequestStore interface {
	// PaymentRequest returns the stored payment request, ErrRequestNotFound when it does not exist.
	PaymentRequest(ctx context.Context, id string) (wallet.PaymentRequestEntry, error)
}

// PaymentProcessor receives every valid payment of an unexpired payment request.
// A returned error rejects the payment and its message is sent to the payer.
type PaymentProcessor func(ctx context.Context, requestID string, entry wallet.PaymentRequestEntry, payment *dpp.Payment) error

// Common errors
var (
	ErrNoScripts       = errors.New("a script source must be supplied to the merchant")
	ErrNoRequests      = errors.New("a payment request store must be supplied to the merchant")
	ErrRequestNotFound = errors.New("payment request not found")
)

// Error codes
const (
	ErrCodeRequestNotFound  = "ERR_REQUEST_NOT_FOUND"
	ErrCodeMerchantInternal = "ERR_MERCHANT_INTERNAL"
	ErrCodeMalformedPayment = "ERR_MALFORMED_PAYMENT"
	ErrCodeRequestExpired   = "ERR_REQUEST_EXPIRED"
	ErrCodePaymentFailed    = "ERR_PAYMENT_FAILED"
)

// MemoryRequests is a RequestStore keeping payment requests in memory.
type MemoryRequests struct {
	mu      sync.RWMutex
	entries map[string]wallet.PaymentRequestEntry
}

func NewMemoryRequests() *MemoryRequests {
	return &MemoryRequests{
		entries: make(map[string]wallet.PaymentRequestEntry),
	}
}

// Add stores the payment request under the id, replacing the previous one.
func (s *MemoryRequests) Add(id string, entry wallet.PaymentRequestEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = entry
}

// PaymentRequest implements RequestStore.
func (s *MemoryRequests) PaymentRequest(_ context.Context, id string) (wallet.PaymentRequestEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[id]
	if !ok {
		return wallet.PaymentRequestEntry{}, ErrRequestNotFound
	}
	return entry, nil
}
