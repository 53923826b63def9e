package merchant

import (
	"context"
	"log/slog"
	"time"

	"github.com/bsv-blockchain/go-dpp/pkg/dpp"
	"github.com/bsv-blockchain/go-dpp/pkg/wallet"
)

const defaultPathPrefix = "/api/v1/payment"

// Options configures the merchant
type Options struct {
	// Network the payment terms are issued for.
	Network dpp.Network

	// Scripts provides locking scripts of the keys requests are paid to.
	Scripts wallet.ScriptSource

	// Requests provides the payment requests served by the merchant.
	Requests RequestStore

	// ProcessPayment is called for every accepted payment, AcceptAll when nil.
	ProcessPayment PaymentProcessor

	// PathPrefix of the payment request endpoints, "/api/v1/payment" when empty.
	PathPrefix string

	Logger *slog.Logger

	// Clock returns the current time used for expiration checks, time.Now when nil.
	Clock func() time.Time
}

// AcceptAll is a PaymentProcessor accepting every payment.
func AcceptAll(context.Context, string, wallet.PaymentRequestEntry, *dpp.Payment) error {
	return nil
}
