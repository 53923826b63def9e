package wallet

import (
	"context"

	"github.com/bsv-blockchain/go-sdk/script"
)

// PaymentRequestEntry is the payment request as stored by the wallet.
type PaymentRequestEntry struct {
	// KeyID identifies the wallet key that receives the payment.
	KeyID int64
	// RequestedValue is the requested amount in satoshis, nil when the payer chooses it.
	RequestedValue *uint64
	// DateCreated is the unix timestamp of the request creation.
	DateCreated int64
	// Expiration is the lifetime of the request in seconds, nil when it never expires.
	Expiration *int64
	// Description is shown to the payer as the memo of the request.
	Description *string
}

// ScriptSource provides locking scripts for wallet keys.
type ScriptSource interface {
	// LockingScriptFor returns the locking script paying to the key.
	LockingScriptFor(ctx context.Context, keyID int64) (*script.Script, error)
}
