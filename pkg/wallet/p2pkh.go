package wallet

import (
	"context"
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction/template/p2pkh"
)

// P2PKHScripts is a ScriptSource paying to P2PKH addresses of known public keys.
type P2PKHScripts struct {
	keys    map[int64]*ec.PublicKey
	mainnet bool
}

// NewP2PKHScripts creates a ScriptSource for the given keys.
func NewP2PKHScripts(keys map[int64]*ec.PublicKey, mainnet bool) *P2PKHScripts {
	return &P2PKHScripts{
		keys:    keys,
		mainnet: mainnet,
	}
}

// LockingScriptFor implements ScriptSource.
func (s *P2PKHScripts) LockingScriptFor(_ context.Context, keyID int64) (*script.Script, error) {
	key, ok := s.keys[keyID]
	if !ok || key == nil {
		return nil, fmt.Errorf("unknown key %d", keyID)
	}

	address, err := script.NewAddressFromPublicKey(key, s.mainnet)
	if err != nil {
		return nil, fmt.Errorf("failed to create address for key %d: %w", keyID, err)
	}

	lockingScript, err := p2pkh.Lock(address)
	if err != nil {
		return nil, fmt.Errorf("failed to create locking script for key %d: %w", keyID, err)
	}
	return lockingScript, nil
}
