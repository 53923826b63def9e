package testusers

import (
	"encoding/hex"
	"testing"

	primitives "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction/template/p2pkh"
	"github.com/stretchr/testify/require"
)

var Alice = User{
	Name:    "Alice",
	PrivKey: "143ab18a84d3b25e1a13cefa90038411e5d2014590a2a4a57263d1593c8dee1c",
}

var Bob = User{
	Name:    "Bob",
	PrivKey: "0881208859876fc227d71bfb8b91814462c5164b6fee27e614798f6e85d2547d",
}

type User struct {
	Name    string
	PrivKey string
}

func (u User) PrivateKey(t testing.TB) *primitives.PrivateKey {
	t.Helper()

	priv, err := primitives.PrivateKeyFromHex(u.PrivKey)
	require.NoErrorf(t, err, "User %s has invalid private key hex %q", u.Name, u.PrivKey)
	return priv
}

func (u User) PublicKey(t testing.TB) *primitives.PublicKey {
	t.Helper()
	return u.PrivateKey(t).PubKey()
}

// LockingScript returns the P2PKH locking script paying to the user on mainnet.
func (u User) LockingScript(t testing.TB) *script.Script {
	t.Helper()

	address, err := script.NewAddressFromPublicKey(u.PublicKey(t), true)
	require.NoErrorf(t, err, "User %s public key cannot be converted to address", u.Name)

	lockingScript, err := p2pkh.Lock(address)
	require.NoErrorf(t, err, "User %s address cannot be locked with P2PKH", u.Name)
	return lockingScript
}

// LockingScriptHex returns the P2PKH locking script of the user as hex.
func (u User) LockingScriptHex(t testing.TB) string {
	t.Helper()
	return hex.EncodeToString(*u.LockingScript(t))
}
