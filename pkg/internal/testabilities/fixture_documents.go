package testabilities

import (
	"encoding/json"
	"maps"
	"testing"

	"github.com/bsv-blockchain/go-dpp/pkg/internal/testabilities/testusers"
	"github.com/stretchr/testify/require"
)

const (
	HybridPaymentModeID      = "ef63d9775da5"
	DefaultCreationTimestamp = int64(1700000000)
	DefaultAmount            = uint64(1000)
)

// TermsDocumentBuilder builds payment terms documents as a merchant would send them.
type TermsDocumentBuilder interface {
	WithNetwork(network any) TermsDocumentBuilder
	WithPaymentURL(url string) TermsDocumentBuilder
	WithExpiration(timestamp int64) TermsDocumentBuilder
	WithMemo(memo string) TermsDocumentBuilder
	WithOutputs(outputs ...map[string]any) TermsDocumentBuilder
	WithTransactions(count int) TermsDocumentBuilder
	WithPolicies(policies any) TermsDocumentBuilder
	// WithOutputKind replaces the native outputs with outputs of another kind.
	WithOutputKind(kind string) TermsDocumentBuilder
	WithOutputsOfKind(kind string, outputs ...any) TermsDocumentBuilder
	With(field string, value any) TermsDocumentBuilder
	Without(field string) TermsDocumentBuilder
	WithoutHybridMode() TermsDocumentBuilder

	Document() map[string]any
	JSON() []byte
}

type termsDocumentBuilder struct {
	testing.TB
	fields       map[string]any
	outputs      []any
	transactions int
	policies     any
	hasPolicies  bool
	outputKind   string
	otherOutputs map[string][]any
	withoutMode  bool
	omitted      map[string]bool
}

// TermsDocument returns a builder of a minimal valid regtest payment terms document
// with a single native output paying DefaultAmount to Alice.
func TermsDocument(t testing.TB) TermsDocumentBuilder {
	return &termsDocumentBuilder{
		TB: t,
		fields: map[string]any{
			"network":           "regtest",
			"version":           "1.0",
			"creationTimestamp": DefaultCreationTimestamp,
		},
		outputs:      []any{NativeOutput(t, testusers.Alice, DefaultAmount)},
		transactions: 1,
		outputKind:   "native",
		otherOutputs: map[string][]any{},
		omitted:      map[string]bool{},
	}
}

// NativeOutput returns a native output document paying the amount to the user.
func NativeOutput(t testing.TB, user testusers.User, amount uint64) map[string]any {
	return map[string]any{
		"script": user.LockingScriptHex(t),
		"amount": amount,
	}
}

func (b *termsDocumentBuilder) WithNetwork(network any) TermsDocumentBuilder {
	return b.With("network", network)
}

func (b *termsDocumentBuilder) WithPaymentURL(url string) TermsDocumentBuilder {
	return b.With("paymentUrl", url)
}

func (b *termsDocumentBuilder) WithExpiration(timestamp int64) TermsDocumentBuilder {
	return b.With("expirationTimestamp", timestamp)
}

func (b *termsDocumentBuilder) WithMemo(memo string) TermsDocumentBuilder {
	return b.With("memo", memo)
}

func (b *termsDocumentBuilder) WithOutputs(outputs ...map[string]any) TermsDocumentBuilder {
	b.outputs = make([]any, 0, len(outputs))
	for _, output := range outputs {
		b.outputs = append(b.outputs, output)
	}
	return b
}

func (b *termsDocumentBuilder) WithTransactions(count int) TermsDocumentBuilder {
	b.transactions = count
	return b
}

func (b *termsDocumentBuilder) WithPolicies(policies any) TermsDocumentBuilder {
	b.policies = policies
	b.hasPolicies = true
	return b
}

func (b *termsDocumentBuilder) WithOutputKind(kind string) TermsDocumentBuilder {
	b.outputKind = kind
	return b
}

// WithOutputsOfKind adds outputs of another kind next to the generated ones.
func (b *termsDocumentBuilder) WithOutputsOfKind(kind string, outputs ...any) TermsDocumentBuilder {
	b.otherOutputs[kind] = append([]any{}, outputs...)
	return b
}

// With sets the field, replacing the generated modes when the field is "modes".
func (b *termsDocumentBuilder) With(field string, value any) TermsDocumentBuilder {
	b.fields[field] = value
	delete(b.omitted, field)
	return b
}

func (b *termsDocumentBuilder) Without(field string) TermsDocumentBuilder {
	delete(b.fields, field)
	b.omitted[field] = true
	return b
}

func (b *termsDocumentBuilder) WithoutHybridMode() TermsDocumentBuilder {
	b.withoutMode = true
	return b
}

func (b *termsDocumentBuilder) Document() map[string]any {
	doc := maps.Clone(b.fields)
	if _, ok := doc["modes"]; ok || b.omitted["modes"] {
		return doc
	}
	if b.withoutMode {
		doc["modes"] = map[string]any{}
		return doc
	}

	transactions := make([]any, 0, b.transactions)
	for range b.transactions {
		outputs := map[string]any{b.outputKind: b.outputs}
		for kind, other := range b.otherOutputs {
			outputs[kind] = other
		}
		tx := map[string]any{
			"outputs": outputs,
		}
		if b.hasPolicies {
			tx["policies"] = b.policies
		}
		transactions = append(transactions, tx)
	}

	doc["modes"] = map[string]any{
		HybridPaymentModeID: map[string]any{
			"choiceID0": map[string]any{
				"transactions": transactions,
			},
		},
	}
	return doc
}

func (b *termsDocumentBuilder) JSON() []byte {
	data, err := json.Marshal(b.Document())
	require.NoError(b, err, "terms document should be marshalable: invalid test setup")
	return data
}

// PaymentACKDocument returns a valid payment acknowledgement document.
func PaymentACKDocument() map[string]any {
	return map[string]any{
		"modeId": HybridPaymentModeID,
		"mode":   map[string]any{"transactionIds": []any{"ab12"}},
		"peerChannel": map[string]any{
			"host":      "https://peerchannels.example.com",
			"token":     "token",
			"channelid": "channel",
		},
		"redirectUrl": "https://merchant.example.com/thanks",
	}
}

// ToJSON marshals the document, failing the test when it is not possible.
func ToJSON(t testing.TB, doc any) string {
	data, err := json.Marshal(doc)
	require.NoError(t, err, "document should be marshalable: invalid test setup")
	return string(data)
}
