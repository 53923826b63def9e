package dpp_test

import (
	"strings"
	"testing"
	"time"

	"github.com/bsv-blockchain/go-dpp/pkg/dpp"
	"github.com/bsv-blockchain/go-dpp/pkg/internal/testabilities"
	"github.com/bsv-blockchain/go-dpp/pkg/internal/testabilities/testusers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaymentTerms(t *testing.T) {
	t.Run("minimal document", func(t *testing.T) {
		// given:
		document := testabilities.TermsDocument(t).JSON()

		// when:
		terms, err := dpp.ParsePaymentTerms(document)

		// then:
		require.NoError(t, err)
		assert.Equal(t, dpp.NetworkRegtest, terms.Network)
		assert.Equal(t, "1.0", terms.Version)
		assert.Equal(t, testabilities.DefaultCreationTimestamp, terms.CreationTimestamp)
		assert.Nil(t, terms.ExpirationTimestamp)
		assert.Nil(t, terms.Memo)
		assert.Nil(t, terms.PaymentURL)
		assert.False(t, terms.HasExpired())
		assert.False(t, terms.IsVendorNetwork())

		// and:
		require.Len(t, terms.Outputs, 1)
		assert.Equal(t, testusers.Alice.LockingScriptHex(t), terms.Outputs[0].ScriptHex())
		assert.Equal(t, testabilities.DefaultAmount, terms.Outputs[0].Satoshis())
		assert.Equal(t, testabilities.DefaultAmount, terms.TotalAmount())
		assert.True(t, terms.IsPriced())
	})

	t.Run("optional fields", func(t *testing.T) {
		// given:
		document := testabilities.TermsDocument(t).
			WithExpiration(1700000600).
			WithMemo("coffee").
			WithPaymentURL("https://merchant.example.com/pay").
			With("merchantData", `{"order":1}`).
			With("beneficiary", map[string]any{"name": "Merchant"}).
			JSON()

		// when:
		terms, err := dpp.ParsePaymentTerms(document)

		// then:
		require.NoError(t, err)
		require.NotNil(t, terms.Expiry())
		assert.Equal(t, int64(1700000600), *terms.Expiry())
		assert.Equal(t, "coffee", *terms.Memo)
		assert.Equal(t, `{"order":1}`, *terms.MerchantData)
		assert.Equal(t, "Merchant", terms.Beneficiary["name"])

		// and:
		paymentURL, err := terms.PaymentURI()
		require.NoError(t, err)
		assert.Equal(t, "https://merchant.example.com/pay", paymentURL)
	})

	t.Run("null optional fields are treated as absent", func(t *testing.T) {
		// given:
		document := testabilities.TermsDocument(t).
			With("expirationTimestamp", nil).
			With("memo", nil).
			With("paymentUrl", nil).
			JSON()

		// when:
		terms, err := dpp.ParsePaymentTerms(document)

		// then:
		require.NoError(t, err)
		assert.Nil(t, terms.ExpirationTimestamp)
		assert.Nil(t, terms.Memo)
		assert.Nil(t, terms.PaymentURL)
	})

	t.Run("output amounts are summed", func(t *testing.T) {
		// given:
		document := testabilities.TermsDocument(t).
			WithOutputs(
				testabilities.NativeOutput(t, testusers.Alice, 600),
				testabilities.NativeOutput(t, testusers.Bob, 400),
				map[string]any{"script": testusers.Bob.LockingScriptHex(t)},
			).
			JSON()

		// when:
		terms, err := dpp.ParsePaymentTerms(document)

		// then:
		require.NoError(t, err)
		assert.Len(t, terms.Outputs, 3)
		assert.Equal(t, uint64(1000), terms.TotalAmount())
		assert.Nil(t, terms.Outputs[2].Amount)
	})

	t.Run("unpriced terms", func(t *testing.T) {
		// given:
		document := testabilities.TermsDocument(t).
			WithOutputs(map[string]any{"script": testusers.Alice.LockingScriptHex(t)}).
			JSON()

		// when:
		terms, err := dpp.ParsePaymentTerms(document)

		// then:
		require.NoError(t, err)
		assert.False(t, terms.IsPriced())
	})

	t.Run("missing policies are defaulted", func(t *testing.T) {
		// given:
		document := testabilities.TermsDocument(t).JSON()

		// when:
		terms, err := dpp.ParsePaymentTerms(document)

		// then:
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"fees": nil, "SPVRequired": false}, policiesOf(t, terms))
	})

	t.Run("partial policies are defaulted", func(t *testing.T) {
		// given:
		document := testabilities.TermsDocument(t).
			WithPolicies(map[string]any{"SPVRequired": true}).
			JSON()

		// when:
		terms, err := dpp.ParsePaymentTerms(document)

		// then:
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"fees": nil, "SPVRequired": false}, policiesOf(t, terms))
	})

	t.Run("complete policies are kept", func(t *testing.T) {
		// given:
		document := testabilities.TermsDocument(t).
			WithPolicies(map[string]any{"SPVRequired": true, "fees": map[string]any{"standard": "x"}}).
			JSON()

		// when:
		terms, err := dpp.ParsePaymentTerms(document)

		// then:
		require.NoError(t, err)
		policies := policiesOf(t, terms)
		assert.Equal(t, true, policies["SPVRequired"])
		assert.Equal(t, map[string]any{"standard": "x"}, policies["fees"])
	})

	t.Run("null policies are defaulted", func(t *testing.T) {
		// given:
		document := testabilities.TermsDocument(t).
			WithPolicies(nil).
			JSON()

		// when:
		terms, err := dpp.ParsePaymentTerms(document)

		// then:
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"fees": nil, "SPVRequired": false}, policiesOf(t, terms))
	})
}

func TestParsePaymentTermsSchemaViolations(t *testing.T) {
	tests := map[string]struct {
		document func(t *testing.T) testabilities.TermsDocumentBuilder
		message  string
	}{
		"unknown network": {
			document: func(t *testing.T) testabilities.TermsDocumentBuilder {
				return testabilities.TermsDocument(t).WithNetwork("bitcoin")
			},
			message: "Invalid network 'bitcoin'",
		},
		"non string network": {
			document: func(t *testing.T) testabilities.TermsDocumentBuilder {
				return testabilities.TermsDocument(t).WithNetwork(1)
			},
			message: "Invalid network '1'",
		},
		"missing version": {
			document: func(t *testing.T) testabilities.TermsDocumentBuilder {
				return testabilities.TermsDocument(t).Without("version")
			},
			message: "version field missing",
		},
		"non string version": {
			document: func(t *testing.T) testabilities.TermsDocumentBuilder {
				return testabilities.TermsDocument(t).With("version", 1)
			},
			message: "Corrupt version",
		},
		"legacy top level outputs": {
			document: func(t *testing.T) testabilities.TermsDocumentBuilder {
				return testabilities.TermsDocument(t).With("outputs", []any{})
			},
			message: "The 'outputs' field is now deprecated in favour of HybridPaymentMode: see DPP TSC spec.",
		},
		"missing modes": {
			document: func(t *testing.T) testabilities.TermsDocumentBuilder {
				return testabilities.TermsDocument(t).Without("modes")
			},
			message: "Payment details missing",
		},
		"corrupt modes": {
			document: func(t *testing.T) testabilities.TermsDocumentBuilder {
				return testabilities.TermsDocument(t).With("modes", "standard")
			},
			message: "Corrupt payment details",
		},
		"missing hybrid payment mode": {
			document: func(t *testing.T) testabilities.TermsDocumentBuilder {
				return testabilities.TermsDocument(t).WithoutHybridMode()
			},
			message: "modes section must include standard mode: 'ef63d9775da5'",
		},
		"multiple transactions": {
			document: func(t *testing.T) testabilities.TermsDocumentBuilder {
				return testabilities.TermsDocument(t).WithTransactions(2)
			},
			message: "Cannot handle multiple transactions at this time: this payment request contains 2 transaction requests",
		},
		"no transactions": {
			document: func(t *testing.T) testabilities.TermsDocumentBuilder {
				return testabilities.TermsDocument(t).WithTransactions(0)
			},
			message: "Payment request does not contain any transaction requests",
		},
		"non native outputs": {
			document: func(t *testing.T) testabilities.TermsDocumentBuilder {
				return testabilities.TermsDocument(t).WithOutputKind("bip270")
			},
			message: "Unsupported 'bip270' outputs, only native type outputs are accepted at this time",
		},
		"non native outputs next to valid native outputs": {
			document: func(t *testing.T) testabilities.TermsDocumentBuilder {
				return testabilities.TermsDocument(t).WithOutputsOfKind("bip270")
			},
			message: "Unsupported 'bip270' outputs, only native type outputs are accepted at this time",
		},
		"other outputs with content next to native outputs": {
			document: func(t *testing.T) testabilities.TermsDocumentBuilder {
				return testabilities.TermsDocument(t).
					WithOutputsOfKind("bip270", testabilities.NativeOutput(t, testusers.Bob, testabilities.DefaultAmount))
			},
			message: "Unsupported 'bip270' outputs, only native type outputs are accepted at this time",
		},
		"corrupt policies": {
			document: func(t *testing.T) testabilities.TermsDocumentBuilder {
				return testabilities.TermsDocument(t).WithPolicies("none")
			},
			message: "Corrupt transaction policies",
		},
		"output without script": {
			document: func(t *testing.T) testabilities.TermsDocumentBuilder {
				return testabilities.TermsDocument(t).WithOutputs(map[string]any{"amount": 10})
			},
			message: "Missing required 'script' field",
		},
		"negative amount": {
			document: func(t *testing.T) testabilities.TermsDocumentBuilder {
				return testabilities.TermsDocument(t).WithOutputs(map[string]any{
					"script": testusers.Alice.LockingScriptHex(t),
					"amount": -5,
				})
			},
			message: "Invalid 'amount' field",
		},
		"fractional amount": {
			document: func(t *testing.T) testabilities.TermsDocumentBuilder {
				return testabilities.TermsDocument(t).WithOutputs(map[string]any{
					"script": testusers.Alice.LockingScriptHex(t),
					"amount": 1.5,
				})
			},
			message: "Invalid 'amount' field",
		},
		"too long output description": {
			document: func(t *testing.T) testabilities.TermsDocumentBuilder {
				return testabilities.TermsDocument(t).WithOutputs(map[string]any{
					"script":      testusers.Alice.LockingScriptHex(t),
					"description": strings.Repeat("x", 200),
				})
			},
			message: "Output description too long",
		},
		"missing creation timestamp": {
			document: func(t *testing.T) testabilities.TermsDocumentBuilder {
				return testabilities.TermsDocument(t).Without("creationTimestamp")
			},
			message: "Creation time missing",
		},
		"fractional creation timestamp": {
			document: func(t *testing.T) testabilities.TermsDocumentBuilder {
				return testabilities.TermsDocument(t).With("creationTimestamp", 1700000000.5)
			},
			message: "Corrupt creation time",
		},
		"string creation timestamp": {
			document: func(t *testing.T) testabilities.TermsDocumentBuilder {
				return testabilities.TermsDocument(t).With("creationTimestamp", "yesterday")
			},
			message: "Corrupt creation time",
		},
		"corrupt expiration timestamp": {
			document: func(t *testing.T) testabilities.TermsDocumentBuilder {
				return testabilities.TermsDocument(t).With("expirationTimestamp", "tomorrow")
			},
			message: "Corrupt expiration time",
		},
		"corrupt memo": {
			document: func(t *testing.T) testabilities.TermsDocumentBuilder {
				return testabilities.TermsDocument(t).With("memo", 5)
			},
			message: "Corrupt memo",
		},
		"corrupt payment url": {
			document: func(t *testing.T) testabilities.TermsDocumentBuilder {
				return testabilities.TermsDocument(t).With("paymentUrl", []any{"https://merchant.example.com"})
			},
			message: "Corrupt payment URL",
		},
		"corrupt merchant data": {
			document: func(t *testing.T) testabilities.TermsDocumentBuilder {
				return testabilities.TermsDocument(t).With("merchantData", map[string]any{"order": 1})
			},
			message: "Corrupt merchant data",
		},
		"corrupt beneficiary": {
			document: func(t *testing.T) testabilities.TermsDocumentBuilder {
				return testabilities.TermsDocument(t).With("beneficiary", "merchant")
			},
			message: "Corrupt beneficiary",
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			// given:
			_, then := testabilities.New(t)
			document := test.document(t).JSON()

			// when:
			terms, err := dpp.ParsePaymentTerms(document)

			// then:
			assert.Nil(t, terms)
			then.Error(err).
				IsSchemaError().
				HasMessage(test.message)
		})
	}
}

func TestParsePaymentTermsInvalidScript(t *testing.T) {
	// given:
	_, then := testabilities.New(t)
	document := testabilities.TermsDocument(t).
		WithOutputs(map[string]any{"script": "not hex", "amount": 10}).
		JSON()

	// when:
	_, err := dpp.ParsePaymentTerms(document)

	// then:
	then.Error(err).
		IsSchemaError().
		HasMessageContaining("Invalid 'script' field")
}

func TestParsePaymentTermsEncodingErrors(t *testing.T) {
	tests := map[string]struct {
		document []byte
		message  string
	}{
		"malformed json": {
			document: []byte(`{"network":`),
		},
		"trailing data": {
			document: []byte(`{"network":"regtest"} {}`),
		},
		"oversized": {
			document: append([]byte(`{"memo":"`), []byte(strings.Repeat("x", dpp.MaxPaymentTermsSize))...),
			message:  "Payment request oversized",
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			// given:
			_, then := testabilities.New(t)

			// when:
			_, err := dpp.ParsePaymentTerms(test.document)

			// then:
			assertion := then.Error(err).IsEncodingError()
			if test.message != "" {
				assertion.HasMessage(test.message)
			}
		})
	}
}

func TestParsePaymentTermsRejectsNonObjectDocument(t *testing.T) {
	// given:
	_, then := testabilities.New(t)

	// when:
	_, err := dpp.ParsePaymentTerms([]byte(`["regtest"]`))

	// then:
	then.Error(err).
		IsSchemaError().
		HasMessage("Invalid JSON document: expected an object")
}

func TestParsePaymentTermsVendorNetworks(t *testing.T) {
	for _, network := range []string{"bitcoin", "bitcoin-sv", "acme-chain"} {
		t.Run(network, func(t *testing.T) {
			// given:
			document := testabilities.TermsDocument(t).WithNetwork(network).JSON()

			// when:
			terms, err := dpp.ParsePaymentTerms(document, dpp.WithVendorNetworks())

			// then:
			require.NoError(t, err)
			assert.Equal(t, dpp.Network(network), terms.Network)
			assert.True(t, terms.IsVendorNetwork())
		})
	}

	t.Run("empty network is rejected even in vendor mode", func(t *testing.T) {
		// given:
		_, then := testabilities.New(t)
		document := testabilities.TermsDocument(t).WithNetwork("").JSON()

		// when:
		_, err := dpp.ParsePaymentTerms(document, dpp.WithVendorNetworks())

		// then:
		then.Error(err).IsSchemaError()
	})
}

func TestPaymentTermsRoundTrip(t *testing.T) {
	t.Run("retrieved document", func(t *testing.T) {
		// given:
		document := testabilities.TermsDocument(t).
			WithExpiration(1700000600).
			WithMemo("<coffee & cake>").
			WithPaymentURL("https://merchant.example.com/pay?id=1&x=2").
			WithPolicies(map[string]any{"SPVRequired": true, "fees": map[string]any{"data": 1}}).
			JSON()
		terms, err := dpp.ParsePaymentTerms(document)
		require.NoError(t, err)

		// when:
		serialized, err := terms.Serialize()
		require.NoError(t, err)
		reparsed, err := dpp.ParsePaymentTerms(serialized)
		require.NoError(t, err)
		reserialized, err := reparsed.Serialize()
		require.NoError(t, err)

		// then:
		assert.Equal(t, string(serialized), string(reserialized))
		assert.Equal(t, terms.Memo, reparsed.Memo)
		assert.Equal(t, terms.TotalAmount(), reparsed.TotalAmount())
		assert.Contains(t, string(serialized), "<coffee & cake>")
	})

	t.Run("locally built terms", func(t *testing.T) {
		// given:
		output, err := dpp.NewOutput(testusers.Alice.LockingScript(t), uint64Ptr(1500), stringPtr("coffee"))
		require.NoError(t, err)
		terms := dpp.NewPaymentTerms(dpp.NetworkMainnet, []*dpp.Output{output})

		// when:
		serialized, err := terms.Serialize()
		require.NoError(t, err)
		reparsed, err := dpp.ParsePaymentTerms(serialized)
		require.NoError(t, err)
		reserialized, err := reparsed.Serialize()
		require.NoError(t, err)

		// then:
		assert.Equal(t, string(serialized), string(reserialized))
		assert.Equal(t, dpp.NetworkMainnet, reparsed.Network)
		assert.Equal(t, dpp.PaymentVersion, reparsed.Version)
		require.Len(t, reparsed.Outputs, 1)
		assert.Equal(t, "coffee", *reparsed.Outputs[0].Description)
		assert.Equal(t, uint64(1500), reparsed.TotalAmount())
	})
}

func TestHasExpired(t *testing.T) {
	now := time.Unix(1700000000, 0)

	tests := map[string]struct {
		expiration *int64
		expected   bool
	}{
		"never expires":    {expiration: nil, expected: false},
		"in the past":      {expiration: int64Ptr(1699999999), expected: true},
		"exactly now":      {expiration: int64Ptr(1700000000), expected: false},
		"in the future":    {expiration: int64Ptr(1700000001), expected: false},
		"the epoch itself": {expiration: int64Ptr(0), expected: true},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			// when:
			expired := dpp.HasExpiredAt(test.expiration, now)

			// then:
			assert.Equal(t, test.expected, expired)
			assert.Equal(t, test.expected, (&dpp.PaymentTerms{ExpirationTimestamp: test.expiration}).HasExpiredAt(now))
		})
	}

	t.Run("fraction of a second past the expiration", func(t *testing.T) {
		expiration := int64Ptr(1700000000)

		assert.True(t, dpp.HasExpiredAt(expiration, time.Unix(1700000000, int64(time.Millisecond))))
		assert.True(t, dpp.HasExpiredAt(expiration, time.Unix(1700000000, 1)))
		assert.False(t, dpp.HasExpiredAt(expiration, time.Unix(1699999999, int64(999*time.Millisecond))))
	})

	t.Run("against the current time", func(t *testing.T) {
		assert.True(t, dpp.HasExpired(int64Ptr(time.Now().Add(-time.Minute).Unix())))
		assert.False(t, dpp.HasExpired(int64Ptr(time.Now().Add(time.Hour).Unix())))
		assert.False(t, dpp.HasExpired(nil))
	})
}

func TestPaymentTermsWithoutURL(t *testing.T) {
	// given:
	_, then := testabilities.New(t)
	terms, err := dpp.ParsePaymentTerms(testabilities.TermsDocument(t).JSON())
	require.NoError(t, err)

	// when:
	_, err = terms.PaymentURI()

	// then:
	then.Error(err).
		IsContractError().
		HasMessage("No URL")
}

func TestPaymentTermsSpendableOutputs(t *testing.T) {
	// given:
	document := testabilities.TermsDocument(t).
		WithOutputs(
			testabilities.NativeOutput(t, testusers.Alice, 600),
			testabilities.NativeOutput(t, testusers.Bob, 400),
		).
		JSON()
	terms, err := dpp.ParsePaymentTerms(document)
	require.NoError(t, err)

	// when:
	outputs := terms.SpendableOutputs()

	// then:
	require.Len(t, outputs, 2)
	assert.Equal(t, uint64(600), outputs[0].Satoshis)
	assert.Equal(t, *testusers.Alice.LockingScript(t), *outputs[0].LockingScript)
	assert.Equal(t, uint64(400), outputs[1].Satoshis)
	assert.Equal(t, *testusers.Bob.LockingScript(t), *outputs[1].LockingScript)
}

func TestPaymentTermsAddress(t *testing.T) {
	// given:
	terms, err := dpp.ParsePaymentTerms(testabilities.TermsDocument(t).JSON())
	require.NoError(t, err)

	// when:
	mainnet, err := terms.Address(dpp.NetworkMainnet)
	require.NoError(t, err)
	testnet, err := terms.Address(dpp.NetworkTestnet)
	require.NoError(t, err)

	// then:
	assert.True(t, strings.HasPrefix(mainnet, "bitcoin-script:"))
	assert.True(t, strings.HasPrefix(testnet, "bitcoin-script:"))
	assert.NotEqual(t, mainnet, testnet)

	// when:
	_, err = terms.Address(dpp.NetworkHandCash)

	// then:
	assert.Error(t, err)
}

func policiesOf(t *testing.T, terms *dpp.PaymentTerms) map[string]any {
	t.Helper()
	choice, ok := terms.HybridPaymentData[dpp.ChoiceID].(map[string]any)
	require.True(t, ok)
	transactions, ok := choice["transactions"].([]any)
	require.True(t, ok)
	require.Len(t, transactions, 1)
	tx, ok := transactions[0].(map[string]any)
	require.True(t, ok)
	policies, ok := tx["policies"].(map[string]any)
	require.True(t, ok)
	return policies
}

func int64Ptr(v int64) *int64 {
	return &v
}

func uint64Ptr(v uint64) *uint64 {
	return &v
}

func stringPtr(v string) *string {
	return &v
}
