package merchant_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bsv-blockchain/go-dpp/pkg/dpp"
	"github.com/bsv-blockchain/go-dpp/pkg/internal/testabilities"
	"github.com/bsv-blockchain/go-dpp/pkg/internal/testabilities/testusers"
	"github.com/bsv-blockchain/go-dpp/pkg/merchant"
	"github.com/bsv-blockchain/go-dpp/pkg/wallet"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/go-softwarelab/common/pkg/to"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const requestID = "invoice-1"

func TestNewMerchant(t *testing.T) {
	t.Run("returns error with no scripts", func(t *testing.T) {
		_, err := merchant.New(merchant.Options{Requests: merchant.NewMemoryRequests()})

		assert.ErrorIs(t, err, merchant.ErrNoScripts)
	})

	t.Run("returns error with no requests", func(t *testing.T) {
		_, err := merchant.New(merchant.Options{Scripts: aliceScripts(t)})

		assert.ErrorIs(t, err, merchant.ErrNoRequests)
	})
}

func TestMerchantServesTermsToClient(t *testing.T) {
	// given:
	given, _ := testabilities.New(t)
	server := startMerchant(t, merchant.Options{Logger: given.Logger()}, wallet.PaymentRequestEntry{
		KeyID:          1,
		RequestedValue: to.Ptr(uint64(2500)),
		DateCreated:    time.Now().Unix(),
		Expiration:     to.Ptr(int64(3600)),
		Description:    to.Ptr("invoice #1"),
	})

	// when:
	terms, err := given.Client().RetrieveAndValidate(context.Background(), server.URL+"/api/v1/payment/"+requestID)

	// then:
	require.NoError(t, err)
	assert.Equal(t, dpp.NetworkRegtest, terms.Network)
	assert.Equal(t, uint64(2500), terms.TotalAmount())
	assert.Equal(t, "invoice #1", *terms.Memo)
	assert.False(t, terms.HasExpired())
	require.Len(t, terms.Outputs, 1)
	assert.Equal(t, testusers.Alice.LockingScriptHex(t), terms.Outputs[0].ScriptHex())

	// and:
	paymentURL, err := terms.PaymentURI()
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/api/v1/payment/"+requestID, paymentURL)
}

func TestMerchantAcknowledgesPayment(t *testing.T) {
	// given:
	given, then := testabilities.New(t)
	var received *dpp.Payment
	server := startMerchant(t, merchant.Options{
		Logger: given.Logger(),
		ProcessPayment: func(_ context.Context, id string, _ wallet.PaymentRequestEntry, payment *dpp.Payment) error {
			assert.Equal(t, requestID, id)
			received = payment
			return nil
		},
	}, wallet.PaymentRequestEntry{KeyID: 1, RequestedValue: to.Ptr(uint64(1000)), DateCreated: time.Now().Unix()})

	// and:
	dppClient := given.Client()
	terms, err := dppClient.RetrieveAndValidate(context.Background(), server.URL+"/api/v1/payment/"+requestID)
	require.NoError(t, err)

	// when:
	outcome, err := dppClient.Submit(context.Background(), terms, "0100abcd", "thanks")

	// then:
	require.NoError(t, err)
	then.Outcome(outcome).
		IsAcknowledged().
		HasStatus(http.StatusOK)

	// and:
	require.NotNil(t, received)
	assert.Equal(t, "0100abcd", received.TransactionHex)
	assert.Equal(t, "thanks", *received.Memo)
}

func TestMerchantRejectsPayments(t *testing.T) {
	t.Run("processor failure", func(t *testing.T) {
		// given:
		given, then := testabilities.New(t)
		server := startMerchant(t, merchant.Options{
			Logger: given.Logger(),
			ProcessPayment: func(context.Context, string, wallet.PaymentRequestEntry, *dpp.Payment) error {
				return errors.New("insufficient amount")
			},
		}, wallet.PaymentRequestEntry{KeyID: 1, DateCreated: time.Now().Unix()})
		terms := termsFrom(t, given, server)

		// when:
		outcome, err := given.Client().Submit(context.Background(), terms, "0100", "")

		// then:
		then.Error(err).
			IsTransportError().
			HasMessageContaining("Bad Request: ").
			HasMessageContaining("Payment failed: insufficient amount")
		assert.Equal(t, http.StatusBadRequest, outcome.StatusCode)
	})

	t.Run("expired payment request", func(t *testing.T) {
		// given:
		given, then := testabilities.New(t)
		now := time.Now()
		server := startMerchant(t, merchant.Options{
			Logger: given.Logger(),
			Clock:  func() time.Time { return now.Add(2 * time.Hour) },
		}, wallet.PaymentRequestEntry{KeyID: 1, DateCreated: now.Unix(), Expiration: to.Ptr(int64(60))})
		terms := termsFrom(t, given, server)

		// when:
		_, err := given.Client().Submit(context.Background(), terms, "0100", "")

		// then:
		then.Error(err).
			IsTransportError().
			HasMessageContaining(merchant.ErrCodeRequestExpired)
	})

	t.Run("malformed payment", func(t *testing.T) {
		// given:
		server := startMerchant(t, merchant.Options{}, wallet.PaymentRequestEntry{KeyID: 1, DateCreated: time.Now().Unix()})

		// when:
		resp, err := http.Post(server.URL+"/api/v1/payment/"+requestID, "application/json", bytes.NewBufferString(`{"modeId":"ef63d9775da5","transaction":"00"}`))

		// then:
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestMerchantUnknownRequest(t *testing.T) {
	// given:
	given, then := testabilities.New(t)
	server := startMerchant(t, merchant.Options{Logger: given.Logger()}, wallet.PaymentRequestEntry{KeyID: 1})

	// when:
	_, err := given.Client().RetrieveAndValidate(context.Background(), server.URL+"/api/v1/payment/unknown")

	// then:
	then.Error(err).
		IsTransportError().
		HasMessageContaining(merchant.ErrCodeRequestNotFound)
}

func TestMerchantUnknownKey(t *testing.T) {
	// given:
	given, then := testabilities.New(t, testabilities.WithoutLogging())
	server := startMerchant(t, merchant.Options{Logger: given.Logger()}, wallet.PaymentRequestEntry{KeyID: 99})

	// when:
	_, err := given.Client().RetrieveAndValidate(context.Background(), server.URL+"/api/v1/payment/"+requestID)

	// then:
	then.Error(err).
		IsTransportError().
		HasMessageContaining(merchant.ErrCodeMerchantInternal)
}

func startMerchant(t *testing.T, opts merchant.Options, entry wallet.PaymentRequestEntry) *httptest.Server {
	t.Helper()
	requests := merchant.NewMemoryRequests()
	requests.Add(requestID, entry)

	opts.Network = dpp.NetworkRegtest
	opts.Scripts = aliceScripts(t)
	opts.Requests = requests

	m, err := merchant.New(opts)
	require.NoError(t, err)

	server := httptest.NewServer(m.Handler())
	t.Cleanup(server.Close)
	return server
}

func termsFrom(t *testing.T, given testabilities.DPPTestsFixture, server *httptest.Server) *dpp.PaymentTerms {
	t.Helper()
	terms, err := given.Client().RetrieveAndValidate(context.Background(), server.URL+"/api/v1/payment/"+requestID)
	require.NoError(t, err)
	return terms
}

func aliceScripts(t *testing.T) wallet.ScriptSource {
	return wallet.NewP2PKHScripts(map[int64]*ec.PublicKey{1: testusers.Alice.PublicKey(t)}, true)
}
