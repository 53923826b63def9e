package testabilities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type RequestAssertion interface {
	HasMethod(method string) RequestAssertion
	HasHeadersContaining(headers map[string]string) RequestAssertion
	HasPaymentOfTransaction(transactionHex string) RequestAssertion
	HasMemo(memo string) RequestAssertion
	HasNoMemo() RequestAssertion
}

type requestAssertion struct {
	testing.TB

	request ReceivedRequest
}

func NewRequestAssertion(t testing.TB, request ReceivedRequest) RequestAssertion {
	return &requestAssertion{
		TB:      t,
		request: request,
	}
}

func (a *requestAssertion) HasMethod(httpMethod string) RequestAssertion {
	a.Helper()
	assert.Equalf(a, httpMethod, a.request.Method, "Expect to receive %s request", httpMethod)
	return a
}

func (a *requestAssertion) HasHeadersContaining(headers map[string]string) RequestAssertion {
	a.Helper()
	for name, value := range headers {
		assert.Equalf(a, value, a.request.Header.Get(name), "Expect request to have header %s", name)
	}
	return a
}

func (a *requestAssertion) HasPaymentOfTransaction(transactionHex string) RequestAssertion {
	a.Helper()
	payment := a.payment()
	assert.Equal(a, HybridPaymentModeID, payment["modeId"], "payment should use hybrid payment mode")

	mode, ok := payment["mode"].(map[string]any)
	require.Truef(a, ok, "payment mode should be an object, got %v", payment["mode"])
	assert.Equal(a, "choiceID0", mode["optionId"])
	assert.Equal(a, []any{transactionHex}, mode["transactions"])
	return a
}

func (a *requestAssertion) HasMemo(memo string) RequestAssertion {
	a.Helper()
	assert.Equal(a, memo, a.payment()["memo"])
	return a
}

func (a *requestAssertion) HasNoMemo() RequestAssertion {
	a.Helper()
	assert.NotContains(a, a.payment(), "memo")
	return a
}

func (a *requestAssertion) payment() map[string]any {
	a.Helper()
	var payment map[string]any
	err := json.Unmarshal(a.request.Body, &payment)
	require.NoErrorf(a, err, "payment body should be a JSON object, got %q", string(a.request.Body))
	return payment
}
