package testabilities

import (
	"testing"

	"github.com/bsv-blockchain/go-dpp/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type OutcomeAssertion interface {
	IsAcknowledged() OutcomeAssertion
	IsVendorAcknowledged() OutcomeAssertion
	IsRejectedWith(message string) OutcomeAssertion
	IsErrored() OutcomeAssertion
	HasStatus(statusCode int) OutcomeAssertion
}

type outcomeAssertion struct {
	testing.TB

	outcome *client.Outcome
}

func NewOutcomeAssertion(t testing.TB, outcome *client.Outcome) OutcomeAssertion {
	require.NotNil(t, outcome, "outcome should be returned")
	return &outcomeAssertion{
		TB:      t,
		outcome: outcome,
	}
}

func (a *outcomeAssertion) IsAcknowledged() OutcomeAssertion {
	a.Helper()
	assert.Equal(a, client.StateAckOk, a.outcome.State)
	assert.True(a, a.outcome.Accepted())
	assert.NoError(a, a.outcome.Err)
	if assert.NotNil(a, a.outcome.ACK, "standard acknowledgement should be parsed") {
		assert.Equal(a, HybridPaymentModeID, a.outcome.ACK.ModeID)
	}
	assert.False(a, a.outcome.VendorAck)
	return a
}

func (a *outcomeAssertion) IsVendorAcknowledged() OutcomeAssertion {
	a.Helper()
	assert.Equal(a, client.StateAckOk, a.outcome.State)
	assert.True(a, a.outcome.VendorAck)
	assert.Nil(a, a.outcome.ACK)
	return a
}

func (a *outcomeAssertion) IsRejectedWith(message string) OutcomeAssertion {
	a.Helper()
	assert.Equal(a, client.StateAckRejectedByServer, a.outcome.State)
	assert.Equal(a, message, a.outcome.Message)
	if assert.Error(a, a.outcome.Err) {
		assert.Equal(a, message, a.outcome.Err.Error())
	}
	return a
}

func (a *outcomeAssertion) IsErrored() OutcomeAssertion {
	a.Helper()
	assert.Equal(a, client.StateErrored, a.outcome.State)
	assert.Error(a, a.outcome.Err)
	assert.NotEmpty(a, a.outcome.Message)
	return a
}

func (a *outcomeAssertion) HasStatus(statusCode int) OutcomeAssertion {
	a.Helper()
	assert.Equal(a, statusCode, a.outcome.StatusCode)
	return a
}
