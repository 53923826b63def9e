package testabilities

import (
	"errors"
	"testing"

	"github.com/bsv-blockchain/go-dpp/pkg/dpp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ErrorAssertion interface {
	IsEncodingError() ErrorAssertion
	IsSchemaError() ErrorAssertion
	IsTransportError() ErrorAssertion
	IsContractError() ErrorAssertion
	HasMessage(message string) ErrorAssertion
	HasMessageContaining(fragment string) ErrorAssertion
}

type errorAssertion struct {
	testing.TB

	err error
}

func NewErrorAssertion(t testing.TB, err error) ErrorAssertion {
	require.Error(t, err, "error is expected")
	return &errorAssertion{
		TB:  t,
		err: err,
	}
}

func (a *errorAssertion) IsEncodingError() ErrorAssertion {
	return a.isKind(dpp.ErrEncoding)
}

func (a *errorAssertion) IsSchemaError() ErrorAssertion {
	return a.isKind(dpp.ErrSchema)
}

func (a *errorAssertion) IsTransportError() ErrorAssertion {
	return a.isKind(dpp.ErrTransport)
}

func (a *errorAssertion) IsContractError() ErrorAssertion {
	return a.isKind(dpp.ErrContract)
}

func (a *errorAssertion) HasMessage(message string) ErrorAssertion {
	a.Helper()
	assert.Equal(a, message, a.err.Error())
	return a
}

func (a *errorAssertion) HasMessageContaining(fragment string) ErrorAssertion {
	a.Helper()
	assert.Contains(a, a.err.Error(), fragment)
	return a
}

func (a *errorAssertion) isKind(sentinel *dpp.Error) ErrorAssertion {
	a.Helper()
	assert.ErrorIsf(a, a.err, sentinel, "expected %s error, got %v", sentinel.Kind, a.err)

	var dppErr *dpp.Error
	if assert.True(a, errors.As(a.err, &dppErr), "error should be a *dpp.Error") {
		assert.Equal(a, sentinel.Kind, dppErr.Kind)
	}
	return a
}
