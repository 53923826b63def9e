package testabilities

import (
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/bsv-blockchain/go-dpp/pkg/client"
	"github.com/go-softwarelab/common/pkg/slogx"
	"github.com/go-softwarelab/common/pkg/to"
	"github.com/stretchr/testify/require"
)

type DPPTestsFixture interface {
	Merchant() MerchantFixture
	TermsDocument() TermsDocumentBuilder
	// TermsFile writes the document into a temporary file and returns its file:// URL.
	TermsFile(document []byte) string
	Client(opts ...func(*client.Config)) *client.Client
	Logger() *slog.Logger
}

type DPPTestsAssertion interface {
	Error(err error) ErrorAssertion
	Outcome(outcome *client.Outcome) OutcomeAssertion
	Payment(request ReceivedRequest) RequestAssertion
}

func New(t testing.TB, opts ...func(*Options)) (DPPTestsFixture, DPPTestsAssertion) {
	return Given(t, opts...), Then(t)
}

func Given(t testing.TB, opts ...func(*Options)) DPPTestsFixture {
	f := &dppTestsFixture{
		TB: t,
	}

	options := to.OptionsWithDefault(Options{
		logger: slogx.NewTestLogger(t),
	}, opts...)

	f.logger = options.logger
	f.merchantFixture = NewMerchantFixture(f)

	return f
}

func Then(t testing.TB) DPPTestsAssertion {
	return &dppTestsAssertion{
		TB: t,
	}
}

type dppTestsFixture struct {
	testing.TB
	merchantFixture MerchantFixture
	logger          *slog.Logger
}

func (f *dppTestsFixture) Merchant() MerchantFixture {
	return f.merchantFixture
}

func (f *dppTestsFixture) TermsDocument() TermsDocumentBuilder {
	return TermsDocument(f)
}

func (f *dppTestsFixture) TermsFile(document []byte) string {
	f.Helper()
	path := filepath.Join(f.TempDir(), "terms.json")
	err := os.WriteFile(path, document, 0o600)
	require.NoError(f, err, "failed to write terms file: invalid test setup")

	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

func (f *dppTestsFixture) Client(opts ...func(*client.Config)) *client.Client {
	return client.New(append([]func(*client.Config){client.WithLogger(f.logger)}, opts...)...)
}

func (f *dppTestsFixture) Logger() *slog.Logger {
	return f.logger
}

type dppTestsAssertion struct {
	testing.TB
}

func (a *dppTestsAssertion) Error(err error) ErrorAssertion {
	a.Helper()
	return NewErrorAssertion(a.TB, err)
}

func (a *dppTestsAssertion) Outcome(outcome *client.Outcome) OutcomeAssertion {
	a.Helper()
	return NewOutcomeAssertion(a.TB, outcome)
}

func (a *dppTestsAssertion) Payment(request ReceivedRequest) RequestAssertion {
	return NewRequestAssertion(a.TB, request)
}
