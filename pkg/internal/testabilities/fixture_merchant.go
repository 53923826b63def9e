package testabilities

import (
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	TermsPath   = "/api/v1/payment/terms"
	PaymentPath = "/api/v1/payment"
)

// MerchantFixture is a merchant server serving payment terms and accepting payments.
// Responses can be changed after the server is started.
type MerchantFixture interface {
	ServingTerms(body []byte) MerchantFixture
	ServingTermsWith(status int, contentType string, body string) MerchantFixture
	AcknowledgingWith(status int, body string) MerchantFixture

	Started() (cleanup func())

	TermsURL() string
	PaymentURL() string

	// ReceivedPayments returns the payment requests received so far, with the body read into ReceivedRequest.Body.
	ReceivedPayments() []ReceivedRequest
	// ReceivedTermsRequests returns the terms requests received so far.
	ReceivedTermsRequests() []ReceivedRequest
}

type ReceivedRequest struct {
	Method string
	Header http.Header
	Body   []byte
}

type cannedResponse struct {
	status      int
	contentType string
	body        []byte
}

type merchantFixture struct {
	testing.TB
	server ServerFixture

	mu       sync.Mutex
	terms    cannedResponse
	ack      cannedResponse
	payments []ReceivedRequest
	fetches  []ReceivedRequest
}

func NewMerchantFixture(t testing.TB) MerchantFixture {
	return &merchantFixture{
		TB:     t,
		server: NewServerFixture(t),
		terms: cannedResponse{
			status:      http.StatusNotFound,
			contentType: "text/plain",
		},
		ack: cannedResponse{
			status:      http.StatusOK,
			contentType: "application/json",
			body:        []byte(`{"success": true}`),
		},
	}
}

func (f *merchantFixture) ServingTerms(body []byte) MerchantFixture {
	return f.ServingTermsWith(http.StatusOK, "application/json; charset=utf-8", string(body))
}

func (f *merchantFixture) ServingTermsWith(status int, contentType string, body string) MerchantFixture {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.terms = cannedResponse{status: status, contentType: contentType, body: []byte(body)}
	return f
}

func (f *merchantFixture) AcknowledgingWith(status int, body string) MerchantFixture {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ack = cannedResponse{status: status, contentType: "application/json", body: []byte(body)}
	return f
}

func (f *merchantFixture) Started() (cleanup func()) {
	return f.server.
		WithRoute("GET "+TermsPath, f.handleTerms).
		WithRoute("POST "+PaymentPath, f.handlePayment).
		Started()
}

func (f *merchantFixture) TermsURL() string {
	return f.server.URL().JoinPath(TermsPath).String()
}

func (f *merchantFixture) PaymentURL() string {
	return f.server.URL().JoinPath(PaymentPath).String()
}

func (f *merchantFixture) ReceivedPayments() []ReceivedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ReceivedRequest(nil), f.payments...)
}

func (f *merchantFixture) ReceivedTermsRequests() []ReceivedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ReceivedRequest(nil), f.fetches...)
}

func (f *merchantFixture) handleTerms(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.fetches = append(f.fetches, ReceivedRequest{Method: r.Method, Header: r.Header.Clone()})
	response := f.terms
	f.mu.Unlock()

	respond(w, response)
}

func (f *merchantFixture) handlePayment(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	assert.NoError(f, err, "merchant should be able to read payment body")

	f.mu.Lock()
	f.payments = append(f.payments, ReceivedRequest{Method: r.Method, Header: r.Header.Clone(), Body: body})
	response := f.ack
	f.mu.Unlock()

	respond(w, response)
}

func respond(w http.ResponseWriter, response cannedResponse) {
	if response.contentType != "" {
		w.Header().Set("Content-Type", response.contentType)
	}
	w.WriteHeader(response.status)
	_, _ = w.Write(response.body)
}
