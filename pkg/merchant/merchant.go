package merchant

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bsv-blockchain/go-dpp/pkg/constants"
	"github.com/bsv-blockchain/go-dpp/pkg/dpp"
	"github.com/bsv-blockchain/go-dpp/pkg/internal/logging"
	"github.com/bsv-blockchain/go-dpp/pkg/wallet"
	"github.com/go-softwarelab/common/pkg/to"
)

// Merchant serves payment terms of stored payment requests and accepts payments for them.
type Merchant struct {
	network        dpp.Network
	scripts        wallet.ScriptSource
	requests       RequestStore
	processPayment PaymentProcessor
	pathPrefix     string
	logger         *slog.Logger
	clock          func() time.Time
}

// New creates a new merchant
func New(opts Options) (*Merchant, error) {
	if opts.Scripts == nil {
		return nil, ErrNoScripts
	}

	if opts.Requests == nil {
		return nil, ErrNoRequests
	}

	if opts.Network == "" {
		opts.Network = dpp.NetworkMainnet
	}

	if opts.ProcessPayment == nil {
		opts.ProcessPayment = AcceptAll
	}

	if opts.PathPrefix == "" {
		opts.PathPrefix = defaultPathPrefix
	}

	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	return &Merchant{
		network:        opts.Network,
		scripts:        opts.Scripts,
		requests:       opts.Requests,
		processPayment: opts.ProcessPayment,
		pathPrefix:     strings.TrimSuffix(opts.PathPrefix, "/"),
		logger:         logging.Child(opts.Logger, "Merchant"),
		clock:          opts.Clock,
	}, nil
}

// Handler returns the HTTP handler with the payment terms (GET) and payment (POST) endpoints.
func (m *Merchant) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+m.pathPrefix+"/{id}", m.handleTerms)
	mux.HandleFunc("POST "+m.pathPrefix+"/{id}", m.handlePayment)
	return mux
}

// PaymentRequestPath returns the path of the payment request endpoints.
func (m *Merchant) PaymentRequestPath(id string) string {
	return m.pathPrefix + "/" + url.PathEscape(id)
}

func (m *Merchant) handleTerms(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	entry, ok := m.paymentRequest(w, r, id)
	if !ok {
		return
	}

	terms, err := dpp.NewPaymentTermsFromEntry(r.Context(), m.network, m.scripts, entry)
	if err != nil {
		m.logger.Error("Failed to create payment terms", slog.String("id", id), logging.Error(err))
		respondWithError(w, http.StatusInternalServerError, ErrCodeMerchantInternal, "Error creating payment terms")
		return
	}
	paymentURL := m.paymentURL(r, id)
	terms.PaymentURL = &paymentURL

	body, err := terms.Serialize()
	if err != nil {
		m.logger.Error("Failed to serialize payment terms", slog.String("id", id), logging.Error(err))
		respondWithError(w, http.StatusInternalServerError, ErrCodeMerchantInternal, "Error creating payment terms")
		return
	}

	m.logger.Debug("Serving payment terms", slog.String("id", id), slog.Uint64("amount", terms.TotalAmount()))
	respondWithJSON(w, http.StatusOK, body)
}

func (m *Merchant) handlePayment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	entry, ok := m.paymentRequest(w, r, id)
	if !ok {
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, dpp.MaxPaymentSize+1))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrCodeMalformedPayment, "Error reading payment")
		return
	}

	payment, err := dpp.ParsePayment(data)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrCodeMalformedPayment, err.Error())
		return
	}

	if entry.Expiration != nil && dpp.HasExpiredAt(to.Ptr(entry.DateCreated+*entry.Expiration), m.clock()) {
		respondWithError(w, http.StatusBadRequest, ErrCodeRequestExpired, "Payment request has expired")
		return
	}

	if err := m.processPayment(r.Context(), id, entry, payment); err != nil {
		m.logger.Warn("Payment rejected", slog.String("id", id), logging.Error(err))
		respondWithError(w, http.StatusBadRequest, ErrCodePaymentFailed, fmt.Sprintf("Payment failed: %s", err.Error()))
		return
	}

	ack := &dpp.PaymentACK{
		ModeID: dpp.HybridPaymentModeID,
		Mode:   map[string]any{"optionId": payment.OptionID},
	}
	body, err := ack.Serialize()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrCodeMerchantInternal, "Error creating payment acknowledgement")
		return
	}

	m.logger.Info("Payment accepted", slog.String("id", id))
	respondWithJSON(w, http.StatusOK, body)
}

func (m *Merchant) paymentRequest(w http.ResponseWriter, r *http.Request, id string) (wallet.PaymentRequestEntry, bool) {
	entry, err := m.requests.PaymentRequest(r.Context(), id)
	if errors.Is(err, ErrRequestNotFound) {
		respondWithError(w, http.StatusNotFound, ErrCodeRequestNotFound, "Payment request not found")
		return wallet.PaymentRequestEntry{}, false
	}
	if err != nil {
		m.logger.Error("Failed to load payment request", slog.String("id", id), logging.Error(err))
		respondWithError(w, http.StatusInternalServerError, ErrCodeMerchantInternal, "Error loading payment request")
		return wallet.PaymentRequestEntry{}, false
	}
	return entry, true
}

func (m *Merchant) paymentURL(r *http.Request, id string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return (&url.URL{Scheme: scheme, Host: r.Host, Path: m.pathPrefix + "/" + id}).String()
}

func respondWithJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// respondWithError creates a standardized error response
func respondWithError(w http.ResponseWriter, status int, code, message string) {
	resp := map[string]any{
		"status":      "error",
		"code":        code,
		"description": message,
	}

	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		return
	}
}
