package client

import (
	"context"
	"log/slog"
	"time"

	"github.com/bsv-blockchain/go-dpp/pkg/dpp"
	"github.com/bsv-blockchain/go-dpp/pkg/internal/logging"
	"github.com/bsv-blockchain/go-dpp/pkg/transport"
	httptransport "github.com/bsv-blockchain/go-dpp/pkg/transport/http"
	"github.com/bsv-blockchain/go-sdk/transaction"
	"github.com/go-softwarelab/common/pkg/to"
)

// Config holds the configuration of the DPP client.
type Config struct {
	Logger *slog.Logger
	// Transport is used for all exchanges with the merchant, the HTTP transport when nil.
	Transport transport.Transport
	// AllowVendorNetworks accepts payment terms with a network outside of the standard ones.
	AllowVendorNetworks bool
	// Clock returns the current time used for expiration checks.
	Clock func() time.Time
}

// WithLogger sets the logger of the client.
func WithLogger(logger *slog.Logger) func(*Config) {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithTransport sets the transport used to talk to merchants.
func WithTransport(tr transport.Transport) func(*Config) {
	return func(c *Config) {
		c.Transport = tr
	}
}

// WithVendorNetworks makes the client accept non-standard network values sent by some merchants.
func WithVendorNetworks() func(*Config) {
	return func(c *Config) {
		c.AllowVendorNetworks = true
	}
}

// WithClock sets the source of the current time.
func WithClock(clock func() time.Time) func(*Config) {
	return func(c *Config) {
		c.Clock = clock
	}
}

// Client retrieves payment terms from merchants and submits payments for them.
// It holds no state between calls and is safe for concurrent use.
type Client struct {
	transport    transport.Transport
	logger       *slog.Logger
	parseOptions []func(*dpp.ParseOptions)
	clock        func() time.Time
}

// New creates a new DPP client.
func New(opts ...func(*Config)) *Client {
	cfg := to.OptionsWithDefault(Config{
		Clock: time.Now,
	}, opts...)

	logger := logging.Child(cfg.Logger, "DPPClient")

	tr := cfg.Transport
	if tr == nil {
		tr = httptransport.New(httptransport.WithLogger(cfg.Logger))
	}

	var parseOptions []func(*dpp.ParseOptions)
	if cfg.AllowVendorNetworks {
		parseOptions = append(parseOptions, dpp.WithVendorNetworks())
	}

	return &Client{
		transport:    tr,
		logger:       logger,
		parseOptions: parseOptions,
		clock:        cfg.Clock,
	}
}

// RetrieveAndValidate fetches the payment terms from the URL and validates them.
func (c *Client) RetrieveAndValidate(ctx context.Context, paymentURL string) (*dpp.PaymentTerms, error) {
	c.logger.Debug("Fetching payment terms", slog.String("url", paymentURL))

	data, err := FetchTerms(ctx, c.transport, paymentURL)
	if err != nil {
		c.logger.Warn("Failed to fetch payment terms", slog.String("url", paymentURL), logging.Error(err))
		return nil, err
	}

	terms, err := dpp.ParsePaymentTerms(data, c.parseOptions...)
	if err != nil {
		c.logger.Warn("Received invalid payment terms", slog.String("url", paymentURL), logging.Error(err))
		return nil, err
	}

	if terms.IsVendorNetwork() {
		c.logger.Info("Accepted payment terms for vendor network", slog.String("network", string(terms.Network)))
	}

	c.logger.Debug("Fetched payment terms",
		slog.String("network", string(terms.Network)),
		slog.Uint64("amount", terms.TotalAmount()),
		slog.Int("outputs", len(terms.Outputs)),
	)

	return terms, nil
}

// Submit sends the payment with the transaction to the payment URL of the terms.
// The returned error is nil only when the merchant acknowledged the payment.
// The Outcome is returned whenever the merchant responded.
func (c *Client) Submit(ctx context.Context, terms *dpp.PaymentTerms, transactionHex string, memo string) (*Outcome, error) {
	if terms == nil {
		return nil, dpp.NewContractError("No payment terms")
	}

	paymentURL, err := terms.PaymentURI()
	if err != nil {
		return nil, err
	}

	var paymentMemo *string
	if memo != "" {
		paymentMemo = to.Ptr(memo)
	}

	payment, err := dpp.NewPayment(transactionHex, paymentMemo).Serialize()
	if err != nil {
		return nil, dpp.NewEncodingError("Failed to serialize payment", err)
	}

	c.logger.Debug("Submitting payment", slog.String("url", paymentURL))

	outcome, err := SubmitPayment(ctx, c.transport, paymentURL, payment)
	if err != nil {
		c.logger.Warn("Failed to submit payment", slog.String("url", paymentURL), logging.Error(err))
		return nil, err
	}

	switch outcome.State {
	case StateAckOk:
		c.logger.Info("Payment acknowledged", slog.String("url", paymentURL), slog.Bool("vendor", outcome.VendorAck))
		return outcome, nil
	default:
		c.logger.Warn("Payment not acknowledged",
			slog.String("url", paymentURL),
			slog.String("state", string(outcome.State)),
			slog.Int("status", outcome.StatusCode),
			logging.Error(outcome.Err),
		)
		return outcome, outcome.Err
	}
}

// SubmitTransaction is Submit for a transaction built with go-sdk.
func (c *Client) SubmitTransaction(ctx context.Context, terms *dpp.PaymentTerms, tx *transaction.Transaction, memo string) (*Outcome, error) {
	if tx == nil {
		return nil, dpp.NewContractError("No transaction")
	}
	return c.Submit(ctx, terms, tx.Hex(), memo)
}

// HasExpired reports whether the terms are expired according to the client's clock.
func (c *Client) HasExpired(terms *dpp.PaymentTerms) bool {
	return terms.HasExpiredAt(c.clock())
}
