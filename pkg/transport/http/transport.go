package httptransport

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bsv-blockchain/go-dpp/pkg/constants"
	"github.com/bsv-blockchain/go-dpp/pkg/internal/logging"
	"github.com/bsv-blockchain/go-dpp/pkg/transport"
	"github.com/go-resty/resty/v2"
	"github.com/go-softwarelab/common/pkg/slogx"
	"github.com/go-softwarelab/common/pkg/to"
)

// Config holds the configuration of the HTTP transport.
type Config struct {
	// Timeout of a single round trip, zero means no timeout.
	Timeout   time.Duration
	UserAgent string
	Logger    *slog.Logger
}

// WithTimeout sets the timeout of a single round trip.
func WithTimeout(timeout time.Duration) func(*Config) {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithUserAgent overrides the User-Agent header sent with every request.
func WithUserAgent(userAgent string) func(*Config) {
	return func(c *Config) {
		c.UserAgent = userAgent
	}
}

// WithLogger sets the logger of the transport.
func WithLogger(logger *slog.Logger) func(*Config) {
	return func(c *Config) {
		c.Logger = logger
	}
}

// Transport implements transport.Transport over HTTP.
type Transport struct {
	client *resty.Client
	logger *slog.Logger
}

var _ transport.Transport = (*Transport)(nil)

// New creates a new HTTP transport. Requests are never retried.
func New(opts ...func(*Config)) *Transport {
	cfg := to.OptionsWithDefault(Config{
		UserAgent: constants.UserAgent,
	}, opts...)

	client := resty.New().
		SetRetryCount(0).
		SetLogger(slogx.RestyAdapter(logging.DefaultIfNil(cfg.Logger))).
		SetHeader(constants.HeaderUserAgent, cfg.UserAgent)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &Transport{
		client: client,
		logger: logging.Child(cfg.Logger, "HTTPTransport"),
	}
}

// Get performs a GET request.
func (t *Transport) Get(ctx context.Context, url string, headers map[string]string) (*transport.Response, error) {
	t.logger.Debug("Sending request", slog.String("method", "GET"), slog.String("url", url))

	resp, err := t.client.R().
		SetContext(ctx).
		SetHeaders(headers).
		Get(url)
	if err != nil {
		t.logger.Debug("Request failed", slog.String("url", url), logging.Error(err))
		return nil, fmt.Errorf("failed to send GET request to %s: %w", url, err)
	}

	return toResponse(resp), nil
}

// Post performs a POST request with the given body.
func (t *Transport) Post(ctx context.Context, url string, body []byte, headers map[string]string) (*transport.Response, error) {
	t.logger.Debug("Sending request", slog.String("method", "POST"), slog.String("url", url), slog.Int("size", len(body)))

	resp, err := t.client.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetBody(body).
		Post(url)
	if err != nil {
		t.logger.Debug("Request failed", slog.String("url", url), logging.Error(err))
		return nil, fmt.Errorf("failed to send POST request to %s: %w", url, err)
	}

	return toResponse(resp), nil
}

func toResponse(resp *resty.Response) *transport.Response {
	status := ""
	if resp.RawResponse != nil {
		status = resp.RawResponse.Status
	}

	return &transport.Response{
		StatusCode: resp.StatusCode(),
		Reason:     transport.ReasonFromStatus(status, resp.StatusCode()),
		Header:     resp.Header(),
		Body:       resp.Body(),
	}
}
