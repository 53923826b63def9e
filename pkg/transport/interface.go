package transport

import "context"

// Transport defines the mechanism used to exchange DPP documents with a merchant.
type Transport interface {
	// Get retrieves the resource, returning the response whatever its status code is.
	// An error is returned only when no response was received.
	Get(ctx context.Context, url string, headers map[string]string) (*Response, error)

	// Post sends the body to the resource, returning the response whatever its status code is.
	// An error is returned only when no response was received.
	Post(ctx context.Context, url string, body []byte, headers map[string]string) (*Response, error)
}
