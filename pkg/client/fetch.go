package client

import (
	"context"
	"net/url"
	"os"
	"strings"

	"github.com/bsv-blockchain/go-dpp/pkg/constants"
	"github.com/bsv-blockchain/go-dpp/pkg/dpp"
	"github.com/bsv-blockchain/go-dpp/pkg/transport"
)

const (
	notAPaymentServerMessage = "payment URL not pointing to a bitcoinSV payment request handling server"
	invalidServerMessage     = "payment URL not pointing to a valid server"
	invalidFileMessage       = "payment URL not pointing to a valid file"
)

// FetchTerms retrieves the raw payment terms document from an http(s) or file URL.
// The document is neither size checked nor validated.
func FetchTerms(ctx context.Context, tr transport.Transport, paymentURL string) ([]byte, error) {
	u, err := url.Parse(paymentURL)
	if err != nil {
		return nil, dpp.NewTransportError("unknown scheme "+paymentURL, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return fetchHTTP(ctx, tr, paymentURL)
	case "file":
		data, err := os.ReadFile(u.Path)
		if err != nil {
			return nil, dpp.NewTransportError(invalidFileMessage, err)
		}
		return data, nil
	default:
		return nil, dpp.NewTransportError("unknown scheme "+paymentURL, nil)
	}
}

func fetchHTTP(ctx context.Context, tr transport.Transport, paymentURL string) ([]byte, error) {
	resp, err := tr.Get(ctx, paymentURL, map[string]string{
		constants.HeaderAccept: constants.ContentTypeJSON,
	})
	if err != nil {
		return nil, dpp.NewTransportError(invalidServerMessage, err)
	}

	if !resp.IsSuccess() {
		detail := errorDetail(resp.Body)
		if detail == "" {
			detail = resp.Reason
		}
		return nil, dpp.NewTransportError(detail, nil)
	}

	if !strings.Contains(resp.ContentType(), constants.ContentTypeJSON) {
		return nil, dpp.NewTransportError(notAPaymentServerMessage, nil)
	}

	return resp.Body, nil
}

// errorDetail returns the response body as text, truncated to constants.MaxErrorDetailSize bytes.
func errorDetail(body []byte) string {
	if len(body) > constants.MaxErrorDetailSize {
		body = body[:constants.MaxErrorDetailSize]
	}
	return strings.ToValidUTF8(string(body), "")
}
