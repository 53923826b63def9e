package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/bsv-blockchain/go-dpp/pkg/constants"
	"github.com/bsv-blockchain/go-dpp/pkg/dpp"
	"github.com/bsv-blockchain/go-dpp/pkg/transport"
)

// SubmitPayment posts the serialized payment and interprets the merchant response.
// An error is returned only when the merchant could not be reached,
// every received response is reported through the Outcome.
func SubmitPayment(ctx context.Context, tr transport.Transport, paymentURL string, payment []byte) (*Outcome, error) {
	outcome := &Outcome{State: StateBuilt}

	resp, err := tr.Post(ctx, paymentURL, payment, map[string]string{
		constants.HeaderContentType: constants.ContentTypeJSON,
		constants.HeaderAccept:      constants.ContentTypeJSON,
	})
	if err != nil {
		return nil, dpp.NewTransportError(invalidServerMessage, err)
	}
	outcome.sent(resp.StatusCode)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
		interpretAcknowledgement(outcome, resp.Body)
	case http.StatusBadRequest:
		outcome.rejected(resp.Reason + ": " + errorDetail(resp.Body))
	default:
		// the body of other errors may be a whole HTML page
		outcome.rejected(resp.Reason)
	}

	return outcome, nil
}

type vendorAcknowledgement struct {
	Success *bool `json:"success"`
}

func interpretAcknowledgement(outcome *Outcome, body []byte) {
	if isVendorSuccess(body) {
		outcome.acknowledged(nil)
		return
	}

	ack, err := dpp.ParsePaymentACK(body)
	if err != nil {
		outcome.errored(err)
		return
	}
	outcome.acknowledged(ack)
}

func isVendorSuccess(body []byte) bool {
	if !bytes.HasPrefix(bytes.TrimSpace(body), []byte("{")) {
		return false
	}
	var ack vendorAcknowledgement
	if err := json.Unmarshal(body, &ack); err != nil {
		return false
	}
	return ack.Success != nil && *ack.Success
}
