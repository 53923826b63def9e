package client

import "github.com/bsv-blockchain/go-dpp/pkg/dpp"

// State is the state of a payment submission.
type State string

// Submission states. A submission moves from StateBuilt to StateSent and ends in one of the final states.
const (
	StateBuilt               State = "built"
	StateSent                State = "sent"
	StateAckOk               State = "ack_ok"
	StateAckRejectedByServer State = "ack_rejected_by_server"
	StateErrored             State = "errored"
)

// IsFinal reports whether no further transition is possible.
func (s State) IsFinal() bool {
	return s == StateAckOk || s == StateAckRejectedByServer || s == StateErrored
}

// Outcome describes the result of sending a payment to the merchant.
type Outcome struct {
	State State

	// StatusCode of the merchant response, zero when no response was received.
	StatusCode int

	// Message is the merchant's rejection message or the acknowledgement validation failure.
	Message string

	// ACK is the validated payment acknowledgement, nil for a vendor acknowledgement.
	ACK *dpp.PaymentACK

	// VendorAck is set when the merchant answered with {"success": true} instead of a PaymentACK.
	VendorAck bool

	// Err is the error which moved the submission to StateErrored or StateAckRejectedByServer.
	Err error
}

// Accepted reports whether the merchant acknowledged the payment.
func (o *Outcome) Accepted() bool {
	return o != nil && o.State == StateAckOk
}

func (o *Outcome) sent(statusCode int) {
	o.State = StateSent
	o.StatusCode = statusCode
}

func (o *Outcome) acknowledged(ack *dpp.PaymentACK) {
	o.State = StateAckOk
	o.ACK = ack
	o.VendorAck = ack == nil
}

func (o *Outcome) rejected(message string) {
	o.State = StateAckRejectedByServer
	o.Message = message
	o.Err = dpp.NewTransportError(message, nil)
}

func (o *Outcome) errored(err error) {
	o.State = StateErrored
	o.Message = err.Error()
	o.Err = err
}
