package dpp

import "fmt"

// Kind classifies a failure of the payment protocol.
type Kind string

// Supported error kinds.
const (
	// KindEncoding is malformed JSON or an oversized document.
	KindEncoding Kind = "encoding"
	// KindSchema is well-formed JSON violating the structure of a DPP document.
	KindSchema Kind = "schema"
	// KindTransport is a network, IO, HTTP status or content type failure.
	KindTransport Kind = "transport"
	// KindContract is a misuse of the client by the caller.
	KindContract Kind = "contract"
)

// Error is returned by every operation of the payment protocol.
// The message is meant to be shown to the user as is.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

var (
	// ErrEncoding matches (with errors.Is) every error of KindEncoding.
	ErrEncoding = &Error{Kind: KindEncoding, Message: "invalid DPP document encoding"}

	// ErrSchema matches (with errors.Is) every error of KindSchema.
	ErrSchema = &Error{Kind: KindSchema, Message: "invalid DPP document"}

	// ErrTransport matches (with errors.Is) every error of KindTransport.
	ErrTransport = &Error{Kind: KindTransport, Message: "DPP transport failure"}

	// ErrContract matches (with errors.Is) every error of KindContract.
	ErrContract = &Error{Kind: KindContract, Message: "DPP client misuse"}
)

var kindSentinels = map[Kind]*Error{
	KindEncoding:  ErrEncoding,
	KindSchema:    ErrSchema,
	KindTransport: ErrTransport,
	KindContract:  ErrContract,
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel of the error kind.
func (e *Error) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && target == sentinel
}

// NewEncodingError creates an error of KindEncoding.
func NewEncodingError(message string, cause error) *Error {
	return &Error{Kind: KindEncoding, Message: message, Cause: cause}
}

// NewTransportError creates an error of KindTransport.
func NewTransportError(message string, cause error) *Error {
	return &Error{Kind: KindTransport, Message: message, Cause: cause}
}

// NewContractError creates an error of KindContract.
func NewContractError(message string) *Error {
	return &Error{Kind: KindContract, Message: message}
}

func schemaError(format string, args ...any) *Error {
	return &Error{Kind: KindSchema, Message: fmt.Sprintf(format, args...)}
}
