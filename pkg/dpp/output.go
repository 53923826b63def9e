package dpp

import (
	"encoding/hex"
	"unicode/utf8"

	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"
)

// Output is a single destination of a payment.
type Output struct {
	Script      *script.Script
	Amount      *uint64
	Description *string
}

// NewOutput creates an output, rejecting descriptions longer than MaxOutputDescriptionSize once JSON encoded
// with non-ASCII characters escaped.
func NewOutput(lockingScript *script.Script, amount *uint64, description *string) (*Output, error) {
	if lockingScript == nil {
		return nil, schemaError("Missing required 'script' field")
	}

	if description != nil {
		encoded, err := encodeJSON(*description)
		if err != nil {
			return nil, NewEncodingError("Invalid 'description' field", err)
		}
		if asciiEscapedLength(encoded) > MaxOutputDescriptionSize {
			return nil, schemaError("Output description too long")
		}
	}

	return &Output{
		Script:      lockingScript,
		Amount:      amount,
		Description: description,
	}, nil
}

// asciiEscapedLength returns the length of the JSON text once every non-ASCII character
// is written as a \uXXXX escape, surrogate pairs taking two escapes.
func asciiEscapedLength(encoded []byte) int {
	length := 0
	for _, r := range string(encoded) {
		switch {
		case r < utf8.RuneSelf:
			length++
		case r > 0xFFFF:
			length += 12
		default:
			length += 6
		}
	}
	return length
}

// ParseOutput parses a single JSON encoded output.
func ParseOutput(data []byte) (*Output, error) {
	doc, err := decodeDocument(data, MaxPaymentTermsSize, "Output oversized")
	if err != nil {
		return nil, err
	}
	return outputFromDocument(doc)
}

func outputFromDocument(doc document) (*Output, error) {
	value, ok := lookup(doc, "script")
	if !ok {
		return nil, schemaError("Missing required 'script' field")
	}
	scriptHex, ok := asString(value)
	if !ok {
		return nil, schemaError("Invalid 'script' field")
	}
	lockingScript, err := script.NewFromHex(scriptHex)
	if err != nil {
		return nil, schemaError("Invalid 'script' field: %s", err.Error())
	}

	var amount *uint64
	if value, ok := lookup(doc, "amount"); ok {
		satoshis, ok := asUint64(value)
		if !ok {
			return nil, schemaError("Invalid 'amount' field")
		}
		amount = &satoshis
	}

	description, err := optionalString(doc, "description", "Invalid 'description' field")
	if err != nil {
		return nil, err
	}

	return NewOutput(lockingScript, amount, description)
}

// Satoshis returns the amount of the output, zero when it is not specified.
func (o *Output) Satoshis() uint64 {
	if o.Amount == nil {
		return 0
	}
	return *o.Amount
}

// ScriptHex returns the locking script encoded as hex.
func (o *Output) ScriptHex() string {
	if o.Script == nil {
		return ""
	}
	return hex.EncodeToString(*o.Script)
}

// SpendableOutput converts the output into a transaction output which can be added to a transaction.
func (o *Output) SpendableOutput() *transaction.TransactionOutput {
	return &transaction.TransactionOutput{
		Satoshis:      o.Satoshis(),
		LockingScript: o.Script,
	}
}

// wire returns the output as it is embedded in the native outputs of a hybrid payment mode.
func (o *Output) wire() document {
	w := document{"script": o.ScriptHex()}
	if o.Satoshis() != 0 {
		w["amount"] = o.Satoshis()
	}
	if o.Description != nil && *o.Description != "" {
		w["description"] = *o.Description
	}
	return w
}

// MarshalJSON implements json.Marshaler.
func (o *Output) MarshalJSON() ([]byte, error) {
	return encodeJSON(o.wire())
}

// Serialize returns the JSON wire form of the output.
func (o *Output) Serialize() ([]byte, error) {
	return o.MarshalJSON()
}
