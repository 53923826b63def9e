package dpp

// Payment is the message the payer sends to the merchant.
// Only a single transaction of the hybrid payment mode is supported.
type Payment struct {
	TransactionHex string
	OptionID       string
	Memo           *string
	Originator     map[string]any
}

type paymentWire struct {
	ModeID     string          `json:"modeId"`
	Mode       paymentModeWire `json:"mode"`
	Originator map[string]any  `json:"originator,omitempty"`
	Memo       *string         `json:"memo,omitempty"`
}

type paymentModeWire struct {
	OptionID     string   `json:"optionId"`
	Transactions []string `json:"transactions"`
}

// NewPayment creates a payment of the transaction for the supported payment option.
func NewPayment(transactionHex string, memo *string) *Payment {
	return &Payment{
		TransactionHex: transactionHex,
		OptionID:       ChoiceID,
		Memo:           memo,
	}
}

// ParsePayment parses and validates the payment document.
func ParsePayment(data []byte) (*Payment, error) {
	doc, err := decodeDocument(data, MaxPaymentSize, "Invalid payment, too large")
	if err != nil {
		return nil, err
	}

	modeIDValue, ok := lookup(doc, "modeId")
	if !ok {
		return nil, schemaError("Missing required json 'modeId' field")
	}
	if _, ok := asString(modeIDValue); !ok {
		return nil, schemaError("Invalid json 'modeId' field")
	}

	modeValue, ok := lookup(doc, "mode")
	if !ok {
		return nil, schemaError("Missing required json 'mode' field")
	}
	mode, ok := asMapping(modeValue)
	if !ok {
		return nil, schemaError("Invalid json 'mode' field")
	}

	transactionHex, err := parsePaymentTransaction(mode)
	if err != nil {
		return nil, err
	}

	optionID := ChoiceID
	if value, ok := lookup(mode, "optionId"); ok {
		optionID, ok = asString(value)
		if !ok {
			return nil, schemaError("Invalid json 'optionId' field")
		}
	}

	originator, err := optionalMapping(doc, "originator", "Invalid json 'originator' field")
	if err != nil {
		return nil, err
	}

	memo, err := optionalString(doc, "memo", "Invalid json 'memo' field")
	if err != nil {
		return nil, err
	}

	if _, ok := lookup(doc, "transaction"); ok {
		return nil, schemaError("Invalid json the top-level 'transaction' field is deprecated. Use the 'mode' section")
	}

	return &Payment{
		TransactionHex: transactionHex,
		OptionID:       optionID,
		Memo:           memo,
		Originator:     originator,
	}, nil
}

func parsePaymentTransaction(mode document) (string, error) {
	value, ok := lookup(mode, "transactions")
	if !ok {
		return "", schemaError("Missing required json 'transactions' field in 'mode'")
	}
	transactions, ok := value.([]any)
	if !ok {
		return "", schemaError("Invalid json 'transactions' field")
	}
	if len(transactions) == 0 {
		return "", schemaError("Payment does not contain a transaction")
	}
	if len(transactions) > 1 {
		return "", schemaError("Cannot handle multiple transactions at this time")
	}
	transactionHex, ok := asString(transactions[0])
	if !ok {
		return "", schemaError("Invalid json 'transactions' field")
	}
	return transactionHex, nil
}

// Serialize returns the JSON wire form of the payment.
func (p *Payment) Serialize() ([]byte, error) {
	return p.MarshalJSON()
}

// MarshalJSON implements json.Marshaler.
func (p *Payment) MarshalJSON() ([]byte, error) {
	optionID := p.OptionID
	if optionID == "" {
		optionID = ChoiceID
	}

	w := paymentWire{
		ModeID: HybridPaymentModeID,
		Mode: paymentModeWire{
			OptionID:     optionID,
			Transactions: []string{p.TransactionHex},
		},
		Originator: p.Originator,
	}
	if p.Memo != nil && *p.Memo != "" {
		w.Memo = p.Memo
	}
	return encodeJSON(w)
}
