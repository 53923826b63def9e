package dpp

// PeerChannel describes the channel on which the merchant delivers further messages.
type PeerChannel struct {
	Host      string `json:"host"`
	Token     string `json:"token"`
	ChannelID string `json:"channelid"`
}

// PaymentACK is the merchant's acknowledgement of a payment.
type PaymentACK struct {
	ModeID      string
	Mode        map[string]any
	PeerChannel PeerChannel
	RedirectURL *string
}

type paymentACKWire struct {
	ModeID      string         `json:"modeId"`
	Mode        map[string]any `json:"mode"`
	PeerChannel PeerChannel    `json:"peerChannel"`
	RedirectURL *string        `json:"redirectUrl"`
}

// ParsePaymentACK parses and validates the payment acknowledgement.
func ParsePaymentACK(data []byte) (*PaymentACK, error) {
	doc, err := decodeDocument(data, MaxPaymentACKSize, "Invalid payment ACK, too large")
	if err != nil {
		return nil, err
	}

	modeIDValue, ok := lookup(doc, "modeId")
	if !ok {
		return nil, schemaError("'modeId' field is required")
	}
	modeID, ok := asString(modeIDValue)
	if !ok || modeID != HybridPaymentModeID {
		return nil, schemaError("Invalid json 'modeId' field: %v", modeIDValue)
	}

	modeValue, ok := lookup(doc, "mode")
	if !ok {
		return nil, schemaError("'mode' field is required")
	}
	mode, ok := asMapping(modeValue)
	if !ok {
		return nil, schemaError("Invalid json 'mode' field")
	}

	peerChannelValue, ok := lookup(doc, "peerChannel")
	if !ok {
		return nil, schemaError("'peerChannel' field is required")
	}
	peerChannelDoc, ok := asMapping(peerChannelValue)
	if !ok {
		return nil, schemaError("Invalid json 'peerChannel' field")
	}
	peerChannel, err := parsePeerChannel(peerChannelDoc)
	if err != nil {
		return nil, err
	}

	redirectURL, err := optionalString(doc, "redirectUrl", "Invalid json 'redirectUrl' field")
	if err != nil {
		return nil, err
	}

	return &PaymentACK{
		ModeID:      modeID,
		Mode:        mode,
		PeerChannel: peerChannel,
		RedirectURL: redirectURL,
	}, nil
}

func parsePeerChannel(doc document) (PeerChannel, error) {
	var peerChannel PeerChannel
	fields := map[string]*string{
		"host":      &peerChannel.Host,
		"token":     &peerChannel.Token,
		"channelid": &peerChannel.ChannelID,
	}
	for key, target := range fields {
		value, err := optionalString(doc, key, "Invalid json 'peerChannel' field")
		if err != nil {
			return PeerChannel{}, err
		}
		if value != nil {
			*target = *value
		}
	}
	return peerChannel, nil
}

// Serialize returns the JSON wire form of the acknowledgement.
func (a *PaymentACK) Serialize() ([]byte, error) {
	return a.MarshalJSON()
}

// MarshalJSON implements json.Marshaler.
func (a *PaymentACK) MarshalJSON() ([]byte, error) {
	mode := a.Mode
	if mode == nil {
		mode = map[string]any{}
	}
	return encodeJSON(paymentACKWire{
		ModeID:      a.ModeID,
		Mode:        mode,
		PeerChannel: a.PeerChannel,
		RedirectURL: a.RedirectURL,
	})
}
