package dpp

import (
	"context"
	"fmt"
	"time"

	"github.com/bsv-blockchain/go-dpp/pkg/wallet"
	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"
	"github.com/go-softwarelab/common/pkg/to"
)

const missingChoiceMessage = "choiceID0 field is required, outputs must be native type " +
	"and policies field must contain a valid mAPI fee quote"

// PaymentTerms is the payment request issued by a merchant.
type PaymentTerms struct {
	// Network is kept verbatim, so in vendor mode it can hold a non-standard value.
	Network             Network
	Version             string
	CreationTimestamp   int64
	ExpirationTimestamp *int64
	Memo                *string
	PaymentURL          *string
	Beneficiary         map[string]any
	MerchantData        *string

	// Outputs are the native outputs of the single transaction requested by the merchant.
	Outputs []*Output

	// HybridPaymentData is the content of the hybrid payment mode (keyed by payment option).
	// When nil, it is built from Outputs on serialization.
	HybridPaymentData map[string]any
}

// ParseOptions configures the payment terms parser.
type ParseOptions struct {
	AllowVendorNetworks bool
}

// WithVendorNetworks makes the parser accept any network value, preserving it verbatim.
func WithVendorNetworks() func(*ParseOptions) {
	return func(options *ParseOptions) {
		options.AllowVendorNetworks = true
	}
}

// NewPaymentTerms creates payment terms for the outputs, created now and without expiration.
func NewPaymentTerms(network Network, outputs []*Output) *PaymentTerms {
	return &PaymentTerms{
		Network:           network,
		Version:           PaymentVersion,
		CreationTimestamp: time.Now().Unix(),
		Outputs:           outputs,
	}
}

// NewPaymentTermsFromEntry creates payment terms from the payment request stored in the wallet.
func NewPaymentTermsFromEntry(ctx context.Context, network Network, scripts wallet.ScriptSource, entry wallet.PaymentRequestEntry) (*PaymentTerms, error) {
	lockingScript, err := scripts.LockingScriptFor(ctx, entry.KeyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get locking script for key %d: %w", entry.KeyID, err)
	}

	var amount *uint64
	if entry.RequestedValue != nil {
		amount = to.Ptr(*entry.RequestedValue)
	}

	output, err := NewOutput(lockingScript, amount, nil)
	if err != nil {
		return nil, err
	}

	terms := NewPaymentTerms(network, []*Output{output})
	terms.CreationTimestamp = entry.DateCreated
	if entry.Expiration != nil {
		terms.ExpirationTimestamp = to.Ptr(entry.DateCreated + *entry.Expiration)
	}
	terms.Memo = entry.Description

	return terms, nil
}

// ParsePaymentTerms parses and validates the payment terms document.
func ParsePaymentTerms(data []byte, opts ...func(*ParseOptions)) (*PaymentTerms, error) {
	options := to.OptionsWithDefault(ParseOptions{}, opts...)

	doc, err := decodeDocument(data, MaxPaymentTermsSize, "Payment request oversized")
	if err != nil {
		return nil, err
	}

	network, err := parseTermsNetwork(doc, options)
	if err != nil {
		return nil, err
	}

	versionValue, ok := lookup(doc, "version")
	if !ok {
		return nil, schemaError("version field missing")
	}
	version, ok := asString(versionValue)
	if !ok {
		return nil, schemaError("Corrupt version")
	}

	if _, ok := doc["outputs"]; ok {
		return nil, schemaError("The 'outputs' field is now deprecated in favour of HybridPaymentMode: see DPP TSC spec.")
	}

	paymentModes, err := parseHybridPaymentMode(doc)
	if err != nil {
		return nil, err
	}

	outputs, err := parseChoiceOutputs(paymentModes)
	if err != nil {
		return nil, err
	}

	creationValue, ok := lookup(doc, "creationTimestamp")
	if !ok {
		return nil, schemaError("Creation time missing")
	}
	creationTimestamp, ok := asInt64(creationValue)
	if !ok {
		return nil, schemaError("Corrupt creation time")
	}

	var expirationTimestamp *int64
	if value, ok := lookup(doc, "expirationTimestamp"); ok {
		expiration, ok := asInt64(value)
		if !ok {
			return nil, schemaError("Corrupt expiration time")
		}
		expirationTimestamp = &expiration
	}

	memo, err := optionalString(doc, "memo", "Corrupt memo")
	if err != nil {
		return nil, err
	}

	paymentURL, err := optionalString(doc, "paymentUrl", "Corrupt payment URL")
	if err != nil {
		return nil, err
	}

	merchantData, err := optionalString(doc, "merchantData", "Corrupt merchant data")
	if err != nil {
		return nil, err
	}

	beneficiary, err := optionalMapping(doc, "beneficiary", "Corrupt beneficiary")
	if err != nil {
		return nil, err
	}

	return &PaymentTerms{
		Network:             network,
		Version:             version,
		CreationTimestamp:   creationTimestamp,
		ExpirationTimestamp: expirationTimestamp,
		Memo:                memo,
		PaymentURL:          paymentURL,
		Beneficiary:         beneficiary,
		MerchantData:        merchantData,
		Outputs:             outputs,
		HybridPaymentData:   paymentModes,
	}, nil
}

func parseTermsNetwork(doc document, options ParseOptions) (Network, error) {
	value, _ := lookup(doc, "network")
	raw, ok := asString(value)
	if !ok {
		return "", schemaError("Invalid network '%v'", value)
	}

	network := Network(raw)
	if network.IsStandard() {
		return network, nil
	}
	if options.AllowVendorNetworks && raw != "" {
		return network, nil
	}
	return "", schemaError("Invalid network '%s'", raw)
}

func parseHybridPaymentMode(doc document) (document, error) {
	modesValue, ok := lookup(doc, "modes")
	if !ok {
		return nil, schemaError("Payment details missing")
	}
	modes, ok := asMapping(modesValue)
	if !ok {
		return nil, schemaError("Corrupt payment details")
	}

	modeValue, ok := modes[HybridPaymentModeID]
	if !ok {
		return nil, schemaError("modes section must include standard mode: '%s'", HybridPaymentModeID)
	}
	paymentModes, ok := asMapping(modeValue)
	if !ok {
		return nil, schemaError("Corrupt payment details")
	}
	return paymentModes, nil
}

// parseChoiceOutputs validates the single transaction of the supported payment option
// and returns its native outputs. Transaction policies are default-filled in place.
func parseChoiceOutputs(paymentModes document) ([]*Output, error) {
	choiceValue, ok := lookup(paymentModes, ChoiceID)
	if !ok {
		return nil, schemaError(missingChoiceMessage)
	}
	choice, ok := asMapping(choiceValue)
	if !ok {
		return nil, schemaError(missingChoiceMessage)
	}

	transactionsValue, ok := lookup(choice, "transactions")
	if !ok {
		return nil, schemaError(missingChoiceMessage)
	}
	transactions, ok := transactionsValue.([]any)
	if !ok {
		return nil, schemaError("Corrupt transactions")
	}
	if len(transactions) == 0 {
		return nil, schemaError("Payment request does not contain any transaction requests")
	}
	if len(transactions) > 1 {
		return nil, schemaError("Cannot handle multiple transactions at this time: "+
			"this payment request contains %d transaction requests", len(transactions))
	}

	tx, ok := asMapping(transactions[0])
	if !ok {
		return nil, schemaError("Corrupt transaction")
	}

	nativeOutputs, err := parseNativeOutputs(tx)
	if err != nil {
		return nil, err
	}

	if err := defaultPolicies(tx); err != nil {
		return nil, err
	}

	outputs := make([]*Output, 0, len(nativeOutputs))
	for _, item := range nativeOutputs {
		outputDoc, ok := asMapping(item)
		if !ok {
			return nil, schemaError("Corrupt native output")
		}
		output, err := outputFromDocument(outputDoc)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, output)
	}
	return outputs, nil
}

func parseNativeOutputs(tx document) ([]any, error) {
	outputsValue, ok := lookup(tx, "outputs")
	if !ok {
		return nil, schemaError("Only native type outputs are accepted at this time")
	}
	outputKinds, ok := asMapping(outputsValue)
	if !ok {
		return nil, schemaError("Only native type outputs are accepted at this time")
	}

	for kind := range outputKinds {
		if kind != NativeOutputType {
			return nil, schemaError("Unsupported '%s' outputs, only native type outputs are accepted at this time", kind)
		}
	}

	nativeValue, ok := outputKinds[NativeOutputType]
	if !ok {
		return nil, schemaError("Only native type outputs are accepted at this time")
	}
	native, ok := nativeValue.([]any)
	if !ok {
		return nil, schemaError("Corrupt native outputs")
	}
	return native, nil
}

func defaultPolicies(tx document) error {
	policies := document{}
	if value, ok := lookup(tx, "policies"); ok {
		mapping, ok := asMapping(value)
		if !ok {
			return schemaError("Corrupt transaction policies")
		}
		policies = mapping
	}

	_, hasFees := policies[PolicyFees]
	_, hasSPVRequired := policies[PolicySPVRequired]
	if !hasFees || !hasSPVRequired {
		policies[PolicySPVRequired] = false
		policies[PolicyFees] = nil
	}
	tx["policies"] = policies
	return nil
}

type paymentTermsWire struct {
	Network             string         `json:"network"`
	Version             string         `json:"version"`
	CreationTimestamp   int64          `json:"creationTimestamp"`
	ExpirationTimestamp *int64         `json:"expirationTimestamp,omitempty"`
	Memo                *string        `json:"memo,omitempty"`
	PaymentURL          *string        `json:"paymentUrl,omitempty"`
	Beneficiary         map[string]any `json:"beneficiary,omitempty"`
	Modes               map[string]any `json:"modes"`
	MerchantData        *string        `json:"merchantData,omitempty"`
}

// Serialize returns the JSON wire form of the payment terms.
func (t *PaymentTerms) Serialize() ([]byte, error) {
	return t.MarshalJSON()
}

// MarshalJSON implements json.Marshaler.
func (t *PaymentTerms) MarshalJSON() ([]byte, error) {
	return encodeJSON(paymentTermsWire{
		Network:             string(t.Network),
		Version:             t.Version,
		CreationTimestamp:   t.CreationTimestamp,
		ExpirationTimestamp: t.ExpirationTimestamp,
		Memo:                t.Memo,
		PaymentURL:          t.PaymentURL,
		Beneficiary:         t.Beneficiary,
		Modes:               map[string]any{HybridPaymentModeID: t.hybridPaymentData()},
		MerchantData:        t.MerchantData,
	})
}

func (t *PaymentTerms) hybridPaymentData() map[string]any {
	if t.HybridPaymentData != nil {
		return t.HybridPaymentData
	}

	native := make([]any, 0, len(t.Outputs))
	for _, output := range t.Outputs {
		native = append(native, output.wire())
	}

	return map[string]any{
		ChoiceID: document{
			"transactions": []any{
				document{
					"outputs": document{NativeOutputType: native},
					"policies": document{
						PolicyFees:        nil,
						PolicySPVRequired: false,
					},
				},
			},
		},
	}
}

// IsPriced reports whether the merchant requested a non-zero amount.
func (t *PaymentTerms) IsPriced() bool {
	return t.TotalAmount() != 0
}

// TotalAmount is the sum of the amounts of all outputs.
func (t *PaymentTerms) TotalAmount() uint64 {
	var total uint64
	for _, output := range t.Outputs {
		total += output.Satoshis()
	}
	return total
}

// Expiry returns the expiration timestamp, nil when the terms never expire.
func (t *PaymentTerms) Expiry() *int64 {
	return t.ExpirationTimestamp
}

// HasExpired reports whether the terms are expired now.
func (t *PaymentTerms) HasExpired() bool {
	return HasExpired(t.ExpirationTimestamp)
}

// HasExpiredAt reports whether the terms are expired at the given time.
func (t *PaymentTerms) HasExpiredAt(now time.Time) bool {
	return HasExpiredAt(t.ExpirationTimestamp, now)
}

// IsVendorNetwork reports whether the network is a non-standard value accepted in vendor mode.
func (t *PaymentTerms) IsVendorNetwork() bool {
	return !t.Network.IsStandard()
}

// PaymentURI returns the URL the payment should be submitted to.
func (t *PaymentTerms) PaymentURI() (string, error) {
	if t.PaymentURL == nil || *t.PaymentURL == "" {
		return "", NewContractError("No URL")
	}
	return *t.PaymentURL, nil
}

// SpendableOutputs converts outputs into transaction outputs for the caller's transaction builder.
func (t *PaymentTerms) SpendableOutputs() []*transaction.TransactionOutput {
	outputs := make([]*transaction.TransactionOutput, 0, len(t.Outputs))
	for _, output := range t.Outputs {
		outputs = append(outputs, output.SpendableOutput())
	}
	return outputs
}

// Address returns the BIP276 encoded script of the first output, for display on the given wallet network.
func (t *PaymentTerms) Address(network Network) (string, error) {
	if len(t.Outputs) == 0 || t.Outputs[0].Script == nil {
		return "", fmt.Errorf("payment terms have no outputs")
	}

	networkCode, err := network.BIP276Network()
	if err != nil {
		return "", err
	}

	return script.EncodeBIP276(script.BIP276{
		Prefix:  script.PrefixScript,
		Version: script.CurrentVersion,
		Network: networkCode,
		Data:    *t.Outputs[0].Script,
	}), nil
}

func (t *PaymentTerms) String() string {
	data, err := t.Serialize()
	if err != nil {
		return fmt.Sprintf("<invalid payment terms: %s>", err)
	}
	return string(data)
}

// HasExpired reports whether the expiration timestamp is in the past. Nil never expires.
func HasExpired(expiration *int64) bool {
	return HasExpiredAt(expiration, time.Now())
}

// HasExpiredAt reports whether the expiration timestamp is before the given time, including
// its fraction of a second. Nil never expires.
func HasExpiredAt(expiration *int64, now time.Time) bool {
	return expiration != nil && now.After(time.Unix(*expiration, 0))
}
