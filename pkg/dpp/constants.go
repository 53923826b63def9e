package dpp

// DPP Protocol Constants
const (
	// PaymentVersion is the version of the DPP protocol implementation
	PaymentVersion = "1.0"

	// HybridPaymentModeID is the BRFC identifier of the TSC hybrid payment mode.
	HybridPaymentModeID = "ef63d9775da5"

	// ChoiceID is the only payment option key inside the hybrid payment mode this client handles.
	ChoiceID = "choiceID0"

	// NativeOutputType is the only output kind accepted inside a hybrid payment mode transaction.
	NativeOutputType = "native"
)

// Size limits of the wire documents.
const (
	// MaxPaymentTermsSize is the largest payment terms document accepted by the parser.
	MaxPaymentTermsSize = 10 * 1000 * 1000

	// MaxPaymentSize is the largest payment document accepted by the parser.
	MaxPaymentSize = 10 * 1000 * 1000

	// MaxPaymentACKSize is the largest payment acknowledgement accepted by the parser.
	MaxPaymentACKSize = 11 * 1000 * 1000

	// MaxOutputDescriptionSize is the limit of the JSON encoded output description.
	MaxOutputDescriptionSize = 100
)

// Transaction policy keys, defaulted when the merchant omits them.
const (
	PolicyFees        = "fees"
	PolicySPVRequired = "SPVRequired"
)
