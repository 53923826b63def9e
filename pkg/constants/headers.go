package constants

// HTTP header names used in the DPP exchanges.
const (
	HeaderAccept      = "Accept"
	HeaderContentType = "Content-Type"
	HeaderUserAgent   = "User-Agent"
)

// ContentTypeJSON is the content type of every DPP document.
const ContentTypeJSON = "application/json"

// UserAgent identifies this client to the merchant, sent by the HTTP transport.
const UserAgent = "go-dpp"

// MaxErrorDetailSize caps the part of a response body which is copied into error messages.
const MaxErrorDetailSize = 1024
