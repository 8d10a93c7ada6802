package enum

type ErrorKind string

const (
	ErrorKindNone              ErrorKind = ""
	ErrorKindInvalidAddress    ErrorKind = "INVALID_ADDRESS"
	ErrorKindNetworkFailure    ErrorKind = "NETWORK_FAILURE"
	ErrorKindMalformedResponse ErrorKind = "MALFORMED_RESPONSE"
	ErrorKindRateUnavailable   ErrorKind = "RATE_UNAVAILABLE"
)
