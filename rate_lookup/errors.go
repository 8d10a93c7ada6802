package rate_lookup

import "errors"

var (
	// ErrNetworkFailure covers every failure to obtain a body from the rate service.
	ErrNetworkFailure = errors.New("rate service unreachable")
	// ErrMalformedResponse is returned when the body does not carry a usable <response> element.
	ErrMalformedResponse = errors.New("malformed rate service response")
	// ErrRateUnavailable is returned when the service answered but no rate applies.
	ErrRateUnavailable = errors.New("rate unavailable")
)
