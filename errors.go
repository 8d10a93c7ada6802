package tax

import (
	"errors"
	"fmt"

	"goflare.io/tax/address"
	"goflare.io/tax/models/enum"
	"goflare.io/tax/rate_lookup"
)

const (
	MessageAddressNotSet     = "Address is not set"
	MessageUnableToObtain    = "Unable to obtain rate."
	MessageUnableToParseRate = "Unable to parse rate response."
)

// Error tags a lookup failure with its kind.
type Error struct {
	Kind enum.ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind enum.ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf classifies err. Unrecognised errors count as network failures since
// they can only come from the transport side of a lookup.
func KindOf(err error) enum.ErrorKind {
	var taxErr *Error
	switch {
	case err == nil:
		return enum.ErrorKindNone
	case errors.As(err, &taxErr):
		return taxErr.Kind
	case errors.Is(err, address.ErrAddressNotSet):
		return enum.ErrorKindInvalidAddress
	case errors.Is(err, rate_lookup.ErrMalformedResponse):
		return enum.ErrorKindMalformedResponse
	case errors.Is(err, rate_lookup.ErrRateUnavailable):
		return enum.ErrorKindRateUnavailable
	default:
		return enum.ErrorKindNetworkFailure
	}
}

// Message is the caller-facing text for a kind.
func Message(kind enum.ErrorKind) string {
	switch kind {
	case enum.ErrorKindInvalidAddress:
		return MessageAddressNotSet
	case enum.ErrorKindMalformedResponse:
		return MessageUnableToParseRate
	default:
		return MessageUnableToObtain
	}
}
