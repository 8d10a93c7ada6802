package rate_lookup

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/net/html/charset"

	"goflare.io/tax/models"
	"goflare.io/tax/models/enum"
)

// TaxingJurisdiction is the state whose revenue department answers the lookups.
const TaxingJurisdiction = "WA"

var hundred = decimal.NewFromInt(100)

type Interpreter struct{}

func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

// Parse reads the first <response> element found anywhere in body.
func (i *Interpreter) Parse(body []byte) (*models.LookupResponse, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = charset.NewReaderLabel

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("response element not found: %w", ErrMalformedResponse)
		}
		if err != nil {
			return nil, fmt.Errorf("invalid xml: %v: %w", err, ErrMalformedResponse)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "response" {
			continue
		}

		var resp models.LookupResponse
		if err := dec.DecodeElement(&resp, &start); err != nil {
			return nil, fmt.Errorf("invalid response element: %v: %w", err, ErrMalformedResponse)
		}
		if _, err := resp.Status(); err != nil {
			return nil, fmt.Errorf("%v: %w", err, ErrMalformedResponse)
		}
		return &resp, nil
	}
}

// Decide maps a status code onto an outcome. Codes 0 and 1 carry a rate;
// code 3 outside the taxing jurisdiction means no local tax applies.
// Everything else, including codes the service does not document, is unavailable.
func (i *Interpreter) Decide(status enum.LookupStatus, hasRate bool, stateProvinceCode string) enum.Outcome {
	switch status {
	case enum.LookupStatusAddressFound, enum.LookupStatusZipPlusFourFound:
		if hasRate {
			return enum.OutcomeRate
		}
		return enum.OutcomeUnavailable
	case enum.LookupStatusAddressAndZipNotFound:
		// The service could not place the address at all, which backs up a
		// caller-supplied state outside WA. A WA address it cannot place is an error.
		if !InTaxingJurisdiction(stateProvinceCode) {
			return enum.OutcomeOutOfJurisdiction
		}
		return enum.OutcomeUnavailable
	case enum.LookupStatusAddressNotFound,
		enum.LookupStatusInvalidArguments,
		enum.LookupStatusInternalError:
		return enum.OutcomeUnavailable
	default:
		return enum.OutcomeUnavailable
	}
}

// Interpret applies the decision table and returns the rate as a percentage.
func (i *Interpreter) Interpret(addr models.Address, resp *models.LookupResponse) (decimal.Decimal, enum.Outcome, error) {
	status, err := resp.Status()
	if err != nil {
		return decimal.Zero, enum.OutcomeUnavailable, fmt.Errorf("%v: %w", err, ErrMalformedResponse)
	}

	hasRate := resp.HasRate() && strings.TrimSpace(*resp.Rate) != ""
	outcome := i.Decide(status, hasRate, addr.StateProvinceCode)

	switch outcome {
	case enum.OutcomeRate:
		fraction, err := decimal.NewFromString(strings.TrimSpace(*resp.Rate))
		if err != nil {
			return decimal.Zero, outcome, fmt.Errorf("rate attribute %q is not a decimal: %w", *resp.Rate, ErrMalformedResponse)
		}
		return fraction.Mul(hundred), outcome, nil
	case enum.OutcomeOutOfJurisdiction:
		return decimal.Zero, outcome, nil
	default:
		return decimal.Zero, outcome, fmt.Errorf("status code %d: %w", status, ErrRateUnavailable)
	}
}

func InTaxingJurisdiction(stateProvinceCode string) bool {
	return strings.EqualFold(strings.TrimSpace(stateProvinceCode), TaxingJurisdiction)
}
