package models

import (
	"github.com/shopspring/decimal"

	"goflare.io/tax/models/enum"
)

// Address is the delivery address a rate is requested for.
type Address struct {
	Address1          string `json:"address1" query:"address1"`
	Address2          string `json:"address2" query:"address2"`
	City              string `json:"city" query:"city"`
	ZipPostalCode     string `json:"zip_postal_code" query:"zip"`
	StateProvinceCode string `json:"state_province_code" query:"state"`
	CountryCode       string `json:"country_code" query:"country"`
}

// TaxRateRequest 代表一次稅率查詢
// TaxRateRequest represents a single tax rate lookup
type TaxRateRequest struct {
	Address *Address `json:"address"`
}

// TaxRateResult carries either a percentage rate or the reasons none could be determined.
type TaxRateResult struct {
	Rate      *decimal.Decimal `json:"rate,omitempty"`
	Errors    []string         `json:"errors"`
	ErrorKind enum.ErrorKind   `json:"error_kind,omitempty"`
}

func NewRateResult(rate decimal.Decimal) TaxRateResult {
	return TaxRateResult{
		Rate:   &rate,
		Errors: []string{},
	}
}

func NewErrorResult(kind enum.ErrorKind, messages ...string) TaxRateResult {
	return TaxRateResult{
		Errors:    messages,
		ErrorKind: kind,
	}
}

// Success reports whether a rate was determined.
func (r TaxRateResult) Success() bool {
	return r.Rate != nil && len(r.Errors) == 0
}
