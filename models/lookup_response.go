package models

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"goflare.io/tax/models/enum"
)

// LookupResponse is the <response> element returned by the DOR address rate service.
// Attributes are pointers so that an absent attribute can be told apart from an empty one.
type LookupResponse struct {
	XMLName      xml.Name `xml:"response" json:"-"`
	Code         *string  `xml:"code,attr" json:"code,omitempty"`
	Rate         *string  `xml:"rate,attr" json:"rate,omitempty"`
	LocalRate    *string  `xml:"localrate,attr" json:"local_rate,omitempty"`
	LocationCode *string  `xml:"loccode,attr" json:"location_code,omitempty"`
}

// Status parses the code attribute.
func (r *LookupResponse) Status() (enum.LookupStatus, error) {
	if r.Code == nil {
		return 0, errors.New("code attribute is missing")
	}
	code, err := strconv.ParseInt(strings.TrimSpace(*r.Code), 10, 16)
	if err != nil {
		return 0, fmt.Errorf("code attribute %q is not numeric: %w", *r.Code, err)
	}
	return enum.LookupStatus(code), nil
}

func (r *LookupResponse) HasRate() bool {
	return r.Rate != nil
}

func (r *LookupResponse) LocalRateValue() string {
	if r.LocalRate == nil {
		return ""
	}
	return *r.LocalRate
}

func (r *LookupResponse) LocationCodeValue() string {
	if r.LocationCode == nil {
		return ""
	}
	return *r.LocationCode
}
