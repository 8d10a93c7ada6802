package address

import (
	"errors"
	"fmt"
	"strings"

	"goflare.io/tax/models"
)

// ErrAddressNotSet is returned when the address cannot be used for a destination based lookup.
var ErrAddressNotSet = errors.New("address is not set")

// Validate checks that the address carries the fields the rate service keys on:
// street address line 1 and postal code. Every other field may be blank.
func Validate(addr *models.Address) error {
	if addr == nil {
		return ErrAddressNotSet
	}
	if strings.TrimSpace(addr.Address1) == "" {
		return fmt.Errorf("address1 is required: %w", ErrAddressNotSet)
	}
	if strings.TrimSpace(addr.ZipPostalCode) == "" {
		return fmt.Errorf("zip_postal_code is required: %w", ErrAddressNotSet)
	}
	return nil
}
