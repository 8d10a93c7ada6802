package tax

import (
	"context"

	"goflare.io/tax/models"
)

type Tax interface {
	// GetTaxRate never returns a Go error: failures are reported on the result.
	GetTaxRate(ctx context.Context, req models.TaxRateRequest) models.TaxRateResult
	// GetTaxRates resolves each request independently, results in input order.
	GetTaxRates(ctx context.Context, reqs []models.TaxRateRequest) []models.TaxRateResult

	ConfigurationRoute() models.ConfigurationRoute

	Close()
}
