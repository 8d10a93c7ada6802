//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"goflare.io/tax"
	"goflare.io/tax/config"
	"goflare.io/tax/handlers"
	"goflare.io/tax/server"
)

func InitializeTaxService() (*server.Server, error) {

	wire.Build(
		config.ProvideApplicationConfig,
		config.NewLogger,
		config.ProvideHTTPClient,
		config.ProvideInterpreter,
		config.ProvideRateLookupClient,
		config.ProvideNATS,
		tax.NewEventManager,
		tax.NewWashingtonSalesTax,
		handlers.NewTaxRateHandler,
		server.NewServer,
	)

	return &server.Server{}, nil
}
