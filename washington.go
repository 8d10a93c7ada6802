package tax

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"goflare.io/tax/address"
	"goflare.io/tax/config"
	"goflare.io/tax/models"
	"goflare.io/tax/models/enum"
	"goflare.io/tax/rate_lookup"
)

// WashingtonSalesTax resolves destination based sales tax rates through the
// Washington State Department of Revenue address rate service.
type WashingtonSalesTax struct {
	lookup      rate_lookup.Client
	interpreter *rate_lookup.Interpreter
	events      *EventManager
	dispatcher  *Dispatcher
	logger      *zap.Logger
}

func NewWashingtonSalesTax(
	config *config.Config,
	lookup rate_lookup.Client,
	interpreter *rate_lookup.Interpreter,
	events *EventManager,
	logger *zap.Logger,
) Tax {
	wt := &WashingtonSalesTax{
		lookup:      lookup,
		interpreter: interpreter,
		events:      events,
		logger:      logger,
	}

	wt.dispatcher = NewDispatcher(config.Batch.Workers, config.Batch.MaxSize, wt)
	wt.dispatcher.Run()

	return wt
}

// GetTaxRate runs validate, lookup and interpret for a single request.
func (wt *WashingtonSalesTax) GetTaxRate(ctx context.Context, req models.TaxRateRequest) models.TaxRateResult {
	start := time.Now()

	if err := address.Validate(req.Address); err != nil {
		return wt.fail(req, nil, newError(enum.ErrorKindInvalidAddress, err), start)
	}
	addr := *req.Address

	resp, err := wt.lookup.Lookup(ctx, addr)
	if err != nil {
		return wt.fail(req, nil, newError(KindOf(err), err), start)
	}

	rate, outcome, err := wt.interpreter.Interpret(addr, resp)
	if err != nil {
		return wt.fail(req, resp, newError(KindOf(err), err), start)
	}

	wt.logger.Info("Tax rate resolved",
		zap.String("outcome", string(outcome)),
		zap.String("rate", rate.String()),
		zap.String("state", addr.StateProvinceCode),
		zap.Duration("duration", time.Since(start)))

	wt.publish(req, resp, outcome, rate, nil, start)
	return models.NewRateResult(rate)
}

func (wt *WashingtonSalesTax) GetTaxRates(ctx context.Context, reqs []models.TaxRateRequest) []models.TaxRateResult {
	return wt.dispatcher.Resolve(ctx, reqs)
}

// ConfigurationRoute points the host at the Configure action. The provider has
// no runtime settings, so the screen is informational only.
func (wt *WashingtonSalesTax) ConfigurationRoute() models.ConfigurationRoute {
	return models.ConfigurationRoute{
		ActionName:     "Configure",
		ControllerName: "TaxWashingtonSales",
		RouteValues: map[string]string{
			"Namespaces": "Tax.WashingtonSales.Controllers",
			"area":       "",
		},
		Configurable: false,
	}
}

func (wt *WashingtonSalesTax) Close() {
	wt.dispatcher.Stop()
	wt.events.Close()
}

func (wt *WashingtonSalesTax) fail(req models.TaxRateRequest, resp *models.LookupResponse, err *Error, start time.Time) models.TaxRateResult {
	wt.logger.Warn("Tax rate lookup failed",
		zap.String("error_kind", string(err.Kind)),
		zap.Error(err.Err),
		zap.Duration("duration", time.Since(start)))

	wt.publish(req, resp, enum.OutcomeUnavailable, decimal.Zero, err, start)
	return models.NewErrorResult(err.Kind, Message(err.Kind))
}

func (wt *WashingtonSalesTax) publish(req models.TaxRateRequest, resp *models.LookupResponse, outcome enum.Outcome, rate decimal.Decimal, lookupErr *Error, start time.Time) {
	if !wt.events.Enabled() {
		return
	}

	event := LookupEvent{
		Outcome:        outcome,
		DurationMillis: time.Since(start).Milliseconds(),
		OccurredAt:     time.Now().UTC(),
	}
	if req.Address != nil {
		event.StateProvinceCode = req.Address.StateProvinceCode
		event.CountryCode = req.Address.CountryCode
	}
	if resp != nil {
		if status, err := resp.Status(); err == nil {
			code := int(status)
			event.StatusCode = &code
		}
		event.LocalRate = resp.LocalRateValue()
		event.LocationCode = resp.LocationCodeValue()
	}
	if lookupErr != nil {
		event.ErrorKind = lookupErr.Kind
	} else {
		event.Rate = rate.String()
	}

	if err := wt.events.PublishLookup(event); err != nil {
		wt.logger.Warn("Failed to publish lookup event", zap.Error(err))
	}
}
