package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"goflare.io/tax"
	"goflare.io/tax/config"
	"goflare.io/tax/models"
)

type TaxRateHandler interface {
	GetTaxRate(c echo.Context) error
	CalculateTaxRate(c echo.Context) error
	CalculateTaxRates(c echo.Context) error
	GetConfiguration(c echo.Context) error
}

type taxRateHandler struct {
	Tax          tax.Tax
	Logger       *zap.Logger
	maxBatchSize int
}

func NewTaxRateHandler(tax tax.Tax, appConfig *config.Config, logger *zap.Logger) TaxRateHandler {
	return &taxRateHandler{
		Tax:          tax,
		Logger:       logger,
		maxBatchSize: appConfig.Batch.MaxSize,
	}
}

// GetTaxRate handles GET /tax/rate?address1=&address2=&city=&zip=&state=&country=
func (th *taxRateHandler) GetTaxRate(c echo.Context) error {
	var addr models.Address
	if err := c.Bind(&addr); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid query parameters"})
	}

	return th.respond(c, th.Tax.GetTaxRate(c.Request().Context(), models.TaxRateRequest{Address: &addr}))
}

// CalculateTaxRate handles POST /tax/rate
func (th *taxRateHandler) CalculateTaxRate(c echo.Context) error {
	var addr models.Address
	if err := c.Bind(&addr); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	return th.respond(c, th.Tax.GetTaxRate(c.Request().Context(), models.TaxRateRequest{Address: &addr}))
}

// CalculateTaxRates handles POST /tax/rates
func (th *taxRateHandler) CalculateTaxRates(c echo.Context) error {
	var addrs []models.Address
	if err := c.Bind(&addrs); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}
	if len(addrs) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "At least one address is required"})
	}
	if len(addrs) > th.maxBatchSize {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("At most %d addresses may be requested at once", th.maxBatchSize),
		})
	}

	reqs := make([]models.TaxRateRequest, len(addrs))
	for i := range addrs {
		reqs[i] = models.TaxRateRequest{Address: &addrs[i]}
	}

	results := th.Tax.GetTaxRates(c.Request().Context(), reqs)
	th.Logger.Info("Batch tax rates resolved", zap.Int("count", len(results)))

	return c.JSON(http.StatusOK, results)
}

// GetConfiguration handles GET /tax/configure
func (th *taxRateHandler) GetConfiguration(c echo.Context) error {
	return c.JSON(http.StatusOK, th.Tax.ConfigurationRoute())
}

func (th *taxRateHandler) respond(c echo.Context, result models.TaxRateResult) error {
	if !result.Success() {
		return c.JSON(http.StatusUnprocessableEntity, result)
	}
	return c.JSON(http.StatusOK, result)
}
