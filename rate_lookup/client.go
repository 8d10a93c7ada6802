package rate_lookup

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"goflare.io/tax/models"
)

const (
	// DefaultEndpoint is the Washington State Department of Revenue address rate service.
	DefaultEndpoint = "http://dor.wa.gov/AddressRates.aspx"

	maxResponseBytes = 1 << 20
)

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ResponseParser turns a raw response body into a LookupResponse.
type ResponseParser interface {
	Parse(body []byte) (*models.LookupResponse, error)
}

type Client interface {
	// Lookup issues exactly one GET against the rate service for the address.
	Lookup(ctx context.Context, addr models.Address) (*models.LookupResponse, error)
}

type client struct {
	endpoint *url.URL
	doer     HTTPDoer
	parser   ResponseParser
	logger   *zap.Logger
}

func NewClient(endpoint string, doer HTTPDoer, parser ResponseParser, logger *zap.Logger) (Client, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid rate service endpoint %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid rate service endpoint %q: unsupported scheme", endpoint)
	}
	if doer == nil {
		doer = http.DefaultClient
	}
	return &client{
		endpoint: u,
		doer:     doer,
		parser:   parser,
		logger:   logger,
	}, nil
}

func (c *client) Lookup(ctx context.Context, addr models.Address) (*models.LookupResponse, error) {
	body, err := c.fetch(ctx, addr)
	if err != nil {
		return nil, err
	}
	return c.parser.Parse(body)
}

// buildURL encodes the address the way the rate service expects: both street
// lines joined by a single space into addr, with city and zip alongside.
func (c *client) buildURL(addr models.Address) string {
	u := *c.endpoint
	q := u.Query()
	q.Set("output", "xml")
	q.Set("addr", addr.Address1+" "+addr.Address2)
	q.Set("city", addr.City)
	q.Set("zip", addr.ZipPostalCode)
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *client) fetch(ctx context.Context, addr models.Address) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(addr), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rate request: %v: %w", err, ErrNetworkFailure)
	}
	req.Header.Set("Accept", "application/xml, text/xml")

	resp, err := c.doer.Do(req)
	if err != nil {
		c.logger.Warn("Rate service request failed", zap.String("host", c.endpoint.Host), zap.Error(err))
		return nil, fmt.Errorf("failed to call rate service: %v: %w", err, ErrNetworkFailure)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("Rate service returned non-success status",
			zap.String("host", c.endpoint.Host),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("rate service returned %s: %w", resp.Status, ErrNetworkFailure)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.logger.Warn("Failed to read rate service response", zap.Error(err))
		return nil, fmt.Errorf("failed to read rate service response: %v: %w", err, ErrNetworkFailure)
	}

	return body, nil
}
