package tax

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"

	"goflare.io/tax/config"
	"goflare.io/tax/models"
	"goflare.io/tax/models/enum"
	"goflare.io/tax/rate_lookup"
)

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	events   []LookupEvent
}

func (p *recordingPublisher) Publish(subject string, data []byte) error {
	var event LookupEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	p.events = append(p.events, event)
	return nil
}

type fakeDOR struct {
	srv   *httptest.Server
	calls int32
}

func newFakeDOR(t *testing.T, status int, body string) *fakeDOR {
	t.Helper()
	f := &fakeDOR{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.calls, 1)
		w.Header().Set("Content-Type", "text/xml")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeDOR) Calls() int {
	return int(atomic.LoadInt32(&f.calls))
}

func newSalesTax(t *testing.T, endpoint string, publisher Publisher) Tax {
	t.Helper()
	logger := zaptest.NewLogger(t)
	cfg := &config.Config{Batch: config.BatchConfig{Workers: 2, MaxSize: 10}}

	interpreter := rate_lookup.NewInterpreter()
	client, err := rate_lookup.NewClient(endpoint, http.DefaultClient, interpreter, logger)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	var events *EventManager
	if publisher != nil {
		events = NewEventManagerWithPublisher(publisher, logger)
	} else {
		events = NewEventManager(nil, logger)
	}

	wt := NewWashingtonSalesTax(cfg, client, interpreter, events, logger)
	t.Cleanup(wt.Close)
	return wt
}

func request(state string) models.TaxRateRequest {
	return models.TaxRateRequest{Address: &models.Address{
		Address1:          "6500 Linderson Way SW",
		City:              "Tumwater",
		ZipPostalCode:     "98501",
		StateProvinceCode: state,
		CountryCode:       "US",
	}}
}

func assertRate(t *testing.T, result models.TaxRateResult, want string) {
	t.Helper()
	if !result.Success() {
		t.Fatalf("expected success, got errors %v", result.Errors)
	}
	if !result.Rate.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("expected rate %s, got %s", want, result.Rate)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("success must not carry errors: %v", result.Errors)
	}
}

func assertFailure(t *testing.T, result models.TaxRateResult, kind enum.ErrorKind, message string) {
	t.Helper()
	if result.Rate != nil {
		t.Fatalf("failure must not carry a rate, got %s", result.Rate)
	}
	if len(result.Errors) == 0 {
		t.Fatal("failure must carry at least one error")
	}
	if result.ErrorKind != kind {
		t.Fatalf("expected kind %s, got %s", kind, result.ErrorKind)
	}
	if result.Errors[0] != message {
		t.Fatalf("expected message %q, got %q", message, result.Errors[0])
	}
}

func TestGetTaxRateDecisionTable(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		state   string
		rate    string
		kind    enum.ErrorKind
		message string
	}{
		{name: "address found", body: `<response loccode="3406" localrate="0.024" rate="0.065" code="0"/>`, state: "WA", rate: "6.5"},
		{name: "zip+4 found", body: `<response loccode="3406" localrate="0.024" rate="0.077" code="1"/>`, state: "WA", rate: "7.7"},
		{name: "fraction to percentage", body: `<response rate="0.085" code="0"/>`, state: "WA", rate: "8.5"},
		{name: "out of state", body: `<response loccode="-1" localrate="-1" rate="-1" code="3"/>`, state: "CA", rate: "0"},
		{name: "in state not found", body: `<response code="3"/>`, state: "WA", kind: enum.ErrorKindRateUnavailable, message: MessageUnableToObtain},
		{name: "code 2", body: `<response code="2"/>`, state: "CA", kind: enum.ErrorKindRateUnavailable, message: MessageUnableToObtain},
		{name: "code 4", body: `<response code="4"/>`, state: "WA", kind: enum.ErrorKindRateUnavailable, message: MessageUnableToObtain},
		{name: "code 5", body: `<response code="5"/>`, state: "OR", kind: enum.ErrorKindRateUnavailable, message: MessageUnableToObtain},
		{name: "unmapped code", body: `<response code="7" rate="0.1"/>`, state: "CA", kind: enum.ErrorKindRateUnavailable, message: MessageUnableToObtain},
		{name: "malformed", body: `<html>oops</html>`, state: "WA", kind: enum.ErrorKindMalformedResponse, message: MessageUnableToParseRate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dor := newFakeDOR(t, http.StatusOK, tc.body)
			wt := newSalesTax(t, dor.srv.URL+"/AddressRates.aspx", nil)

			result := wt.GetTaxRate(context.Background(), request(tc.state))
			if tc.kind == enum.ErrorKindNone {
				assertRate(t, result, tc.rate)
			} else {
				assertFailure(t, result, tc.kind, tc.message)
			}
			if dor.Calls() != 1 {
				t.Fatalf("expected exactly one request, got %d", dor.Calls())
			}
		})
	}
}

func TestGetTaxRateInvalidAddressSkipsNetwork(t *testing.T) {
	dor := newFakeDOR(t, http.StatusOK, `<response rate="0.065" code="0"/>`)
	wt := newSalesTax(t, dor.srv.URL, nil)

	reqs := []models.TaxRateRequest{
		{},
		{Address: &models.Address{ZipPostalCode: "98501"}},
		{Address: &models.Address{Address1: "   ", ZipPostalCode: "98501"}},
		{Address: &models.Address{Address1: "6500 Linderson Way SW"}},
		{Address: &models.Address{Address1: "6500 Linderson Way SW", ZipPostalCode: "\t"}},
	}
	for _, req := range reqs {
		assertFailure(t, wt.GetTaxRate(context.Background(), req), enum.ErrorKindInvalidAddress, MessageAddressNotSet)
	}
	if dor.Calls() != 0 {
		t.Fatalf("expected no requests, got %d", dor.Calls())
	}
}

func TestGetTaxRateNetworkFailure(t *testing.T) {
	dor := newFakeDOR(t, http.StatusServiceUnavailable, `<response rate="0.065" code="0"/>`)
	wt := newSalesTax(t, dor.srv.URL, nil)

	assertFailure(t, wt.GetTaxRate(context.Background(), request("WA")), enum.ErrorKindNetworkFailure, MessageUnableToObtain)
	if dor.Calls() != 1 {
		t.Fatalf("expected no retry, got %d requests", dor.Calls())
	}
}

func TestGetTaxRateUnreachable(t *testing.T) {
	dor := newFakeDOR(t, http.StatusOK, ``)
	endpoint := dor.srv.URL
	dor.srv.Close()

	wt := newSalesTax(t, endpoint, nil)
	assertFailure(t, wt.GetTaxRate(context.Background(), request("WA")), enum.ErrorKindNetworkFailure, MessageUnableToObtain)
}

func TestGetTaxRateIdempotent(t *testing.T) {
	dor := newFakeDOR(t, http.StatusOK, `<response rate="0.089" code="0"/>`)
	wt := newSalesTax(t, dor.srv.URL, nil)

	first := wt.GetTaxRate(context.Background(), request("WA"))
	for i := 0; i < 5; i++ {
		next := wt.GetTaxRate(context.Background(), request("WA"))
		if !next.Rate.Equal(*first.Rate) || len(next.Errors) != len(first.Errors) {
			t.Fatalf("result %d differs: %+v vs %+v", i, next, first)
		}
	}
	if dor.Calls() != 6 {
		t.Fatalf("expected one request per lookup, got %d", dor.Calls())
	}
}

func TestGetTaxRatePublishesEvents(t *testing.T) {
	dor := newFakeDOR(t, http.StatusOK, `<response loccode="3406" localrate="0.024" rate="0.089" code="0"/>`)
	publisher := &recordingPublisher{}
	wt := newSalesTax(t, dor.srv.URL, publisher)

	assertRate(t, wt.GetTaxRate(context.Background(), request("WA")), "8.9")
	assertFailure(t, wt.GetTaxRate(context.Background(), models.TaxRateRequest{}), enum.ErrorKindInvalidAddress, MessageAddressNotSet)

	if len(publisher.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(publisher.events))
	}
	if publisher.subjects[0] != "tax.lookup.success" || publisher.subjects[1] != "tax.lookup.failure" {
		t.Fatalf("unexpected subjects %v", publisher.subjects)
	}

	ok := publisher.events[0]
	if ok.Outcome != enum.OutcomeRate || ok.Rate != "8.9" {
		t.Fatalf("unexpected success event %+v", ok)
	}
	if ok.StatusCode == nil || *ok.StatusCode != 0 {
		t.Fatalf("expected status code 0, got %v", ok.StatusCode)
	}
	if ok.LocalRate != "0.024" || ok.LocationCode != "3406" {
		t.Fatalf("expected informational fields on event, got %+v", ok)
	}

	failed := publisher.events[1]
	if failed.ErrorKind != enum.ErrorKindInvalidAddress || failed.StatusCode != nil || failed.Rate != "" {
		t.Fatalf("unexpected failure event %+v", failed)
	}
}

func TestConfigurationRoute(t *testing.T) {
	wt := newSalesTax(t, rate_lookup.DefaultEndpoint, nil)

	route := wt.ConfigurationRoute()
	if route.ActionName != "Configure" || route.ControllerName != "TaxWashingtonSales" {
		t.Fatalf("unexpected route %+v", route)
	}
	if route.Configurable {
		t.Fatal("provider must not be runtime configurable")
	}
	if _, ok := route.RouteValues["Namespaces"]; !ok {
		t.Fatal("expected Namespaces route value")
	}
}
