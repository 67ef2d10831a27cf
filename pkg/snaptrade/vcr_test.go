package snaptrade

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/tjfontaine/snaptrade-go/internal/testutil"
)

func newVCRClient(t *testing.T, cassette string) *Client {
	t.Helper()

	clientID, consumerKey := os.Getenv("SNAPTRADE_API__CLIENT_ID"), os.Getenv("SNAPTRADE_API__CONSUMER_KEY")
	if os.Getenv("VCR_MODE") == "record" && (clientID == "" || consumerKey == "") {
		t.Skip("Skipping test: SNAPTRADE_API__CLIENT_ID and SNAPTRADE_API__CONSUMER_KEY not set")
	}
	if clientID == "" {
		clientID = testClientID
	}
	if consumerKey == "" {
		consumerKey = testConsumerKey
	}

	recorder, cleanup := testutil.NewVCRRecorder(t, cassette)
	t.Cleanup(cleanup)

	c, err := NewClient(clientID, consumerKey, WithHTTPClient(testutil.VCRHTTPClient(recorder)))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func TestVCR_ReferenceData(t *testing.T) {
	c := newVCRClient(t, "reference_data")
	ctx := context.Background()

	status, err := c.APIStatus(ctx)
	if err != nil {
		t.Fatalf("APIStatus() error = %v", err)
	}
	if !status.Data.Online || status.Meta.StatusText != "OK" {
		t.Errorf("APIStatus() = %+v", status)
	}

	currencies, err := c.Currencies(ctx)
	if err != nil {
		t.Fatalf("Currencies() error = %v", err)
	}
	if len(currencies.Data) == 0 {
		t.Fatal("expected at least one currency")
	}
	codes := map[string]bool{}
	for _, cur := range currencies.Data {
		codes[cur.Code] = true
	}
	if !codes["USD"] {
		t.Errorf("currencies = %+v, want USD", currencies.Data)
	}

	rate, err := c.ExchangeRate(ctx, "USD-CAD")
	if err != nil {
		t.Fatalf("ExchangeRate() error = %v", err)
	}
	if rate.Data.Src.Code != "USD" || rate.Data.Dst.Code != "CAD" {
		t.Errorf("ExchangeRate() = %+v", rate.Data)
	}
	if !rate.Data.ExchangeRate.IsPositive() {
		t.Errorf("exchange rate = %s, want positive", rate.Data.ExchangeRate)
	}

	_, err = c.AccountBalances(ctx, User{ID: "user-1", Secret: "stale"}, "bad-account")
	if !IsKind(err, KindStatus) || StatusCode(err) != 401 {
		t.Fatalf("AccountBalances() error = %v, want 401 status error", err)
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && (apiErr.API == nil || apiErr.API.Code != "1076") {
		t.Errorf("API error = %+v, want code 1076", apiErr.API)
	}
}
