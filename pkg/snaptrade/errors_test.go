package snaptrade

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseErrorResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
		want *APIError
	}{
		{
			name: "string code",
			body: `{"detail":"Unable to verify signature sent","status_code":401,"code":"1076"}`,
			want: &APIError{Detail: "Unable to verify signature sent", Code: "1076", StatusCode: 401},
		},
		{
			name: "numeric code",
			body: `{"detail":"Invalid userID or userSecret provided","code":1083}`,
			want: &APIError{Detail: "Invalid userID or userSecret provided", Code: "1083"},
		},
		{name: "other shape", body: `{"message":"nope"}`},
		{name: "not json", body: `<html>bad gateway</html>`},
		{name: "empty", body: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseErrorResponse([]byte(tt.body))
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("ParseErrorResponse() = %+v, want nil", got)
			case tt.want != nil && (got == nil || *got != *tt.want):
				t.Errorf("ParseErrorResponse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestError_Message(t *testing.T) {
	err := &Error{
		Kind: KindStatus,
		Meta: Meta{Status: 401, StatusText: "Unauthorized"},
		API:  &APIError{Detail: "Unable to verify signature sent", Code: "1076"},
	}
	want := "snaptrade: API error (status 401 Unauthorized): Unable to verify signature sent (code 1076)"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	unsupported := &Error{Kind: KindUnsupportedMethod}
	if got := unsupported.Error(); !strings.Contains(got, "unsupported_method") {
		t.Errorf("Error() = %q", got)
	}
}

func TestReasonPhrase(t *testing.T) {
	tests := []struct {
		status string
		code   int
		want   string
	}{
		{"200 OK", 200, "OK"},
		{"404 Not Found", 404, "Not Found"},
		{"", 503, "Service Unavailable"},
		{"299", 299, ""},
	}
	for _, tt := range tests {
		got := reasonPhrase(&http.Response{Status: tt.status, StatusCode: tt.code})
		if got != tt.want {
			t.Errorf("reasonPhrase(%q) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestOrderRequest_MarshalJSON(t *testing.T) {
	order := OrderRequest{
		AccountID:         "a1",
		Action:            "SELL",
		OrderType:         "Market",
		TimeInForce:       "Day",
		UniversalSymbolID: "s1",
		Units:             decimal.NullDecimal{Decimal: decimal.RequireFromString("0.5"), Valid: true},
	}
	got, err := json.Marshal(order)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"account_id":"a1","action":"SELL","order_type":"Market","time_in_force":"Day","universal_symbol_id":"s1","units":0.5}`
	if string(got) != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}
}

func TestHoldings_DecodesMixedNumbers(t *testing.T) {
	payload := `{
		"account": {"id": "a1", "name": "TFSA", "number": "123", "brokerage_authorization": {"id": "auth-1"}},
		"balances": [{"currency": {"id": "c1", "code": "CAD", "name": "Canadian Dollar"}, "cash": 1000.25, "buying_power": null}],
		"orders": [{"brokerage_order_id": "o1", "total_quantity": "10", "limit_price": null}]
	}`
	var h Holdings
	if err := json.Unmarshal([]byte(payload), &h); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !h.Balances[0].Cash.Valid || h.Balances[0].Cash.Decimal.String() != "1000.25" {
		t.Errorf("cash = %+v", h.Balances[0].Cash)
	}
	if h.Balances[0].BuyingPower.Valid {
		t.Error("buying power should be null")
	}
	if h.Orders[0].TotalQuantity.Decimal.String() != "10" || h.Orders[0].LimitPrice.Valid {
		t.Errorf("order = %+v", h.Orders[0])
	}
}
