package snaptrade

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

func (c *Client) Brokerages(ctx context.Context, opts ...RequestOption) (*Response[[]Brokerage], error) {
	return do[[]Brokerage](ctx, c, &Request{Method: http.MethodGet, Endpoint: "/api/v1/brokerages"}, opts...)
}

// BrokerageAuthorizationTypes lists authorization types, optionally limited to
// the given brokerage slugs.
func (c *Client) BrokerageAuthorizationTypes(ctx context.Context, brokerages []string, opts ...RequestOption) (*Response[[]BrokerageAuthorizationType], error) {
	var params Params
	if len(brokerages) > 0 {
		params.Add("brokerage", strings.Join(brokerages, ","))
	}
	return do[[]BrokerageAuthorizationType](ctx, c, &Request{
		Method:   http.MethodGet,
		Endpoint: "/api/v1/brokerageAuthorizationTypes",
		Params:   params,
	}, opts...)
}

func (c *Client) Currencies(ctx context.Context, opts ...RequestOption) (*Response[[]Currency], error) {
	return do[[]Currency](ctx, c, &Request{Method: http.MethodGet, Endpoint: "/api/v1/currencies"}, opts...)
}

func (c *Client) ExchangeRates(ctx context.Context, opts ...RequestOption) (*Response[[]ExchangeRate], error) {
	return do[[]ExchangeRate](ctx, c, &Request{Method: http.MethodGet, Endpoint: "/api/v1/currencies/rates"}, opts...)
}

// ExchangeRate returns the rate for one pair such as "USD-CAD".
func (c *Client) ExchangeRate(ctx context.Context, pair string, opts ...RequestOption) (*Response[ExchangeRate], error) {
	return do[ExchangeRate](ctx, c, &Request{
		Method:   http.MethodGet,
		Endpoint: "/api/v1/currencies/rates/" + url.PathEscape(pair),
	}, opts...)
}

func (c *Client) SecurityTypes(ctx context.Context, opts ...RequestOption) (*Response[[]SecurityType], error) {
	return do[[]SecurityType](ctx, c, &Request{Method: http.MethodGet, Endpoint: "/api/v1/securityTypes"}, opts...)
}

func (c *Client) StockExchanges(ctx context.Context, opts ...RequestOption) (*Response[[]Exchange], error) {
	return do[[]Exchange](ctx, c, &Request{Method: http.MethodGet, Endpoint: "/api/v1/exchanges"}, opts...)
}

// SearchSymbols finds universal symbols matching substring. The call is
// partner scoped.
func (c *Client) SearchSymbols(ctx context.Context, substring string, opts ...RequestOption) (*Response[[]Symbol], error) {
	return do[[]Symbol](ctx, c, &Request{
		Method:   http.MethodPost,
		Endpoint: "/api/v1/symbols",
		Body:     map[string]string{"substring": substring},
	}, opts...)
}

// Symbol looks up a symbol by universal ID or by ticker.
func (c *Client) Symbol(ctx context.Context, idOrTicker string, opts ...RequestOption) (*Response[Symbol], error) {
	return do[Symbol](ctx, c, &Request{
		Method:   http.MethodGet,
		Endpoint: "/api/v1/symbols/" + url.PathEscape(idOrTicker),
	}, opts...)
}
