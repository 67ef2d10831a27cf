package snaptrade

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// CancelOrder cancels an open order by its brokerage order ID.
func (c *Client) CancelOrder(ctx context.Context, user User, accountID, brokerageOrderID string, opts ...RequestOption) (*Response[Order], error) {
	return do[Order](ctx, c, &Request{
		Method:   http.MethodPost,
		Endpoint: accountPath(accountID, "/orders/cancel"),
		User:     &user,
		Body:     map[string]string{"brokerage_order_id": brokerageOrderID},
	}, opts...)
}

// Quotes returns live quotes for symbols through the account's brokerage.
// With useTicker the symbols are tickers rather than universal symbol IDs.
func (c *Client) Quotes(ctx context.Context, user User, accountID string, symbols []string, useTicker bool, opts ...RequestOption) (*Response[[]Quote], error) {
	if len(symbols) == 0 {
		return nil, &Error{Kind: KindInvalidRequest, Err: errors.New("at least one symbol required")}
	}
	var params Params
	params.Add("symbols", strings.Join(symbols, ","))
	if useTicker {
		params.Add("use_ticker", strconv.FormatBool(useTicker))
	}
	return do[[]Quote](ctx, c, &Request{
		Method:   http.MethodGet,
		Endpoint: accountPath(accountID, "/quotes"),
		User:     &user,
		Params:   params,
	}, opts...)
}

// OrderImpact validates a trade and returns its projected effect. The trade
// ID in the result is passed to PlaceOrder.
func (c *Client) OrderImpact(ctx context.Context, user User, order OrderRequest, opts ...RequestOption) (*Response[OrderImpact], error) {
	return do[OrderImpact](ctx, c, &Request{
		Method:   http.MethodPost,
		Endpoint: "/api/v1/trade/impact",
		User:     &user,
		Body:     order,
	}, opts...)
}

// PlaceOrder places a trade previously validated by OrderImpact.
func (c *Client) PlaceOrder(ctx context.Context, user User, tradeID string, opts ...RequestOption) (*Response[Order], error) {
	return do[Order](ctx, c, &Request{
		Method:   http.MethodPost,
		Endpoint: "/api/v1/trade/" + url.PathEscape(tradeID),
		User:     &user,
	}, opts...)
}

// PlaceForceOrder places a trade without validation.
func (c *Client) PlaceForceOrder(ctx context.Context, user User, order OrderRequest, opts ...RequestOption) (*Response[Order], error) {
	return do[Order](ctx, c, &Request{
		Method:   http.MethodPost,
		Endpoint: "/api/v1/trade/place",
		User:     &user,
		Body:     order,
	}, opts...)
}
