package snaptrade

import (
	"context"
	"net/http"
	"net/url"
)

func portfolioGroupPath(groupID, suffix string) string {
	return "/api/v1/portfolioGroups/" + url.PathEscape(groupID) + suffix
}

func (c *Client) PortfolioGroups(ctx context.Context, user User, opts ...RequestOption) (*Response[[]PortfolioGroup], error) {
	return do[[]PortfolioGroup](ctx, c, &Request{Method: http.MethodGet, Endpoint: "/api/v1/portfolioGroups", User: &user}, opts...)
}

func (c *Client) PortfolioGroupPositions(ctx context.Context, user User, groupID string, opts ...RequestOption) (*Response[[]PortfolioGroupPosition], error) {
	return do[[]PortfolioGroupPosition](ctx, c, &Request{
		Method:   http.MethodGet,
		Endpoint: portfolioGroupPath(groupID, "/positions"),
		User:     &user,
	}, opts...)
}

// CalculatedTradeImpacts returns the trades computed for a rebalance.
func (c *Client) CalculatedTradeImpacts(ctx context.Context, user User, groupID, calculatedTradeID string, opts ...RequestOption) (*Response[CalculatedTrade], error) {
	return do[CalculatedTrade](ctx, c, &Request{
		Method:   http.MethodGet,
		Endpoint: portfolioGroupPath(groupID, "/calculatedtrades/"+url.PathEscape(calculatedTradeID)),
		User:     &user,
	}, opts...)
}
