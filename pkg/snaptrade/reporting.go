package snaptrade

import (
	"context"
	"net/http"
	"strconv"
	"strings"
)

// Activities returns transaction history across the user's accounts.
func (c *Client) Activities(ctx context.Context, user User, filter ActivityFilter, opts ...RequestOption) (*Response[[]Activity], error) {
	var params Params
	if filter.StartDate != "" {
		params.Add("startDate", filter.StartDate)
	}
	if filter.EndDate != "" {
		params.Add("endDate", filter.EndDate)
	}
	if len(filter.Accounts) > 0 {
		params.Add("accounts", strings.Join(filter.Accounts, ","))
	}
	return do[[]Activity](ctx, c, &Request{
		Method:   http.MethodGet,
		Endpoint: "/api/v1/activities",
		User:     &user,
		Params:   params,
	}, opts...)
}

// Performance returns return and contribution figures for a window.
func (c *Client) Performance(ctx context.Context, user User, filter PerformanceFilter, opts ...RequestOption) (*Response[Performance], error) {
	var params Params
	params.Add("startDate", filter.StartDate)
	params.Add("endDate", filter.EndDate)
	if len(filter.Accounts) > 0 {
		params.Add("accounts", strings.Join(filter.Accounts, ","))
	}
	if filter.Detailed {
		params.Add("detailed", strconv.FormatBool(filter.Detailed))
	}
	if filter.Frequency != "" {
		params.Add("frequency", filter.Frequency)
	}
	return do[Performance](ctx, c, &Request{
		Method:   http.MethodGet,
		Endpoint: "/api/v1/performance/custom",
		User:     &user,
		Params:   params,
	}, opts...)
}
