package snaptrade

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

func accountPath(accountID, suffix string) string {
	return "/api/v1/accounts/" + url.PathEscape(accountID) + suffix
}

// UserHoldings returns holdings for every account of user, optionally limited
// to the given brokerage authorizations.
func (c *Client) UserHoldings(ctx context.Context, user User, authorizationIDs []string, opts ...RequestOption) (*Response[[]Holdings], error) {
	var params Params
	if len(authorizationIDs) > 0 {
		params.Add("brokerage_authorizations", strings.Join(authorizationIDs, ","))
	}
	return do[[]Holdings](ctx, c, &Request{
		Method:   http.MethodGet,
		Endpoint: "/api/v1/holdings",
		User:     &user,
		Params:   params,
	}, opts...)
}

// ListAccounts returns every investment account of user.
func (c *Client) ListAccounts(ctx context.Context, user User, opts ...RequestOption) (*Response[[]Account], error) {
	return do[[]Account](ctx, c, &Request{Method: http.MethodGet, Endpoint: "/api/v1/accounts", User: &user}, opts...)
}

func (c *Client) Account(ctx context.Context, user User, accountID string, opts ...RequestOption) (*Response[Account], error) {
	return do[Account](ctx, c, &Request{Method: http.MethodGet, Endpoint: accountPath(accountID, ""), User: &user}, opts...)
}

func (c *Client) AccountHoldings(ctx context.Context, user User, accountID string, opts ...RequestOption) (*Response[Holdings], error) {
	return do[Holdings](ctx, c, &Request{Method: http.MethodGet, Endpoint: accountPath(accountID, "/holdings"), User: &user}, opts...)
}

func (c *Client) AccountBalances(ctx context.Context, user User, accountID string, opts ...RequestOption) (*Response[[]Balance], error) {
	return do[[]Balance](ctx, c, &Request{Method: http.MethodGet, Endpoint: accountPath(accountID, "/balances"), User: &user}, opts...)
}

func (c *Client) AccountPositions(ctx context.Context, user User, accountID string, opts ...RequestOption) (*Response[[]Position], error) {
	return do[[]Position](ctx, c, &Request{Method: http.MethodGet, Endpoint: accountPath(accountID, "/positions"), User: &user}, opts...)
}

// AccountOrders returns the order history of an account.
func (c *Client) AccountOrders(ctx context.Context, user User, accountID string, filter OrderFilter, opts ...RequestOption) (*Response[[]Order], error) {
	var params Params
	if filter.Status != "" {
		params.Add("status", filter.Status)
	}
	if filter.Days > 0 {
		params.Add("days", strconv.Itoa(filter.Days))
	}
	return do[[]Order](ctx, c, &Request{
		Method:   http.MethodGet,
		Endpoint: accountPath(accountID, "/orders"),
		User:     &user,
		Params:   params,
	}, opts...)
}
