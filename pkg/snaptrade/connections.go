package snaptrade

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

func authorizationPath(authorizationID string) string {
	return "/api/v1/authorizations/" + url.PathEscape(authorizationID)
}

// Authorizations lists the user's brokerage connections.
func (c *Client) Authorizations(ctx context.Context, user User, opts ...RequestOption) (*Response[[]Authorization], error) {
	return do[[]Authorization](ctx, c, &Request{Method: http.MethodGet, Endpoint: "/api/v1/authorizations", User: &user}, opts...)
}

func (c *Client) Authorization(ctx context.Context, user User, authorizationID string, opts ...RequestOption) (*Response[Authorization], error) {
	return do[Authorization](ctx, c, &Request{Method: http.MethodGet, Endpoint: authorizationPath(authorizationID), User: &user}, opts...)
}

// DeleteAuthorization removes a brokerage connection. The API answers with
// an empty body, so Data is usually empty.
func (c *Client) DeleteAuthorization(ctx context.Context, user User, authorizationID string, opts ...RequestOption) (*Response[json.RawMessage], error) {
	return do[json.RawMessage](ctx, c, &Request{Method: http.MethodDelete, Endpoint: authorizationPath(authorizationID), User: &user}, opts...)
}
