package snaptrade

import (
	"context"
	"errors"
	"net/http"
)

// APIStatus reports whether the API is online.
func (c *Client) APIStatus(ctx context.Context, opts ...RequestOption) (*Response[APIStatus], error) {
	return do[APIStatus](ctx, c, &Request{Method: http.MethodGet, Endpoint: "/api/v1/"}, opts...)
}

type registerUserBody struct {
	UserID       string `json:"userId"`
	RSAPublicKey string `json:"rsaPublicKey,omitempty"`
}

// RegisterUser creates an end user under the partner. The returned secret is
// needed for every user-scoped call.
func (c *Client) RegisterUser(ctx context.Context, userID string, opts ...RequestOption) (*Response[RegisteredUser], error) {
	return c.RegisterUserWithKey(ctx, userID, "", opts...)
}

// RegisterUserWithKey is RegisterUser with the user's RSA public key, which
// the API uses to encrypt the token returned by EncryptedJWT. An empty key is
// left out of the body.
func (c *Client) RegisterUserWithKey(ctx context.Context, userID, rsaPublicKey string, opts ...RequestOption) (*Response[RegisteredUser], error) {
	if userID == "" {
		return nil, &Error{Kind: KindInvalidRequest, Err: errors.New("user ID required")}
	}
	return do[RegisteredUser](ctx, c, &Request{
		Method:   http.MethodPost,
		Endpoint: "/api/v1/snapTrade/registerUser",
		Body:     registerUserBody{UserID: userID, RSAPublicKey: rsaPublicKey},
	}, opts...)
}

// DeleteUser removes the user and every brokerage authorization it holds.
func (c *Client) DeleteUser(ctx context.Context, user User, opts ...RequestOption) (*Response[DeletedUser], error) {
	return do[DeletedUser](ctx, c, &Request{
		Method:   http.MethodPost,
		Endpoint: "/api/v1/snapTrade/deleteUser",
		User:     &user,
	}, opts...)
}

// ListUsers returns the IDs of every user registered by the partner.
func (c *Client) ListUsers(ctx context.Context, opts ...RequestOption) (*Response[[]string], error) {
	return do[[]string](ctx, c, &Request{Method: http.MethodGet, Endpoint: "/api/v1/snapTrade/listUsers"}, opts...)
}

// LoginRedirectURI returns a link into the connection portal for user.
func (c *Client) LoginRedirectURI(ctx context.Context, user User, login LoginOptions, opts ...RequestOption) (*Response[LoginRedirect], error) {
	var body any
	if login != (LoginOptions{}) {
		body = login
	}
	return do[LoginRedirect](ctx, c, &Request{
		Method:   http.MethodPost,
		Endpoint: "/api/v1/snapTrade/login",
		User:     &user,
		Body:     body,
	}, opts...)
}

// EncryptedJWT returns the user's token encrypted for the partner.
func (c *Client) EncryptedJWT(ctx context.Context, user User, opts ...RequestOption) (*Response[EncryptedJWT], error) {
	return do[EncryptedJWT](ctx, c, &Request{
		Method:   http.MethodGet,
		Endpoint: "/api/v1/snapTrade/encryptedJWT",
		User:     &user,
	}, opts...)
}

// PartnerData returns the partner's own configuration.
func (c *Client) PartnerData(ctx context.Context, opts ...RequestOption) (*Response[PartnerData], error) {
	return do[PartnerData](ctx, c, &Request{Method: http.MethodGet, Endpoint: "/api/v1/snapTrade/partners/"}, opts...)
}
