package authsdk

import (
	"context"
	"net/http"
)

// Logout revokes token. Revoking an already revoked token succeeds.
func (c *SDKClient) Logout(ctx context.Context, token string) error {
	resp, err := c.postJSON(ctx, "/api/logout", nil, token)
	if err != nil {
		return err
	}

	var out SuccessResponse
	return decodeJSON(resp, &out, http.StatusOK)
}

// Session returns the user the token was issued to.
func (c *SDKClient) Session(ctx context.Context, token string) (*SessionResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/session", nil, token)
	if err != nil {
		return nil, err
	}

	var out SessionResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
