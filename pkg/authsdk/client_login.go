package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// LoginStart asks for a login challenge for userID. The reply carries the
// stored commitment and tau the proof must be generated against.
func (c *SDKClient) LoginStart(ctx context.Context, userID string) (*ChallengeResponse, error) {
	path := "/api/login/start?" + url.Values{"user_id": {userID}}.Encode()
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}

	var out ChallengeResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// LoginFinish submits the proof and returns the session token.
func (c *SDKClient) LoginFinish(ctx context.Context, req LoginFinishRequest) (*LoginFinishResponse, error) {
	resp, err := c.postJSON(ctx, "/api/login/finish", req, "")
	if err != nil {
		return nil, err
	}

	var out LoginFinishResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
