package authsdk

import (
	"context"
	"net/http"
)

// EnrollStart asks for an enrollment challenge.
func (c *SDKClient) EnrollStart(ctx context.Context) (*ChallengeResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/enroll/start", nil, "")
	if err != nil {
		return nil, err
	}

	var out ChallengeResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// EnrollFinish submits the commitment and its proof. On success the new
// user id is returned.
func (c *SDKClient) EnrollFinish(ctx context.Context, req EnrollFinishRequest) (*EnrollFinishResponse, error) {
	resp, err := c.postJSON(ctx, "/api/enroll/finish", req, "")
	if err != nil {
		return nil, err
	}

	var out EnrollFinishResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
