package authsdk

import (
	"net/http"
	"strings"
	"time"
)

// SDKClient talks to a huproof service on behalf of one web origin.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// Origin is sent as the Origin header on every /api call. The service
	// rejects calls whose origin does not match its configured ORIGIN.
	Origin string
}

// NewSDKClient creates a new client. Verification can be slow, so the
// timeout is generous.
func NewSDKClient(baseURL, origin string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		Origin: strings.TrimSuffix(origin, "/"),
	}
}
