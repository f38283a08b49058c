package authsdk

// ============================================================================
// Error Types
// ============================================================================

// ErrorResponse is the JSON body of every error reply.
// Client code should use the APIError type from errors.go instead.
type ErrorResponse struct {
	// Error is the error code (e.g., "invalid_request", "invalid_token")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`
}

// ============================================================================
// Protocol Types
// ============================================================================

// PublicInputs are the public signals the proof was generated against. The
// server checks each one against the nonce it issued and, on login, against
// the stored commitment.
type PublicInputs struct {
	Nonce      string `json:"nonce" example:"Qx3v8y0m2i6QpJ8o0p3nE6bTzq4W2h1kX9uL5dVcA7s"`
	OriginHash string `json:"origin_hash" example:"3f1b9c4a2c0e5f0a7d6e8b9c1a2d3e4f5a6b7c8d9e0f1a2b3c4d5e6f7a8b9c0d"`
	Tau        int    `json:"tau" example:"400"`
	Timestamp  int64  `json:"timestamp" example:"1760601600"`

	// C is the commitment to the keystroke template as a canonical decimal string.
	C string `json:"C" example:"1234567890123456789"`

	// Sig binds the proof to the challenge; it is a decimal field element.
	Sig string `json:"sig" example:"987654321"`
}

// Proof is a Groth16 proof in snarkjs JSON layout.
type Proof struct {
	PiA      []string   `json:"pi_a"`
	PiB      [][]string `json:"pi_b"`
	PiC      []string   `json:"pi_c"`
	Protocol string     `json:"protocol,omitempty" example:"groth16"`
	Curve    string     `json:"curve,omitempty" example:"bn128"`
}

// ChallengeResponse is returned by both start endpoints. Commitment is only
// set on login.
type ChallengeResponse struct {
	Challenge  string `json:"challenge" example:"k3Jd8sLq0ZxV2nB7mP4tR9wY1cF6hG5aQeU3iO8pS0dT2vXz"`
	Nonce      string `json:"nonce"`
	OriginHash string `json:"origin_hash"`
	Tau        int    `json:"tau" example:"400"`
	Timestamp  int64  `json:"timestamp" example:"1760601600"`
	Commitment string `json:"commitment,omitempty"`
}

// EnrollFinishRequest is the body of POST /api/enroll/finish.
type EnrollFinishRequest struct {
	Commitment   string       `json:"commitment"`
	PublicInputs PublicInputs `json:"public_inputs"`
	Proof        Proof        `json:"proof"`
}

// EnrollFinishResponse is returned once the commitment is stored.
type EnrollFinishResponse struct {
	Success bool   `json:"success" example:"true"`
	UserID  string `json:"user_id" example:"1b4e28ba-2fa1-41d2-883f-0016d3cca427"`
}

// LoginFinishRequest is the body of POST /api/login/finish.
type LoginFinishRequest struct {
	PublicInputs PublicInputs `json:"public_inputs"`
	Proof        Proof        `json:"proof"`
}

// LoginFinishResponse carries the issued session token.
type LoginFinishResponse struct {
	Success   bool   `json:"success" example:"true"`
	Token     string `json:"token"`
	TokenType string `json:"token_type" example:"Bearer"`
	ExpiresIn int    `json:"expires_in" example:"3600"`
}

// SuccessResponse is returned by logout.
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}

// SessionResponse describes the caller's session.
type SessionResponse struct {
	UserID string `json:"user_id" example:"1b4e28ba-2fa1-41d2-883f-0016d3cca427"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the database connection status
	Database string `json:"database"`

	// Verifier indicates whether proofs can currently be verified
	Verifier string `json:"verifier"`
}
