package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/huproof/internal/huproof/service"
	"github.com/aussiebroadwan/huproof/pkg/authsdk"
	"github.com/aussiebroadwan/huproof/pkg/httpx"
	"github.com/aussiebroadwan/huproof/pkg/slogx"
)

// LogoutHandler serves POST /api/logout. Revoking an unknown, expired or
// already revoked token succeeds.
type LogoutHandler struct {
	SessionService *service.SessionService
}

// ServeHTTP godoc
//
//	@Summary		Log out
//	@Description	Revokes the bearer session token. Idempotent; expired tokens are still revoked.
//	@Tags			Session
//	@Produce		json
//	@Security		BearerAuth
//	@Param			Origin	header		string	true	"Web origin of the client"
//	@Success		200		{object}	authsdk.SuccessResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid_request - token has no jti"
//	@Failure		401		{object}	authsdk.ErrorResponse	"invalid_token"
//	@Failure		403		{object}	authsdk.ErrorResponse	"invalid_origin"
//	@Failure		429		{object}	authsdk.ErrorResponse	"rate_limit_exceeded"
//	@Router			/api/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, err := httpx.BearerToken(r)
	if err != nil {
		httpx.WriteBearerError(w, "missing bearer token")
		return
	}

	if err := h.SessionService.Revoke(ctx, token); err != nil {
		if errors.Is(err, service.ErrTokenMalformed) {
			slogx.FromContext(ctx).Info("logout with malformed token")
			authsdk.ErrInvalidRequest.WriteError(w)
			return
		}
		writeServiceError(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.SuccessResponse{Success: true})
}

// SessionHandler reports who the bearer token belongs to. It runs behind
// httpx.AuthnMiddleware.
type SessionHandler struct{}

// ServeHTTP godoc
//
//	@Summary		Current session
//	@Description	Returns the user id of a valid, unrevoked session token.
//	@Tags			Session
//	@Produce		json
//	@Security		BearerAuth
//	@Param			Origin	header		string	true	"Web origin of the client"
//	@Success		200		{object}	authsdk.SessionResponse
//	@Failure		401		{object}	authsdk.ErrorResponse	"invalid_token"
//	@Failure		403		{object}	authsdk.ErrorResponse	"invalid_origin"
//	@Router			/api/session [get].
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserIDFromContext(r.Context())
	if !ok {
		httpx.WriteBearerError(w, "missing session")
		return
	}
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.SessionResponse{UserID: userID})
}
