package http

import (
	"net/http"

	"github.com/aussiebroadwan/huproof/internal/huproof/domain"
	"github.com/aussiebroadwan/huproof/internal/huproof/service"
	"github.com/aussiebroadwan/huproof/pkg/authsdk"
	"github.com/aussiebroadwan/huproof/pkg/httpx"
)

// LoginHandler serves the login flow.
type LoginHandler struct {
	LoginService *service.LoginService
	OriginHash   string
}

// HandleStart godoc
//
//	@Summary		Start login
//	@Description	Issues a login challenge for a user with an active commitment on this origin.
//	@Description	Unknown users and users without a commitment both get 404.
//	@Tags			Login
//	@Produce		json
//	@Param			Origin	header		string	true	"Web origin of the client"
//	@Param			user_id	query		string	true	"User id returned by enrollment"
//	@Success		200		{object}	authsdk.ChallengeResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid_request"
//	@Failure		403		{object}	authsdk.ErrorResponse	"invalid_origin"
//	@Failure		404		{object}	authsdk.ErrorResponse	"not_found"
//	@Failure		429		{object}	authsdk.ErrorResponse	"rate_limit_exceeded"
//	@Router			/api/login/start [get].
func (h *LoginHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ch, err := h.LoginService.Start(r.Context(), r.URL.Query().Get("user_id"), h.OriginHash)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toChallengeResponse(ch))
}

// HandleFinish godoc
//
//	@Summary		Complete login
//	@Description	Submits a proof over the login challenge and returns a session token.
//	@Tags			Login
//	@Accept			json
//	@Produce		json
//	@Param			Origin	header		string						true	"Web origin of the client"
//	@Param			body	body		authsdk.LoginFinishRequest	true	"Public inputs and proof"
//	@Success		200		{object}	authsdk.LoginFinishResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid_request"
//	@Failure		403		{object}	authsdk.ErrorResponse	"invalid_origin"
//	@Failure		429		{object}	authsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		503		{object}	authsdk.ErrorResponse	"verification_unavailable"
//	@Header			200		{string}	Cache-Control	"no-store"
//	@Router			/api/login/finish [post].
func (h *LoginHandler) HandleFinish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body authsdk.LoginFinishRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	in, err := toPublicInputs(body.PublicInputs)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	p, err := toProof(body.Proof)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	sess, err := h.LoginService.Finish(ctx, h.OriginHash, domain.NewLoginFinish(in, p))
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginFinishResponse{
		Success:   true,
		Token:     sess.Token,
		TokenType: "Bearer",
		ExpiresIn: int(sess.ExpiresIn),
	})
}
