package http

import (
	"net/http"

	"github.com/aussiebroadwan/huproof/internal/huproof/domain"
	"github.com/aussiebroadwan/huproof/internal/huproof/service"
	"github.com/aussiebroadwan/huproof/pkg/authsdk"
	"github.com/aussiebroadwan/huproof/pkg/httpx"
)

// EnrollHandler serves the enrollment flow.
type EnrollHandler struct {
	EnrollmentService *service.EnrollmentService
	OriginHash        string
}

// HandleStart godoc
//
//	@Summary		Start enrollment
//	@Description	Issues an enrollment challenge bound to the server origin.
//	@Tags			Enrollment
//	@Produce		json
//	@Param			Origin	header		string	true	"Web origin of the client"
//	@Success		200		{object}	authsdk.ChallengeResponse
//	@Failure		403		{object}	authsdk.ErrorResponse	"invalid_origin"
//	@Failure		429		{object}	authsdk.ErrorResponse	"rate_limit_exceeded"
//	@Router			/api/enroll/start [get].
func (h *EnrollHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ch, err := h.EnrollmentService.Start(r.Context(), h.OriginHash)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toChallengeResponse(ch))
}

// HandleFinish godoc
//
//	@Summary		Complete enrollment
//	@Description	Submits the template commitment and a proof over the enrollment challenge. Returns the new user id.
//	@Description	Every rejection has the same invalid_request shape. Only verification_unavailable may be retried with the same body.
//	@Tags			Enrollment
//	@Accept			json
//	@Produce		json
//	@Param			Origin	header		string						true	"Web origin of the client"
//	@Param			body	body		authsdk.EnrollFinishRequest	true	"Commitment, public inputs and proof"
//	@Success		200		{object}	authsdk.EnrollFinishResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid_request"
//	@Failure		403		{object}	authsdk.ErrorResponse	"invalid_origin"
//	@Failure		429		{object}	authsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		503		{object}	authsdk.ErrorResponse	"verification_unavailable"
//	@Router			/api/enroll/finish [post].
func (h *EnrollHandler) HandleFinish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body authsdk.EnrollFinishRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	req, err := toEnrollFinish(body)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	userID, err := h.EnrollmentService.Finish(ctx, h.OriginHash, req)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.EnrollFinishResponse{Success: true, UserID: userID})
}

func toEnrollFinish(body authsdk.EnrollFinishRequest) (domain.EnrollFinish, error) {
	in, err := toPublicInputs(body.PublicInputs)
	if err != nil {
		return domain.EnrollFinish{}, err
	}
	p, err := toProof(body.Proof)
	if err != nil {
		return domain.EnrollFinish{}, err
	}
	return domain.NewEnrollFinish(body.Commitment, in, p)
}
