package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/huproof/internal/huproof/domain"
	"github.com/aussiebroadwan/huproof/internal/huproof/service"
	"github.com/aussiebroadwan/huproof/pkg/authsdk"
	"github.com/aussiebroadwan/huproof/pkg/httpx"
	"github.com/aussiebroadwan/huproof/pkg/slogx"
)

const (
	maxBodyBytes = 64 << 10

	// retryAfterSeconds is sent with verification_unavailable.
	retryAfterSeconds = 5
)

// writeServiceError maps service errors to the generic external replies.
// The cause is logged, never returned to the caller.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	log := slogx.FromContext(ctx)

	switch {
	case errors.Is(err, service.ErrProofUnavailable):
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
		authsdk.ErrVerificationUnavailable.WriteError(w)
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, service.ErrInvalidNonce),
		errors.Is(err, service.ErrRejected):
		log.Info("request rejected", "reason", err.Error())
		authsdk.ErrInvalidRequest.WriteError(w)
	case errors.Is(err, service.ErrNotFound):
		authsdk.ErrNotFound.WriteError(w)
	case service.IsUnauthorized(err):
		httpx.WriteBearerError(w, "token verification failed")
	default:
		log.Error("request failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
	}
}

// decodeJSON reads one JSON object of at most maxBodyBytes. Unknown fields
// and trailing data are errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data", domain.ErrValidation)
	}
	return nil
}

func toPublicInputs(in authsdk.PublicInputs) (domain.PublicInputs, error) {
	return domain.NewPublicInputs(in.Nonce, in.OriginHash, in.Tau, in.Timestamp, in.C, in.Sig)
}

func toProof(p authsdk.Proof) (domain.Proof, error) {
	return domain.NewProof(p.PiA, p.PiB, p.PiC, p.Protocol, p.Curve)
}

func toChallengeResponse(ch service.Challenge) authsdk.ChallengeResponse {
	return authsdk.ChallengeResponse{
		Challenge:  ch.Challenge,
		Nonce:      ch.Nonce,
		OriginHash: ch.OriginHash,
		Tau:        ch.Tau,
		Timestamp:  ch.Timestamp,
		Commitment: ch.Commitment,
	}
}
