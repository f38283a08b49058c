package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/huproof/internal/huproof/domain"
	"github.com/aussiebroadwan/huproof/internal/huproof/store"
	"github.com/aussiebroadwan/huproof/pkg/slogx"
)

// EnrollmentService runs the enrollment flow: start issues an enroll nonce,
// finish turns a verified proof into a user with one active commitment.
type EnrollmentService struct {
	Store       store.Store
	Nonces      *NonceLedger
	Commitments *CommitmentService
	Gate        *Gate
	Events      EventPublisher

	TauDefault int
	TauMax     int
}

func (s *EnrollmentService) Start(ctx context.Context, originHash string) (Challenge, error) {
	if err := domain.ValidateOriginHash(originHash); err != nil {
		return Challenge{}, err
	}

	n, err := s.Nonces.Issue(ctx, domain.PurposeEnroll, originHash, "", 0)
	if err != nil {
		return Challenge{}, err
	}
	return newChallenge(n, s.tauDefault())
}

// Finish completes an enrollment and returns the new user id.
//
// The nonce is reserved first, the proof is verified with no transaction
// open, and only then are nonce consumption, the user and the commitment
// committed together. Every failure after the reservation releases the
// nonce: it is only ever consumed alongside a new user, and an abandoned
// one goes inert at expiry.
func (s *EnrollmentService) Finish(ctx context.Context, originHash string, req domain.EnrollFinish) (string, error) {
	log := slogx.FromContext(ctx)

	r, err := s.Nonces.Reserve(ctx, req.Inputs.Nonce, domain.PurposeEnroll)
	if err != nil {
		log.InfoContext(ctx, "enroll finish rejected", slog.String("nonce_reason", nonceReason(err)))
		return "", err
	}

	if err := s.check(originHash, r.Nonce, req); err != nil {
		log.InfoContext(ctx, "enroll finish rejected", slog.String("reason", err.Error()))
		release(ctx, s.Nonces, r)
		return "", err
	}

	if err := s.Gate.Check(ctx, req.Inputs, req.Proof); err != nil {
		logGateFailure(ctx, err)
		release(ctx, s.Nonces, r)
		return "", err
	}

	userID := domain.NewUserID()
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := s.Nonces.consumeReserved(ctx, tx, r); err != nil {
			return err
		}
		if err := tx.Users().CreateUser(ctx, domain.User{ID: userID, CreatedAt: domain.Now()}); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		_, err := s.Commitments.create(ctx, tx, userID, originHash, req.Commitment, req.Inputs.Tau, s.Gate.KeyID)
		return err
	})
	if err != nil {
		release(ctx, s.Nonces, r)
		if !errors.Is(err, ErrInvalidNonce) {
			log.ErrorContext(ctx, "enroll finalize failed", slog.Any("error", err))
		}
		return "", err
	}

	log.InfoContext(ctx, "user enrolled", slog.String("user_id", userID))
	publish(ctx, s.Events, domain.Event{
		Type:       domain.EventUserEnrolled,
		UserID:     userID,
		OriginHash: originHash,
	})
	return userID, nil
}

func (s *EnrollmentService) check(originHash string, n domain.Nonce, req domain.EnrollFinish) error {
	if err := checkBinding(originHash, n, req.Inputs); err != nil {
		return err
	}
	if !s.Commitments.Matches(req.Commitment, req.Inputs.C) {
		return ErrCommitmentMismatch
	}
	if req.Inputs.Tau < s.tauDefault() || req.Inputs.Tau > s.tauMax() {
		return ErrTauMismatch
	}
	return nil
}

func (s *EnrollmentService) tauDefault() int {
	if s.TauDefault <= 0 {
		return DefaultTauDefault
	}
	return s.TauDefault
}

func (s *EnrollmentService) tauMax() int {
	if s.TauMax <= 0 {
		return DefaultTauMax
	}
	return s.TauMax
}

// compensationTimeout bounds a release or burn. Both run detached from
// request cancellation.
const compensationTimeout = 5 * time.Second

// settleGateFailure releases the nonce when the verifier was unavailable and
// burns it when the proof was rejected.
func settleGateFailure(ctx context.Context, nonces *NonceLedger, r Reservation, err error) error {
	logGateFailure(ctx, err)
	if errors.Is(err, ErrProofUnavailable) {
		release(ctx, nonces, r)
		return err
	}
	burn(ctx, nonces, r)
	return err
}

func logGateFailure(ctx context.Context, err error) {
	log := slogx.FromContext(ctx)
	if errors.Is(err, ErrProofUnavailable) {
		log.WarnContext(ctx, "proof verification unavailable", slog.String("gate", "unavailable"), slog.Any("error", err))
		return
	}
	log.InfoContext(ctx, "proof rejected", slog.String("gate", "rejected"))
}

func compensationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
}

func release(ctx context.Context, nonces *NonceLedger, r Reservation) {
	cctx, cancel := compensationContext(ctx)
	defer cancel()
	if err := nonces.Release(cctx, r); err != nil {
		slogx.FromContext(ctx).ErrorContext(ctx, "nonce release failed", slog.Any("error", err))
	}
}

func burn(ctx context.Context, nonces *NonceLedger, r Reservation) {
	cctx, cancel := compensationContext(ctx)
	defer cancel()
	if err := nonces.Burn(cctx, r); err != nil && !errors.Is(err, ErrInvalidNonce) {
		slogx.FromContext(ctx).ErrorContext(ctx, "nonce burn failed", slog.Any("error", err))
	}
}
