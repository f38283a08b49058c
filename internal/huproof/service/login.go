package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/huproof/internal/huproof/domain"
	"github.com/aussiebroadwan/huproof/internal/huproof/store"
	"github.com/aussiebroadwan/huproof/pkg/slogx"
)

// LoginService runs the login flow: start binds a login nonce to a user with
// an active commitment, finish exchanges a verified proof for a session.
type LoginService struct {
	Store       store.Store
	Nonces      *NonceLedger
	Commitments *CommitmentService
	Sessions    *SessionService
	Gate        *Gate
	Events      EventPublisher
}

// Start returns ErrNotFound both for unknown users and for users with no
// active commitment on this origin.
func (s *LoginService) Start(ctx context.Context, userID, originHash string) (Challenge, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return Challenge{}, err
	}
	if err := domain.ValidateOriginHash(originHash); err != nil {
		return Challenge{}, err
	}

	c, err := s.Commitments.GetActive(ctx, userID, originHash)
	if err != nil {
		return Challenge{}, err
	}

	n, err := s.Nonces.Issue(ctx, domain.PurposeLogin, originHash, userID, 0)
	if err != nil {
		return Challenge{}, err
	}

	ch, err := newChallenge(n, c.Tau)
	if err != nil {
		return Challenge{}, err
	}
	ch.Commitment = c.Value
	return ch, nil
}

// Finish completes a login. The session row is written in the same
// transaction that consumes the nonce.
func (s *LoginService) Finish(ctx context.Context, originHash string, req domain.LoginFinish) (IssuedSession, error) {
	log := slogx.FromContext(ctx)

	r, err := s.Nonces.Reserve(ctx, req.Inputs.Nonce, domain.PurposeLogin)
	if err != nil {
		log.InfoContext(ctx, "login finish rejected", slog.String("nonce_reason", nonceReason(err)))
		return IssuedSession{}, err
	}

	userID := r.Nonce.UserID
	if err := s.check(ctx, originHash, r.Nonce, req); err != nil {
		log.InfoContext(ctx, "login finish rejected", slog.String("reason", err.Error()))
		burn(ctx, s.Nonces, r)
		return IssuedSession{}, err
	}

	if err := s.Gate.Check(ctx, req.Inputs, req.Proof); err != nil {
		return IssuedSession{}, settleGateFailure(ctx, s.Nonces, r, err)
	}

	var issued IssuedSession
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := s.Nonces.consumeReserved(ctx, tx, r); err != nil {
			return err
		}
		var err error
		issued, err = s.Sessions.issue(ctx, tx, userID, 0)
		return err
	})
	if err != nil {
		release(ctx, s.Nonces, r)
		if !errors.Is(err, ErrInvalidNonce) {
			log.ErrorContext(ctx, "login finalize failed", slog.Any("error", err))
		}
		return IssuedSession{}, err
	}

	log.InfoContext(ctx, "session issued", slog.String("user_id", userID), slog.String("jti", issued.JTI))
	publish(ctx, s.Events, domain.Event{
		Type:       domain.EventSessionIssued,
		UserID:     userID,
		JTI:        issued.JTI,
		OriginHash: originHash,
	})
	return issued, nil
}

func (s *LoginService) check(ctx context.Context, originHash string, n domain.Nonce, req domain.LoginFinish) error {
	if n.UserID == "" {
		return ErrInvalidNonce
	}
	if err := checkBinding(originHash, n, req.Inputs); err != nil {
		return err
	}

	c, err := s.Commitments.GetActive(ctx, n.UserID, originHash)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrCommitmentMismatch
		}
		return err
	}
	if req.Inputs.Tau != c.Tau {
		return ErrTauMismatch
	}
	if !s.Commitments.Matches(c.Value, req.Inputs.C) {
		return ErrCommitmentMismatch
	}
	return nil
}
