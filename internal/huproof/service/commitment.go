package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/huproof/internal/huproof/domain"
	"github.com/aussiebroadwan/huproof/internal/huproof/store"
	"github.com/aussiebroadwan/huproof/pkg/idx"
)

// CommitmentService manages per-(user, origin) template commitments.
type CommitmentService struct {
	Store store.Store
}

func (s *CommitmentService) GetActive(ctx context.Context, userID, originHash string) (domain.Commitment, error) {
	c, err := s.Store.Commitments().GetActiveCommitment(ctx, userID, originHash)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Commitment{}, ErrNotFound
	}
	return c, err
}

// Create inserts a new active commitment. Existing rows are never touched,
// so a second active commitment for the same user and origin fails with
// store.ErrAlreadyExists.
func (s *CommitmentService) Create(ctx context.Context, userID, originHash, value string, tau int, vkeyID string) (domain.Commitment, error) {
	return s.create(ctx, s.Store, userID, originHash, value, tau, vkeyID)
}

func (s *CommitmentService) create(ctx context.Context, st store.Store, userID, originHash, value string, tau int, vkeyID string) (domain.Commitment, error) {
	canonical, err := domain.CanonicalDecimal(value)
	if err != nil {
		return domain.Commitment{}, err
	}

	now := domain.Now()
	c := domain.Commitment{
		ID:         idx.NewAt(now).String(),
		UserID:     userID,
		OriginHash: originHash,
		Value:      canonical,
		Tau:        tau,
		VKeyID:     vkeyID,
		Active:     true,
		CreatedAt:  now,
	}
	if err := st.Commitments().CreateCommitment(ctx, c); err != nil {
		return domain.Commitment{}, fmt.Errorf("create commitment: %w", err)
	}
	return c, nil
}

func (s *CommitmentService) Deactivate(ctx context.Context, id string) error {
	err := s.Store.Commitments().DeactivateCommitment(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// Matches compares two canonical decimal strings in constant time.
func (s *CommitmentService) Matches(stored, presented string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}
