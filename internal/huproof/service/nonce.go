package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/huproof/internal/huproof/domain"
	"github.com/aussiebroadwan/huproof/internal/huproof/store"
	"github.com/aussiebroadwan/huproof/pkg/cryptox"
	"github.com/aussiebroadwan/huproof/pkg/idx"
	"github.com/aussiebroadwan/huproof/pkg/slogx"
)

const (
	DefaultNonceTTL   = 120 * time.Second
	DefaultReserveFor = 30 * time.Second
)

// NonceLedger issues and consumes single-use challenge nonces. All state
// changes are conditional updates in the store; the ledger itself holds no
// mutable state.
type NonceLedger struct {
	Store store.Store
	TTL   time.Duration

	// ReserveFor is how long a finish call may hold a nonce while the proof
	// is verified. It must exceed the verification timeout.
	ReserveFor time.Duration
}

// Reservation is a temporary hold on a nonce taken by one finish call.
type Reservation struct {
	Nonce domain.Nonce
	Token string
}

// Issue creates a fresh nonce. ttl <= 0 uses the ledger's TTL.
func (l *NonceLedger) Issue(ctx context.Context, purpose domain.Purpose, originHash, userID string, ttl time.Duration) (domain.Nonce, error) {
	if !purpose.Valid() {
		return domain.Nonce{}, fmt.Errorf("%w: purpose %q", domain.ErrValidation, purpose)
	}
	if ttl <= 0 {
		ttl = l.ttl()
	}

	value, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.Nonce{}, err
	}

	now := domain.Now()
	n := domain.Nonce{
		ID:         idx.NewAt(now).String(),
		Value:      value,
		Purpose:    purpose,
		OriginHash: originHash,
		UserID:     userID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
	if err := l.Store.Nonces().CreateNonce(ctx, n); err != nil {
		return domain.Nonce{}, fmt.Errorf("create nonce: %w", err)
	}
	return n, nil
}

// ValidateAndConsume consumes a usable nonce and returns the user it was
// bound to, empty for enrollment nonces. Of N concurrent calls on the same
// value at most one succeeds.
func (l *NonceLedger) ValidateAndConsume(ctx context.Context, value string, purpose domain.Purpose) (string, error) {
	now := domain.Now()
	n, err := l.Store.Nonces().ConsumeNonce(ctx, value, purpose, now)
	if err == nil {
		return n.UserID, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("consume nonce: %w", err)
	}
	return "", l.classify(ctx, value, purpose, now)
}

// Reserve takes an exclusive, time-limited hold on a usable nonce. The
// holder must later consume it inside its finalize transaction, Burn it or
// Release it.
func (l *NonceLedger) Reserve(ctx context.Context, value string, purpose domain.Purpose) (Reservation, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return Reservation{}, err
	}

	now := domain.Now()
	n, err := l.Store.Nonces().ReserveNonce(ctx, value, purpose, token, now.Add(l.reserveFor()), now)
	if err == nil {
		return Reservation{Nonce: n, Token: token}, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return Reservation{}, fmt.Errorf("reserve nonce: %w", err)
	}
	return Reservation{}, l.classify(ctx, value, purpose, now)
}

// Release drops the hold so the same finish can be retried. A hold that was
// already lost is left alone.
func (l *NonceLedger) Release(ctx context.Context, r Reservation) error {
	return l.Store.Nonces().ReleaseNonce(ctx, r.Nonce.Value, r.Token)
}

// Burn consumes a reserved nonce without any downstream writes, ending the
// flow for that challenge.
func (l *NonceLedger) Burn(ctx context.Context, r Reservation) error {
	return l.consumeReserved(ctx, l.Store, r)
}

func (l *NonceLedger) consumeReserved(ctx context.Context, st store.Store, r Reservation) error {
	err := st.Nonces().ConsumeReservedNonce(ctx, r.Nonce.Value, r.Token, domain.Now())
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: reservation lost", ErrInvalidNonce)
	}
	return err
}

// classify explains a failed consume or reserve. It only reads, and only
// for logging; the returned error always wraps ErrInvalidNonce.
func (l *NonceLedger) classify(ctx context.Context, value string, purpose domain.Purpose, now time.Time) error {
	n, err := l.Store.Nonces().GetNonce(ctx, value)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slogx.FromContext(ctx).WarnContext(ctx, "nonce diagnostic read failed", "error", err)
		}
		return ErrNonceNotFound
	}

	switch {
	case n.Purpose != purpose:
		return ErrNonceNotFound
	case n.Consumed():
		return ErrNonceConsumed
	case n.Expired(now):
		return ErrNonceExpired
	case n.ReservedAt(now):
		return ErrNonceReserved
	default:
		// Became usable again between the update and the read.
		return ErrInvalidNonce
	}
}

func (l *NonceLedger) ttl() time.Duration {
	if l.TTL <= 0 {
		return DefaultNonceTTL
	}
	return l.TTL
}

func (l *NonceLedger) reserveFor() time.Duration {
	if l.ReserveFor <= 0 {
		return DefaultReserveFor
	}
	return l.ReserveFor
}
