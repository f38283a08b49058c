package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/huproof/internal/huproof/domain"
	"github.com/aussiebroadwan/huproof/internal/huproof/store"
	"github.com/aussiebroadwan/huproof/pkg/idx"
	"github.com/aussiebroadwan/huproof/pkg/jwtx"
	"github.com/aussiebroadwan/huproof/pkg/slogx"
)

// TokenSigner signs and checks session JWTs. Decode checks the signature
// but not the expiry.
type TokenSigner interface {
	Sign(jwtx.Claims) (string, error)
	Verify(token string) (jwtx.Claims, error)
	Decode(token string) (jwtx.Claims, error)
}

// SessionService issues, verifies and revokes bearer session tokens. A
// token is valid only while its row exists and is not revoked.
type SessionService struct {
	Store  store.Store
	Signer TokenSigner
	TTL    time.Duration
	Events EventPublisher
}

// IssuedSession is a freshly minted bearer credential.
type IssuedSession struct {
	Token     string
	JTI       string
	UserID    string
	ExpiresAt time.Time
	ExpiresIn int64 // seconds
}

// Issue signs a token for userID and persists its row. ttl <= 0 uses the
// service TTL.
func (s *SessionService) Issue(ctx context.Context, userID string, ttl time.Duration) (IssuedSession, error) {
	return s.issue(ctx, s.Store, userID, ttl)
}

func (s *SessionService) issue(ctx context.Context, st store.Store, userID string, ttl time.Duration) (IssuedSession, error) {
	if ttl <= 0 {
		ttl = s.ttl()
	}

	now := domain.Now()
	claims := jwtx.NewSessionClaims(userID, ttl, now)
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return IssuedSession{}, err
	}

	row := domain.SessionToken{
		ID:        idx.NewAt(now).String(),
		UserID:    userID,
		JTI:       claims.ID,
		IssuedAt:  now,
		ExpiresAt: domain.NormalizeTime(claims.ExpiresAtTime()),
	}
	if err := st.SessionTokens().CreateSessionToken(ctx, row); err != nil {
		return IssuedSession{}, fmt.Errorf("create session token: %w", err)
	}

	return IssuedSession{
		Token:     token,
		JTI:       claims.ID,
		UserID:    userID,
		ExpiresAt: row.ExpiresAt,
		ExpiresIn: int64(ttl / time.Second),
	}, nil
}

// Verify returns the user a token was issued to.
func (s *SessionService) Verify(ctx context.Context, token string) (string, error) {
	claims, err := s.Signer.Verify(token)
	if err != nil {
		return "", mapTokenError(err)
	}

	row, err := s.Store.SessionTokens().GetSessionTokenByJTI(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrTokenUnknown
		}
		return "", err
	}
	if row.UserID != claims.Subject {
		return "", ErrTokenUnknown
	}
	if row.Revoked() {
		return "", ErrTokenRevoked
	}
	return row.UserID, nil
}

// Revoke marks a token revoked. Expired tokens are still revocable.
// Revoking twice, or revoking a token with no row, succeeds.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	log := slogx.FromContext(ctx)

	claims, err := s.Signer.Decode(token)
	if err != nil {
		return mapTokenError(err)
	}

	revoked, err := s.Store.SessionTokens().RevokeSessionToken(ctx, claims.ID, domain.Now())
	if err != nil {
		return fmt.Errorf("revoke session token: %w", err)
	}
	if !revoked {
		log.InfoContext(ctx, "session revoke was a no-op", slog.String("jti", claims.ID))
		return nil
	}

	log.InfoContext(ctx, "session revoked", slog.String("jti", claims.ID))
	publish(ctx, s.Events, domain.Event{
		Type:   domain.EventSessionRevoked,
		UserID: claims.Subject,
		JTI:    claims.ID,
	})
	return nil
}

func (s *SessionService) ttl() time.Duration {
	if s.TTL <= 0 {
		return jwtx.DefaultSessionTTL
	}
	return s.TTL
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, jwtx.ErrExpired):
		return ErrTokenExpired
	case errors.Is(err, jwtx.ErrInvalidSig):
		return ErrTokenInvalidSignature
	default:
		return ErrTokenMalformed
	}
}
