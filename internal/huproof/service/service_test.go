package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/huproof/internal/huproof/domain"
	"github.com/aussiebroadwan/huproof/internal/huproof/proof"
	"github.com/aussiebroadwan/huproof/internal/huproof/store"
	"github.com/aussiebroadwan/huproof/internal/huproof/store/drivers/sqlite"
	"github.com/aussiebroadwan/huproof/pkg/cryptox"
	"github.com/aussiebroadwan/huproof/pkg/idx"
	"github.com/aussiebroadwan/huproof/pkg/jwtx"
	"github.com/aussiebroadwan/huproof/pkg/slogx"
	"github.com/stretchr/testify/require"
)

var testOrigin = cryptox.SHA256Hex("http://localhost:5173")

type stubVerifier struct {
	mu       sync.Mutex
	ok       bool
	err      error
	calls    int
	onVerify func(ctx context.Context) error
}

func (v *stubVerifier) set(ok bool, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ok, v.err = ok, err
}

func (v *stubVerifier) Verify(ctx context.Context, _ string, _ domain.PublicInputs, _ domain.Proof) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	if v.onVerify != nil {
		if err := v.onVerify(ctx); err != nil {
			return false, err
		}
	}
	return v.ok, v.err
}

func (v *stubVerifier) Ready() error { return nil }
func (v *stubVerifier) Name() string { return "stub" }

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	st       *sqlite.Store
	nonces   *NonceLedger
	commits  *CommitmentService
	sessions *SessionService
	enroll   *EnrollmentService
	login    *LoginService
	verifier *stubVerifier
	events   *recordingPublisher
	signer   *jwtx.HS256
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	key, err := cryptox.DeriveKey([]byte("test-secret-0123456789"), "huproof session v1", 32)
	require.NoError(t, err)
	signer, err := jwtx.NewHS256(key)
	require.NoError(t, err)

	f := &fixture{
		st:       st,
		verifier: &stubVerifier{ok: true},
		events:   &recordingPublisher{},
		signer:   signer,
	}
	f.nonces = &NonceLedger{Store: st, TTL: time.Minute, ReserveFor: 10 * time.Second}
	f.commits = &CommitmentService{Store: st}
	f.sessions = &SessionService{Store: st, Signer: signer, TTL: time.Hour, Events: f.events}
	gate := &Gate{Verifier: f.verifier, KeyPath: "vkey.json", KeyID: "keystroke-v1", Timeout: time.Second}
	f.enroll = &EnrollmentService{
		Store: st, Nonces: f.nonces, Commitments: f.commits, Gate: gate, Events: f.events,
		TauDefault: 400, TauMax: 20000,
	}
	f.login = &LoginService{
		Store: st, Nonces: f.nonces, Commitments: f.commits, Sessions: f.sessions, Gate: gate, Events: f.events,
	}
	return f
}

func testProof(t *testing.T) domain.Proof {
	t.Helper()
	p, err := domain.NewProof(
		[]string{"1", "2", "1"},
		[][]string{{"1", "2"}, {"3", "4"}, {"1", "0"}},
		[]string{"5", "6", "1"},
		"groth16", "bn128",
	)
	require.NoError(t, err)
	return p
}

func inputsFor(t *testing.T, ch Challenge, tau int, c string) domain.PublicInputs {
	t.Helper()
	in, err := domain.NewPublicInputs(ch.Nonce, ch.OriginHash, tau, ch.Timestamp, c, "98765")
	require.NoError(t, err)
	return in
}

func enrollRequest(t *testing.T, ch Challenge, commitment, c string) domain.EnrollFinish {
	t.Helper()
	req, err := domain.NewEnrollFinish(commitment, inputsFor(t, ch, ch.Tau, c), testProof(t))
	require.NoError(t, err)
	return req
}

func (f *fixture) enrollUser(t *testing.T, commitment string) string {
	t.Helper()
	ctx := context.Background()
	ch, err := f.enroll.Start(ctx, testOrigin)
	require.NoError(t, err)
	userID, err := f.enroll.Finish(ctx, testOrigin, enrollRequest(t, ch, commitment, commitment))
	require.NoError(t, err)
	return userID
}

// requireUnspent checks that the nonce is neither consumed nor held and that
// no user was created from it.
func (f *fixture) requireUnspent(t *testing.T, value string) {
	t.Helper()
	ctx := context.Background()

	n, err := f.st.Nonces().GetNonce(ctx, value)
	require.NoError(t, err)
	require.Nil(t, n.ConsumedAt)
	require.Nil(t, n.ReservedUntil)

	users, err := f.st.Users().CountUsers(ctx)
	require.NoError(t, err)
	require.Zero(t, users)
}

func TestNonceLedger(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("issue produces a 256-bit url-safe value", func(t *testing.T) {
		f := newFixture(t)
		n, err := f.nonces.Issue(ctx, domain.PurposeEnroll, testOrigin, "", 0)
		require.NoError(t, err)
		require.Len(t, n.Value, 43)
		require.NoError(t, domain.ValidateNonceValue(n.Value))
		require.Equal(t, time.Minute, n.ExpiresAt.Sub(n.CreatedAt))
	})

	t.Run("consumes exactly once", func(t *testing.T) {
		f := newFixture(t)
		u := domain.User{ID: domain.NewUserID(), CreatedAt: domain.Now()}
		require.NoError(t, f.st.Users().CreateUser(ctx, u))

		n, err := f.nonces.Issue(ctx, domain.PurposeLogin, testOrigin, u.ID, 0)
		require.NoError(t, err)

		userID, err := f.nonces.ValidateAndConsume(ctx, n.Value, domain.PurposeLogin)
		require.NoError(t, err)
		require.Equal(t, u.ID, userID)

		_, err = f.nonces.ValidateAndConsume(ctx, n.Value, domain.PurposeLogin)
		require.ErrorIs(t, err, ErrNonceConsumed)
		require.ErrorIs(t, err, ErrInvalidNonce)
	})

	t.Run("failure kinds all wrap ErrInvalidNonce", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.nonces.ValidateAndConsume(ctx, "missing-nonce-value-000", domain.PurposeEnroll)
		require.ErrorIs(t, err, ErrNonceNotFound)
		require.ErrorIs(t, err, ErrInvalidNonce)

		n, err := f.nonces.Issue(ctx, domain.PurposeEnroll, testOrigin, "", 0)
		require.NoError(t, err)
		_, err = f.nonces.ValidateAndConsume(ctx, n.Value, domain.PurposeLogin)
		require.ErrorIs(t, err, ErrNonceNotFound)

		short, err := f.nonces.Issue(ctx, domain.PurposeEnroll, testOrigin, "", time.Millisecond)
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)
		_, err = f.nonces.ValidateAndConsume(ctx, short.Value, domain.PurposeEnroll)
		require.ErrorIs(t, err, ErrNonceExpired)
		require.ErrorIs(t, err, ErrInvalidNonce)
	})

	t.Run("concurrent consumers race on one row", func(t *testing.T) {
		f := newFixture(t)
		n, err := f.nonces.Issue(ctx, domain.PurposeEnroll, testOrigin, "", 0)
		require.NoError(t, err)

		var (
			wg   sync.WaitGroup
			wins atomic.Int32
		)
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := f.nonces.ValidateAndConsume(ctx, n.Value, domain.PurposeEnroll); err == nil {
					wins.Add(1)
				} else if !errors.Is(err, ErrInvalidNonce) {
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()
		require.EqualValues(t, 1, wins.Load())
	})

	t.Run("reserve release burn", func(t *testing.T) {
		f := newFixture(t)
		n, err := f.nonces.Issue(ctx, domain.PurposeEnroll, testOrigin, "", 0)
		require.NoError(t, err)

		r, err := f.nonces.Reserve(ctx, n.Value, domain.PurposeEnroll)
		require.NoError(t, err)
		require.NotEmpty(t, r.Token)

		_, err = f.nonces.Reserve(ctx, n.Value, domain.PurposeEnroll)
		require.ErrorIs(t, err, ErrNonceReserved)
		_, err = f.nonces.ValidateAndConsume(ctx, n.Value, domain.PurposeEnroll)
		require.ErrorIs(t, err, ErrNonceReserved)

		require.NoError(t, f.nonces.Release(ctx, r))

		r2, err := f.nonces.Reserve(ctx, n.Value, domain.PurposeEnroll)
		require.NoError(t, err)

		// the stale reservation can no longer consume
		require.ErrorIs(t, f.nonces.Burn(ctx, r), ErrInvalidNonce)
		require.NoError(t, f.nonces.Burn(ctx, r2))

		_, err = f.nonces.Reserve(ctx, n.Value, domain.PurposeEnroll)
		require.ErrorIs(t, err, ErrNonceConsumed)
	})
}

func TestCommitmentService(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.commits.GetActive(ctx, domain.NewUserID(), testOrigin)
	require.ErrorIs(t, err, ErrNotFound)

	u := domain.User{ID: domain.NewUserID(), CreatedAt: domain.Now()}
	require.NoError(t, f.st.Users().CreateUser(ctx, u))

	c, err := f.commits.Create(ctx, u.ID, testOrigin, "000123", 450, "")
	require.NoError(t, err)
	require.Equal(t, "123", c.Value)

	_, err = f.commits.Create(ctx, u.ID, testOrigin, "124", 450, "")
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	require.True(t, f.commits.Matches("123", "123"))
	require.False(t, f.commits.Matches("123", "1230"))

	require.NoError(t, f.commits.Deactivate(ctx, c.ID))
	_, err = f.commits.GetActive(ctx, u.ID, testOrigin)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, f.commits.Deactivate(ctx, "missing"), ErrNotFound)
}

func TestEnrollment(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("start", func(t *testing.T) {
		f := newFixture(t)
		ch, err := f.enroll.Start(ctx, testOrigin)
		require.NoError(t, err)
		require.Len(t, ch.Challenge, cryptox.ChallengeLength)
		require.Equal(t, testOrigin, ch.OriginHash)
		require.Equal(t, 400, ch.Tau)
		require.NotZero(t, ch.Timestamp)
		require.Empty(t, ch.Commitment)

		_, err = f.enroll.Start(ctx, "not-a-hash")
		require.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("creates one user and commitment, replay fails", func(t *testing.T) {
		f := newFixture(t)
		ch, err := f.enroll.Start(ctx, testOrigin)
		require.NoError(t, err)

		req := enrollRequest(t, ch, "4242", "4242")
		userID, err := f.enroll.Finish(ctx, testOrigin, req)
		require.NoError(t, err)
		require.NoError(t, domain.ValidateUserID(userID))

		c, err := f.commits.GetActive(ctx, userID, testOrigin)
		require.NoError(t, err)
		require.Equal(t, "4242", c.Value)
		require.Equal(t, 400, c.Tau)
		require.Equal(t, "keystroke-v1", c.VKeyID)

		_, err = f.enroll.Finish(ctx, testOrigin, req)
		require.ErrorIs(t, err, ErrInvalidNonce)
		require.Equal(t, []domain.EventType{domain.EventUserEnrolled}, f.events.types())
	})

	t.Run("rejects on mismatch and leaves the nonce unspent", func(t *testing.T) {
		cases := []struct {
			name   string
			mutate func(t *testing.T, ch Challenge) (string, domain.EnrollFinish)
			want   error
		}{
			{
				name: "commitment differs from C",
				mutate: func(t *testing.T, ch Challenge) (string, domain.EnrollFinish) {
					return testOrigin, enrollRequest(t, ch, "4242", "4243")
				},
				want: ErrCommitmentMismatch,
			},
			{
				name: "request origin differs",
				mutate: func(t *testing.T, ch Challenge) (string, domain.EnrollFinish) {
					return cryptox.SHA256Hex("https://evil.example"), enrollRequest(t, ch, "4242", "4242")
				},
				want: ErrOriginMismatch,
			},
			{
				name: "timestamp differs",
				mutate: func(t *testing.T, ch Challenge) (string, domain.EnrollFinish) {
					ch.Timestamp++
					return testOrigin, enrollRequest(t, ch, "4242", "4242")
				},
				want: ErrTimestampMismatch,
			},
			{
				name: "tau below floor",
				mutate: func(t *testing.T, ch Challenge) (string, domain.EnrollFinish) {
					ch.Tau = 399
					return testOrigin, enrollRequest(t, ch, "4242", "4242")
				},
				want: ErrTauMismatch,
			},
			{
				name: "tau above max",
				mutate: func(t *testing.T, ch Challenge) (string, domain.EnrollFinish) {
					ch.Tau = 20001
					return testOrigin, enrollRequest(t, ch, "4242", "4242")
				},
				want: ErrTauMismatch,
			},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				f := newFixture(t)
				ch, err := f.enroll.Start(ctx, testOrigin)
				require.NoError(t, err)

				origin, req := tc.mutate(t, ch)
				_, err = f.enroll.Finish(ctx, origin, req)
				require.ErrorIs(t, err, tc.want)
				require.ErrorIs(t, err, ErrRejected)

				require.Zero(t, f.verifier.calls)
				f.requireUnspent(t, ch.Nonce)
				require.Empty(t, f.events.types())
			})
		}
	})

	t.Run("verifier outage releases the nonce for retry", func(t *testing.T) {
		f := newFixture(t)
		ch, err := f.enroll.Start(ctx, testOrigin)
		require.NoError(t, err)
		req := enrollRequest(t, ch, "4242", "4242")

		f.verifier.set(false, proof.ErrUnavailable)
		_, err = f.enroll.Finish(ctx, testOrigin, req)
		require.ErrorIs(t, err, ErrProofUnavailable)

		f.verifier.set(false, errors.New("exec: signal: killed"))
		_, err = f.enroll.Finish(ctx, testOrigin, req)
		require.ErrorIs(t, err, ErrProofUnavailable)

		f.verifier.set(true, nil)
		userID, err := f.enroll.Finish(ctx, testOrigin, req)
		require.NoError(t, err)
		require.NotEmpty(t, userID)
	})

	t.Run("rejected proof leaves the nonce unspent", func(t *testing.T) {
		f := newFixture(t)
		ch, err := f.enroll.Start(ctx, testOrigin)
		require.NoError(t, err)
		req := enrollRequest(t, ch, "4242", "4242")

		f.verifier.set(false, nil)
		_, err = f.enroll.Finish(ctx, testOrigin, req)
		require.ErrorIs(t, err, ErrProofRejected)
		f.requireUnspent(t, ch.Nonce)

		f.verifier.set(true, nil)
		userID, err := f.enroll.Finish(ctx, testOrigin, req)
		require.NoError(t, err)
		require.NotEmpty(t, userID)

		n, err := f.st.Nonces().GetNonce(ctx, ch.Nonce)
		require.NoError(t, err)
		require.NotNil(t, n.ConsumedAt)
	})

	t.Run("cancelled request still releases its hold", func(t *testing.T) {
		f := newFixture(t)
		ch, err := f.enroll.Start(ctx, testOrigin)
		require.NoError(t, err)

		reqCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		f.verifier.onVerify = func(vctx context.Context) error {
			cancel()
			return vctx.Err()
		}

		_, err = f.enroll.Finish(reqCtx, testOrigin, enrollRequest(t, ch, "4242", "4242"))
		require.ErrorIs(t, err, ErrProofUnavailable)
		f.requireUnspent(t, ch.Nonce)
	})

	t.Run("concurrent finishes create one user", func(t *testing.T) {
		f := newFixture(t)
		ch, err := f.enroll.Start(ctx, testOrigin)
		require.NoError(t, err)
		req := enrollRequest(t, ch, "4242", "4242")

		var (
			wg   sync.WaitGroup
			wins atomic.Int32
		)
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := f.enroll.Finish(ctx, testOrigin, req); err == nil {
					wins.Add(1)
				} else if !errors.Is(err, ErrInvalidNonce) {
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()
		require.EqualValues(t, 1, wins.Load())
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("start", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.login.Start(ctx, domain.NewUserID(), testOrigin)
		require.ErrorIs(t, err, ErrNotFound)

		_, err = f.login.Start(ctx, "alice", testOrigin)
		require.ErrorIs(t, err, domain.ErrValidation)

		userID := f.enrollUser(t, "4242")

		_, err = f.login.Start(ctx, userID, cryptox.SHA256Hex("https://other.example"))
		require.ErrorIs(t, err, ErrNotFound)

		ch, err := f.login.Start(ctx, userID, testOrigin)
		require.NoError(t, err)
		require.Equal(t, 400, ch.Tau)
		require.Equal(t, "4242", ch.Commitment)

		n, err := f.st.Nonces().GetNonce(ctx, ch.Nonce)
		require.NoError(t, err)
		require.Equal(t, userID, n.UserID)
		require.Equal(t, domain.PurposeLogin, n.Purpose)
	})

	t.Run("commitment mismatch rejects with accepting gate", func(t *testing.T) {
		f := newFixture(t)
		userID := f.enrollUser(t, "4242")

		ch, err := f.login.Start(ctx, userID, testOrigin)
		require.NoError(t, err)

		req := domain.NewLoginFinish(inputsFor(t, ch, ch.Tau, "4243"), testProof(t))
		_, err = f.login.Finish(ctx, testOrigin, req)
		require.ErrorIs(t, err, ErrCommitmentMismatch)
		require.Equal(t, 1, f.verifier.calls) // only the enrollment reached the gate
	})

	t.Run("tau must equal the enrolled tau", func(t *testing.T) {
		f := newFixture(t)
		userID := f.enrollUser(t, "4242")

		ch, err := f.login.Start(ctx, userID, testOrigin)
		require.NoError(t, err)

		req := domain.NewLoginFinish(inputsFor(t, ch, ch.Tau+1, ch.Commitment), testProof(t))
		_, err = f.login.Finish(ctx, testOrigin, req)
		require.ErrorIs(t, err, ErrTauMismatch)
	})

	t.Run("enroll nonce cannot be used to log in", func(t *testing.T) {
		f := newFixture(t)
		ch, err := f.enroll.Start(ctx, testOrigin)
		require.NoError(t, err)

		req := domain.NewLoginFinish(inputsFor(t, ch, ch.Tau, "4242"), testProof(t))
		_, err = f.login.Finish(ctx, testOrigin, req)
		require.ErrorIs(t, err, ErrInvalidNonce)
	})
}

func TestEnrollLoginLogout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	userID := f.enrollUser(t, "4242")

	ch, err := f.login.Start(ctx, userID, testOrigin)
	require.NoError(t, err)

	req := domain.NewLoginFinish(inputsFor(t, ch, ch.Tau, ch.Commitment), testProof(t))
	sess, err := f.login.Finish(ctx, testOrigin, req)
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)
	require.EqualValues(t, 3600, sess.ExpiresIn)

	_, err = f.login.Finish(ctx, testOrigin, req)
	require.ErrorIs(t, err, ErrInvalidNonce)

	got, err := f.sessions.Verify(ctx, sess.Token)
	require.NoError(t, err)
	require.Equal(t, userID, got)

	require.NoError(t, f.sessions.Revoke(ctx, sess.Token))
	_, err = f.sessions.Verify(ctx, sess.Token)
	require.ErrorIs(t, err, ErrTokenRevoked)

	require.NoError(t, f.sessions.Revoke(ctx, sess.Token))

	require.Equal(t, []domain.EventType{
		domain.EventUserEnrolled,
		domain.EventSessionIssued,
		domain.EventSessionRevoked,
	}, f.events.types())
}

func TestSessionService(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("expired tokens verify as expired and stay revocable", func(t *testing.T) {
		f := newFixture(t)
		userID := f.enrollUser(t, "1")

		past := domain.Now().Add(-2 * time.Hour)
		claims := jwtx.NewSessionClaims(userID, time.Hour, past)
		token, err := f.signer.Sign(claims)
		require.NoError(t, err)
		require.NoError(t, f.st.SessionTokens().CreateSessionToken(ctx, domain.SessionToken{
			ID: idx.New().String(), UserID: userID, JTI: claims.ID,
			IssuedAt: domain.NormalizeTime(past), ExpiresAt: domain.NormalizeTime(claims.ExpiresAtTime()),
		}))

		_, err = f.sessions.Verify(ctx, token)
		require.ErrorIs(t, err, ErrTokenExpired)

		require.NoError(t, f.sessions.Revoke(ctx, token))
		row, err := f.st.SessionTokens().GetSessionTokenByJTI(ctx, claims.ID)
		require.NoError(t, err)
		require.True(t, row.Revoked())
	})

	t.Run("token without a row", func(t *testing.T) {
		f := newFixture(t)
		token, err := f.signer.Sign(jwtx.NewSessionClaims(domain.NewUserID(), time.Hour, domain.Now()))
		require.NoError(t, err)

		_, err = f.sessions.Verify(ctx, token)
		require.ErrorIs(t, err, ErrTokenUnknown)
		require.NoError(t, f.sessions.Revoke(ctx, token))
	})

	t.Run("bad tokens", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.sessions.Verify(ctx, "not.a.jwt")
		require.ErrorIs(t, err, ErrTokenMalformed)
		require.ErrorIs(t, f.sessions.Revoke(ctx, "garbage"), ErrTokenMalformed)

		other, err := jwtx.NewHS256([]byte("another-key-that-is-32-bytes-long!"))
		require.NoError(t, err)
		forged, err := other.Sign(jwtx.NewSessionClaims(domain.NewUserID(), time.Hour, domain.Now()))
		require.NoError(t, err)

		_, err = f.sessions.Verify(ctx, forged)
		require.ErrorIs(t, err, ErrTokenInvalidSignature)
		require.True(t, IsUnauthorized(err))
	})
}

func TestHousekeepingCleanup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	old := domain.Now().Add(-72 * time.Hour)
	require.NoError(t, f.st.Nonces().CreateNonce(ctx, domain.Nonce{
		ID: idx.New().String(), Value: "stale-nonce-value-000001", Purpose: domain.PurposeEnroll,
		OriginHash: testOrigin, CreatedAt: old, ExpiresAt: old.Add(time.Minute),
	}))
	_, err := f.nonces.Issue(ctx, domain.PurposeEnroll, testOrigin, "", 0)
	require.NoError(t, err)

	hk := NewHousekeepingService(f.st, slogx.Discard(), time.Hour, 24*time.Hour)
	nonces, tokens := hk.cleanup(ctx)
	require.EqualValues(t, 1, nonces)
	require.Zero(t, tokens)

	hk.Start()
	hk.Stop()
}
