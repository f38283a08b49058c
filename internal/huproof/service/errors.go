package service

import (
	"errors"
	"fmt"

	"github.com/aussiebroadwan/huproof/internal/huproof/proof"
)

// Every error below that a finish call can return before a credential is
// issued is reported to clients identically. The distinctions exist for logs.
var (
	ErrInvalidNonce  = errors.New("invalid nonce")
	ErrNonceNotFound = fmt.Errorf("%w: not found", ErrInvalidNonce)
	ErrNonceExpired  = fmt.Errorf("%w: expired", ErrInvalidNonce)
	ErrNonceConsumed = fmt.Errorf("%w: consumed", ErrInvalidNonce)
	ErrNonceReserved = fmt.Errorf("%w: reserved", ErrInvalidNonce)

	ErrRejected           = errors.New("request rejected")
	ErrOriginMismatch     = fmt.Errorf("%w: origin mismatch", ErrRejected)
	ErrTimestampMismatch  = fmt.Errorf("%w: timestamp mismatch", ErrRejected)
	ErrCommitmentMismatch = fmt.Errorf("%w: commitment mismatch", ErrRejected)
	ErrTauMismatch        = fmt.Errorf("%w: tau mismatch", ErrRejected)
	ErrProofRejected      = fmt.Errorf("%w: proof rejected", ErrRejected)

	// ErrProofUnavailable is the one retryable finish failure.
	ErrProofUnavailable = proof.ErrUnavailable

	ErrNotFound = errors.New("not found")

	ErrTokenExpired          = errors.New("token expired")
	ErrTokenInvalidSignature = errors.New("token signature invalid")
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenRevoked          = errors.New("token revoked")
	ErrTokenUnknown          = errors.New("token unknown")
)

// IsUnauthorized reports whether err is one of the session token failures.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenInvalidSignature) ||
		errors.Is(err, ErrTokenMalformed) ||
		errors.Is(err, ErrTokenRevoked) ||
		errors.Is(err, ErrTokenUnknown)
}

// nonceReason is the log label for a nonce failure.
func nonceReason(err error) string {
	switch {
	case errors.Is(err, ErrNonceNotFound):
		return "not_found"
	case errors.Is(err, ErrNonceExpired):
		return "expired"
	case errors.Is(err, ErrNonceConsumed):
		return "consumed"
	case errors.Is(err, ErrNonceReserved):
		return "reserved"
	default:
		return "unknown"
	}
}
