// Package domain holds the huproof entities and the value objects that cross
// the service boundary. Constructors validate; anything of a domain type that
// reached the service layer is well formed.
package domain

import (
	"errors"
	"time"
)

// ErrValidation marks malformed input. The wrapped message is for logs only.
var ErrValidation = errors.New("validation failed")

// User is the identity anchor. It has no mutable fields.
type User struct {
	ID        string
	CreatedAt time.Time
}

// Commitment binds a user on one origin to a keystroke-template commitment
// and its acceptance threshold.
type Commitment struct {
	ID         string
	UserID     string
	OriginHash string
	Value      string // canonical decimal
	Tau        int
	VKeyID     string // empty when unset
	Active     bool
	CreatedAt  time.Time
}

// SessionToken is the persisted half of a bearer session.
type SessionToken struct {
	ID        string
	UserID    string
	JTI       string
	IssuedAt  time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

func (s SessionToken) Revoked() bool { return s.RevokedAt != nil }

// Now is the clock every persisted timestamp goes through: UTC at
// microsecond precision so values round-trip through both drivers.
func Now() time.Time {
	return NormalizeTime(time.Now())
}

func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
