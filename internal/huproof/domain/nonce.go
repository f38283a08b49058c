package domain

import (
	"fmt"
	"time"
)

type Purpose string

const (
	PurposeEnroll Purpose = "enroll"
	PurposeLogin  Purpose = "login"
)

func (p Purpose) Valid() bool {
	return p == PurposeEnroll || p == PurposeLogin
}

func ParsePurpose(s string) (Purpose, error) {
	p := Purpose(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: unknown purpose %q", ErrValidation, s)
	}
	return p, nil
}

// Nonce is a single-use challenge. ConsumedAt goes from nil to set once.
type Nonce struct {
	ID         string
	Value      string
	Purpose    Purpose
	OriginHash string
	UserID     string // empty for enroll
	CreatedAt  time.Time
	ExpiresAt  time.Time
	ConsumedAt *time.Time

	// ReservedUntil and Reservation are set while a finish call holds the
	// nonce across proof verification.
	ReservedUntil *time.Time
	Reservation   string
}

func (n Nonce) Consumed() bool { return n.ConsumedAt != nil }

func (n Nonce) Expired(now time.Time) bool { return !now.Before(n.ExpiresAt) }

// ReservedAt reports whether a reservation is still holding the nonce.
func (n Nonce) ReservedAt(now time.Time) bool {
	return n.ReservedUntil != nil && now.Before(*n.ReservedUntil)
}

// Timestamp is the issuance time as sent to clients, in unix seconds.
func (n Nonce) Timestamp() int64 { return n.CreatedAt.Unix() }
