package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// NewUserID returns a fresh random (v4) user id.
func NewUserID() string {
	return uuid.NewString()
}

// ValidateUserID accepts only the canonical lowercase hyphenated UUID form
// that NewUserID produces.
func ValidateUserID(s string) error {
	id, err := uuid.Parse(s)
	if err != nil || id.String() != s {
		return fmt.Errorf("%w: malformed user_id", ErrValidation)
	}
	return nil
}
