package cryptox

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// ChallengeLength is the number of characters in a typing challenge.
const ChallengeLength = 48

// challengeAlphabet is alphanumeric only so keyboard layouts and IME
// composition don't skew the keystroke timings.
const challengeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateChallenge returns a uniformly random phrase of length characters
// drawn from [a-zA-Z0-9].
func GenerateChallenge(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("challenge length must be positive, got %d", length)
	}

	out := make([]byte, length)
	max := big.NewInt(int64(len(challengeAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate challenge: %w", err)
		}
		out[i] = challengeAlphabet[n.Int64()]
	}
	return string(out), nil
}
