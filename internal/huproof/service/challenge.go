package service

import (
	"github.com/aussiebroadwan/huproof/internal/huproof/domain"
	"github.com/aussiebroadwan/huproof/pkg/cryptox"
)

const (
	DefaultTauDefault = 400
	DefaultTauMax     = 20000
)

// Challenge is what a start call hands to the client.
type Challenge struct {
	Challenge  string
	Nonce      string
	OriginHash string
	Tau        int
	Timestamp  int64
	Commitment string // login only
}

func newChallenge(n domain.Nonce, tau int) (Challenge, error) {
	text, err := cryptox.GenerateChallenge(cryptox.ChallengeLength)
	if err != nil {
		return Challenge{}, err
	}
	return Challenge{
		Challenge:  text,
		Nonce:      n.Value,
		OriginHash: n.OriginHash,
		Tau:        tau,
		Timestamp:  n.Timestamp(),
	}, nil
}

// checkBinding compares the public inputs against the reserved nonce and the
// origin the request arrived on.
func checkBinding(originHash string, n domain.Nonce, in domain.PublicInputs) error {
	if in.OriginHash != originHash || n.OriginHash != originHash {
		return ErrOriginMismatch
	}
	if in.Timestamp != n.Timestamp() {
		return ErrTimestampMismatch
	}
	return nil
}
