package authsdk

import (
	"github.com/aussiebroadwan/huproof/pkg/calibration"
	"github.com/aussiebroadwan/huproof/pkg/cryptox"
)

// Calibrate turns enrollment samples into a template and its threshold.
// The threshold is never below baseTau, which should be the tau the
// service handed out at enroll start.
func Calibrate(samples [][]int, baseTau int) (calibration.Result, error) {
	return calibration.Calibrate(samples, calibration.Config{BaseTau: baseTau})
}

// OriginHash is the hex SHA-256 of origin, as the service computes it.
func OriginHash(origin string) string {
	return cryptox.SHA256Hex(origin)
}

// PublicInputsFor fills public inputs from a challenge. tau and C are the
// client's own; the rest must echo what the service issued.
func PublicInputsFor(ch *ChallengeResponse, tau int, commitment, sig string) PublicInputs {
	return PublicInputs{
		Nonce:      ch.Nonce,
		OriginHash: ch.OriginHash,
		Tau:        tau,
		Timestamp:  ch.Timestamp,
		C:          commitment,
		Sig:        sig,
	}
}
