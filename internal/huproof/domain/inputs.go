package domain

import (
	"fmt"
	"regexp"
)

var (
	nonceRe      = regexp.MustCompile(`^[A-Za-z0-9_-]{16,128}$`)
	originHashRe = regexp.MustCompile(`^[0-9a-f]{64}$`)
)

// PublicInputs are the public signals a proof is generated against.
type PublicInputs struct {
	Nonce      string
	OriginHash string
	Tau        int
	Timestamp  int64
	C          string // canonical decimal
	Sig        string // canonical decimal
}

// NewPublicInputs validates raw public inputs and canonicalizes the decimal
// fields.
func NewPublicInputs(nonce, originHash string, tau int, timestamp int64, c, sig string) (PublicInputs, error) {
	if err := ValidateNonceValue(nonce); err != nil {
		return PublicInputs{}, err
	}
	if err := ValidateOriginHash(originHash); err != nil {
		return PublicInputs{}, err
	}
	if tau <= 0 {
		return PublicInputs{}, fmt.Errorf("%w: tau must be positive", ErrValidation)
	}
	if timestamp <= 0 {
		return PublicInputs{}, fmt.Errorf("%w: timestamp must be positive", ErrValidation)
	}

	cc, err := CanonicalDecimal(c)
	if err != nil {
		return PublicInputs{}, fmt.Errorf("C: %w", err)
	}
	cs, err := CanonicalDecimal(sig)
	if err != nil {
		return PublicInputs{}, fmt.Errorf("sig: %w", err)
	}

	return PublicInputs{
		Nonce:      nonce,
		OriginHash: originHash,
		Tau:        tau,
		Timestamp:  timestamp,
		C:          cc,
		Sig:        cs,
	}, nil
}

func ValidateNonceValue(v string) error {
	if !nonceRe.MatchString(v) {
		return fmt.Errorf("%w: malformed nonce", ErrValidation)
	}
	return nil
}

func ValidateOriginHash(v string) error {
	if !originHashRe.MatchString(v) {
		return fmt.Errorf("%w: malformed origin_hash", ErrValidation)
	}
	return nil
}

// Proof is a Groth16 proof over BN254 in snarkjs layout. Coordinates are
// canonical decimals.
type Proof struct {
	PiA      [3]string
	PiB      [3][2]string
	PiC      [3]string
	Protocol string
	Curve    string
}

const (
	ProofProtocol = "groth16"
	ProofCurve    = "bn128"
)

func NewProof(piA []string, piB [][]string, piC []string, protocol, curve string) (Proof, error) {
	var p Proof

	if protocol != "" && protocol != ProofProtocol {
		return Proof{}, fmt.Errorf("%w: unsupported protocol %q", ErrValidation, protocol)
	}
	if curve != "" && curve != ProofCurve {
		return Proof{}, fmt.Errorf("%w: unsupported curve %q", ErrValidation, curve)
	}
	p.Protocol = ProofProtocol
	p.Curve = ProofCurve

	if len(piA) != 3 || len(piC) != 3 || len(piB) != 3 {
		return Proof{}, fmt.Errorf("%w: proof has wrong shape", ErrValidation)
	}

	var err error
	for i := range 3 {
		if p.PiA[i], err = CanonicalDecimal(piA[i]); err != nil {
			return Proof{}, fmt.Errorf("pi_a: %w", err)
		}
		if p.PiC[i], err = CanonicalDecimal(piC[i]); err != nil {
			return Proof{}, fmt.Errorf("pi_c: %w", err)
		}
		if len(piB[i]) != 2 {
			return Proof{}, fmt.Errorf("%w: proof has wrong shape", ErrValidation)
		}
		for j := range 2 {
			if p.PiB[i][j], err = CanonicalDecimal(piB[i][j]); err != nil {
				return Proof{}, fmt.Errorf("pi_b: %w", err)
			}
		}
	}

	return p, nil
}

// EnrollFinish is a validated enrollment completion.
type EnrollFinish struct {
	Commitment string // canonical decimal
	Inputs     PublicInputs
	Proof      Proof
}

func NewEnrollFinish(commitment string, in PublicInputs, p Proof) (EnrollFinish, error) {
	c, err := CanonicalDecimal(commitment)
	if err != nil {
		return EnrollFinish{}, fmt.Errorf("commitment: %w", err)
	}
	return EnrollFinish{Commitment: c, Inputs: in, Proof: p}, nil
}

// LoginFinish is a validated login completion.
type LoginFinish struct {
	Inputs PublicInputs
	Proof  Proof
}

func NewLoginFinish(in PublicInputs, p Proof) LoginFinish {
	return LoginFinish{Inputs: in, Proof: p}
}
