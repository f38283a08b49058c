// Package proof is the proof verification gate. A Verifier answers accept or
// reject for a Groth16 proof; when it cannot answer it returns ErrUnavailable
// and callers must treat the outcome as unknown.
package proof

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/huproof/internal/huproof/domain"
)

// ErrUnavailable means the verifier could not reach a verdict. It never
// stands for accept or reject.
var ErrUnavailable = errors.New("proof: verifier unavailable")

type Verifier interface {
	// Verify reports whether p is a valid proof for in under the key at
	// vkey. (false, nil) is a rejection.
	Verify(ctx context.Context, vkey string, in domain.PublicInputs, p domain.Proof) (bool, error)

	// Ready reports whether the verifier can currently serve requests.
	Ready() error

	Name() string
}
