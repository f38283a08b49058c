package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/huproof/internal/huproof/domain"
	"github.com/aussiebroadwan/huproof/internal/huproof/proof"
)

const DefaultVerifyTimeout = 15 * time.Second

// Gate wraps a Verifier with the fixed verification key and a timeout. It
// is always called with no transaction open.
type Gate struct {
	Verifier proof.Verifier
	KeyPath  string
	KeyID    string
	Timeout  time.Duration
}

// Check returns nil on accept, ErrProofRejected on reject and an error
// wrapping ErrProofUnavailable when no verdict could be reached.
func (g *Gate) Check(ctx context.Context, in domain.PublicInputs, p domain.Proof) error {
	timeout := g.Timeout
	if timeout <= 0 {
		timeout = DefaultVerifyTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ok, err := g.Verifier.Verify(ctx, g.KeyPath, in, p)
	if err != nil {
		if errors.Is(err, ErrProofUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrProofUnavailable, err)
	}
	if !ok {
		return ErrProofRejected
	}
	return nil
}
