package proof

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/huproof/internal/huproof/domain"
)

var ErrBypassInProduction = errors.New("proof: bypass verifier refused in production")

// Bypass accepts every proof. Development only.
type Bypass struct {
	logger *slog.Logger
}

var _ Verifier = (*Bypass)(nil)

func NewBypass(env string, logger *slog.Logger) (*Bypass, error) {
	if IsProduction(env) {
		return nil, ErrBypassInProduction
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bypass{logger: logger}, nil
}

// IsProduction reports whether env names a production deployment.
func IsProduction(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "prod", "production":
		return true
	}
	return false
}

func (b *Bypass) Name() string { return "bypass" }

func (b *Bypass) Ready() error { return nil }

func (b *Bypass) Verify(ctx context.Context, _ string, in domain.PublicInputs, _ domain.Proof) (bool, error) {
	b.logger.WarnContext(ctx, "zk_verify_bypassed", slog.String("origin_hash", in.OriginHash))
	return true, nil
}
