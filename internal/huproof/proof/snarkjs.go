package proof

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/aussiebroadwan/huproof/internal/huproof/domain"
)

const (
	DefaultBinary  = "snarkjs"
	DefaultTimeout = 15 * time.Second

	// waitDelay bounds how long we wait for output pipes after the process
	// is killed.
	waitDelay = 2 * time.Second
)

// SnarkJS verifies proofs with `snarkjs groth16 verify`. Exit status 0 is
// accept, any other exit status is reject.
type SnarkJS struct {
	Binary  string
	Timeout time.Duration
	Logger  *slog.Logger
}

var _ Verifier = (*SnarkJS)(nil)

func NewSnarkJS(binary string, timeout time.Duration, logger *slog.Logger) *SnarkJS {
	if binary == "" {
		binary = DefaultBinary
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SnarkJS{Binary: binary, Timeout: timeout, Logger: logger}
}

func (s *SnarkJS) Name() string { return "snarkjs" }

func (s *SnarkJS) Ready() error {
	if _, err := exec.LookPath(s.Binary); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

type proofFile struct {
	PiA      [3]string    `json:"pi_a"`
	PiB      [3][2]string `json:"pi_b"`
	PiC      [3]string    `json:"pi_c"`
	Protocol string       `json:"protocol"`
	Curve    string       `json:"curve"`
}

func (s *SnarkJS) Verify(ctx context.Context, vkey string, in domain.PublicInputs, p domain.Proof) (bool, error) {
	bin, err := exec.LookPath(s.Binary)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if _, err := os.Stat(vkey); err != nil {
		return false, fmt.Errorf("%w: verification key: %v", ErrUnavailable, err)
	}

	dir, err := os.MkdirTemp("", "huproof-verify-")
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer os.RemoveAll(dir)

	publicPath := filepath.Join(dir, "public.json")
	proofPath := filepath.Join(dir, "proof.json")

	if err := writeJSON(publicPath, PublicSignals(in)); err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := writeJSON(proofPath, proofFile{
		PiA:      p.PiA,
		PiB:      p.PiB,
		PiC:      p.PiC,
		Protocol: domain.ProofProtocol,
		Curve:    domain.ProofCurve,
	}); err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "groth16", "verify", vkey, publicPath, proofPath)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	start := time.Now()
	err = cmd.Run()
	ms := time.Since(start).Milliseconds()

	if ctx.Err() != nil {
		s.Logger.WarnContext(ctx, "zk_verify_timeout", slog.Int64("ms", ms))
		return false, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		s.Logger.InfoContext(ctx, "zk_verify_ok", slog.Int64("ms", ms))
		return true, nil
	case errors.As(err, &exitErr):
		s.Logger.WarnContext(ctx, "zk_verify_failed",
			slog.Int("code", exitErr.ExitCode()),
			slog.Int64("ms", ms),
			slog.String("stdout", truncate(stdout.String())),
			slog.String("stderr", truncate(stderr.String())),
		)
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}

func writeJSON(path string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

func truncate(s string) string {
	const limit = 512
	if len(s) > limit {
		return s[:limit]
	}
	return s
}
