package proof

import (
	"crypto/sha256"
	"math/big"
	"strconv"

	"github.com/aussiebroadwan/huproof/internal/huproof/domain"
)

// PublicSignals returns the circuit's public signals in order:
// C, nonce, origin_hash, timestamp, tau, sig. The nonce and origin hash are
// mapped into the field; the rest are already field elements.
func PublicSignals(in domain.PublicInputs) []string {
	return []string{
		in.C,
		NonceSignal(in.Nonce),
		OriginSignal(in.OriginHash),
		strconv.FormatInt(in.Timestamp, 10),
		strconv.Itoa(in.Tau),
		in.Sig,
	}
}

// NonceSignal is sha256(nonce) reduced mod r.
func NonceSignal(nonce string) string {
	sum := sha256.Sum256([]byte(nonce))
	n := new(big.Int).SetBytes(sum[:])
	return n.Mod(n, domain.FieldModulus).String()
}

// OriginSignal is the hex origin hash read as an integer, reduced mod r.
func OriginSignal(originHash string) string {
	n, ok := new(big.Int).SetString(originHash, 16)
	if !ok {
		return "0"
	}
	return n.Mod(n, domain.FieldModulus).String()
}
