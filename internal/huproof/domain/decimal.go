package domain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// FieldModulus is the BN254 scalar field order r. Every public signal is an
// element of this field.
var FieldModulus, _ = new(big.Int).SetString(
	"21888242871839275222246405745257275088548364400416034343698204186575808495617", 10)

const (
	// maxDecimalDigits caps significant digits. The modulus check is exact.
	maxDecimalDigits = 78
	// maxDecimalInput bounds the raw string, zero padding included.
	maxDecimalInput = 1024
)

// CanonicalDecimal returns the canonical form of a field element written in
// base 10: digits only, no sign, no leading zeros, "0" for zero, below r.
// Leading zeros are stripped before the digit count is checked; anything
// else non-canonical is rejected.
func CanonicalDecimal(s string) (string, error) {
	if s == "" || len(s) > maxDecimalInput {
		return "", fmt.Errorf("%w: decimal length %d", ErrValidation, len(s))
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return "", fmt.Errorf("%w: non-digit in decimal", ErrValidation)
		}
	}
	if digits := strings.TrimLeft(s, "0"); len(digits) > maxDecimalDigits {
		return "", fmt.Errorf("%w: decimal length %d", ErrValidation, len(digits))
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if d.BigInt().Cmp(FieldModulus) >= 0 {
		return "", fmt.Errorf("%w: decimal not below field modulus", ErrValidation)
	}

	return d.String(), nil
}
