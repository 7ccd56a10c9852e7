package ctype

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/holiman/uint256"

	"github.com/wippyai/clayout/errors"
)

// FromInt64 returns v as a two's-complement 256-bit value.
func FromInt64(v int64) *uint256.Int {
	if v >= 0 {
		return uint256.NewInt(uint64(v))
	}
	z := uint256.NewInt(uint64(-(v + 1)))
	z.Add(z, uint256.NewInt(1))
	return z.Neg(z)
}

// FormatValue renders a two's-complement value in signed decimal.
func FormatValue(v *uint256.Int) string {
	if v.Sign() < 0 {
		return "-" + new(uint256.Int).Neg(v).Dec()
	}
	return v.Dec()
}

// Bounds of a two's-complement 256-bit value.
var (
	maxValue = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 255), big.NewInt(1))
	minValue = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 255))
)

// ParseValue parses a C integer literal: decimal, 0x hex, 0b binary and
// leading-zero octal, an optional sign, and u/l suffixes.
func ParseValue(s string) (*uint256.Int, error) {
	lit := strings.TrimSpace(s)
	lit = strings.TrimRight(lit, "uUlL")
	lit = strings.ReplaceAll(lit, "'", "")

	neg := false
	switch {
	case strings.HasPrefix(lit, "-"):
		neg = true
		lit = strings.TrimSpace(lit[1:])
	case strings.HasPrefix(lit, "+"):
		lit = strings.TrimSpace(lit[1:])
	}
	if lit == "" || strings.ContainsAny(lit, "+-_") {
		return nil, errors.InvalidInput(errors.PhaseLoad, nil, "malformed integer literal "+strconv.Quote(s))
	}

	b, ok := new(big.Int).SetString(lit, 0)
	if !ok {
		return nil, errors.InvalidInput(errors.PhaseLoad, nil, "malformed integer literal "+strconv.Quote(s))
	}
	if neg {
		b.Neg(b)
	}
	if b.Cmp(minValue) < 0 || b.Cmp(maxValue) > 0 {
		return nil, errors.Overflow(errors.PhaseLoad, nil, "integer literal "+strconv.Quote(s)+" is outside the signed 256-bit range")
	}
	z, _ := uint256.FromBig(b)
	return z, nil
}

// Truncate reduces v to its low bits, sign-extending from the top kept bit
// when signed. This is C conversion to a bits-wide integer type.
func Truncate(v *uint256.Int, bits uint64, signed bool) *uint256.Int {
	if bits >= 256 {
		return v.Clone()
	}
	n := uint(256 - bits)
	z := new(uint256.Int).Lsh(v, n)
	if signed {
		return z.SRsh(z, n)
	}
	return z.Rsh(z, n)
}
