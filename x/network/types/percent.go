package types

import (
	"math/big"

	sdkmath "cosmossdk.io/math"
)

// Percentages are fixed-point values scaled by PercentageFactor: 100 = 1.00%,
// 10_000 = 100%.
const (
	PercentageFactor     uint64 = 10_000
	HalfPercentageFactor uint64 = PercentageFactor / 2
)

var (
	// MaxBalance is the largest amount the ledger balance type can hold (2^128 - 1).
	MaxBalance = sdkmath.NewUintFromBigInt(maxBalanceBig)

	maxBalanceBig = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	factorBig     = new(big.Int).SetUint64(PercentageFactor)
	mulCeilingBig = new(big.Int).Sub(maxBalanceBig, new(big.Int).SetUint64(HalfPercentageFactor))
)

// PercentMul returns x*y/PercentageFactor rounded toward zero. It returns zero
// when either operand is zero or when x > (MaxBalance - HalfPercentageFactor)/y.
func PercentMul(x, y sdkmath.Uint) sdkmath.Uint {
	if x.IsZero() || y.IsZero() {
		return sdkmath.ZeroUint()
	}
	xb, yb := x.BigInt(), y.BigInt()
	if mulOverflows(xb, yb) {
		return sdkmath.ZeroUint()
	}
	return sdkmath.NewUintFromBigInt(new(big.Int).Quo(new(big.Int).Mul(xb, yb), factorBig))
}

// PercentDiv returns x*PercentageFactor/y rounded toward zero. A zero divisor
// yields zero rather than an error: callers treat "no stake" as "no share".
func PercentDiv(x, y sdkmath.Uint) sdkmath.Uint {
	if x.IsZero() || y.IsZero() {
		return sdkmath.ZeroUint()
	}
	xb, yb := x.BigInt(), y.BigInt()
	if mulOverflows(xb, factorBig) {
		return sdkmath.ZeroUint()
	}
	return sdkmath.NewUintFromBigInt(new(big.Int).Quo(new(big.Int).Mul(xb, factorBig), yb))
}

// PercentMulRoundUp is PercentMul rounded up. It saturates to MaxBalance on overflow.
func PercentMulRoundUp(x, y sdkmath.Uint) sdkmath.Uint {
	if x.IsZero() || y.IsZero() {
		return sdkmath.ZeroUint()
	}
	xb, yb := x.BigInt(), y.BigInt()
	if mulOverflows(xb, yb) {
		return MaxBalance
	}
	return sdkmath.NewUintFromBigInt(quoCeil(new(big.Int).Mul(xb, yb), factorBig))
}

// PercentDivRoundUp is PercentDiv rounded up. It saturates to MaxBalance on overflow.
func PercentDivRoundUp(x, y sdkmath.Uint) sdkmath.Uint {
	if x.IsZero() || y.IsZero() {
		return sdkmath.ZeroUint()
	}
	xb, yb := x.BigInt(), y.BigInt()
	if mulOverflows(xb, factorBig) {
		return MaxBalance
	}
	return sdkmath.NewUintFromBigInt(quoCeil(new(big.Int).Mul(xb, factorBig), yb))
}

// PercentOf is PercentMul for an amount and a percentage-domain value.
func PercentOf(amount sdkmath.Uint, percent uint64) sdkmath.Uint {
	return PercentMul(amount, sdkmath.NewUint(percent))
}

// PercentMulUint64 applies PercentMul to percentage-domain values.
func PercentMulUint64(x, y uint64) uint64 {
	return PercentMul(sdkmath.NewUint(x), sdkmath.NewUint(y)).Uint64()
}

// RatioPercent returns part/whole as a percentage, or zero when whole is zero.
// The result is not clamped: part > whole yields more than PercentageFactor.
func RatioPercent(part, whole uint64) uint64 {
	return PercentDiv(sdkmath.NewUint(part), sdkmath.NewUint(whole)).Uint64()
}

func mulOverflows(x, y *big.Int) bool {
	limit := new(big.Int).Quo(mulCeilingBig, y)
	return x.Cmp(limit) > 0
}

func quoCeil(n, d *big.Int) *big.Int {
	q, r := new(big.Int).QuoRem(n, d, new(big.Int))
	if r.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}

// MinUint returns the smaller of a and b.
func MinUint(a, b sdkmath.Uint) sdkmath.Uint {
	if a.LT(b) {
		return a
	}
	return b
}

// SaturatingSub returns a-b, or zero when b > a.
func SaturatingSub(a, b sdkmath.Uint) sdkmath.Uint {
	if b.GT(a) {
		return sdkmath.ZeroUint()
	}
	return a.Sub(b)
}

// CheckBalance rejects amounts that do not fit the ledger balance type.
func CheckBalance(amount sdkmath.Uint) error {
	if amount.GT(MaxBalance) {
		return ErrBalanceConversion.Wrapf("%s exceeds %s", amount, MaxBalance)
	}
	return nil
}
