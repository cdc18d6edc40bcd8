package units

import (
	"github.com/holiman/uint256"
	"github.com/rotisserie/eris"
	"pkg.world.dev/world-engine/evmutil/assert"
)

const (
	// EVMPrecision is the number of decimals of the EVM gas token.
	EVMPrecision = 18

	// MaxWordDecimals is the largest delta for which 10^delta fits in a 256-bit word.
	MaxWordDecimals = 77

	// MaxPrecisionSpread is how far an ERC-20's precision may exceed the fee symbol's.
	MaxPrecisionSpread = 57

	// MaxNativeAmount is the exclusive upper bound of a native amount (2^62 - 1).
	MaxNativeAmount = uint64(1)<<62 - 1

	// MaxDonateRate is a donate rate of 100.00%.
	MaxDonateRate = 10000
)

// PowerOfTen returns 10^exp. exp must not exceed MaxWordDecimals.
func PowerOfTen(exp uint8) *uint256.Int {
	assert.That(exp <= MaxWordDecimals, "10^%d does not fit a word", exp)
	return new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(exp)))
}

// ToNativeAmount converts a 256-bit EVM amount to a native amount by dividing out delta
// decimals. The conversion is lossless or it fails.
func ToNativeAmount(word *uint256.Int, delta uint8) (uint64, error) {
	if delta > MaxWordDecimals {
		return 0, eris.Wrapf(ErrInvalidRate, "precision delta %d exceeds %d", delta, MaxWordDecimals)
	}
	mult := PowerOfTen(delta)

	quotient, rem := new(uint256.Int).DivMod(word, mult, new(uint256.Int))
	if !rem.IsZero() {
		return 0, eris.Wrapf(ErrDustLoss, "%s is not a multiple of 10^%d", word.Dec(), delta)
	}
	if !quotient.IsUint64() || quotient.Uint64() >= MaxNativeAmount {
		return 0, eris.Wrapf(ErrAmountOverflow, "%s scaled by 10^-%d exceeds native range", word.Dec(), delta)
	}
	if back, overflow := new(uint256.Int).MulOverflow(quotient, mult); overflow || !back.Eq(word) {
		return 0, eris.Wrapf(ErrAmountOverflow, "%s does not survive scaling by 10^%d", word.Dec(), delta)
	}
	if quotient.IsZero() {
		return 0, eris.Wrap(ErrNonPositiveAmount, "amount is zero")
	}
	return quotient.Uint64(), nil
}

// ToEvmWord scales a native amount up by delta decimals.
func ToEvmWord(amount uint64, delta uint8) *uint256.Int {
	w, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(amount), PowerOfTen(delta))
	assert.That(!overflow, "%d * 10^%d overflows a word", amount, delta)
	return w
}

// CheckDonateRate validates a donate rate word, in basis points of 1/10000.
func CheckDonateRate(word *uint256.Int) (uint16, error) {
	if !word.IsUint64() || word.Uint64() > MaxDonateRate {
		return 0, eris.Wrapf(ErrInvalidRate, "donate rate %s exceeds %d", word.Dec(), MaxDonateRate)
	}
	return uint16(word.Uint64()), nil
}

// PrecisionDelta returns how many decimals an ERC-20 carries beyond the gas symbol. It fails
// when the token is less precise than the gas symbol or the spread exceeds MaxPrecisionSpread.
func PrecisionDelta(erc20Precision uint8, gas Symbol) (uint8, error) {
	if erc20Precision < gas.Precision || uint(erc20Precision) > uint(gas.Precision)+MaxPrecisionSpread {
		return 0, eris.Wrapf(ErrInvalidRate, "erc20 precision %d out of range for %s", erc20Precision, gas)
	}
	return erc20Precision - gas.Precision, nil
}

// MinimumNativelyRepresentable is the EVM amount worth one smallest unit of the symbol.
func MinimumNativelyRepresentable(s Symbol) *uint256.Int {
	assert.That(s.Precision <= EVMPrecision, "symbol %s is more precise than the evm", s)
	return PowerOfTen(EVMPrecision - s.Precision)
}
