// Package calldata builds the ABI-encoded call data the bridge sends to the EVM: proxy
// deployments and the admin calls that configure a deployed proxy.
package calldata

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/rotisserie/eris"
	"pkg.world.dev/world-engine/evmutil/abi"
	"pkg.world.dev/world-engine/evmutil/units"
)

// minBytecodeSize rejects placeholder blobs; every compiled helper is larger than this.
const minBytecodeSize = 128

var (
	// initialize(address,address,address,uint256,bool,bool)
	SelectorInitialize = abi.Selector{0x1d, 0x1e, 0x7e, 0x92}
	// setFee(uint256)
	SelectorSetFee = abi.Selector{0x69, 0xfe, 0x0e, 0x2d}
	// setLockTime(uint256)
	SelectorSetLockTime = abi.Selector{0xae, 0x04, 0xd4, 0x5d}
	// upgradeToAndCall(address,bytes)
	SelectorUpgradeToAndCall = abi.Selector{0x4f, 0x1e, 0xf2, 0x86}
)

var (
	ErrFeeSymbolMismatch = eris.New("deposit fee should have the native gas token symbol")
	ErrInvalidBytecode   = eris.New("bytecode is not a compiled contract")
)

// CheckBytecode rejects blobs too short to be a compiled contract.
func CheckBytecode(code []byte) error {
	if len(code) <= minBytecodeSize {
		return eris.Wrapf(ErrInvalidBytecode, "bytecode has %d bytes", len(code))
	}
	return nil
}

// EncodeCall concatenates a selector and pre-encoded words.
func EncodeCall(sel abi.Selector, words ...[]byte) []byte {
	size := abi.SelectorSize
	for _, w := range words {
		size += len(w)
	}
	out := make([]byte, 0, size)
	out = append(out, sel.Bytes()...)
	for _, w := range words {
		out = append(out, w...)
	}
	return out
}

// ProxyDeployment describes a stake helper proxy: a proxy contract that forwards to Impl and is
// initialized for one ERC-20.
type ProxyDeployment struct {
	Bytecode []byte
	Impl     common.Address

	// Owner is the bridge's own reserved address; EVMAccount is the EVM runtime's.
	Owner      common.Address
	EVMAccount common.Address
	ERC20      common.Address

	Fee            units.Asset
	GasSymbol      units.Symbol
	ERC20Precision uint8

	NotBTC              bool
	IsValidatorDeposits bool
}

// EncodeProxyDeployment returns the creation code of a proxy: its bytecode followed by the
// constructor arguments (address impl, bytes data), where data is the initialize call. Every
// check runs before any output is produced.
func EncodeProxyDeployment(p ProxyDeployment) ([]byte, error) {
	// 2^(256-64) is about 6.2e57, so a 64-bit amount survives at most 57 extra decimals.
	if _, err := units.PrecisionDelta(p.ERC20Precision, p.Fee.Symbol); err != nil {
		return nil, err
	}
	fee, err := scaleFee(p.Fee, p.GasSymbol)
	if err != nil {
		return nil, err
	}
	if err := CheckBytecode(p.Bytecode); err != nil {
		return nil, err
	}

	initCall := EncodeCall(SelectorInitialize,
		abi.WriteAddress(p.Owner),
		abi.WriteAddress(p.EVMAccount),
		abi.WriteAddress(p.ERC20),
		abi.WriteWord(fee),
		abi.WriteBool(p.NotBTC),
		abi.WriteBool(p.IsValidatorDeposits),
	)

	out := make([]byte, 0, len(p.Bytecode)+3*abi.WordSize+len(initCall)+abi.WordSize)
	out = append(out, p.Bytecode...)
	out = append(out, abi.WriteAddress(p.Impl)...)
	out = append(out, abi.WriteUint32AsWord(2*abi.WordSize)...)
	out = append(out, abi.WriteDynamicBytes(initCall)...)
	return out, nil
}

// EncodeSetFee returns setFee(fee) with the fee scaled to EVM units.
func EncodeSetFee(fee units.Asset, gas units.Symbol) ([]byte, error) {
	w, err := scaleFee(fee, gas)
	if err != nil {
		return nil, err
	}
	return EncodeCall(SelectorSetFee, abi.WriteWord(w)), nil
}

// EncodeSetLockTime returns setLockTime(lockTime).
func EncodeSetLockTime(lockTime uint64) []byte {
	return EncodeCall(SelectorSetLockTime, abi.WriteUint64AsWord(lockTime))
}

// EncodeUpgradeToAndCall returns upgradeToAndCall(impl, "").
func EncodeUpgradeToAndCall(impl common.Address) []byte {
	return EncodeCall(SelectorUpgradeToAndCall,
		abi.WriteAddress(impl),
		abi.WriteUint32AsWord(2*abi.WordSize),
		abi.WriteUint32AsWord(0),
	)
}

func scaleFee(fee units.Asset, gas units.Symbol) (*uint256.Int, error) {
	if fee.Symbol != gas {
		return nil, eris.Wrapf(ErrFeeSymbolMismatch, "fee %s, gas token %s", fee, gas)
	}
	if fee.Amount < 0 {
		return nil, eris.Wrapf(units.ErrNonPositiveAmount, "fee %s is negative", fee)
	}
	if gas.Precision > units.EVMPrecision {
		return nil, eris.Wrapf(units.ErrInvalidRate, "gas token %s is more precise than the evm", gas)
	}
	return units.ToEvmWord(uint64(fee.Amount), units.EVMPrecision-gas.Precision), nil
}
