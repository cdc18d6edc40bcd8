package calldata_test

import (
	"bytes"
	"math/big"
	"testing"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pkg.world.dev/world-engine/evmutil/abi"
	"pkg.world.dev/world-engine/evmutil/calldata"
	"pkg.world.dev/world-engine/evmutil/testutils"
	"pkg.world.dev/world-engine/evmutil/units"
)

func arguments(t *testing.T, types ...string) gethabi.Arguments {
	t.Helper()
	args := make(gethabi.Arguments, 0, len(types))
	for _, name := range types {
		typ, err := gethabi.NewType(name, "", nil)
		require.NoError(t, err)
		args = append(args, gethabi.Argument{Type: typ})
	}
	return args
}

func validDeployment(bytecode []byte) calldata.ProxyDeployment {
	space := units.DefaultAddressSpace
	return calldata.ProxyDeployment{
		Bytecode:            bytecode,
		Impl:                common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Owner:               space.ReservedFromAccount(units.MustParseAccount("evmutil.xsat")),
		EVMAccount:          space.ReservedFromAccount(units.MustParseAccount("evm.xsat")),
		ERC20:               common.HexToAddress("0x2222222222222222222222222222222222222222"),
		Fee:                 units.NewAsset(10_000, units.BTC),
		GasSymbol:           units.BTC,
		ERC20Precision:      18,
		NotBTC:              true,
		IsValidatorDeposits: false,
	}
}

func TestEncodeProxyDeployment(t *testing.T) {
	t.Parallel()
	prng := testutils.NewRand(t)

	bytecode := testutils.RandBytes(prng, 200+prng.IntN(100))
	p := validDeployment(bytecode)

	out, err := calldata.EncodeProxyDeployment(p)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, bytecode))

	// constructor(address impl, bytes data)
	values, err := arguments(t, "address", "bytes").Unpack(out[len(bytecode):])
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, p.Impl, values[0].(common.Address))

	init := values[1].([]byte)
	require.Len(t, init, abi.SelectorSize+6*abi.WordSize)
	assert.Equal(t, calldata.SelectorInitialize.Bytes(), init[:abi.SelectorSize])

	args, err := arguments(t, "address", "address", "address", "uint256", "bool", "bool").Unpack(init[abi.SelectorSize:])
	require.NoError(t, err)
	require.Len(t, args, 6)
	assert.Equal(t, p.Owner, args[0].(common.Address))
	assert.Equal(t, p.EVMAccount, args[1].(common.Address))
	assert.Equal(t, p.ERC20, args[2].(common.Address))
	assert.Equal(t, 0, big.NewInt(100_000_000_000_000).Cmp(args[3].(*big.Int)), "fee scaled by 10^10")
	assert.True(t, args[4].(bool))
	assert.False(t, args[5].(bool))

	// Property: the encoded tail is word aligned and nothing follows the padded initializer.
	tail := out[len(bytecode):]
	assert.Zero(t, len(tail)%abi.WordSize)
	assert.Equal(t, 3*abi.WordSize+(len(init)+31)/32*32, len(tail))
}

func TestEncodeProxyDeployment_Rejects(t *testing.T) {
	t.Parallel()

	bytecode := bytes.Repeat([]byte{0x60}, 256)

	tests := []struct {
		name   string
		modify func(p *calldata.ProxyDeployment)
		err    error
	}{
		{
			name:   "erc20 less precise than fee",
			modify: func(p *calldata.ProxyDeployment) { p.ERC20Precision = 6 },
			err:    units.ErrInvalidRate,
		},
		{
			name:   "erc20 precision beyond the window",
			modify: func(p *calldata.ProxyDeployment) { p.ERC20Precision = 8 + 58 },
			err:    units.ErrInvalidRate,
		},
		{
			name:   "fee in another symbol",
			modify: func(p *calldata.ProxyDeployment) { p.Fee = units.NewAsset(1, units.XSAT) },
			err:    calldata.ErrFeeSymbolMismatch,
		},
		{
			name:   "negative fee",
			modify: func(p *calldata.ProxyDeployment) { p.Fee.Amount = -1 },
			err:    units.ErrNonPositiveAmount,
		},
		{
			name:   "placeholder bytecode",
			modify: func(p *calldata.ProxyDeployment) { p.Bytecode = bytecode[:128] },
			err:    calldata.ErrInvalidBytecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := validDeployment(bytecode)
			tt.modify(&p)

			out, err := calldata.EncodeProxyDeployment(p)
			require.ErrorIs(t, err, tt.err)
			assert.Nil(t, out)
		})
	}

	t.Run("window edges", func(t *testing.T) {
		t.Parallel()
		for _, precision := range []uint8{8, 8 + 57} {
			p := validDeployment(bytecode)
			p.ERC20Precision = precision
			_, err := calldata.EncodeProxyDeployment(p)
			require.NoError(t, err)
		}
	})
}

// -------------------------------------------------------------------------------------------------
// Admin calls
// -------------------------------------------------------------------------------------------------

func TestEncodeSetFee(t *testing.T) {
	t.Parallel()

	out, err := calldata.EncodeSetFee(units.NewAsset(3, units.BTC), units.BTC)
	require.NoError(t, err)
	assert.Equal(t, calldata.SelectorSetFee.Bytes(), out[:abi.SelectorSize])

	values, err := arguments(t, "uint256").Unpack(out[abi.SelectorSize:])
	require.NoError(t, err)
	assert.Equal(t, 0, big.NewInt(30_000_000_000).Cmp(values[0].(*big.Int)))

	_, err = calldata.EncodeSetFee(units.NewAsset(3, units.XSAT), units.BTC)
	require.ErrorIs(t, err, calldata.ErrFeeSymbolMismatch)
}

func TestEncodeSetLockTime(t *testing.T) {
	t.Parallel()

	out := calldata.EncodeSetLockTime(86_400)
	require.Len(t, out, abi.SelectorSize+abi.WordSize)
	assert.Equal(t, calldata.SelectorSetLockTime.Bytes(), out[:abi.SelectorSize])

	values, err := arguments(t, "uint256").Unpack(out[abi.SelectorSize:])
	require.NoError(t, err)
	assert.Equal(t, uint64(86_400), values[0].(*big.Int).Uint64())
}

func TestEncodeUpgradeToAndCall(t *testing.T) {
	t.Parallel()

	assert.Equal(t, abi.SelectorFromSignature("upgradeToAndCall(address,bytes)"), calldata.SelectorUpgradeToAndCall)

	impl := common.HexToAddress("0x3333333333333333333333333333333333333333")
	out := calldata.EncodeUpgradeToAndCall(impl)
	require.Len(t, out, abi.SelectorSize+3*abi.WordSize)

	values, err := arguments(t, "address", "bytes").Unpack(out[abi.SelectorSize:])
	require.NoError(t, err)
	assert.Equal(t, impl, values[0].(common.Address))
	assert.Empty(t, values[1].([]byte))
}

func TestEncodeCall(t *testing.T) {
	t.Parallel()

	sel := abi.Selector{1, 2, 3, 4}
	assert.Equal(t, []byte{1, 2, 3, 4}, calldata.EncodeCall(sel))

	out := calldata.EncodeCall(sel, abi.WriteUint64AsWord(1), abi.WriteBool(true))
	assert.Len(t, out, abi.SelectorSize+2*abi.WordSize)
	assert.Equal(t, out[4:36], out[36:68])
}
