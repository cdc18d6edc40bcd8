package message_test

import (
	"slices"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pkg.world.dev/world-engine/evmutil/abi"
	"pkg.world.dev/world-engine/evmutil/message"
	"pkg.world.dev/world-engine/evmutil/testutils"
	"pkg.world.dev/world-engine/evmutil/units"
)

var space = units.DefaultAddressSpace //nolint:gochecknoglobals // test fixture

func payload(sel abi.Selector, words ...[]byte) []byte {
	return slices.Concat(append([][]byte{sel.Bytes()}, words...)...)
}

func account(a units.Account) []byte {
	return abi.WriteAddress(space.ReservedFromAccount(a))
}

func amount(v uint64) []byte {
	return abi.WriteUint64AsWord(v)
}

func TestSelectorAppTypes(t *testing.T) {
	t.Parallel()

	// The wire bytes are the app types read back to front.
	tests := []struct {
		sel  abi.Selector
		wire string
	}{
		{message.SelectorDeposit, "0xf45346dc"},
		{message.SelectorWithdraw, "0x69328dec"},
		{message.SelectorClaim, "0x21c0b342"},
		{message.SelectorRestake, "0x1d507d2b"},
		{message.SelectorClaimWithDonation, "0xfcd42fac"},
		{message.SelectorValidatorClaim, "0x07b66fc1"},
		{message.SelectorCreditClaim, "0x60b57b3d"},
		{message.SelectorGasClaim, "0xb4936f13"},
		{message.SelectorEnfClaim, "0x33f58043"},
		{message.SelectorRamsClaim, "0x29721a03"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.wire, tt.sel.String())
	}
}

// -------------------------------------------------------------------------------------------------
// Endorser stake family
// -------------------------------------------------------------------------------------------------

func TestDecodeEndorserStake(t *testing.T) {
	t.Parallel()

	dec := message.NewDecoder(space)
	staker := common.HexToAddress("0x1111111111111111111111111111111111111111")
	validator := units.Account(1001)

	tests := []struct {
		name  string
		data  []byte
		delta uint8
		want  message.Op
		err   error
	}{
		{
			name:  "deposit",
			data:  payload(message.SelectorDeposit, account(validator), amount(5_000_000_000_000), abi.WriteAddress(staker)),
			delta: 10,
			want:  message.Deposit{Validator: validator, Amount: 500, Staker: staker},
		},
		{
			name:  "withdraw",
			data:  payload(message.SelectorWithdraw, account(validator), amount(7), abi.WriteAddress(staker)),
			delta: 0,
			want:  message.Withdraw{Validator: validator, Amount: 7, Staker: staker},
		},
		{
			name: "claim",
			data: payload(message.SelectorClaim, account(validator), abi.WriteAddress(staker)),
			want: message.Claim{Validator: validator, Staker: staker},
		},
		{
			name: "claim with full donation",
			data: payload(message.SelectorClaimWithDonation, account(validator), abi.WriteAddress(staker), amount(10000)),
			want: message.ClaimWithDonation{Validator: validator, Staker: staker, DonateRate: 10000},
		},
		{
			name: "donate rate above 100%",
			data: payload(message.SelectorClaimWithDonation, account(validator), abi.WriteAddress(staker), amount(10001)),
			err:  units.ErrInvalidRate,
		},
		{
			name:  "restake",
			data:  payload(message.SelectorRestake, account(1), account(2), amount(3_0000000000), abi.WriteAddress(staker)),
			delta: 10,
			want:  message.Restake{From: 1, To: 2, Amount: 3, Staker: staker},
		},
		{
			name:  "deposit with dust",
			data:  payload(message.SelectorDeposit, account(validator), amount(5_000_000_001), abi.WriteAddress(staker)),
			delta: 10,
			err:   units.ErrDustLoss,
		},
		{
			name: "deposit of nothing",
			data: payload(message.SelectorDeposit, account(validator), amount(0), abi.WriteAddress(staker)),
			err:  units.ErrNonPositiveAmount,
		},
		{
			name: "destination is not reserved",
			data: payload(message.SelectorClaim, abi.WriteAddress(staker), abi.WriteAddress(staker)),
			err:  units.ErrNotReservedAddress,
		},
		{
			name: "sender word with high bytes",
			data: payload(message.SelectorClaim, account(validator), slices.Repeat([]byte{0xff}, 32)),
			err:  abi.ErrInvalidAddress,
		},
		{
			name: "truncated deposit",
			data: payload(message.SelectorDeposit, account(validator), amount(5)),
			err:  abi.ErrTruncatedMessage,
		},
		{
			name: "truncated restake",
			data: payload(message.SelectorRestake, account(1), account(2), amount(3), abi.WriteAddress(staker))[:131],
			err:  abi.ErrTruncatedMessage,
		},
		{
			name: "short selector",
			data: []byte{0xf4, 0x53, 0x46},
			err:  abi.ErrTruncatedMessage,
		},
		{
			name: "validator claim is a rewards operation",
			data: payload(message.SelectorValidatorClaim, account(validator), abi.WriteAddress(staker)),
			err:  message.ErrUnsupportedOperation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := dec.DecodeEndorserStake(tt.data, tt.delta)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Selector(), got.Selector())
		})
	}
}

// -------------------------------------------------------------------------------------------------
// Rewards family
// -------------------------------------------------------------------------------------------------

func TestDecodeRewards(t *testing.T) {
	t.Parallel()

	dec := message.NewDecoder(space)
	proxy := common.HexToAddress("0x2222222222222222222222222222222222222222")
	staker := common.HexToAddress("0x3333333333333333333333333333333333333333")

	op, err := dec.DecodeRewards(payload(message.SelectorClaim, account(42), abi.WriteAddress(staker)))
	require.NoError(t, err)
	assert.Equal(t, message.PoolClaim{Receiver: 42}, op)

	op, err = dec.DecodeRewards(payload(message.SelectorValidatorClaim, account(43), abi.WriteAddress(staker)))
	require.NoError(t, err)
	assert.Equal(t, message.ValidatorClaim{Receiver: 43}, op)

	op, err = dec.DecodeRewards(payload(message.SelectorCreditClaim, account(44), abi.WriteAddress(proxy), abi.WriteAddress(staker)))
	require.NoError(t, err)
	assert.Equal(t, message.CreditClaim{Validator: 44, Proxy: proxy, Staker: staker}, op)

	// The unused sender word is still required.
	_, err = dec.DecodeRewards(payload(message.SelectorClaim, account(42)))
	require.ErrorIs(t, err, abi.ErrTruncatedMessage)

	_, err = dec.DecodeRewards(payload(message.SelectorDeposit, account(42), amount(1), abi.WriteAddress(staker)))
	require.ErrorIs(t, err, message.ErrUnsupportedOperation)
}

// -------------------------------------------------------------------------------------------------
// Gas funds family
// -------------------------------------------------------------------------------------------------

func TestDecodeGasFunds(t *testing.T) {
	t.Parallel()

	dec := message.NewDecoder(space)
	sender := common.HexToAddress("0x4444444444444444444444444444444444444444")

	op, err := dec.DecodeGasFunds(payload(message.SelectorGasClaim, account(7), abi.WriteAddress(sender), amount(2)))
	require.NoError(t, err)
	assert.Equal(t, message.GasClaim{Receiver: 7, Sender: sender, ReceiverType: 2}, op)

	_, err = dec.DecodeGasFunds(payload(message.SelectorGasClaim, account(7), abi.WriteAddress(sender)))
	require.ErrorIs(t, err, abi.ErrTruncatedMessage)

	_, err = dec.DecodeGasFunds(payload(message.SelectorGasClaim, account(7), abi.WriteAddress(sender), amount(256)))
	require.ErrorIs(t, err, abi.ErrValueOutOfRange)

	// Enforcer and RAMS claims take a plain address.
	op, err = dec.DecodeGasFunds(payload(message.SelectorEnfClaim, abi.WriteAddress(sender)))
	require.NoError(t, err)
	assert.Equal(t, message.EnfClaim{Receiver: sender}, op)

	op, err = dec.DecodeGasFunds(payload(message.SelectorRamsClaim, abi.WriteAddress(sender)))
	require.NoError(t, err)
	assert.Equal(t, message.RamsClaim{Receiver: sender}, op)

	_, err = dec.DecodeGasFunds(message.SelectorRamsClaim.Bytes())
	require.ErrorIs(t, err, abi.ErrTruncatedMessage)

	_, err = dec.DecodeGasFunds(payload(message.SelectorClaim, account(7), abi.WriteAddress(sender)))
	require.ErrorIs(t, err, message.ErrUnsupportedOperation)
}

func TestDecode_Family(t *testing.T) {
	t.Parallel()

	dec := message.NewDecoder(space)
	data := payload(message.SelectorClaim, account(9), abi.WriteAddress(common.Address{}))

	op, err := dec.Decode(message.FamilyRewards, data, 0)
	require.NoError(t, err)
	assert.IsType(t, message.PoolClaim{}, op)

	op, err = dec.Decode(message.FamilyEndorserStake, data, 0)
	require.NoError(t, err)
	assert.IsType(t, message.Claim{}, op)

	_, err = dec.Decode(message.FamilyUndefined, data, 0)
	require.ErrorIs(t, err, message.ErrUnsupportedOperation)

	assert.Equal(t, message.FamilyGasFunds, message.ParseFamily("gas-funds"))
	assert.Equal(t, message.FamilyUndefined, message.ParseFamily("nope"))
}

// -------------------------------------------------------------------------------------------------
// Model-based fuzzing
// -------------------------------------------------------------------------------------------------

func TestDecodeEndorserStake_Truncation(t *testing.T) {
	t.Parallel()
	prng := testutils.NewRand(t)

	dec := message.NewDecoder(space)
	sels := map[abi.Selector]int{
		message.SelectorClaim:             2,
		message.SelectorClaimWithDonation: 3,
		message.SelectorDeposit:           3,
		message.SelectorWithdraw:          3,
		message.SelectorRestake:           4,
	}

	for range 500 {
		sel := testutils.RandMapKey(prng, sels)
		words := sels[sel]
		full := payload(sel)
		for range words {
			full = append(full, account(units.Account(prng.Uint64N(1<<40)+1))...)
		}
		cut := prng.IntN(len(full))

		// Property: any payload shorter than the operation's minimum fails with truncation,
		// whatever the content of the bytes that are present.
		_, err := dec.DecodeEndorserStake(full[:cut], 0)
		require.ErrorIs(t, err, abi.ErrTruncatedMessage, "selector %s cut at %d", sel, cut)
	}
}

// -------------------------------------------------------------------------------------------------
// Envelope
// -------------------------------------------------------------------------------------------------

func TestEnvelope(t *testing.T) {
	t.Parallel()

	msg := message.BridgeMessage{
		Receiver:  units.MustParseAccount("evmutil.xsat"),
		Sender:    common.HexToAddress("0x5555555555555555555555555555555555555555"),
		Timestamp: 1_700_000_000_000_000,
		Value:     abi.WriteWord(uint256.NewInt(0)),
		Data:      payload(message.SelectorClaim, account(1), account(2)),
	}

	raw, err := message.Pack(msg)
	require.NoError(t, err)
	assert.Equal(t, byte(message.VersionV0), raw[0])

	got, err := message.Unpack(raw)
	require.NoError(t, err)
	assert.Equal(t, msg, got)

	sel, err := got.Selector()
	require.NoError(t, err)
	assert.Equal(t, message.SelectorClaim, sel)

	t.Run("unsupported version", func(t *testing.T) {
		t.Parallel()
		bumped := slices.Clone(raw)
		bumped[0] = 1
		_, err := message.Unpack(bumped)
		require.ErrorIs(t, err, message.ErrUnsupportedMessageVersion)
	})

	t.Run("truncated", func(t *testing.T) {
		t.Parallel()
		_, err := message.Unpack(raw[:len(raw)-1])
		require.ErrorIs(t, err, abi.ErrTruncatedMessage)
	})
}
