package message

import (
	"github.com/rotisserie/eris"
	"pkg.world.dev/world-engine/evmutil/abi"
	"pkg.world.dev/world-engine/evmutil/units"
)

// Decoder turns the data payload of a bridge message into an Op of a given family.
type Decoder struct {
	space units.AddressSpace
}

func NewDecoder(space units.AddressSpace) Decoder {
	return Decoder{space: space}
}

// Decode dispatches to the decoder of family. delta is only used by FamilyEndorserStake.
func (d Decoder) Decode(family Family, data []byte, delta uint8) (Op, error) {
	switch family {
	case FamilyRewards:
		return d.DecodeRewards(data)
	case FamilyEndorserStake:
		return d.DecodeEndorserStake(data, delta)
	case FamilyGasFunds:
		return d.DecodeGasFunds(data)
	case FamilyUndefined:
		return nil, eris.Wrap(ErrUnsupportedOperation, "undefined message family")
	default:
		return nil, eris.Wrapf(ErrUnsupportedOperation, "unknown message family %d", family)
	}
}

// DecodeEndorserStake decodes messages from staking proxies. Amounts are divided by 10^delta.
func (d Decoder) DecodeEndorserStake(data []byte, delta uint8) (Op, error) {
	r, sel, err := d.open(data)
	if err != nil {
		return nil, err
	}

	switch sel {
	case SelectorClaim:
		if err := requireLength(data, sel, 2); err != nil {
			return nil, err
		}
		var op Claim
		if op.Validator, err = d.readAccount(r); err != nil {
			return nil, err
		}
		if op.Staker, err = r.ReadAddress(); err != nil {
			return nil, err
		}
		return op, nil

	case SelectorClaimWithDonation:
		if err := requireLength(data, sel, 3); err != nil {
			return nil, err
		}
		var op ClaimWithDonation
		if op.Validator, err = d.readAccount(r); err != nil {
			return nil, err
		}
		if op.Staker, err = r.ReadAddress(); err != nil {
			return nil, err
		}
		rate, err := r.ReadWord()
		if err != nil {
			return nil, err
		}
		if op.DonateRate, err = units.CheckDonateRate(rate); err != nil {
			return nil, err
		}
		return op, nil

	case SelectorDeposit, SelectorWithdraw:
		if err := requireLength(data, sel, 3); err != nil {
			return nil, err
		}
		validator, err := d.readAccount(r)
		if err != nil {
			return nil, err
		}
		amount, err := readAmount(r, delta)
		if err != nil {
			return nil, err
		}
		staker, err := r.ReadAddress()
		if err != nil {
			return nil, err
		}
		if sel == SelectorDeposit {
			return Deposit{Validator: validator, Amount: amount, Staker: staker}, nil
		}
		return Withdraw{Validator: validator, Amount: amount, Staker: staker}, nil

	case SelectorRestake:
		if err := requireLength(data, sel, 4); err != nil {
			return nil, err
		}
		var op Restake
		if op.From, err = d.readAccount(r); err != nil {
			return nil, err
		}
		if op.To, err = d.readAccount(r); err != nil {
			return nil, err
		}
		if op.Amount, err = readAmount(r, delta); err != nil {
			return nil, err
		}
		if op.Staker, err = r.ReadAddress(); err != nil {
			return nil, err
		}
		return op, nil
	}
	return nil, unsupported(FamilyEndorserStake, sel)
}

// DecodeRewards decodes messages from the reward helper.
func (d Decoder) DecodeRewards(data []byte) (Op, error) {
	r, sel, err := d.open(data)
	if err != nil {
		return nil, err
	}

	switch sel {
	case SelectorClaim, SelectorValidatorClaim:
		// The second word carries the EVM sender and is required but not used.
		if err := requireLength(data, sel, 2); err != nil {
			return nil, err
		}
		receiver, err := d.readAccount(r)
		if err != nil {
			return nil, err
		}
		if sel == SelectorClaim {
			return PoolClaim{Receiver: receiver}, nil
		}
		return ValidatorClaim{Receiver: receiver}, nil

	case SelectorCreditClaim:
		if err := requireLength(data, sel, 3); err != nil {
			return nil, err
		}
		var op CreditClaim
		if op.Validator, err = d.readAccount(r); err != nil {
			return nil, err
		}
		if op.Proxy, err = r.ReadAddress(); err != nil {
			return nil, err
		}
		if op.Staker, err = r.ReadAddress(); err != nil {
			return nil, err
		}
		return op, nil
	}
	return nil, unsupported(FamilyRewards, sel)
}

// DecodeGasFunds decodes messages from the gas-funds contract. Enforcer and RAMS claims name
// their receiver by a plain EVM address, not a reserved one.
func (d Decoder) DecodeGasFunds(data []byte) (Op, error) {
	r, sel, err := d.open(data)
	if err != nil {
		return nil, err
	}

	switch sel {
	case SelectorGasClaim:
		if err := requireLength(data, sel, 3); err != nil {
			return nil, err
		}
		var op GasClaim
		if op.Receiver, err = d.readAccount(r); err != nil {
			return nil, err
		}
		if op.Sender, err = r.ReadAddress(); err != nil {
			return nil, err
		}
		if op.ReceiverType, err = r.ReadUint8(); err != nil {
			return nil, err
		}
		return op, nil

	case SelectorEnfClaim, SelectorRamsClaim:
		if err := requireLength(data, sel, 1); err != nil {
			return nil, err
		}
		receiver, err := r.ReadAddress()
		if err != nil {
			return nil, err
		}
		if sel == SelectorEnfClaim {
			return EnfClaim{Receiver: receiver}, nil
		}
		return RamsClaim{Receiver: receiver}, nil
	}
	return nil, unsupported(FamilyGasFunds, sel)
}

func (Decoder) open(data []byte) (*abi.Reader, abi.Selector, error) {
	r := abi.NewReader(data)
	sel, err := r.ReadSelector()
	if err != nil {
		return nil, abi.Selector{}, err
	}
	return r, sel, nil
}

func (d Decoder) readAccount(r *abi.Reader) (units.Account, error) {
	offset := r.Offset()
	addr, err := r.ReadAddress()
	if err != nil {
		return 0, err
	}
	account, err := d.space.AccountFromReserved(addr)
	if err != nil {
		return 0, eris.Wrapf(err, "destination at offset %d", offset)
	}
	return account, nil
}

func readAmount(r *abi.Reader, delta uint8) (uint64, error) {
	word, err := r.ReadWord()
	if err != nil {
		return 0, err
	}
	return units.ToNativeAmount(word, delta)
}

func requireLength(data []byte, sel abi.Selector, words int) error {
	if need := minLength(words); len(data) < need {
		return eris.Wrapf(abi.ErrTruncatedMessage,
			"application type 0x%08x needs %d bytes, got %d", sel.AppType(), need, len(data))
	}
	return nil
}

func unsupported(f Family, sel abi.Selector) error {
	return eris.Wrapf(ErrUnsupportedOperation, "%s message with application type 0x%08x", f, sel.AppType())
}
