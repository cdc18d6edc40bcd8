package message

import (
	"github.com/ethereum/go-ethereum/common"
	"pkg.world.dev/world-engine/evmutil/abi"
	"pkg.world.dev/world-engine/evmutil/units"
)

// Family is the group of operations a registered sender is allowed to emit.
type Family uint8

const (
	FamilyUndefined Family = iota
	FamilyRewards
	FamilyEndorserStake
	FamilyGasFunds
)

func (f Family) String() string {
	switch f {
	case FamilyRewards:
		return "rewards"
	case FamilyEndorserStake:
		return "endorser-stake"
	case FamilyGasFunds:
		return "gas-funds"
	case FamilyUndefined:
		return "undefined"
	default:
		return "undefined"
	}
}

// ParseFamily converts a family name back to a Family.
func ParseFamily(s string) Family {
	for _, f := range []Family{FamilyRewards, FamilyEndorserStake, FamilyGasFunds} {
		if f.String() == s {
			return f
		}
	}
	return FamilyUndefined
}

// Op is a decoded bridge operation. The set of implementations is closed.
type Op interface {
	Selector() abi.Selector
	isOp()
}

// Claim claims endorser rewards for Staker toward Validator.
type Claim struct {
	Validator units.Account  `json:"validator"`
	Staker    common.Address `json:"staker"`
}

// ClaimWithDonation is a Claim that donates DonateRate/10000 of the reward.
type ClaimWithDonation struct {
	Validator  units.Account  `json:"validator"`
	Staker     common.Address `json:"staker"`
	DonateRate uint16         `json:"donate_rate"`
}

// Deposit stakes Amount for Staker with Validator.
type Deposit struct {
	Validator units.Account  `json:"validator"`
	Amount    uint64         `json:"amount"`
	Staker    common.Address `json:"staker"`
}

// Withdraw unstakes Amount for Staker from Validator.
type Withdraw struct {
	Validator units.Account  `json:"validator"`
	Amount    uint64         `json:"amount"`
	Staker    common.Address `json:"staker"`
}

// Restake moves Amount of Staker's stake from one validator to another.
type Restake struct {
	From   units.Account  `json:"from"`
	To     units.Account  `json:"to"`
	Amount uint64         `json:"amount"`
	Staker common.Address `json:"staker"`
}

// PoolClaim claims mining pool rewards for Receiver.
type PoolClaim struct {
	Receiver units.Account `json:"receiver"`
}

// ValidatorClaim claims validator rewards for Receiver.
type ValidatorClaim struct {
	Receiver units.Account `json:"receiver"`
}

// CreditClaim claims credit-staked rewards of Staker through Proxy toward Validator.
type CreditClaim struct {
	Validator units.Account  `json:"validator"`
	Proxy     common.Address `json:"proxy"`
	Staker    common.Address `json:"staker"`
}

// GasClaim claims gas fee rewards for Receiver.
type GasClaim struct {
	Receiver     units.Account  `json:"receiver"`
	Sender       common.Address `json:"sender"`
	ReceiverType uint8          `json:"receiver_type"`
}

// EnfClaim claims gas fee rewards for an enforcer identified by its EVM address.
type EnfClaim struct {
	Receiver common.Address `json:"receiver"`
}

// RamsClaim claims gas fee rewards for a RAMS holder identified by its EVM address.
type RamsClaim struct {
	Receiver common.Address `json:"receiver"`
}

func (Claim) Selector() abi.Selector             { return SelectorClaim }
func (ClaimWithDonation) Selector() abi.Selector { return SelectorClaimWithDonation }
func (Deposit) Selector() abi.Selector           { return SelectorDeposit }
func (Withdraw) Selector() abi.Selector          { return SelectorWithdraw }
func (Restake) Selector() abi.Selector           { return SelectorRestake }
func (PoolClaim) Selector() abi.Selector         { return SelectorClaim }
func (ValidatorClaim) Selector() abi.Selector    { return SelectorValidatorClaim }
func (CreditClaim) Selector() abi.Selector       { return SelectorCreditClaim }
func (GasClaim) Selector() abi.Selector          { return SelectorGasClaim }
func (EnfClaim) Selector() abi.Selector          { return SelectorEnfClaim }
func (RamsClaim) Selector() abi.Selector         { return SelectorRamsClaim }

func (Claim) isOp()             {}
func (ClaimWithDonation) isOp() {}
func (Deposit) isOp()           {}
func (Withdraw) isOp()          {}
func (Restake) isOp()           {}
func (PoolClaim) isOp()         {}
func (ValidatorClaim) isOp()    {}
func (CreditClaim) isOp()       {}
func (GasClaim) isOp()          {}
func (EnfClaim) isOp()          {}
func (RamsClaim) isOp()         {}
