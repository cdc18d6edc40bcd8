package router

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"pkg.world.dev/world-engine/evmutil/units"
)

// StakeRequest asks the staking contract to move Quantity for Staker with Validator.
type StakeRequest struct {
	Proxy     common.Address
	Staker    common.Address
	Validator units.Account
	Quantity  units.Asset
}

// NewStakeRequest moves existing stake between validators.
type NewStakeRequest struct {
	Proxy        common.Address
	Staker       common.Address
	OldValidator units.Account
	NewValidator units.Account
	Quantity     units.Asset
}

// ClaimRequest claims staking rewards. DonateRate is only used by Claim2.
type ClaimRequest struct {
	Proxy      common.Address
	Staker     common.Address
	Validator  units.Account
	DonateRate uint16
}

// GasClaimRequest claims gas fee rewards for a native receiver.
type GasClaimRequest struct {
	Proxy        common.Address
	Sender       common.Address
	Receiver     units.Account
	ReceiverType uint8
}

// AddressClaimRequest claims gas fee rewards for an EVM address.
type AddressClaimRequest struct {
	Proxy    common.Address
	Receiver common.Address
}

// Staking is the endorser staking contract.
type Staking interface {
	Stake(ctx context.Context, req StakeRequest) error
	Unstake(ctx context.Context, req StakeRequest) error
	StakeXSAT(ctx context.Context, req StakeRequest) error
	UnstakeXSAT(ctx context.Context, req StakeRequest) error
	NewStake(ctx context.Context, req NewStakeRequest) error
	Claim(ctx context.Context, req ClaimRequest) error
	Claim2(ctx context.Context, req ClaimRequest) error
}

// Pool is the mining pool registry.
type Pool interface {
	PoolClaim(ctx context.Context, receiver units.Account) error
}

// Validator pays validator rewards.
type Validator interface {
	ValidatorClaim(ctx context.Context, receiver units.Account) error
}

// GasFund pays gas fee rewards.
type GasFund interface {
	GasClaim(ctx context.Context, req GasClaimRequest) error
	EnfClaim(ctx context.Context, req AddressClaimRequest) error
	RamsClaim(ctx context.Context, req AddressClaimRequest) error
}

// Collaborators is every contract a routed message can reach.
type Collaborators interface {
	Staking
	Pool
	Validator
	GasFund
}
