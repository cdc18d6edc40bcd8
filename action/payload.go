package action

import (
	"github.com/ethereum/go-ethereum/common"
	"pkg.world.dev/world-engine/evmutil/units"
)

// Action names understood by the collaborating contracts.
const (
	NameEvmStake       = "evmstake"
	NameEvmUnstake     = "evmunstake"
	NameEvmNewStake    = "evmnewstake"
	NameEvmStakeXSAT   = "evmstakexsat"
	NameEvmUnstakeXSAT = "evmunstkxsat"
	NameEvmClaim       = "evmclaim"
	NameEvmClaim2      = "evmclaim2"
	NameVdrClaim       = "vdrclaim"
	NamePoolClaim      = "claim"
	NameEvmEnfClaim    = "evmenfclaim"
	NameEvmRamsClaim   = "evmramsclaim"
	NameCall           = "call"
	NameAssertNonce    = "assertnonce"
)

// Stake is the payload of evmstake, evmunstake, evmstakexsat and evmunstkxsat.
type Stake struct {
	Caller    units.Account  `json:"caller"`
	Proxy     common.Address `json:"proxy"`
	Staker    common.Address `json:"staker"`
	Validator units.Account  `json:"validator"`
	Quantity  units.Asset    `json:"quantity"`
}

// NewStake is the payload of evmnewstake.
type NewStake struct {
	Caller       units.Account  `json:"caller"`
	Proxy        common.Address `json:"proxy"`
	Staker       common.Address `json:"staker"`
	OldValidator units.Account  `json:"old_validator"`
	NewValidator units.Account  `json:"new_validator"`
	Quantity     units.Asset    `json:"quantity"`
}

// Claim is the payload of the staking contract's evmclaim.
type Claim struct {
	Caller    units.Account  `json:"caller"`
	Proxy     common.Address `json:"proxy"`
	Staker    common.Address `json:"staker"`
	Validator units.Account  `json:"validator"`
}

// Claim2 is the payload of evmclaim2.
type Claim2 struct {
	Caller     units.Account  `json:"caller"`
	Proxy      common.Address `json:"proxy"`
	Staker     common.Address `json:"staker"`
	Validator  units.Account  `json:"validator"`
	DonateRate uint16         `json:"donate_rate"`
}

// Receiver is the payload of the pool and validator reward claims.
type Receiver struct {
	Receiver units.Account `json:"receiver"`
}

// GasClaim is the payload of the gas-funds contract's evmclaim.
type GasClaim struct {
	Caller       units.Account  `json:"caller"`
	Proxy        common.Address `json:"proxy"`
	Sender       common.Address `json:"sender"`
	Receiver     units.Account  `json:"receiver"`
	ReceiverType uint8          `json:"receiver_type"`
}

// AddressClaim is the payload of evmenfclaim and evmramsclaim.
type AddressClaim struct {
	Caller   units.Account  `json:"caller"`
	Proxy    common.Address `json:"proxy"`
	Receiver common.Address `json:"receiver"`
}

// Call asks the EVM to execute a transaction from a reserved address. An empty To deploys Data
// as a contract.
type Call struct {
	From     units.Account `json:"from"`
	To       []byte        `json:"to"`
	Value    []byte        `json:"value"`
	Data     []byte        `json:"data"`
	GasLimit uint64        `json:"gas_limit"`
}

// AssertNonce makes the EVM transaction fail unless the account's next nonce matches.
type AssertNonce struct {
	Account   units.Account `json:"account"`
	NextNonce uint64        `json:"next_nonce"`
}
