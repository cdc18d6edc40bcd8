// Package store holds the ledger-side tables of the bridge: its configuration, the helper
// contract addresses, the stake implementation contracts and the registered tokens.
package store

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rotisserie/eris"
	"pkg.world.dev/world-engine/evmutil/units"
)

var (
	ErrTokenAlreadyRegistered = eris.New("token already registered")
	ErrTokenNotRegistered     = eris.New("ERC-20 token not registered")
)

// Config is the bridge configuration singleton.
type Config struct {
	EVMAccount     units.Account  `json:"evm_account"`
	GasTokenSymbol units.Symbol   `json:"gas_token_symbol"`
	GasLimit       uint64         `json:"gas_limit"`
	InitGasLimit   uint64         `json:"init_gas_limit"`
	EndrmngAccount units.Account  `json:"endrmng_account"`
	PoolregAccount units.Account  `json:"poolreg_account"`
	GasfundAccount *units.Account `json:"gasfund_account,omitempty"`
}

// Helpers are the EVM addresses allowed to send bridge messages, one per channel.
type Helpers struct {
	RewardHelper *common.Address `json:"reward_helper,omitempty"`
	BTCDeposit   *common.Address `json:"btc_deposit,omitempty"`
	XSATDeposit  *common.Address `json:"xsat_deposit,omitempty"`
	GasFunds     *common.Address `json:"gas_funds,omitempty"`
}

// IsDepositProxy reports whether addr is the BTC or XSAT deposit proxy.
func (h Helpers) IsDepositProxy(addr common.Address) bool {
	return matches(h.BTCDeposit, addr) || matches(h.XSATDeposit, addr)
}

func matches(slot *common.Address, addr common.Address) bool {
	return slot != nil && *slot == addr
}

// ImplContract is a deployed stake helper implementation. The one with the highest ID is active.
type ImplContract struct {
	ID      uint64         `json:"id"`
	Address common.Address `json:"address"`
}

// Token is an ERC-20 registered for staking through its own proxy.
type Token struct {
	ID           uint64         `json:"id"`
	Proxy        common.Address `json:"proxy"`
	TokenAddress common.Address `json:"token_address"`
	Precision    uint8          `json:"precision"`
}

// Store persists the bridge tables. Implementations must be safe for concurrent use.
type Store interface {
	// Config returns false when the bridge has not been initialised.
	Config(ctx context.Context) (Config, bool, error)
	SetConfig(ctx context.Context, cfg Config) error

	Helpers(ctx context.Context) (Helpers, error)
	SetHelpers(ctx context.Context, h Helpers) error

	// AddImplContract appends an implementation, which becomes the active one.
	AddImplContract(ctx context.Context, addr common.Address) (ImplContract, error)
	LatestImplContract(ctx context.Context) (ImplContract, bool, error)

	// AddToken assigns the token an ID. It fails with ErrTokenAlreadyRegistered when either
	// the proxy or the token address is already present.
	AddToken(ctx context.Context, t Token) (Token, error)
	TokenByProxy(ctx context.Context, proxy common.Address) (Token, bool, error)
	TokenByAddress(ctx context.Context, token common.Address) (Token, bool, error)
	// RemoveToken fails with ErrTokenNotRegistered when no token uses the proxy.
	RemoveToken(ctx context.Context, proxy common.Address) error
	Tokens(ctx context.Context) ([]Token, error)
}
