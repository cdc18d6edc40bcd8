package evmutil

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rotisserie/eris"
	"pkg.world.dev/world-engine/evmutil/calldata"
	"pkg.world.dev/world-engine/evmutil/store"
	"pkg.world.dev/world-engine/evmutil/units"
)

// -------------------------------------------------------------------------------------------------
// Configuration
// -------------------------------------------------------------------------------------------------

// Init creates the configuration. It can run once. When tokens were registered by an earlier
// deployment only the default EVM account and gas symbol are accepted.
func (c *Contract) Init(
	ctx context.Context,
	evmAccount units.Account,
	gasSymbol units.Symbol,
	gasLimit, initGasLimit uint64,
) error {
	return c.transact(ctx, "init", func(ctx context.Context, tx *txn) error {
		_, found, err := c.store.Config(ctx)
		if err != nil {
			return eris.Wrap(err, "failed to read config")
		}
		if found {
			return ErrAlreadyInitialized
		}

		tokens, err := c.store.Tokens(ctx)
		if err != nil {
			return eris.Wrap(err, "failed to list tokens")
		}
		if len(tokens) > 0 && (evmAccount != DefaultEVMAccount || gasSymbol != DefaultGasSymbol) {
			return eris.Wrapf(ErrInvalidInit, "%d tokens are registered", len(tokens))
		}
		if gasSymbol.Precision > units.EVMPrecision {
			return eris.Wrapf(units.ErrInvalidRate, "gas symbol %s is more precise than the evm", gasSymbol)
		}

		cfg := store.Config{
			EVMAccount:     evmAccount,
			GasTokenSymbol: gasSymbol,
			GasLimit:       gasLimit,
			InitGasLimit:   initGasLimit,
			EndrmngAccount: DefaultEndrmngAccount,
			PoolregAccount: DefaultPoolregAccount,
		}
		tx.stage(func(ctx context.Context) error {
			if err := c.store.SetConfig(ctx, cfg); err != nil {
				return err
			}
			return c.store.SetHelpers(ctx, store.Helpers{})
		})
		return nil
	})
}

// SetGasLimit updates the gas limits of configuration calls and of deployments. Nil leaves a
// limit unchanged.
func (c *Contract) SetGasLimit(ctx context.Context, gasLimit, initGasLimit *uint64) error {
	return c.transact(ctx, "setgaslimit", func(ctx context.Context, tx *txn) error {
		cfg, err := tx.config(ctx)
		if err != nil {
			return err
		}
		if gasLimit != nil {
			cfg.GasLimit = *gasLimit
		}
		if initGasLimit != nil {
			cfg.InitGasLimit = *initGasLimit
		}
		tx.stage(func(ctx context.Context) error { return c.store.SetConfig(ctx, cfg) })
		return nil
	})
}

// InitGasFund enables gas fee claims with the default gas fund account, unless one is set.
func (c *Contract) InitGasFund(ctx context.Context) error {
	return c.transact(ctx, "initgasfund", func(ctx context.Context, tx *txn) error {
		cfg, err := tx.config(ctx)
		if err != nil {
			return err
		}
		if cfg.GasfundAccount == nil {
			account := DefaultGasfundAccount
			cfg.GasfundAccount = &account
		}
		tx.stage(func(ctx context.Context) error { return c.store.SetConfig(ctx, cfg) })
		return nil
	})
}

// -------------------------------------------------------------------------------------------------
// Helper contracts
// -------------------------------------------------------------------------------------------------

// DeployStakeImpl deploys a stake helper implementation, which becomes the active one.
func (c *Contract) DeployStakeImpl(ctx context.Context) (common.Address, error) {
	var addr common.Address
	err := c.transact(ctx, "dpystakeimpl", func(ctx context.Context, tx *txn) error {
		var err error
		addr, err = tx.deploy(ctx, c.code.StakeHelper)
		if err != nil {
			return err
		}
		tx.stage(func(ctx context.Context) error {
			_, err := c.store.AddImplContract(ctx, addr)
			return err
		})
		return nil
	})
	return addr, err
}

// SetStakeImpl registers an already deployed stake helper implementation.
func (c *Contract) SetStakeImpl(ctx context.Context, implAddress string) error {
	return c.transact(ctx, "setstakeimpl", func(_ context.Context, tx *txn) error {
		addr, err := ParseAddress(implAddress)
		if err != nil {
			return err
		}
		tx.stage(func(ctx context.Context) error {
			_, err := c.store.AddImplContract(ctx, addr)
			return err
		})
		return nil
	})
}

func (c *Contract) DeployRewardHelper(ctx context.Context) (common.Address, error) {
	return c.deployHelper(ctx, "dpyrwdhelper", c.code.RewardHelper, func(h *store.Helpers, addr common.Address) {
		h.RewardHelper = &addr
	})
}

func (c *Contract) SetRewardHelper(ctx context.Context, address string) error {
	return c.setHelper(ctx, "setrwdhelper", address, func(h *store.Helpers, addr common.Address) {
		h.RewardHelper = &addr
	})
}

func (c *Contract) DeployGasFunds(ctx context.Context) (common.Address, error) {
	return c.deployHelper(ctx, "dpygasfunds", c.code.GasFunds, func(h *store.Helpers, addr common.Address) {
		h.GasFunds = &addr
	})
}

func (c *Contract) SetGasFunds(ctx context.Context, address string) error {
	return c.setHelper(ctx, "setgasfunds", address, func(h *store.Helpers, addr common.Address) {
		h.GasFunds = &addr
	})
}

func (c *Contract) deployHelper(
	ctx context.Context,
	name string,
	code []byte,
	assign func(h *store.Helpers, addr common.Address),
) (common.Address, error) {
	var addr common.Address
	err := c.transact(ctx, name, func(ctx context.Context, tx *txn) error {
		helpers, err := c.store.Helpers(ctx)
		if err != nil {
			return eris.Wrap(err, "failed to read helpers")
		}
		addr, err = tx.deploy(ctx, code)
		if err != nil {
			return err
		}
		assign(&helpers, addr)
		tx.stage(func(ctx context.Context) error { return c.store.SetHelpers(ctx, helpers) })
		return nil
	})
	return addr, err
}

func (c *Contract) setHelper(
	ctx context.Context,
	name, address string,
	assign func(h *store.Helpers, addr common.Address),
) error {
	return c.transact(ctx, name, func(ctx context.Context, tx *txn) error {
		addr, err := ParseAddress(address)
		if err != nil {
			return err
		}
		if _, err := tx.config(ctx); err != nil {
			return err
		}
		helpers, err := c.store.Helpers(ctx)
		if err != nil {
			return eris.Wrap(err, "failed to read helpers")
		}
		assign(&helpers, addr)
		tx.stage(func(ctx context.Context) error { return c.store.SetHelpers(ctx, helpers) })
		return nil
	})
}

// deploy creates code from the bridge's reserved address with the deployment gas limit.
func (tx *txn) deploy(ctx context.Context, code []byte) (common.Address, error) {
	cfg, err := tx.config(ctx)
	if err != nil {
		return common.Address{}, err
	}
	if err := calldata.CheckBytecode(code); err != nil {
		return common.Address{}, err
	}
	return tx.planner().Deploy(ctx, code, cfg.InitGasLimit)
}

// -------------------------------------------------------------------------------------------------
// Deposit proxies
// -------------------------------------------------------------------------------------------------

// DeployBTCDeposit deploys the validator deposit proxy for BTC.
func (c *Contract) DeployBTCDeposit(
	ctx context.Context,
	tokenAddress string,
	fee units.Asset,
	erc20Precision uint8,
) (common.Address, error) {
	return c.deployDeposit(ctx, "dpyvlddepbtc", tokenAddress, fee, erc20Precision, false)
}

// DeployXSATDeposit deploys the validator deposit proxy for XSAT.
func (c *Contract) DeployXSATDeposit(
	ctx context.Context,
	tokenAddress string,
	fee units.Asset,
	erc20Precision uint8,
) (common.Address, error) {
	return c.deployDeposit(ctx, "dpyvlddepsat", tokenAddress, fee, erc20Precision, true)
}

func (c *Contract) deployDeposit(
	ctx context.Context,
	name, tokenAddress string,
	fee units.Asset,
	erc20Precision uint8,
	xsat bool,
) (common.Address, error) {
	var proxy common.Address
	err := c.transact(ctx, name, func(ctx context.Context, tx *txn) error {
		if _, err := tx.config(ctx); err != nil {
			return err
		}
		helpers, err := c.store.Helpers(ctx)
		if err != nil {
			return eris.Wrap(err, "failed to read helpers")
		}
		slot := &helpers.BTCDeposit
		if xsat {
			slot = &helpers.XSATDeposit
		}
		if *slot != nil {
			return eris.Wrapf(ErrAlreadyDeployed, "deposit proxy at %s", (*slot).Hex())
		}

		impl, err := c.latestImpl(ctx)
		if err != nil {
			return err
		}
		token, err := ParseAddress(tokenAddress)
		if err != nil {
			return err
		}

		proxy, err = tx.deployProxy(ctx, token, impl, fee, erc20Precision, xsat, true)
		if err != nil {
			return err
		}
		*slot = &proxy
		tx.stage(func(ctx context.Context) error { return c.store.SetHelpers(ctx, helpers) })
		return nil
	})
	return proxy, err
}

// deployProxy deploys a stake helper proxy for token in front of impl. All arguments are
// validated before anything is sent to the EVM.
func (tx *txn) deployProxy(
	ctx context.Context,
	token, impl common.Address,
	fee units.Asset,
	erc20Precision uint8,
	notBTC, validatorDeposits bool,
) (common.Address, error) {
	cfg, err := tx.config(ctx)
	if err != nil {
		return common.Address{}, err
	}
	code, err := calldata.EncodeProxyDeployment(calldata.ProxyDeployment{
		Bytecode:            tx.c.code.Proxy,
		Impl:                impl,
		Owner:               tx.c.space.ReservedFromAccount(tx.c.self),
		EVMAccount:          tx.c.space.ReservedFromAccount(cfg.EVMAccount),
		ERC20:               token,
		Fee:                 fee,
		GasSymbol:           cfg.GasTokenSymbol,
		ERC20Precision:      erc20Precision,
		NotBTC:              notBTC,
		IsValidatorDeposits: validatorDeposits,
	})
	if err != nil {
		return common.Address{}, err
	}
	return tx.planner().Deploy(ctx, code, cfg.InitGasLimit)
}

func (c *Contract) latestImpl(ctx context.Context) (common.Address, error) {
	impl, found, err := c.store.LatestImplContract(ctx)
	if err != nil {
		return common.Address{}, eris.Wrap(err, "failed to read implementation contracts")
	}
	if !found {
		return common.Address{}, ErrNoImplementation
	}
	return impl.Address, nil
}

// -------------------------------------------------------------------------------------------------
// Tokens
// -------------------------------------------------------------------------------------------------

// RegisterToken deploys a proxy for an ERC-20 in front of the active implementation and
// registers the pair.
func (c *Contract) RegisterToken(
	ctx context.Context,
	tokenAddress string,
	fee units.Asset,
	erc20Precision uint8,
) (store.Token, error) {
	var registered store.Token
	err := c.transact(ctx, "regtoken", func(ctx context.Context, tx *txn) error {
		if _, err := tx.config(ctx); err != nil {
			return err
		}
		impl, err := c.latestImpl(ctx)
		if err != nil {
			return err
		}
		token, err := ParseAddress(tokenAddress)
		if err != nil {
			return err
		}
		return tx.registerToken(ctx, token, impl, fee, erc20Precision, &registered)
	})
	return registered, err
}

// RegisterTokenWithCode is RegisterToken with an explicit implementation contract.
func (c *Contract) RegisterTokenWithCode(
	ctx context.Context,
	tokenAddress, implAddress string,
	fee units.Asset,
	erc20Precision uint8,
) (store.Token, error) {
	var registered store.Token
	err := c.transact(ctx, "regwithcode", func(ctx context.Context, tx *txn) error {
		impl, err := ParseAddress(implAddress)
		if err != nil {
			return err
		}
		token, err := ParseAddress(tokenAddress)
		if err != nil {
			return err
		}
		return tx.registerToken(ctx, token, impl, fee, erc20Precision, &registered)
	})
	return registered, err
}

func (tx *txn) registerToken(
	ctx context.Context,
	token, impl common.Address,
	fee units.Asset,
	erc20Precision uint8,
	out *store.Token,
) error {
	_, found, err := tx.c.store.TokenByAddress(ctx, token)
	if err != nil {
		return eris.Wrap(err, "failed to look up token")
	}
	if found {
		return eris.Wrapf(ErrTokenAlreadyRegistered, "token %s", token.Hex())
	}

	proxy, err := tx.deployProxy(ctx, token, impl, fee, erc20Precision, false, false)
	if err != nil {
		return err
	}
	tx.stage(func(ctx context.Context) error {
		added, err := tx.c.store.AddToken(ctx, store.Token{
			Proxy:        proxy,
			TokenAddress: token,
			Precision:    erc20Precision,
		})
		*out = added
		return err
	})
	return nil
}

// UnregisterToken removes the token served by the proxy.
func (c *Contract) UnregisterToken(ctx context.Context, proxyAddress string) error {
	return c.transact(ctx, "unregtoken", func(ctx context.Context, tx *txn) error {
		proxy, err := ParseAddress(proxyAddress)
		if err != nil {
			return err
		}
		if _, err := c.tokenByProxy(ctx, proxy); err != nil {
			return err
		}
		tx.stage(func(ctx context.Context) error { return c.store.RemoveToken(ctx, proxy) })
		return nil
	})
}

func (c *Contract) tokenByProxy(ctx context.Context, proxy common.Address) (store.Token, error) {
	t, found, err := c.store.TokenByProxy(ctx, proxy)
	if err != nil {
		return store.Token{}, eris.Wrap(err, "failed to look up token")
	}
	if !found {
		return store.Token{}, eris.Wrapf(ErrTokenNotRegistered, "proxy %s", proxy.Hex())
	}
	return t, nil
}

// -------------------------------------------------------------------------------------------------
// Proxy configuration
// -------------------------------------------------------------------------------------------------

// SetDepositFee sets the deposit fee of a registered token's proxy.
func (c *Contract) SetDepositFee(ctx context.Context, proxyAddress string, fee units.Asset) error {
	return c.transact(ctx, "setdepfee", func(ctx context.Context, tx *txn) error {
		cfg, err := tx.config(ctx)
		if err != nil {
			return err
		}
		data, err := calldata.EncodeSetFee(fee, cfg.GasTokenSymbol)
		if err != nil {
			return err
		}
		proxy, err := ParseAddress(proxyAddress)
		if err != nil {
			return err
		}
		if _, err := c.tokenByProxy(ctx, proxy); err != nil {
			return err
		}
		return tx.planner().Call(ctx, proxy, data, cfg.GasLimit)
	})
}

// SetLockTime sets the lock time of a deposit proxy or a registered token's proxy.
func (c *Contract) SetLockTime(ctx context.Context, proxyAddress string, lockTime uint64) error {
	return c.transact(ctx, "setlocktime", func(ctx context.Context, tx *txn) error {
		cfg, proxy, err := c.configurableProxy(ctx, tx, proxyAddress)
		if err != nil {
			return err
		}
		return tx.planner().Call(ctx, proxy, calldata.EncodeSetLockTime(lockTime), cfg.GasLimit)
	})
}

// UpgradeStakeImpl points a deposit proxy or a registered token's proxy at the active
// implementation.
func (c *Contract) UpgradeStakeImpl(ctx context.Context, proxyAddress string) error {
	return c.transact(ctx, "upstakeimpl", func(ctx context.Context, tx *txn) error {
		cfg, proxy, err := c.configurableProxy(ctx, tx, proxyAddress)
		if err != nil {
			return err
		}
		impl, err := c.latestImpl(ctx)
		if err != nil {
			return err
		}
		return tx.planner().Call(ctx, proxy, calldata.EncodeUpgradeToAndCall(impl), cfg.GasLimit)
	})
}

// configurableProxy resolves a proxy the bridge may configure: a deposit proxy or the proxy of
// a registered token.
func (c *Contract) configurableProxy(
	ctx context.Context,
	tx *txn,
	proxyAddress string,
) (store.Config, common.Address, error) {
	cfg, err := tx.config(ctx)
	if err != nil {
		return store.Config{}, common.Address{}, err
	}
	proxy, err := ParseAddress(proxyAddress)
	if err != nil {
		return store.Config{}, common.Address{}, err
	}
	helpers, err := c.store.Helpers(ctx)
	if err != nil {
		return store.Config{}, common.Address{}, eris.Wrap(err, "failed to read helpers")
	}
	if !helpers.IsDepositProxy(proxy) {
		if _, err := c.tokenByProxy(ctx, proxy); err != nil {
			return store.Config{}, common.Address{}, err
		}
	}
	return cfg, proxy, nil
}
