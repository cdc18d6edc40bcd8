package evmutil

import (
	"context"

	"github.com/rotisserie/eris"
	"pkg.world.dev/world-engine/evmutil/action"
	"pkg.world.dev/world-engine/evmutil/planner"
	"pkg.world.dev/world-engine/evmutil/router"
	"pkg.world.dev/world-engine/evmutil/store"
	"pkg.world.dev/world-engine/evmutil/units"
)

// txn is the state of one running action. It is the router's view of the collaborating
// contracts and the planner's view of the EVM runtime; both only append to the batch.
type txn struct {
	c      *Contract
	cfg    *store.Config
	batch  action.Batch
	writes []func(ctx context.Context) error
}

var (
	_ router.Collaborators   = (*txn)(nil)
	_ planner.ExecutionLayer = (*txn)(nil)
)

// config reads the configuration once per transaction.
func (tx *txn) config(ctx context.Context) (store.Config, error) {
	if tx.cfg != nil {
		return *tx.cfg, nil
	}
	cfg, found, err := tx.c.store.Config(ctx)
	if err != nil {
		return store.Config{}, eris.Wrap(err, "failed to read config")
	}
	if !found {
		return store.Config{}, eris.Wrap(ErrNotInitialized, "evmutil config not exist")
	}
	tx.cfg = &cfg
	return cfg, nil
}

// stage queues a table write for after the actions were sent.
func (tx *txn) stage(write func(ctx context.Context) error) {
	tx.writes = append(tx.writes, write)
}

func (tx *txn) planner() *planner.Planner {
	return planner.New(tx.c.self, tx.c.space, tx)
}

func (tx *txn) send(account units.Account, name string, data any) {
	tx.batch.Add(action.Action{
		Account:    account,
		Name:       name,
		Authorizer: tx.c.self,
		Data:       data,
	})
}

// -------------------------------------------------------------------------------------------------
// Staking
// -------------------------------------------------------------------------------------------------

func (tx *txn) stake(ctx context.Context, name string, req router.StakeRequest) error {
	cfg, err := tx.config(ctx)
	if err != nil {
		return err
	}
	tx.send(cfg.EndrmngAccount, name, action.Stake{
		Caller:    tx.c.self,
		Proxy:     req.Proxy,
		Staker:    req.Staker,
		Validator: req.Validator,
		Quantity:  req.Quantity,
	})
	return nil
}

func (tx *txn) Stake(ctx context.Context, req router.StakeRequest) error {
	return tx.stake(ctx, action.NameEvmStake, req)
}

func (tx *txn) Unstake(ctx context.Context, req router.StakeRequest) error {
	return tx.stake(ctx, action.NameEvmUnstake, req)
}

func (tx *txn) StakeXSAT(ctx context.Context, req router.StakeRequest) error {
	return tx.stake(ctx, action.NameEvmStakeXSAT, req)
}

func (tx *txn) UnstakeXSAT(ctx context.Context, req router.StakeRequest) error {
	return tx.stake(ctx, action.NameEvmUnstakeXSAT, req)
}

func (tx *txn) NewStake(ctx context.Context, req router.NewStakeRequest) error {
	cfg, err := tx.config(ctx)
	if err != nil {
		return err
	}
	tx.send(cfg.EndrmngAccount, action.NameEvmNewStake, action.NewStake{
		Caller:       tx.c.self,
		Proxy:        req.Proxy,
		Staker:       req.Staker,
		OldValidator: req.OldValidator,
		NewValidator: req.NewValidator,
		Quantity:     req.Quantity,
	})
	return nil
}

func (tx *txn) Claim(ctx context.Context, req router.ClaimRequest) error {
	cfg, err := tx.config(ctx)
	if err != nil {
		return err
	}
	tx.send(cfg.EndrmngAccount, action.NameEvmClaim, action.Claim{
		Caller:    tx.c.self,
		Proxy:     req.Proxy,
		Staker:    req.Staker,
		Validator: req.Validator,
	})
	return nil
}

func (tx *txn) Claim2(ctx context.Context, req router.ClaimRequest) error {
	cfg, err := tx.config(ctx)
	if err != nil {
		return err
	}
	tx.send(cfg.EndrmngAccount, action.NameEvmClaim2, action.Claim2{
		Caller:     tx.c.self,
		Proxy:      req.Proxy,
		Staker:     req.Staker,
		Validator:  req.Validator,
		DonateRate: req.DonateRate,
	})
	return nil
}

// -------------------------------------------------------------------------------------------------
// Rewards
// -------------------------------------------------------------------------------------------------

func (tx *txn) PoolClaim(ctx context.Context, receiver units.Account) error {
	cfg, err := tx.config(ctx)
	if err != nil {
		return err
	}
	tx.send(cfg.PoolregAccount, action.NamePoolClaim, action.Receiver{Receiver: receiver})
	return nil
}

func (tx *txn) ValidatorClaim(ctx context.Context, receiver units.Account) error {
	cfg, err := tx.config(ctx)
	if err != nil {
		return err
	}
	tx.send(cfg.EndrmngAccount, action.NameVdrClaim, action.Receiver{Receiver: receiver})
	return nil
}

// -------------------------------------------------------------------------------------------------
// Gas funds
// -------------------------------------------------------------------------------------------------

func (tx *txn) gasfund(ctx context.Context) (units.Account, error) {
	cfg, err := tx.config(ctx)
	if err != nil {
		return 0, err
	}
	if cfg.GasfundAccount == nil {
		return 0, ErrNoGasFundAccount
	}
	return *cfg.GasfundAccount, nil
}

func (tx *txn) GasClaim(ctx context.Context, req router.GasClaimRequest) error {
	account, err := tx.gasfund(ctx)
	if err != nil {
		return err
	}
	tx.send(account, action.NameEvmClaim, action.GasClaim{
		Caller:       tx.c.self,
		Proxy:        req.Proxy,
		Sender:       req.Sender,
		Receiver:     req.Receiver,
		ReceiverType: req.ReceiverType,
	})
	return nil
}

func (tx *txn) EnfClaim(ctx context.Context, req router.AddressClaimRequest) error {
	return tx.addressClaim(ctx, action.NameEvmEnfClaim, req)
}

func (tx *txn) RamsClaim(ctx context.Context, req router.AddressClaimRequest) error {
	return tx.addressClaim(ctx, action.NameEvmRamsClaim, req)
}

func (tx *txn) addressClaim(ctx context.Context, name string, req router.AddressClaimRequest) error {
	account, err := tx.gasfund(ctx)
	if err != nil {
		return err
	}
	tx.send(account, name, action.AddressClaim{
		Caller:   tx.c.self,
		Proxy:    req.Proxy,
		Receiver: req.Receiver,
	})
	return nil
}

// -------------------------------------------------------------------------------------------------
// EVM runtime
// -------------------------------------------------------------------------------------------------

func (tx *txn) NextNonce(ctx context.Context, account units.Account) (uint64, error) {
	return tx.c.nonces.NextNonce(ctx, account)
}

func (tx *txn) AssertNonce(ctx context.Context, account units.Account, nonce uint64) error {
	cfg, err := tx.config(ctx)
	if err != nil {
		return err
	}
	// assertnonce carries no authorization.
	tx.batch.Add(action.Action{
		Account: cfg.EVMAccount,
		Name:    action.NameAssertNonce,
		Data:    action.AssertNonce{Account: account, NextNonce: nonce},
	})
	return nil
}

func (tx *txn) Call(ctx context.Context, call action.Call) error {
	cfg, err := tx.config(ctx)
	if err != nil {
		return err
	}
	tx.send(cfg.EVMAccount, action.NameCall, call)
	return nil
}
