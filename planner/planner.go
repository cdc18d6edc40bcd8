// Package planner deploys contracts from the bridge's reserved EVM address and predicts where
// they land, so the address can be recorded in the same transaction as the deployment.
package planner

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rotisserie/eris"
	"pkg.world.dev/world-engine/evmutil/abi"
	"pkg.world.dev/world-engine/evmutil/action"
	"pkg.world.dev/world-engine/evmutil/units"
)

// ExecutionLayer is the EVM runtime as the bridge sees it.
type ExecutionLayer interface {
	// NextNonce reads the account's next outgoing nonce. It never consumes it.
	NextNonce(ctx context.Context, account units.Account) (uint64, error)
	// AssertNonce makes the enclosing transaction fail unless the nonce is still current.
	AssertNonce(ctx context.Context, account units.Account, nonce uint64) error
	Call(ctx context.Context, call action.Call) error
}

type Planner struct {
	self  units.Account
	space units.AddressSpace
	exec  ExecutionLayer
}

func New(self units.Account, space units.AddressSpace, exec ExecutionLayer) *Planner {
	return &Planner{self: self, space: space, exec: exec}
}

// Deployer is the reserved address contracts are created from.
func (p *Planner) Deployer() common.Address {
	return p.space.ReservedFromAccount(p.self)
}

// Deploy submits code as a contract creation and returns the address it will be created at.
// The nonce is asserted in the same transaction, so a stale prediction aborts the deployment.
func (p *Planner) Deploy(ctx context.Context, code []byte, gasLimit uint64) (common.Address, error) {
	nonce, err := p.exec.NextNonce(ctx, p.self)
	if err != nil {
		return common.Address{}, eris.Wrap(err, "failed to read next nonce")
	}
	if err := p.exec.AssertNonce(ctx, p.self, nonce); err != nil {
		return common.Address{}, eris.Wrapf(err, "failed to assert nonce %d", nonce)
	}
	if err := p.submit(ctx, nil, code, gasLimit); err != nil {
		return common.Address{}, err
	}
	return PredictDeployedAddress(p.Deployer(), nonce), nil
}

// Call submits a call to an existing contract.
func (p *Planner) Call(ctx context.Context, to common.Address, data []byte, gasLimit uint64) error {
	return p.submit(ctx, to.Bytes(), data, gasLimit)
}

func (p *Planner) submit(ctx context.Context, to, data []byte, gasLimit uint64) error {
	err := p.exec.Call(ctx, action.Call{
		From:     p.self,
		To:       to,
		Value:    make([]byte, abi.WordSize),
		Data:     data,
		GasLimit: gasLimit,
	})
	return eris.Wrap(err, "failed to submit evm call")
}

// PredictDeployedAddress is the CREATE address: keccak256(rlp(deployer, nonce))[12:].
func PredictDeployedAddress(deployer common.Address, nonce uint64) common.Address {
	return crypto.CreateAddress(deployer, nonce)
}
