// Package router resolves the EVM sender of a bridge message to the channel it was registered
// for, decodes the payload with that channel's rules and dispatches exactly one call to the
// collaborating native contract.
package router

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"pkg.world.dev/world-engine/evmutil/message"
	"pkg.world.dev/world-engine/evmutil/store"
	"pkg.world.dev/world-engine/evmutil/units"
)

// BTCDepositDelta is the decimals between the EVM amount and the native amount of both deposit
// channels.
const BTCDepositDelta = 10

// State is the part of the ledger tables the router reads. It is queried on every message.
type State interface {
	Config(ctx context.Context) (store.Config, bool, error)
	Helpers(ctx context.Context) (store.Helpers, error)
	TokenByProxy(ctx context.Context, proxy common.Address) (store.Token, bool, error)
}

// Channel identifies which registered address sent a message.
type Channel uint8

const (
	ChannelUndefined Channel = iota
	ChannelRewardHelper
	ChannelBTCDeposit
	ChannelXSATDeposit
	ChannelGasFunds
	ChannelToken
)

func (c Channel) String() string {
	switch c {
	case ChannelRewardHelper:
		return "reward-helper"
	case ChannelBTCDeposit:
		return "btc-deposit"
	case ChannelXSATDeposit:
		return "xsat-deposit"
	case ChannelGasFunds:
		return "gas-funds"
	case ChannelToken:
		return "token"
	case ChannelUndefined:
		return "undefined"
	default:
		return "undefined"
	}
}

// Destination is how a sender's messages are decoded and dispatched.
type Destination struct {
	Channel Channel
	Family  message.Family
	Delta   uint8
	Deposit bool
	XSAT    bool
	Token   *store.Token
}

type Router struct {
	state   State
	self    units.Account
	space   units.AddressSpace
	decoder message.Decoder
	logger  zerolog.Logger
	tracer  trace.Tracer
}

// New returns a router that accepts messages addressed to self.
func New(state State, self units.Account, opts ...Option) *Router {
	r := &Router{
		state:  state,
		self:   self,
		space:  units.DefaultAddressSpace,
		logger: zerolog.Nop(),
		tracer: noop.NewTracerProvider().Tracer("router"),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.decoder = message.NewDecoder(r.space)
	return r
}

// Route decodes msg and makes its single downstream call on out. Every check happens before
// the call, so a failed message reaches no collaborator.
func (r *Router) Route(ctx context.Context, msg message.BridgeMessage, out Collaborators) (err error) {
	ctx, span := r.tracer.Start(ctx, "router.route",
		trace.WithAttributes(attribute.String("sender", msg.Sender.Hex())))
	defer func() {
		if err != nil {
			span.SetStatus(codes.Error, "failed to route bridge message")
			span.RecordError(err)
		}
		span.End()
	}()

	if msg.Receiver != r.self {
		return eris.Wrapf(ErrWrongReceiver, "message for %s, expected %s", msg.Receiver, r.self)
	}

	cfg, found, err := r.state.Config(ctx)
	if err != nil {
		return eris.Wrap(err, "failed to read config")
	}
	if !found {
		return eris.Wrap(ErrNotInitialized, "cannot route bridge message")
	}

	dest, err := r.resolve(ctx, cfg, msg.Sender)
	if err != nil {
		return err
	}

	op, err := r.decoder.Decode(dest.Family, msg.Data, dest.Delta)
	if err != nil {
		r.logger.Warn().Err(err).
			Str("sender", msg.Sender.Hex()).
			Stringer("channel", dest.Channel).
			Msg("rejected bridge message")
		return err
	}
	span.SetAttributes(attribute.String("channel", dest.Channel.String()), attribute.String("op", op.Selector().String()))

	r.logger.Debug().
		Str("sender", msg.Sender.Hex()).
		Stringer("channel", dest.Channel).
		Str("app_type", fmt.Sprintf("0x%08x", op.Selector().AppType())).
		Msg("routing bridge message")

	return r.dispatch(ctx, cfg, dest, msg.Sender, op, out)
}

// Resolve returns where messages from sender go. Registered helpers take priority over tokens
// in the order reward helper, BTC deposit, XSAT deposit, gas funds.
func (r *Router) Resolve(ctx context.Context, sender common.Address) (Destination, error) {
	cfg, found, err := r.state.Config(ctx)
	if err != nil {
		return Destination{}, eris.Wrap(err, "failed to read config")
	}
	if !found {
		return Destination{}, eris.Wrap(ErrNotInitialized, "cannot resolve sender")
	}
	return r.resolve(ctx, cfg, sender)
}

func (r *Router) resolve(ctx context.Context, cfg store.Config, sender common.Address) (Destination, error) {
	helpers, err := r.state.Helpers(ctx)
	if err != nil {
		return Destination{}, eris.Wrap(err, "failed to read helpers")
	}

	switch {
	case is(helpers.RewardHelper, sender):
		return Destination{Channel: ChannelRewardHelper, Family: message.FamilyRewards}, nil
	case is(helpers.BTCDeposit, sender):
		return Destination{
			Channel: ChannelBTCDeposit, Family: message.FamilyEndorserStake,
			Delta: BTCDepositDelta, Deposit: true,
		}, nil
	case is(helpers.XSATDeposit, sender):
		return Destination{
			Channel: ChannelXSATDeposit, Family: message.FamilyEndorserStake,
			Delta: BTCDepositDelta, Deposit: true, XSAT: true,
		}, nil
	case is(helpers.GasFunds, sender):
		return Destination{Channel: ChannelGasFunds, Family: message.FamilyGasFunds}, nil
	}

	token, found, err := r.state.TokenByProxy(ctx, sender)
	if err != nil {
		return Destination{}, eris.Wrap(err, "failed to look up token")
	}
	if !found {
		return Destination{}, eris.Wrapf(ErrUnknownSender, "sender %s", sender.Hex())
	}
	delta, err := units.PrecisionDelta(token.Precision, cfg.GasTokenSymbol)
	if err != nil {
		return Destination{}, eris.Wrapf(err, "token %s", token.TokenAddress.Hex())
	}
	return Destination{Channel: ChannelToken, Family: message.FamilyEndorserStake, Delta: delta, Token: &token}, nil
}

func (r *Router) dispatch(
	ctx context.Context,
	cfg store.Config,
	dest Destination,
	sender common.Address,
	op message.Op,
	out Collaborators,
) error {
	stakeSymbol := cfg.GasTokenSymbol
	if dest.XSAT {
		stakeSymbol = units.XSAT
	}

	switch op := op.(type) {
	case message.Claim:
		return out.Claim(ctx, ClaimRequest{Proxy: sender, Staker: op.Staker, Validator: op.Validator})

	case message.ClaimWithDonation:
		return out.Claim2(ctx, ClaimRequest{
			Proxy: sender, Staker: op.Staker, Validator: op.Validator, DonateRate: op.DonateRate,
		})

	case message.Deposit:
		req := StakeRequest{
			Proxy: sender, Staker: op.Staker, Validator: op.Validator,
			Quantity: units.NewAsset(op.Amount, stakeSymbol),
		}
		if dest.XSAT {
			return out.StakeXSAT(ctx, req)
		}
		return out.Stake(ctx, req)

	case message.Withdraw:
		req := StakeRequest{
			Proxy: sender, Staker: op.Staker, Validator: op.Validator,
			Quantity: units.NewAsset(op.Amount, stakeSymbol),
		}
		if dest.XSAT {
			return out.UnstakeXSAT(ctx, req)
		}
		return out.Unstake(ctx, req)

	case message.Restake:
		if dest.XSAT || dest.Deposit {
			return eris.Wrapf(ErrInvalidOperation, "restake through %s", dest.Channel)
		}
		return out.NewStake(ctx, NewStakeRequest{
			Proxy: sender, Staker: op.Staker, OldValidator: op.From, NewValidator: op.To,
			Quantity: units.NewAsset(op.Amount, stakeSymbol),
		})

	case message.PoolClaim:
		return out.PoolClaim(ctx, op.Receiver)

	case message.ValidatorClaim:
		return out.ValidatorClaim(ctx, op.Receiver)

	case message.CreditClaim:
		return out.Claim(ctx, ClaimRequest{Proxy: op.Proxy, Staker: op.Staker, Validator: op.Validator})

	case message.GasClaim:
		return out.GasClaim(ctx, GasClaimRequest{
			Proxy: sender, Sender: op.Sender, Receiver: op.Receiver, ReceiverType: op.ReceiverType,
		})

	case message.EnfClaim:
		return out.EnfClaim(ctx, AddressClaimRequest{Proxy: sender, Receiver: op.Receiver})

	case message.RamsClaim:
		return out.RamsClaim(ctx, AddressClaimRequest{Proxy: sender, Receiver: op.Receiver})
	}
	return eris.Wrapf(message.ErrUnsupportedOperation, "no dispatch for %T", op)
}

func is(slot *common.Address, sender common.Address) bool {
	return slot != nil && *slot == sender
}
