// Package evmutil is the native side of the EVM bridge utility contract. It accepts bridge
// messages from the EVM runtime and routes them to the staking, reward and gas-fund contracts,
// and it deploys and configures the EVM helper contracts those messages come from.
//
// Every action runs as one transaction: the outbound actions it produces are sent and its
// table writes applied only when the whole action succeeds.
package evmutil

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"pkg.world.dev/world-engine/evmutil/action"
	"pkg.world.dev/world-engine/evmutil/message"
	"pkg.world.dev/world-engine/evmutil/router"
	"pkg.world.dev/world-engine/evmutil/store"
	"pkg.world.dev/world-engine/evmutil/telemetry/sentry"
	"pkg.world.dev/world-engine/evmutil/units"
)

//nolint:gochecknoglobals // well-known accounts of the native ledger
var (
	DefaultEVMAccount     = units.MustParseAccount("evm.xsat")
	DefaultEndrmngAccount = units.MustParseAccount("endrmng.xsat")
	DefaultPoolregAccount = units.MustParseAccount("poolreg.xsat")
	DefaultGasfundAccount = units.MustParseAccount("gasfund.xsat")
	DefaultGasSymbol      = units.BTC
)

// Bytecodes are the compiled EVM contracts the bridge deploys.
type Bytecodes struct {
	StakeHelper  []byte
	RewardHelper []byte
	GasFunds     []byte
	Proxy        []byte
}

// NonceReader reads the EVM runtime's next-nonce table.
type NonceReader interface {
	NextNonce(ctx context.Context, account units.Account) (uint64, error)
}

type Contract struct {
	// mu serializes actions; the ledger executes one transaction at a time.
	mu sync.Mutex

	self   units.Account
	space  units.AddressSpace
	store  store.Store
	nonces NonceReader
	sink   action.Sink
	code   Bytecodes
	router *router.Router

	logger zerolog.Logger
	tracer trace.Tracer
}

// New returns the contract deployed at self. Outbound actions are delivered to sink.
func New(self units.Account, st store.Store, nonces NonceReader, sink action.Sink, opts ...Option) *Contract {
	c := &Contract{
		self:   self,
		space:  units.DefaultAddressSpace,
		store:  st,
		nonces: nonces,
		sink:   sink,
		logger: zerolog.Nop(),
		tracer: noop.NewTracerProvider().Tracer("evmutil"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.router = router.New(st, self,
		router.WithLogger(c.logger.With().Str("component", "router").Logger()),
		router.WithTracer(c.tracer),
		router.WithAddressSpace(c.space),
	)
	return c
}

func (c *Contract) Self() units.Account {
	return c.self
}

// OnBridgeMessage handles a raw bridge message envelope delivered by caller, which must be the
// configured EVM runtime account.
func (c *Contract) OnBridgeMessage(ctx context.Context, caller units.Account, raw []byte) error {
	err := c.transact(ctx, "onbridgemsg", func(ctx context.Context, tx *txn) error {
		cfg, err := tx.config(ctx)
		if err != nil {
			return err
		}
		if caller != cfg.EVMAccount {
			return eris.Wrapf(ErrInvalidSender, "got %s, expected %s", caller, cfg.EVMAccount)
		}
		msg, err := message.Unpack(raw)
		if err != nil {
			return err
		}
		return c.router.Route(ctx, msg, tx)
	})
	if err != nil {
		sentry.CaptureException(ctx, err, map[string]string{"action": "onbridgemsg"})
	}
	return err
}

// OnTransfer is notified of token transfers involving the contract. Incoming transfers are
// rejected.
func (c *Contract) OnTransfer(_ context.Context, from, to units.Account, quantity units.Asset, _ string) error {
	if to != c.self || from == c.self {
		return nil
	}
	return eris.Wrapf(ErrTransferRejected, "%s from %s", quantity, from)
}

// transact runs fn as one transaction. Actions fn adds are sent only if fn succeeds, and table
// writes fn stages are applied after they were sent.
func (c *Contract) transact(ctx context.Context, name string, fn func(ctx context.Context, tx *txn) error) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, span := c.tracer.Start(ctx, "evmutil."+name,
		trace.WithAttributes(attribute.String("contract", c.self.String())))
	defer func() {
		if err != nil {
			span.SetStatus(codes.Error, "action failed")
			span.RecordError(err)
		}
		span.End()
	}()

	tx := &txn{c: c}
	if err := fn(ctx, tx); err != nil {
		tx.batch.Discard()
		c.logger.Warn().Err(err).Str("action", name).Msg("action aborted")
		return err
	}

	sent := tx.batch.Len()
	if err := tx.batch.Flush(ctx, c.sink); err != nil {
		return err
	}
	for _, write := range tx.writes {
		if err := write(ctx); err != nil {
			return eris.Wrapf(err, "failed to apply %s", name)
		}
	}

	c.logger.Debug().Str("action", name).Int("sent", sent).Msg("action applied")
	return nil
}
