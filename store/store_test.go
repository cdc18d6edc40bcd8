package store_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pkg.world.dev/world-engine/evmutil/store"
	"pkg.world.dev/world-engine/evmutil/testutils"
	"pkg.world.dev/world-engine/evmutil/units"
)

func newStores(t *testing.T) map[string]func() store.Store {
	t.Helper()
	return map[string]func() store.Store{
		"memory": func() store.Store { return store.NewMemoryStore() },
		"redis": func() store.Store {
			s := miniredis.RunT(t)
			return store.NewRedisStore(store.RedisOptions{Addr: s.Addr()}, "evmutil")
		},
	}
}

func TestStore_Singletons(t *testing.T) {
	t.Parallel()

	for name, newStore := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			s := newStore()

			_, found, err := s.Config(ctx)
			require.NoError(t, err)
			assert.False(t, found)

			gasfund := units.MustParseAccount("gasfund.xsat")
			cfg := store.Config{
				EVMAccount:     units.MustParseAccount("evm.xsat"),
				GasTokenSymbol: units.BTC,
				GasLimit:       500_000,
				InitGasLimit:   10_000_000,
				EndrmngAccount: units.MustParseAccount("endrmng.xsat"),
				PoolregAccount: units.MustParseAccount("poolreg.xsat"),
				GasfundAccount: &gasfund,
			}
			require.NoError(t, s.SetConfig(ctx, cfg))
			got, found, err := s.Config(ctx)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, cfg, got)

			h, err := s.Helpers(ctx)
			require.NoError(t, err)
			assert.Equal(t, store.Helpers{}, h)

			btc := common.HexToAddress("0x0000000000000000000000000000000000000b7c")
			h.BTCDeposit = &btc
			require.NoError(t, s.SetHelpers(ctx, h))
			h, err = s.Helpers(ctx)
			require.NoError(t, err)
			require.NotNil(t, h.BTCDeposit)
			assert.Equal(t, btc, *h.BTCDeposit)
			assert.True(t, h.IsDepositProxy(btc))
			assert.False(t, h.IsDepositProxy(common.Address{}))
		})
	}
}

func TestStore_ImplContracts(t *testing.T) {
	t.Parallel()

	for name, newStore := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			s := newStore()

			_, found, err := s.LatestImplContract(ctx)
			require.NoError(t, err)
			assert.False(t, found)

			first := common.HexToAddress("0x01")
			second := common.HexToAddress("0x02")
			impl, err := s.AddImplContract(ctx, first)
			require.NoError(t, err)
			assert.Equal(t, store.ImplContract{ID: 0, Address: first}, impl)
			_, err = s.AddImplContract(ctx, second)
			require.NoError(t, err)

			latest, found, err := s.LatestImplContract(ctx)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, store.ImplContract{ID: 1, Address: second}, latest)
		})
	}
}

func TestStore_Tokens(t *testing.T) {
	t.Parallel()

	for name, newStore := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			s := newStore()

			tok := store.Token{
				Proxy:        common.HexToAddress("0xaa"),
				TokenAddress: common.HexToAddress("0xbb"),
				Precision:    18,
			}
			added, err := s.AddToken(ctx, tok)
			require.NoError(t, err)
			assert.Equal(t, uint64(0), added.ID)

			// Same token behind a different proxy.
			_, err = s.AddToken(ctx, store.Token{Proxy: common.HexToAddress("0xcc"), TokenAddress: tok.TokenAddress})
			require.ErrorIs(t, err, store.ErrTokenAlreadyRegistered)

			// Same proxy for a different token.
			_, err = s.AddToken(ctx, store.Token{Proxy: tok.Proxy, TokenAddress: common.HexToAddress("0xdd")})
			require.ErrorIs(t, err, store.ErrTokenAlreadyRegistered)

			got, found, err := s.TokenByProxy(ctx, tok.Proxy)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, added, got)

			got, found, err = s.TokenByAddress(ctx, tok.TokenAddress)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, added, got)

			_, found, err = s.TokenByProxy(ctx, tok.TokenAddress)
			require.NoError(t, err)
			assert.False(t, found)

			require.ErrorIs(t, s.RemoveToken(ctx, tok.TokenAddress), store.ErrTokenNotRegistered)
			require.NoError(t, s.RemoveToken(ctx, tok.Proxy))
			require.ErrorIs(t, s.RemoveToken(ctx, tok.Proxy), store.ErrTokenNotRegistered)

			tokens, err := s.Tokens(ctx)
			require.NoError(t, err)
			assert.Empty(t, tokens)

			// IDs are not reused after removal.
			again, err := s.AddToken(ctx, tok)
			require.NoError(t, err)
			assert.Equal(t, uint64(1), again.ID)
		})
	}
}

// -------------------------------------------------------------------------------------------------
// Model-based fuzzing
// -------------------------------------------------------------------------------------------------

type tokenOp uint8

const (
	opAdd    tokenOp = 50
	opRemove tokenOp = 30
	opLookup tokenOp = 20
)

func TestStore_TokensModelFuzz(t *testing.T) {
	t.Parallel()

	for name, newStore := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			prng := testutils.NewRand(t)
			s := newStore()

			// Model: proxy -> token address. Addresses are drawn from a small pool to force
			// collisions on both keys.
			model := make(map[common.Address]common.Address)
			pick := func() common.Address {
				return common.BigToAddress(new(big.Int).Lsh(big.NewInt(1), uint(prng.IntN(16)+1)))
			}

			for range 300 {
				switch testutils.RandWeightedOp(prng, []tokenOp{opAdd, opRemove, opLookup}) {
				case opAdd:
					proxy, addr := pick(), pick()
					_, err := s.AddToken(ctx, store.Token{Proxy: proxy, TokenAddress: addr, Precision: 18})

					_, proxyTaken := model[proxy]
					addrTaken := false
					for _, a := range model {
						addrTaken = addrTaken || a == addr
					}
					if proxyTaken || addrTaken {
						require.ErrorIs(t, err, store.ErrTokenAlreadyRegistered)
					} else {
						require.NoError(t, err)
						model[proxy] = addr
					}

				case opRemove:
					proxy := pick()
					err := s.RemoveToken(ctx, proxy)
					if _, ok := model[proxy]; ok {
						require.NoError(t, err)
						delete(model, proxy)
					} else {
						require.ErrorIs(t, err, store.ErrTokenNotRegistered)
					}

				case opLookup:
					proxy := pick()
					got, found, err := s.TokenByProxy(ctx, proxy)
					require.NoError(t, err)
					addr, ok := model[proxy]
					require.Equal(t, ok, found)
					if ok {
						assert.Equal(t, addr, got.TokenAddress)
					}
				}
			}

			// Property: the table holds exactly the model's tokens, each reachable by both keys.
			tokens, err := s.Tokens(ctx)
			require.NoError(t, err)
			require.Len(t, tokens, len(model))
			for _, tok := range tokens {
				assert.Equal(t, model[tok.Proxy], tok.TokenAddress)
				byAddr, found, err := s.TokenByAddress(ctx, tok.TokenAddress)
				require.NoError(t, err)
				require.True(t, found)
				assert.Equal(t, tok, byAddr)
			}
		})
	}
}

func TestStore_Nonces(t *testing.T) {
	t.Parallel()

	for name, newStore := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			nonces, ok := newStore().(store.NonceTable)
			require.True(t, ok)

			self := units.MustParseAccount("evmutil.xsat")
			n, err := nonces.NextNonce(ctx, self)
			require.NoError(t, err)
			assert.Equal(t, uint64(0), n)

			require.NoError(t, nonces.SetNextNonce(ctx, self, 3))
			require.NoError(t, nonces.SetNextNonce(ctx, self, 3))
			require.Error(t, nonces.SetNextNonce(ctx, self, 2))

			n, err = nonces.NextNonce(ctx, self)
			require.NoError(t, err)
			assert.Equal(t, uint64(3), n)

			n, err = nonces.NextNonce(ctx, units.MustParseAccount("other.xsat"))
			require.NoError(t, err)
			assert.Equal(t, uint64(0), n)
		})
	}
}
