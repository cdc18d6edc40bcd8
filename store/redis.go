package store

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore keeps the tables in Redis under a namespace prefix.
type RedisStore struct {
	client    redis.UniversalClient
	namespace string
	tracer    trace.Tracer
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(opts RedisOptions, namespace string) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return NewRedisStoreFromClient(client, namespace)
}

func NewRedisStoreFromClient(client redis.UniversalClient, namespace string) *RedisStore {
	return &RedisStore{
		client:    client,
		namespace: namespace,
		tracer:    otel.Tracer("redis"),
	}
}

func (r *RedisStore) Close() error {
	return eris.Wrap(r.client.Close(), "failed to close redis client")
}

// -------------------------------------------------------------------------------------------------
// Keys
// -------------------------------------------------------------------------------------------------

func (r *RedisStore) configKey() string         { return r.namespace + ":config" }
func (r *RedisStore) helpersKey() string        { return r.namespace + ":helpers" }
func (r *RedisStore) implKey() string           { return r.namespace + ":impl" }
func (r *RedisStore) tokensKey() string         { return r.namespace + ":tokens" }
func (r *RedisStore) tokenSeqKey() string       { return r.namespace + ":tokens:seq" }
func (r *RedisStore) tokenByProxyKey() string   { return r.namespace + ":tokens:by-proxy" }
func (r *RedisStore) tokenByAddressKey() string { return r.namespace + ":tokens:by-address" }
func (r *RedisStore) noncesKey() string         { return r.namespace + ":nonces" }

// -------------------------------------------------------------------------------------------------
// Singletons
// -------------------------------------------------------------------------------------------------

func (r *RedisStore) Config(ctx context.Context) (Config, bool, error) {
	var cfg Config
	found, err := r.getJSON(ctx, r.configKey(), &cfg)
	return cfg, found, err
}

func (r *RedisStore) SetConfig(ctx context.Context, cfg Config) error {
	return r.setJSON(ctx, r.configKey(), cfg)
}

func (r *RedisStore) Helpers(ctx context.Context) (Helpers, error) {
	var h Helpers
	_, err := r.getJSON(ctx, r.helpersKey(), &h)
	return h, err
}

func (r *RedisStore) SetHelpers(ctx context.Context, h Helpers) error {
	return r.setJSON(ctx, r.helpersKey(), h)
}

// -------------------------------------------------------------------------------------------------
// Implementation contracts
// -------------------------------------------------------------------------------------------------

func (r *RedisStore) AddImplContract(ctx context.Context, addr common.Address) (ImplContract, error) {
	n, err := r.client.RPush(ctx, r.implKey(), addr.Hex()).Result()
	if err != nil {
		return ImplContract{}, eris.Wrap(err, "failed to append implementation contract")
	}
	return ImplContract{ID: uint64(n - 1), Address: addr}, nil //nolint:gosec // list length is positive
}

func (r *RedisStore) LatestImplContract(ctx context.Context) (ImplContract, bool, error) {
	n, err := r.client.LLen(ctx, r.implKey()).Result()
	if err != nil {
		return ImplContract{}, false, eris.Wrap(err, "failed to count implementation contracts")
	}
	if n == 0 {
		return ImplContract{}, false, nil
	}
	hex, err := r.client.LIndex(ctx, r.implKey(), n-1).Result()
	if err != nil {
		return ImplContract{}, false, eris.Wrap(err, "failed to read latest implementation contract")
	}
	return ImplContract{ID: uint64(n - 1), Address: common.HexToAddress(hex)}, true, nil //nolint:gosec // n > 0
}

// -------------------------------------------------------------------------------------------------
// Tokens
// -------------------------------------------------------------------------------------------------

func (r *RedisStore) AddToken(ctx context.Context, t Token) (Token, error) {
	ctx, span := r.tracer.Start(ctx, "redis.add-token",
		trace.WithAttributes(attribute.String("token", t.TokenAddress.Hex())))
	defer span.End()

	keys := []string{r.tokenSeqKey(), r.tokenByProxyKey(), r.tokenByAddressKey()}
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		for key, field := range map[string]string{
			r.tokenByProxyKey():   t.Proxy.Hex(),
			r.tokenByAddressKey(): t.TokenAddress.Hex(),
		} {
			exists, err := tx.HExists(ctx, key, field).Result()
			if err != nil {
				return eris.Wrap(err, "failed to check token index")
			}
			if exists {
				return eris.Wrapf(ErrTokenAlreadyRegistered, "token %s", t.TokenAddress.Hex())
			}
		}

		id, err := tx.Get(ctx, r.tokenSeqKey()).Uint64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return eris.Wrap(err, "failed to read token sequence")
		}
		t.ID = id

		data, err := json.Marshal(t)
		if err != nil {
			return eris.Wrap(err, "failed to marshal token")
		}
		idField := strconv.FormatUint(id, 10)

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, r.tokensKey(), idField, data)
			pipe.HSet(ctx, r.tokenByProxyKey(), t.Proxy.Hex(), idField)
			pipe.HSet(ctx, r.tokenByAddressKey(), t.TokenAddress.Hex(), idField)
			pipe.Set(ctx, r.tokenSeqKey(), id+1, 0)
			return nil
		})
		return eris.Wrap(err, "failed to write token")
	}, keys...)
	if err != nil {
		span.SetStatus(codes.Error, "failed to add token")
		span.RecordError(err)
		return Token{}, err
	}
	return t, nil
}

func (r *RedisStore) TokenByProxy(ctx context.Context, proxy common.Address) (Token, bool, error) {
	return r.tokenByIndex(ctx, r.tokenByProxyKey(), proxy)
}

func (r *RedisStore) TokenByAddress(ctx context.Context, token common.Address) (Token, bool, error) {
	return r.tokenByIndex(ctx, r.tokenByAddressKey(), token)
}

func (r *RedisStore) RemoveToken(ctx context.Context, proxy common.Address) error {
	t, found, err := r.TokenByProxy(ctx, proxy)
	if err != nil {
		return err
	}
	if !found {
		return eris.Wrapf(ErrTokenNotRegistered, "proxy %s", proxy.Hex())
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, r.tokensKey(), strconv.FormatUint(t.ID, 10))
		pipe.HDel(ctx, r.tokenByProxyKey(), t.Proxy.Hex())
		pipe.HDel(ctx, r.tokenByAddressKey(), t.TokenAddress.Hex())
		return nil
	})
	return eris.Wrap(err, "failed to remove token")
}

func (r *RedisStore) Tokens(ctx context.Context) ([]Token, error) {
	values, err := r.client.HVals(ctx, r.tokensKey()).Result()
	if err != nil {
		return nil, eris.Wrap(err, "failed to list tokens")
	}
	tokens := make([]Token, 0, len(values))
	for _, v := range values {
		var t Token
		if err := json.Unmarshal([]byte(v), &t); err != nil {
			return nil, eris.Wrap(err, "failed to unmarshal token")
		}
		tokens = append(tokens, t)
	}
	slices.SortFunc(tokens, func(a, b Token) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return tokens, nil
}

func (r *RedisStore) tokenByIndex(ctx context.Context, index string, addr common.Address) (Token, bool, error) {
	id, err := r.client.HGet(ctx, index, addr.Hex()).Result()
	if errors.Is(err, redis.Nil) {
		return Token{}, false, nil
	}
	if err != nil {
		return Token{}, false, eris.Wrap(err, "failed to read token index")
	}
	var t Token
	found, err := r.hgetJSON(ctx, r.tokensKey(), id, &t)
	return t, found, err
}

// -------------------------------------------------------------------------------------------------
// Encoding helpers
// -------------------------------------------------------------------------------------------------

func (r *RedisStore) getJSON(ctx context.Context, key string, v any) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrapf(err, "failed to get %s", key)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, eris.Wrapf(err, "failed to unmarshal %s", key)
	}
	return true, nil
}

func (r *RedisStore) hgetJSON(ctx context.Context, key, field string, v any) (bool, error) {
	data, err := r.client.HGet(ctx, key, field).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrapf(err, "failed to get %s[%s]", key, field)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, eris.Wrapf(err, "failed to unmarshal %s[%s]", key, field)
	}
	return true, nil
}

func (r *RedisStore) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return eris.Wrapf(err, "failed to marshal %s", key)
	}
	return eris.Wrapf(r.client.Set(ctx, key, data, 0).Err(), "failed to set %s", key)
}
