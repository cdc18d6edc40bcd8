package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"pkg.world.dev/world-engine/evmutil/units"
)

// NonceTable mirrors the EVM runtime's next-nonce table. The runtime owns the counters; the
// bridge only reads them, and whoever applies executed EVM transactions advances them.
type NonceTable interface {
	// NextNonce returns 0 for an account that never sent a transaction.
	NextNonce(ctx context.Context, account units.Account) (uint64, error)
	SetNextNonce(ctx context.Context, account units.Account, nonce uint64) error
}

var (
	_ NonceTable = (*MemoryStore)(nil)
	_ NonceTable = (*RedisStore)(nil)
)

func (m *MemoryStore) NextNonce(_ context.Context, account units.Account) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.nonces[account], nil
}

func (m *MemoryStore) SetNextNonce(_ context.Context, account units.Account, nonce uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if nonce < m.nonces[account] {
		return eris.Errorf("nonce of %s cannot move back from %d to %d", account, m.nonces[account], nonce)
	}
	m.nonces[account] = nonce
	return nil
}

func (r *RedisStore) NextNonce(ctx context.Context, account units.Account) (uint64, error) {
	n, err := r.client.HGet(ctx, r.noncesKey(), account.String()).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, eris.Wrapf(err, "failed to read nonce of %s", account)
	}
	return n, nil
}

// nonceScript sets the counter only when it does not move backwards.
var nonceScript = redis.NewScript(`
local current = tonumber(redis.call("HGET", KEYS[1], ARGV[1]) or "0")
local next = tonumber(ARGV[2])
if next < current then
	return redis.error_reply("nonce cannot move back")
end
redis.call("HSET", KEYS[1], ARGV[1], ARGV[2])
return next
`)

func (r *RedisStore) SetNextNonce(ctx context.Context, account units.Account, nonce uint64) error {
	err := nonceScript.Run(ctx, r.client, []string{r.noncesKey()}, account.String(), nonce).Err()
	return eris.Wrapf(err, "failed to set nonce of %s to %d", account, nonce)
}
