package store

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rotisserie/eris"
	"pkg.world.dev/world-engine/evmutil/units"
)

// MemoryStore keeps the tables in process memory.
type MemoryStore struct {
	mu sync.RWMutex

	config  *Config
	helpers Helpers
	impls   []ImplContract
	tokens  map[uint64]Token
	nextID  uint64
	nonces  map[units.Account]uint64
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tokens: make(map[uint64]Token),
		nonces: make(map[units.Account]uint64),
	}
}

func (m *MemoryStore) Config(_ context.Context) (Config, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.config == nil {
		return Config{}, false, nil
	}
	return *m.config, true, nil
}

func (m *MemoryStore) SetConfig(_ context.Context, cfg Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config = &cfg
	return nil
}

func (m *MemoryStore) Helpers(_ context.Context) (Helpers, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.helpers, nil
}

func (m *MemoryStore) SetHelpers(_ context.Context, h Helpers) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.helpers = h
	return nil
}

func (m *MemoryStore) AddImplContract(_ context.Context, addr common.Address) (ImplContract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	impl := ImplContract{ID: uint64(len(m.impls)), Address: addr}
	m.impls = append(m.impls, impl)
	return impl, nil
}

func (m *MemoryStore) LatestImplContract(_ context.Context) (ImplContract, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.impls) == 0 {
		return ImplContract{}, false, nil
	}
	return m.impls[len(m.impls)-1], true, nil
}

func (m *MemoryStore) AddToken(_ context.Context, t Token) (Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.tokens {
		if existing.Proxy == t.Proxy || existing.TokenAddress == t.TokenAddress {
			return Token{}, eris.Wrapf(ErrTokenAlreadyRegistered, "token %s", t.TokenAddress.Hex())
		}
	}
	t.ID = m.nextID
	m.nextID++
	m.tokens[t.ID] = t
	return t, nil
}

func (m *MemoryStore) TokenByProxy(_ context.Context, proxy common.Address) (Token, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tokens {
		if t.Proxy == proxy {
			return t, true, nil
		}
	}
	return Token{}, false, nil
}

func (m *MemoryStore) TokenByAddress(_ context.Context, token common.Address) (Token, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tokens {
		if t.TokenAddress == token {
			return t, true, nil
		}
	}
	return Token{}, false, nil
}

func (m *MemoryStore) RemoveToken(_ context.Context, proxy common.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, t := range m.tokens {
		if t.Proxy == proxy {
			delete(m.tokens, id)
			return nil
		}
	}
	return eris.Wrapf(ErrTokenNotRegistered, "proxy %s", proxy.Hex())
}

func (m *MemoryStore) Tokens(_ context.Context) ([]Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tokens := make([]Token, 0, len(m.tokens))
	for _, t := range m.tokens {
		tokens = append(tokens, t)
	}
	slices.SortFunc(tokens, func(a, b Token) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return tokens, nil
}
