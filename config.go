package evmutil

import (
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rotisserie/eris"
	"pkg.world.dev/world-engine/evmutil/store"
	"pkg.world.dev/world-engine/evmutil/units"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type Config struct {
	// Self is the native account the contract is deployed at.
	Self string `env:"EVMUTIL_SELF" envDefault:"evmutil.xsat"`

	// Store selects the table backend ("memory" or "redis").
	Store string `env:"EVMUTIL_STORE" envDefault:"memory"`

	// Namespace prefixes every Redis key.
	Namespace     string `env:"EVMUTIL_NAMESPACE" envDefault:"evmutil"`
	RedisAddr     string `env:"EVMUTIL_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"EVMUTIL_REDIS_PASSWORD"`
	RedisDB       int    `env:"EVMUTIL_REDIS_DB" envDefault:"0"`

	// Paths of hex files with the compiled helper contracts. Unset paths disable the matching
	// deploy actions.
	StakeHelperBytecode  string `env:"EVMUTIL_STAKE_HELPER_BYTECODE"`
	RewardHelperBytecode string `env:"EVMUTIL_REWARD_HELPER_BYTECODE"`
	GasFundsBytecode     string `env:"EVMUTIL_GAS_FUNDS_BYTECODE"`
	ProxyBytecode        string `env:"EVMUTIL_PROXY_BYTECODE"`
}

// LoadConfig loads the configuration from environment variables.
func LoadConfig() (Config, error) {
	cfg := Config{}

	if err := env.Parse(&cfg); err != nil {
		return cfg, eris.Wrap(err, "failed to parse evmutil config")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, eris.Wrap(err, "failed to validate evmutil config")
	}

	return cfg, nil
}

func (cfg *Config) Validate() error {
	if _, err := units.ParseAccount(cfg.Self); err != nil {
		return err
	}
	switch cfg.Store {
	case StoreMemory:
	case StoreRedis:
		if cfg.RedisAddr == "" {
			return eris.New("redis address cannot be empty when the redis store is selected")
		}
		if cfg.Namespace == "" {
			return eris.New("namespace cannot be empty when the redis store is selected")
		}
	default:
		return eris.Errorf("invalid store: %s (must be 'memory' or 'redis')", cfg.Store)
	}
	return nil
}

func (cfg *Config) SelfAccount() units.Account {
	return units.MustParseAccount(cfg.Self)
}

// LoadBytecodes reads the configured bytecode files.
func (cfg *Config) LoadBytecodes() (Bytecodes, error) {
	var code Bytecodes
	for _, f := range []struct {
		path string
		dst  *[]byte
	}{
		{cfg.StakeHelperBytecode, &code.StakeHelper},
		{cfg.RewardHelperBytecode, &code.RewardHelper},
		{cfg.GasFundsBytecode, &code.GasFunds},
		{cfg.ProxyBytecode, &code.Proxy},
	} {
		if f.path == "" {
			continue
		}
		raw, err := os.ReadFile(f.path)
		if err != nil {
			return Bytecodes{}, eris.Wrapf(err, "failed to read bytecode %s", f.path)
		}
		*f.dst = common.FromHex(strings.TrimSpace(string(raw)))
	}
	return code, nil
}

// Backend is a table store that also mirrors the EVM runtime's nonces.
type Backend interface {
	store.Store
	store.NonceTable
}

// OpenBackend opens the configured store. The returned function releases it.
func (cfg *Config) OpenBackend() (Backend, func() error, error) {
	switch cfg.Store {
	case StoreRedis:
		s := store.NewRedisStore(store.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.Namespace)
		return s, s.Close, nil
	case StoreMemory:
		return store.NewMemoryStore(), func() error { return nil }, nil
	default:
		return nil, nil, eris.Errorf("invalid store: %s", cfg.Store)
	}
}
