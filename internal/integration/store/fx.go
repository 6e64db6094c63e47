package store

import (
	"context"
	"fmt"

	"github.com/chantierpro/finance/internal/clock"
	"github.com/chantierpro/finance/internal/config"
	"github.com/chantierpro/finance/internal/integration/domain"
	"github.com/chantierpro/finance/pkg/db"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Cfg       config.Config
	Log       *zap.Logger
	Clock     clock.Clock `optional:"true"`
}

type Result struct {
	fx.Out

	Store  domain.CredentialStore
	Locker domain.SyncLocker
}

// New selects the credential backend named by the configuration.
func New(p Params) (Result, error) {
	log := p.Log.Named("integration.store")
	sealer, err := newSealer(p.Cfg, log)
	if err != nil {
		return Result{}, err
	}

	switch p.Cfg.CredentialStore {
	case config.CredentialStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     p.Cfg.Redis.Addr,
			Password: p.Cfg.Redis.Password,
			DB:       p.Cfg.Redis.DB,
		})
		p.Lifecycle.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return client.Ping(ctx).Err()
			},
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
		log.Info("using redis credential store", zap.String("addr", p.Cfg.Redis.Addr))
		return Result{Store: NewRedisStore(client, sealer), Locker: NewRedisLocker(client)}, nil

	case config.CredentialStoreSQL:
		gdb, err := db.Open(p.Cfg, log)
		if err != nil {
			return Result{}, err
		}
		store := NewGormStore(gdb, sealer)
		p.Lifecycle.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := store.Migrate(ctx); err != nil {
					return fmt.Errorf("migrate integration_connections: %w", err)
				}
				return nil
			},
			OnStop: func(context.Context) error {
				sqlDB, err := gdb.DB()
				if err != nil {
					return err
				}
				return sqlDB.Close()
			},
		})
		log.Info("using sql credential store", zap.String("dialect", p.Cfg.DBType))
		return Result{Store: store, Locker: NewMemoryLocker(p.Clock)}, nil

	default:
		return Result{Store: NewMemoryStore(sealer), Locker: NewMemoryLocker(p.Clock)}, nil
	}
}

// newSealer requires a secret for persistent backends. The memory store may
// run on a process-local key since its content dies with the process.
func newSealer(cfg config.Config, log *zap.Logger) (*Sealer, error) {
	if cfg.CredentialSecret != "" {
		return NewSealer(cfg.CredentialSecret)
	}
	if cfg.CredentialStore != config.CredentialStoreMemory || cfg.IsProduction() {
		return nil, fmt.Errorf("credential store %s: %w", cfg.CredentialStore, domain.ErrEncryptionKeyMissing)
	}
	log.Warn("CREDENTIAL_SECRET not set, using an ephemeral key")
	return NewEphemeralSealer()
}
