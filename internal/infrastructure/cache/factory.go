package cache

import (
	"fmt"

	"github.com/expenseflow/backend/internal/domain/expense"
	"github.com/expenseflow/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ExpenseLockerFactory creates expense lockers based on configuration
type ExpenseLockerFactory struct {
	lockConfig            config.LockConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ExpenseLockerFactoryOption is a functional option for configuring the factory
type ExpenseLockerFactoryOption func(*ExpenseLockerFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ExpenseLockerFactoryOption {
	return func(f *ExpenseLockerFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory
// locker when Redis is unavailable. Default is true (allow fallback)
func WithInMemoryFallback(allow bool) ExpenseLockerFactoryOption {
	return func(f *ExpenseLockerFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewExpenseLockerFactory creates a new factory
func NewExpenseLockerFactory(lockCfg config.LockConfig, redisCfg config.RedisConfig, opts ...ExpenseLockerFactoryOption) *ExpenseLockerFactory {
	f := &ExpenseLockerFactory{
		lockConfig:            lockCfg,
		redisConfig:           redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisLocker creates a Redis-based expense locker
func (f *ExpenseLockerFactory) CreateRedisLocker() (*RedisExpenseLocker, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	locker, err := NewRedisExpenseLocker(redisCfg,
		WithLockTTL(f.lockConfig.TTL),
		WithLockRetry(f.lockConfig.RetryDelay, f.lockConfig.MaxRetries),
		WithLockLogger(f.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis expense locker: %w", err)
	}

	return locker, nil
}

// CreateInMemoryLocker creates an in-memory expense locker
// WARNING: In-memory lockers do not serialize across process instances,
// which can let concurrent decisions race in distributed deployments
func (f *ExpenseLockerFactory) CreateInMemoryLocker() *InMemoryExpenseLocker {
	return NewInMemoryExpenseLocker()
}

// CreateLocker creates an expense locker based on the configured backend.
// The redis backend falls back to in-memory when Redis is unreachable and
// fallback is allowed
func (f *ExpenseLockerFactory) CreateLocker() (expense.ExpenseLocker, error) {
	switch f.lockConfig.Backend {
	case "memory", "":
		f.logger.Info("using in-memory expense locker")
		return f.CreateInMemoryLocker(), nil
	case "redis":
		locker, err := f.CreateRedisLocker()
		if err == nil {
			f.logger.Info("using Redis expense locker")
			return locker, nil
		}

		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("Redis required for expense locking but unavailable: %w", err)
		}

		f.logger.Warn("Redis unavailable, falling back to in-memory expense locker. "+
			"Concurrent decisions may race in distributed deployments.",
			zap.Error(err),
		)
		return f.CreateInMemoryLocker(), nil
	default:
		return nil, fmt.Errorf("unknown lock backend %q", f.lockConfig.Backend)
	}
}
