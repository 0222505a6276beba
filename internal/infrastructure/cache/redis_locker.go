package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/expenseflow/backend/internal/domain/expense"
	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// ErrLockNotAcquired is returned when the per-expense lock could not be
// taken within the configured retry budget
var ErrLockNotAcquired = shared.NewDomainError("LOCK_NOT_ACQUIRED", "Expense is being processed by another request")

// releaseScript deletes the lock key only if it still holds our token,
// so a lock that expired and was re-acquired elsewhere is never released
// by the original holder
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisExpenseLocker serializes approval flow mutations per expense
// across process instances using SETNX leases
type RedisExpenseLocker struct {
	client     *redis.Client
	ownsClient bool
	keyPrefix  string
	ttl        time.Duration
	retryDelay time.Duration
	maxRetries int
	logger     *zap.Logger
}

// RedisExpenseLockerOption is a functional option for configuring the locker
type RedisExpenseLockerOption func(*RedisExpenseLocker)

// WithLockTTL sets how long an acquired lease survives a crashed holder
func WithLockTTL(ttl time.Duration) RedisExpenseLockerOption {
	return func(l *RedisExpenseLocker) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// WithLockRetry sets the wait between acquisition attempts and the
// maximum number of attempts
func WithLockRetry(delay time.Duration, maxRetries int) RedisExpenseLockerOption {
	return func(l *RedisExpenseLocker) {
		if delay > 0 {
			l.retryDelay = delay
		}
		if maxRetries > 0 {
			l.maxRetries = maxRetries
		}
	}
}

// WithLockLogger sets the logger for the locker
func WithLockLogger(logger *zap.Logger) RedisExpenseLockerOption {
	return func(l *RedisExpenseLocker) {
		l.logger = logger
	}
}

// NewRedisExpenseLocker creates a locker with its own Redis client
func NewRedisExpenseLocker(cfg RedisConfig, opts ...RedisExpenseLockerOption) (*RedisExpenseLocker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	locker := newRedisExpenseLocker(client, opts...)
	locker.ownsClient = true
	return locker, nil
}

// NewRedisExpenseLockerWithClient creates a locker with an existing Redis client
// Note: The caller retains ownership of the client and is responsible for closing it
func NewRedisExpenseLockerWithClient(client *redis.Client, opts ...RedisExpenseLockerOption) *RedisExpenseLocker {
	return newRedisExpenseLocker(client, opts...)
}

func newRedisExpenseLocker(client *redis.Client, opts ...RedisExpenseLockerOption) *RedisExpenseLocker {
	locker := &RedisExpenseLocker{
		client:     client,
		keyPrefix:  "expense:lock:",
		ttl:        30 * time.Second,
		retryDelay: 50 * time.Millisecond,
		maxRetries: 100,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(locker)
	}

	return locker
}

// WithLock acquires the lease for the given expense, runs fn, and
// releases the lease. Acquisition retries until the retry budget or the
// context runs out
func (l *RedisExpenseLocker) WithLock(ctx context.Context, expenseID uuid.UUID, fn func(ctx context.Context) error) error {
	key := l.keyPrefix + expenseID.String()
	token := uuid.NewString()

	if err := l.acquireLease(ctx, key, token); err != nil {
		return err
	}
	defer l.releaseLease(key, token)

	return fn(ctx)
}

func (l *RedisExpenseLocker) acquireLease(ctx context.Context, key, token string) error {
	for attempt := 0; attempt < l.maxRetries; attempt++ {
		acquired, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("failed to acquire expense lock: %w", err)
		}
		if acquired {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.retryDelay):
		}
	}

	l.logger.Warn("expense lock retry budget exhausted", zap.String("key", key))
	return ErrLockNotAcquired
}

func (l *RedisExpenseLocker) releaseLease(key, token string) {
	// Release on a fresh context so a cancelled request still cleans up
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil && err != redis.Nil {
		l.logger.Error("failed to release expense lock",
			zap.String("key", key),
			zap.Error(err))
	}
}

// Close closes the Redis client if this locker owns it
func (l *RedisExpenseLocker) Close() error {
	if l.ownsClient {
		return l.client.Close()
	}
	return nil
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (l *RedisExpenseLocker) GetClient() *redis.Client {
	return l.client
}

// Ensure RedisExpenseLocker implements ExpenseLocker
var _ expense.ExpenseLocker = (*RedisExpenseLocker)(nil)
