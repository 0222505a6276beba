package cache

import (
	"context"
	"sync"

	"github.com/expenseflow/backend/internal/domain/expense"
	"github.com/google/uuid"
)

// lockEntry is one per-expense mutex with a reference count so entries
// can be removed from the map once no goroutine waits on them
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// InMemoryExpenseLocker serializes approval flow mutations per expense
// within a single process. This is suitable for single-instance
// deployments and testing
type InMemoryExpenseLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*lockEntry
}

// NewInMemoryExpenseLocker creates a new in-memory expense locker
func NewInMemoryExpenseLocker() *InMemoryExpenseLocker {
	return &InMemoryExpenseLocker{
		locks: make(map[uuid.UUID]*lockEntry),
	}
}

// WithLock runs fn while holding the mutex for the given expense.
// Concurrent calls for the same expense run one at a time; calls for
// different expenses do not block each other
func (l *InMemoryExpenseLocker) WithLock(ctx context.Context, expenseID uuid.UUID, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entry := l.acquire(expenseID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		l.release(expenseID)
	}()

	// The context may have expired while waiting for the mutex
	if err := ctx.Err(); err != nil {
		return err
	}

	return fn(ctx)
}

// Size returns the number of tracked expense locks (for testing/monitoring)
func (l *InMemoryExpenseLocker) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func (l *InMemoryExpenseLocker) acquire(expenseID uuid.UUID) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.locks[expenseID]
	if !ok {
		entry = &lockEntry{}
		l.locks[expenseID] = entry
	}
	entry.refs++
	return entry
}

func (l *InMemoryExpenseLocker) release(expenseID uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.locks[expenseID]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(l.locks, expenseID)
	}
}

// Ensure InMemoryExpenseLocker implements ExpenseLocker
var _ expense.ExpenseLocker = (*InMemoryExpenseLocker)(nil)
