package common

import (
	"sync"

	"github.com/puzpuzpuz/xsync"
	"golang.org/x/exp/slices"
)

// AccountLocker serializes balance mutations per account. Multi-account
// operations lock in ascending id order so two duels settling the same pair
// of players cannot deadlock.
type AccountLocker struct {
	mutexes *xsync.MapOf[string, *sync.Mutex]
}

func NewAccountLocker() *AccountLocker {
	return &AccountLocker{mutexes: xsync.NewMapOf[*sync.Mutex]()}
}

func (l *AccountLocker) mutex(accountID string) *sync.Mutex {
	mu, _ := l.mutexes.LoadOrStore(accountID, &sync.Mutex{})
	return mu
}

func (l *AccountLocker) Lock(accountID string) {
	l.mutex(accountID).Lock()
}

func (l *AccountLocker) Unlock(accountID string) {
	l.mutex(accountID).Unlock()
}

// LockMany locks a set of accounts in ascending order, skipping duplicates.
// It returns the unlock function; callers defer it.
func (l *AccountLocker) LockMany(accountIDs ...string) func() {
	sorted := make([]string, 0, len(accountIDs))
	sorted = append(sorted, accountIDs...)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	for _, id := range sorted {
		l.mutex(id).Lock()
	}

	return func() {
		for i := len(sorted) - 1; i >= 0; i-- {
			l.mutex(sorted[i]).Unlock()
		}
	}
}
